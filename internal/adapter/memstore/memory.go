package memstore

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"apidoc/internal/port"
)

// MemorySource is an in-memory file tree. It serves the pipeline where there
// is no filesystem (the browser build) and in tests.
type MemorySource struct {
	mu    sync.RWMutex
	files map[string]string
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		files: make(map[string]string),
	}
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}

func (s *MemorySource) Put(name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[clean(name)] = content
}

func (s *MemorySource) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, clean(name))
}

func (s *MemorySource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]string)
}

// Names lists every stored file in lexical order.
func (s *MemorySource) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk lists the files below root, relative to it, in lexical order. The root
// "." (or "") selects every file.
func (s *MemorySource) Walk(root string) ([]port.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := clean(root)
	if prefix != "" {
		if _, isFile := s.files[prefix]; isFile {
			return []port.FileInfo{{
				Path:    path.Base(prefix),
				AbsPath: prefix,
				Size:    int64(len(s.files[prefix])),
			}}, nil
		}
		prefix += "/"
	}

	var files []port.FileInfo
	for name, content := range s.files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		files = append(files, port.FileInfo{
			Path:    strings.TrimPrefix(name, prefix),
			AbsPath: name,
			Size:    int64(len(content)),
		})
	}
	if len(files) == 0 && prefix != "" {
		return nil, fmt.Errorf("%s: %w", root, os.ErrNotExist)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

func (s *MemorySource) ReadFile(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[clean(name)]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return content, nil
}
