package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"apidoc/internal/port"
)

// Walker selects source files under a root. Files are matched against the
// include and exclude regular expressions; directories matching one of the
// skip globs are not descended into.
type Walker struct {
	includes []*regexp.Regexp
	excludes []*regexp.Regexp
	skipDirs []string
}

func NewWalker(includes, excludes, skipDirs []string) (*Walker, error) {
	if len(includes) == 0 {
		includes = []string{`.*`}
	}
	w := &Walker{skipDirs: skipDirs}
	var err error
	if w.includes, err = compileAll(includes); err != nil {
		return nil, fmt.Errorf("include filter: %w", err)
	}
	if w.excludes, err = compileAll(excludes); err != nil {
		return nil, fmt.Errorf("exclude filter: %w", err)
	}
	for _, g := range skipDirs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("exclude dir: invalid glob %q", g)
		}
	}
	return w, nil
}

func compileAll(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		re, err := regexp.Compile(e)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// Walk returns the selected files in lexical order.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []port.FileInfo{{Path: filepath.Base(root), AbsPath: root, Size: st.Size()}}, nil
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldSkipDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, port.FileInfo{
				Path:    relPath,
				AbsPath: path,
				Size:    info.Size(),
			})
		}

		return nil
	})

	return files, err
}

func (w *Walker) shouldInclude(path string) bool {
	for _, re := range w.includes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, re := range w.excludes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (w *Walker) shouldSkipDir(path string) bool {
	for _, pattern := range w.skipDirs {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		matched, err = doublestar.Match(pattern, path+"/")
		if err == nil && matched {
			return true
		}
	}
	return false
}

// ReadFile reads a selected file as text.
func (w *Walker) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
