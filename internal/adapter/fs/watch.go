package fs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"apidoc/internal/port"
)

// Watcher reports changes below a set of source roots. Bursts of events are
// coalesced: a change is reported once nothing has moved for the debounce
// interval.
type Watcher struct {
	walker   *Walker
	debounce time.Duration
	log      port.Logger
}

func NewWatcher(walker *Walker, debounce time.Duration, log port.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{walker: walker, debounce: debounce, log: log}
}

// Watch calls onChange after every settled burst of changes until ctx is
// done. Skipped directories are not watched.
func (w *Watcher) Watch(ctx context.Context, roots []string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range roots {
		if err := w.addTree(watcher, root); err != nil {
			return err
		}
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				fi, err := os.Stat(event.Name)
				if err == nil && fi.IsDir() {
					if err := w.addTree(watcher, event.Name); err != nil {
						w.log.Warn("cannot watch new directory", map[string]any{"path": event.Name, "error": err.Error()})
					}
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.log.Debug("source changed", map[string]any{"path": event.Name, "op": event.Op.String()})
				timer.Reset(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", map[string]any{"error": err.Error()})
		case <-timer.C:
			onChange()
		}
	}
}

// addTree recursively adds all directories below root to the watcher.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	st, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(root, path); err == nil && rel != "." && w.walker.shouldSkipDir(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
