package gaze

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches an asset tree for written configuration files.
type FileWatcher struct {
	root string
}

// NewFileWatcher creates a new FileWatcher rooted at dir. Every directory
// below dir is watched, including ones created later.
func NewFileWatcher(dir string) *FileWatcher {
	return &FileWatcher{root: dir}
}

// Watch begins watching the tree and returns a channel that emits the
// root-relative name of each file written or created.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	out := make(chan string)

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// Only emit on write or create events
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
					_ = watcher.Add(event.Name) //nolint:errcheck // Directory may already be gone
					continue
				}

				rel, err := filepath.Rel(w.root, event.Name)
				if err != nil {
					continue
				}

				select {
				case out <- filepath.ToSlash(rel):
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return out, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
