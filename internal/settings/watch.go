package settings

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watch calls onChange after the file at path is written, created or
// replaced. Bursts of events within debounce collapse into one call. The
// parent directory is watched so editors that save by renaming are seen.
// Watch returns once the watch is registered; it stops when ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *log.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("error watching %s: %w", target, err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write ||
					event.Op&fsnotify.Create == fsnotify.Create ||
					event.Op&fsnotify.Rename == fsnotify.Rename {
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounce, onChange)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Printf("Settings watcher error: %v", err)
			}
		}
	}()
	return nil
}
