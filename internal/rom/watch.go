package rom

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/retroenv/retrogolib/log"
)

// settle is how long the file has to stay unchanged before it is reloaded.
// Editors and assemblers often write a file in several steps.
const settle = 100 * time.Millisecond

// Watch reloads the ROM at path whenever it changes and sends the new
// image on the returned channel. Images that fail to load are logged and
// skipped. The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, logger *log.Logger) (<-chan []byte, error) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// watch the directory, the file itself is usually replaced on save
	if err := watcher.Watch(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	reload := make(chan []byte)
	go func() {
		defer close(reload)
		defer watcher.Close() //nolint:errcheck

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == path && !ev.IsAttrib() {
					pending = time.After(settle)
				}

			case err := <-watcher.Error:
				logger.Error("ROM watcher failed", log.Err(err))

			case <-pending:
				pending = nil
				data, err := Load(path)
				if err != nil {
					logger.Error("ROM reload failed", log.Err(err))
					continue
				}
				logger.Info("ROM changed", log.String("file", filepath.Base(path)))
				select {
				case reload <- data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return reload, nil
}
