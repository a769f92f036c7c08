package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever the config file is written or recreated
// outside the process. It returns once the watch is registered; the returned
// channel is closed after ctx is done and the watcher has shut down.
//
// The watcher observes the real filesystem, so it only makes sense for stores
// backed by afero.OsFs.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	target, err := filepath.Abs(s.path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", s.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					s.logger.Debug("config file changed", "path", ev.Name, "op", ev.Op.String())
					s.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	s.logger.Info("configuration monitoring active", "path", target)
	return done, nil
}
