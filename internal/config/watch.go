package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches the config file for changes and triggers hot-reload.
type Reloader struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config, string)
}

// NewReloader creates a file watcher for the given config path. The
// callback receives the freshly loaded config and its hash.
func NewReloader(path string, onReload func(*Config, string)) (*Reloader, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	return &Reloader{watcher: watcher, path: path, onReload: onReload}, nil
}

// Run watches for file changes and reloads config. Blocks until ctx is
// cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					cfg, hash, err := LoadWithHash(r.path)
					if err != nil {
						fmt.Fprintf(os.Stderr, "hot-reload failed: %v\n", err)
						return
					}
					fmt.Fprintf(os.Stderr, "hot-reload: config reloaded (%s)\n", hash)
					r.onReload(cfg, hash)
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "config watcher error: %v\n", err)
		}
	}
}
