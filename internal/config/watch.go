package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/EdibleTuber/void-mcp-server/internal/logging"
)

// Watch calls onChange whenever the file at path is written, created,
// renamed or removed, until ctx is done. The parent directory is watched so
// editors that replace the file atomically are still seen.
func Watch(ctx context.Context, path string, onChange func(fsnotify.Event)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || event.Op == fsnotify.Chmod {
					continue
				}
				logging.Debugf("[config] File event: %s %s", event.Op, event.Name)
				onChange(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Errorf("[config] Watch error: %v", err)
			}
		}
	}()
	return nil
}
