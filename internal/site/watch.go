package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of edits to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls reload whenever a Markdown file under dir is created, written,
// removed or renamed. Bursts of events within debounce trigger one reload.
// Reload errors are logged and watching continues. Watch blocks until ctx is
// canceled and returns nil then.
func Watch(ctx context.Context, dir string, debounce time.Duration, reload func() error, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, dir); err != nil {
		return err
	}
	logger.Info("Watching content", "dir", dir)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
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
				// New subdirectories need their own watch.
				_ = addTree(watcher, event.Name)
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("Content changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Content watcher error", "error", err)

		case <-timer.C:
			start := time.Now()
			if err := reload(); err != nil {
				logger.Error("Content reload failed", "error", err)
				continue
			}
			logger.Info("Content reloaded", "duration_ms", time.Since(start).Milliseconds())
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// addTree watches root and every directory below it. A root that is not a
// directory is ignored.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("content directory %s does not exist: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
