package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"waymark/internal/logging"
)

// Watcher observes authored content directories and invokes a callback after
// a quiet period, so bursts of editor writes coalesce into one rebuild.
type Watcher struct {
	roots    []string
	debounce time.Duration
	logger   *slog.Logger
}

// New constructs a watcher over the given root directories.
func New(roots []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		roots:    roots,
		debounce: debounce,
		logger:   logging.NewComponentLogger(logger, "watch"),
	}
}

// Run blocks watching for changes until ctx is cancelled. onChange runs once
// per settled burst of filesystem events; its error stops the watch.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer notifier.Close()

	for _, root := range w.roots {
		if err := addRecursive(notifier, root); err != nil {
			return err
		}
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			if ignorable(event.Name) {
				continue
			}
			// New subdirectories need their own watch before anything
			// inside them can be seen.
			if event.Op.Has(fsnotify.Create) {
				_ = addRecursive(notifier, event.Name)
			}
			w.logger.Debug("change observed",
				logging.String("path", event.Name),
				logging.String("op", event.Op.String()))
			if pending {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))

		case <-timer.C:
			pending = false
			w.logger.Info("changes settled, rebuilding")
			if err := onChange(ctx); err != nil {
				return err
			}
		}
	}
}

// addRecursive watches root and every directory below it. A missing root is
// skipped so watch mode works before all authored directories exist.
func addRecursive(notifier *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return nil
			}
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := notifier.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// ignorable filters temp files from atomic writes and editor swap files.
func ignorable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	return strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
