package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DropEvent reports a spreadsheet export that appeared or changed in the
// inbox directory.
type DropEvent struct {
	Path string
}

// InboxWatcher watches one directory (non-recursive) for CSV drops using
// fsnotify. Events for the same path are debounced so a file still being
// written triggers the callback only once.
type InboxWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onDrop   func(DropEvent)
	logger   *slog.Logger
}

// NewInboxWatcher creates an inbox watcher. A zero debounce defaults to
// one second; a nil logger defaults to slog.Default.
func NewInboxWatcher(debounce time.Duration, logger *slog.Logger, onDrop func(DropEvent)) (*InboxWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InboxWatcher{
		watcher:  w,
		debounce: debounce,
		onDrop:   onDrop,
		logger:   logger,
	}, nil
}

// Watch adds the inbox directory to the watcher.
func (w *InboxWatcher) Watch(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *InboxWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// One debouncer per path: exports arrive as independent files and a
	// second drop must not swallow the first.
	debouncers := make(map[string]*Debouncer)
	defer func() {
		for _, d := range debouncers {
			d.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isSpreadsheet(event.Name) {
				continue
			}
			path := event.Name
			d, ok := debouncers[path]
			if !ok {
				d = NewDebouncer(w.debounce, func() {
					w.logger.Info("inbox drop detected", "path", path)
					if w.onDrop != nil {
						w.onDrop(DropEvent{Path: path})
					}
				})
				debouncers[path] = d
			}
			d.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// isSpreadsheet recognizes the delimited-text extensions trackers export.
func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}
