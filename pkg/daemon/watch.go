package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// ListWatcher calls onChange when the project list file is written, created,
// renamed or removed. Editors often replace files instead of writing them,
// so the parent directory is watched. Bursts of events collapse into one call.
type ListWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger
}

// NewListWatcher creates a watcher for path.
func NewListWatcher(path string, onChange func(), logger *slog.Logger) *ListWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListWatcher{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until ctx is cancelled. A missing parent directory disables
// watching without failing.
func (w *ListWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		w.logger.Warn("project list not watched", "dir", dir, "err", err)
		return nil
	}
	w.logger.Debug("watching project list", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("project list event", "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)
		case <-timer.C:
			w.logger.Info("project list changed", "path", w.path)
			w.onChange()
		}
	}
}

func (w *ListWatcher) relevant(e fsnotify.Event) bool {
	if filepath.Clean(e.Name) != w.path {
		return false
	}
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) ||
		e.Has(fsnotify.Rename) || e.Has(fsnotify.Remove)
}
