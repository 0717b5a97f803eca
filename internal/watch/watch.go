// Package watch re-applies the active profile whenever the profile store
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an atomic save produces.
const DefaultDebounce = 500 * time.Millisecond

// Restorer re-applies the active profile.
type Restorer interface {
	Run(ctx context.Context) (int, error)
}

// Watcher watches one file through its parent directory. Watching the
// directory keeps working across the rename an atomic save performs.
type Watcher struct {
	path     string
	debounce time.Duration
	restorer Restorer
	logger   *log.Logger

	// ready is closed once the directory watch is registered.
	ready chan struct{}
}

// New returns a Watcher for path.
func New(path string, debounce time.Duration, r Restorer, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		restorer: r,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Run has started watching.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	close(w.ready)
	w.logger.Info("watching profile store", "path", w.path, "debounce", w.debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("profile store changed", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-fire:
			fire = nil
			rc, err := w.restorer.Run(context.WithoutCancel(ctx))
			if err != nil || rc != 0 {
				w.logger.Error("restore after profile change failed", "rc", rc, "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
