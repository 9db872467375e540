// Package watcher reloads handbook content when its file changes on disk.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches a content file and invokes onChange after it settles.
// The parent directory is watched so editors that save by renaming a
// temporary file over the original are still seen.
type Watcher struct {
	path     string
	dir      string
	onChange func(path string)
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	timer    *time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long the file must be quiet before onChange runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher for the content file at path.
func NewWatcher(path string, onChange func(path string), opts ...WatcherOption) *Watcher {
	clean := filepath.Clean(path)
	w := &Watcher{
		path:     clean,
		dir:      filepath.Dir(clean),
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return err
	}
	w.watcher = fw
	w.started = true
	w.logger.Debug("watching content", zap.String("path", w.path))

	w.wg.Add(1)
	go w.run(ctx, fw.Events, fw.Errors)
	return nil
}

func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-w.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	w.logger.Debug("content event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.schedule()
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// the last good content stays loaded until the file comes back
		w.logger.Info("content file removed, keeping loaded content", zap.String("path", w.path))
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.stopTimerLocked()
	// the pending callback counts toward wg so Stop waits for it
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		w.timer = nil
		active := w.started
		w.mu.Unlock()
		if active && w.onChange != nil {
			w.onChange(w.path)
		}
	})
}

// stopTimerLocked cancels a pending callback that has not started yet.
func (w *Watcher) stopTimerLocked() {
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.timer = nil
}

// shutdown releases the fsnotify watcher and pending timer.
func (w *Watcher) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.stopTimerLocked()
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
}

// Stop stops the watcher and waits for its goroutine and any reload already
// in progress to finish.
func (w *Watcher) Stop() {
	w.shutdown()
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
}
