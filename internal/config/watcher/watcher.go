// Package watcher reports changes to a single config file.
//
// The parent directory is watched rather than the file itself so saves that
// replace the file (write to temp, rename over) are still seen. Bursts of
// events within the debounce window are coalesced into one callback.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by Run after the watcher has run or been
// closed.
var ErrWatcherClosed = errors.New("watcher is closed")

// Op is the kind of change seen.
type Op uint8

// Change kinds. An event may carry several.
const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// String returns the operation names joined with '|'.
func (op Op) String() string {
	var s string
	for _, n := range []struct {
		op   Op
		name string
	}{{OpCreate, "create"}, {OpWrite, "write"}, {OpRemove, "remove"}, {OpRename, "rename"}} {
		if op&n.op != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Event is one coalesced change to the watched file.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler is called after the debounce window closes.
type Handler func(Event)

// Watcher watches one file.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  Handler
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending Op
	timer   *time.Timer
	ran     bool

	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New starts watching path. Call Run to deliver events, or Close to release
// the watch without running.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		debounce: 250 * time.Millisecond,
		handler:  handler,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers events until ctx is done or Close is called, then releases
// the OS watch.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.ran {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.ran = true
	w.mu.Unlock()

	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Close releases the OS watch. It is safe to call more than once and while
// Run is delivering events.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.ran = true
	w.mu.Unlock()
	w.close()
	return nil
}

func (w *Watcher) close() {
	w.closeOnce.Do(w.release)
}

func (w *Watcher) release() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = 0
	w.mu.Unlock()

	if err := w.fsw.Close(); err != nil {
		w.logger.Debug("closing config watcher", "error", err)
	}
}

// handleFSEvent filters to the watched file and schedules a callback.
func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending |= op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	op := w.pending
	w.pending = 0
	w.timer = nil
	w.mu.Unlock()

	if op == 0 || w.handler == nil {
		return
	}
	w.handler(Event{Path: w.path, Op: op, Time: time.Now()})
}

// convertOp converts fsnotify.Op to Op. Chmod is ignored.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
