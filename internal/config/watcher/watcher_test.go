package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *eventLog) last() Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[len(l.events)-1]
}

func startWatcher(t *testing.T, path string, log *eventLog) {
	t.Helper()
	w, err := New(path, log.add,
		WithDebounce(20*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestWatcher_WriteIsReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[keys]\n"), 0o600))

	var log eventLog
	startWatcher(t, path, &log)

	require.NoError(t, os.WriteFile(path, []byte("[keys]\nup = \"up\"\n"), 0o600))

	require.Eventually(t, func() bool { return log.len() >= 1 }, 3*time.Second, 10*time.Millisecond)
	ev := log.last()
	assert.Equal(t, path, ev.Path)
	assert.NotZero(t, ev.Op&(OpWrite|OpCreate))
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	var log eventLog
	startWatcher(t, path, &log)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, log.len())
}

func TestWatcher_Debounces(t *testing.T) {
	var log eventLog
	w := &Watcher{path: "/cfg/config.toml", debounce: 30 * time.Millisecond, handler: log.add}

	for i := 0; i < 5; i++ {
		w.handleFSEvent(fsnotify.Event{Name: "/cfg/config.toml", Op: fsnotify.Write})
	}
	w.handleFSEvent(fsnotify.Event{Name: "/cfg/config.toml", Op: fsnotify.Rename})

	require.Eventually(t, func() bool { return log.len() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, log.len())
	assert.Equal(t, OpWrite|OpRename, log.last().Op)
}

func TestWatcher_IgnoresChmod(t *testing.T) {
	var log eventLog
	w := &Watcher{path: "/cfg/config.toml", debounce: time.Millisecond, handler: log.add}

	w.handleFSEvent(fsnotify.Event{Name: "/cfg/config.toml", Op: fsnotify.Chmod})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, log.len())
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "create|rename", (OpCreate | OpRename).String())
	assert.Equal(t, "none", Op(0).String())
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "config.toml"), nil)
	assert.Error(t, err)
}

func TestWatcher_CloseWithoutRun(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "config.toml"), nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.fsw.Events
	assert.False(t, open, "OS watch still open")
	assert.ErrorIs(t, w.Run(context.Background()), ErrWatcherClosed)
}

func TestWatcher_CloseStopsRun(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "config.toml"), nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.ran
	}, time.Second, time.Millisecond)
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}
