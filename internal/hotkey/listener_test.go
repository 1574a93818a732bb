package hotkey

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	events       chan struct{}
	unregistered atomic.Bool
}

func (h *fakeHandle) Pressed() <-chan struct{} { return h.events }

func (h *fakeHandle) Unregister() error {
	h.unregistered.Store(true)
	return nil
}

func testBinding(t *testing.T) Binding {
	t.Helper()
	b, err := Parse("ctrl+shift+t")
	require.NoError(t, err)
	return b
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListener_DispatchesPresses(t *testing.T) {
	h := &fakeHandle{events: make(chan struct{})}
	var presses atomic.Int32
	var got Binding

	l := NewListener(testBinding(t), func() { presses.Add(1) }, func(b Binding) (Handle, error) {
		got = b
		return h, nil
	}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	h.events <- struct{}{}
	h.events <- struct{}{}
	require.Eventually(t, func() bool { return presses.Load() == 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
	assert.True(t, h.unregistered.Load())
	assert.Equal(t, "ctrl+shift+t", got.String())
}

func TestListener_ClosedChannel(t *testing.T) {
	h := &fakeHandle{events: make(chan struct{})}
	close(h.events)

	l := NewListener(testBinding(t), func() {}, func(Binding) (Handle, error) { return h, nil }, quietLogger())
	assert.NoError(t, l.Run(context.Background()))
	assert.True(t, h.unregistered.Load())
}

func TestListener_RegisterError(t *testing.T) {
	l := NewListener(testBinding(t), func() {}, func(Binding) (Handle, error) {
		return nil, errors.New("grab failed")
	}, quietLogger())

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grab failed")
	assert.Contains(t, err.Error(), "ctrl+shift+t")
}

func TestListener_NoRegistrar(t *testing.T) {
	l := NewListener(testBinding(t), func() {}, nil, quietLogger())

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
