package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/twitchplays/internal/control"
	"github.com/dshills/twitchplays/internal/dispatch"
	"github.com/dshills/twitchplays/internal/emulator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeQueue records what the processor hands to the pool.
type fakeQueue struct {
	mu         sync.Mutex
	queued     []emulator.ActionKey
	submits    int
	enqueueErr error
	submitErr  error
}

func (q *fakeQueue) Enqueue(action dispatch.PendingAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.queued = append(q.queued, action.Key)
	return nil
}

func (q *fakeQueue) Submit() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.submitErr != nil {
		return q.submitErr
	}
	q.submits++
	return nil
}

func (q *fakeQueue) snapshot() ([]emulator.ActionKey, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]emulator.ActionKey(nil), q.queued...), q.submits
}

func newTestProcessor(t *testing.T, commandset map[string]string, caseInsensitive bool) (*Processor, *fakeQueue) {
	t.Helper()
	table, err := NewTable(commandset, caseInsensitive)
	require.NoError(t, err)
	q := &fakeQueue{}
	return NewProcessor(table, q, discardLogger()), q
}

func TestProcessor_DisabledDropsEverything(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"up": "up"}, true)

	for _, msg := range []string{"up", "UP", "nothing"} {
		assert.False(t, p.Handle(msg, false))
	}
	queued, submits := q.snapshot()
	assert.Empty(t, queued)
	assert.Zero(t, submits)
}

func TestProcessor_MatchQueuesExactlyOne(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"a": "z"}, true)

	assert.True(t, p.Handle("A", true))

	queued, submits := q.snapshot()
	assert.Equal(t, []emulator.ActionKey{"z"}, queued)
	assert.Equal(t, 1, submits)
}

func TestProcessor_MissLeavesQueueUnchanged(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"a": "z"}, true)

	assert.False(t, p.Handle("b", true))
	queued, submits := q.snapshot()
	assert.Empty(t, queued)
	assert.Zero(t, submits)
}

func TestProcessor_CaseHandling(t *testing.T) {
	insensitive, _ := newTestProcessor(t, map[string]string{"up": "up"}, true)
	assert.True(t, insensitive.Handle("UP", true))
	assert.True(t, insensitive.Handle("up", true))

	sensitive, _ := newTestProcessor(t, map[string]string{"up": "up"}, false)
	assert.False(t, sensitive.Handle("UP", true))
	assert.True(t, sensitive.Handle("up", true))
}

func TestProcessor_Sequence(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"left": "left", "start": "enter"}, true)

	var results []bool
	for _, msg := range []string{"LEFT", "jump", "Start"} {
		results = append(results, p.Handle(msg, true))
	}

	assert.Equal(t, []bool{true, false, true}, results)
	queued, _ := q.snapshot()
	assert.Equal(t, []emulator.ActionKey{"left", "enter"}, queued)
}

func TestProcessor_ToggleBetweenMessages(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"left": "left", "start": "enter"}, true)
	sw := control.NewSwitch(true, discardLogger())

	assert.True(t, p.Handle("LEFT", sw.IsEnabled()))
	sw.Toggle()
	assert.False(t, p.Handle("jump", sw.IsEnabled()))
	assert.False(t, p.Handle("Start", sw.IsEnabled()))

	queued, _ := q.snapshot()
	assert.Equal(t, []emulator.ActionKey{"left"}, queued)
}

func TestProcessor_QueueErrors(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"up": "up"}, true)

	q.enqueueErr = dispatch.ErrNotRunning
	assert.False(t, p.Handle("up", true))

	q.enqueueErr = nil
	q.submitErr = errors.New("closed")
	assert.False(t, p.Handle("up", true))
}

func TestProcessor_SetTable(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"up": "up"}, true)

	next, err := NewTable(map[string]string{"jump": "space"}, true)
	require.NoError(t, err)
	p.SetTable(next)

	assert.Same(t, next, p.Table())
	assert.False(t, p.Handle("up", true))
	assert.True(t, p.Handle("jump", true))

	queued, _ := q.snapshot()
	assert.Equal(t, []emulator.ActionKey{"space"}, queued)
}

func TestProcessor_ConcurrentHandlers(t *testing.T) {
	p, q := newTestProcessor(t, map[string]string{"up": "up", "down": "down"}, true)

	const perGoroutine = 100
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := "up"
			if i%2 == 1 {
				msg = "DOWN"
			}
			for j := 0; j < perGoroutine; j++ {
				p.Handle(msg, true)
			}
		}(i)
	}
	wg.Wait()

	queued, submits := q.snapshot()
	assert.Len(t, queued, 8*perGoroutine)
	assert.Equal(t, 8*perGoroutine, submits)
}

func TestProcessor_WithPool(t *testing.T) {
	rec := emulator.NewRecorder()
	pool := dispatch.NewPool(rec,
		dispatch.WithLogger(discardLogger()),
		dispatch.WithWorkerCount(1),
		dispatch.WithKeypressDuration(0),
		dispatch.WithKeypressDelay(0),
	)
	require.NoError(t, pool.Start())
	defer func() { _ = pool.Stop(context.Background()) }()

	table, err := NewTable(map[string]string{"left": "left", "start": "enter"}, true)
	require.NoError(t, err)
	p := NewProcessor(table, pool, discardLogger())

	for _, msg := range []string{"LEFT", "jump", "Start"} {
		p.Handle(msg, true)
	}

	require.Eventually(t, func() bool { return pool.Stats().Succeeded == 2 },
		5*time.Second, 5*time.Millisecond)
	assert.Equal(t, []emulator.ActionKey{"left", "enter"}, rec.Released())
}
