package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/twitchplays/internal/emulator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPool(t *testing.T, emu emulator.Emulator, opts ...Option) *Pool {
	t.Helper()
	opts = append([]Option{
		WithLogger(testLogger()),
		WithKeypressDuration(0),
		WithKeypressDelay(0),
	}, opts...)
	p := NewPool(emu, opts...)
	require.NoError(t, p.Start())
	t.Cleanup(func() {
		if p.IsRunning() {
			_ = p.Stop(context.Background())
		}
	})
	return p
}

func waitForStats(t *testing.T, p *Pool, cond func(Stats) bool) Stats {
	t.Helper()
	var s Stats
	require.Eventually(t, func() bool {
		s = p.Stats()
		return cond(s)
	}, 5*time.Second, 5*time.Millisecond)
	return s
}

func TestPool_StartStop(t *testing.T) {
	p := NewPool(emulator.NewRecorder(), WithLogger(testLogger()))

	require.NoError(t, p.Start())
	assert.True(t, p.IsRunning())
	assert.ErrorIs(t, p.Start(), ErrAlreadyRunning)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
	assert.False(t, p.IsRunning())
	assert.ErrorIs(t, p.Stop(ctx), ErrNotRunning)
}

func TestPool_NotRunning(t *testing.T) {
	p := NewPool(emulator.NewRecorder())

	assert.ErrorIs(t, p.Enqueue(NewPendingAction("up")), ErrNotRunning)
	assert.ErrorIs(t, p.Submit(), ErrNotRunning)
	assert.ErrorIs(t, p.Dispatch(NewPendingAction("up")), ErrNotRunning)
	assert.Equal(t, uint64(0), p.Stats().Enqueued)
}

func TestPool_WorkerCountIgnoresInvalid(t *testing.T) {
	p := NewPool(emulator.NewRecorder(), WithWorkerCount(0), WithWorkerCount(-3))
	assert.Equal(t, 1, p.Stats().Workers)
}

func TestPool_DispatchPressesKey(t *testing.T) {
	rec := emulator.NewRecorder()
	p := newTestPool(t, rec)

	require.NoError(t, p.Dispatch(NewPendingAction("left")))

	waitForStats(t, p, func(s Stats) bool { return s.Succeeded == 1 })
	presses := rec.Presses()
	require.Len(t, presses, 2)
	assert.Equal(t, emulator.Press{Op: emulator.OpPressDown, Key: "left", Time: presses[0].Time}, presses[0])
	assert.Equal(t, emulator.OpPressUp, presses[1].Op)
	assert.Equal(t, emulator.ActionKey("left"), presses[1].Key)
}

func TestPool_EnqueueWaitsForSubmit(t *testing.T) {
	rec := emulator.NewRecorder()
	p := newTestPool(t, rec)

	require.NoError(t, p.Enqueue(NewPendingAction("a")))
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, rec.Presses(), "no worker should run before Submit")
	assert.Equal(t, 1, p.QueueDepth())

	require.NoError(t, p.Submit())
	waitForStats(t, p, func(s Stats) bool { return s.Succeeded == 1 })
	assert.Equal(t, 0, p.QueueDepth())
}

func TestPool_SubmitBeforeEnqueue(t *testing.T) {
	rec := emulator.NewRecorder()
	p := newTestPool(t, rec)

	require.NoError(t, p.Submit())
	require.NoError(t, p.Submit())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Enqueue(NewPendingAction("b")))
	require.NoError(t, p.Enqueue(NewPendingAction("c")))

	waitForStats(t, p, func(s Stats) bool { return s.Succeeded == 2 })
	assert.Equal(t, []emulator.ActionKey{"b", "c"}, rec.Released())
}

func TestPool_NoLossNoDuplication(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			rec := emulator.NewRecorder()
			p := newTestPool(t, rec, WithWorkerCount(workers))

			const n = 200
			var wg sync.WaitGroup
			for producer := 0; producer < 4; producer++ {
				wg.Add(1)
				go func(producer int) {
					defer wg.Done()
					for i := 0; i < n/4; i++ {
						key := emulator.ActionKey(fmt.Sprintf("k%d-%d", producer, i))
						assert.NoError(t, p.Dispatch(NewPendingAction(key)))
					}
				}(producer)
			}
			wg.Wait()

			s := waitForStats(t, p, func(s Stats) bool { return s.Succeeded == n })
			assert.Equal(t, uint64(n), s.Enqueued)
			assert.Equal(t, n, rec.Count(emulator.OpPressDown))
			assert.Equal(t, n, rec.Count(emulator.OpPressUp))

			seen := make(map[emulator.ActionKey]int)
			for _, k := range rec.Released() {
				seen[k]++
			}
			assert.Len(t, seen, n)
			for k, c := range seen {
				assert.Equal(t, 1, c, "key %s released %d times", k, c)
			}
		})
	}
}

func TestPool_SingleWorkerKeepsOrder(t *testing.T) {
	rec := emulator.NewRecorder()
	p := newTestPool(t, rec, WithWorkerCount(1))

	keys := []emulator.ActionKey{"up", "up", "down", "left", "right", "a", "b"}
	for _, k := range keys {
		require.NoError(t, p.Dispatch(NewPendingAction(k)))
	}

	waitForStats(t, p, func(s Stats) bool { return s.Succeeded == uint64(len(keys)) })
	assert.Equal(t, keys, rec.Released())
}

func TestPool_CycleTiming(t *testing.T) {
	const (
		duration = 40 * time.Millisecond
		delay    = 30 * time.Millisecond
	)
	rec := emulator.NewRecorder()
	p := newTestPool(t, rec,
		WithWorkerCount(1),
		WithKeypressDuration(duration),
		WithKeypressDelay(delay),
	)

	require.NoError(t, p.Dispatch(NewPendingAction("x")))
	require.NoError(t, p.Dispatch(NewPendingAction("y")))

	s := waitForStats(t, p, func(s Stats) bool { return s.Succeeded == 2 })
	assert.GreaterOrEqual(t, s.AvgDuration, duration+delay)

	presses := rec.Presses()
	require.Len(t, presses, 4)
	assert.GreaterOrEqual(t, presses[1].Time.Sub(presses[0].Time), duration, "key held for keypress_duration")
	assert.GreaterOrEqual(t, presses[2].Time.Sub(presses[1].Time), delay, "worker waits keypress_delay")
}

func TestPool_WorkersOverlap(t *testing.T) {
	const duration = 80 * time.Millisecond
	rec := emulator.NewRecorder()
	p := newTestPool(t, rec, WithWorkerCount(2), WithKeypressDuration(duration))

	start := time.Now()
	require.NoError(t, p.Dispatch(NewPendingAction("a")))
	require.NoError(t, p.Dispatch(NewPendingAction("b")))

	waitForStats(t, p, func(s Stats) bool { return s.Succeeded == 2 })
	assert.Less(t, time.Since(start), 2*duration, "two workers should press concurrently")
}

func TestPool_EmulationErrorDoesNotStopWorker(t *testing.T) {
	rec := emulator.NewRecorder()
	rec.FailDown = func(key emulator.ActionKey) error {
		if key == "bad" {
			return errors.New("device busy")
		}
		return nil
	}
	p := newTestPool(t, rec, WithWorkerCount(1))

	require.NoError(t, p.Dispatch(NewPendingAction("bad")))
	require.NoError(t, p.Dispatch(NewPendingAction("good")))

	s := waitForStats(t, p, func(s Stats) bool { return s.Processed == 2 && s.Busy == 0 })
	assert.Equal(t, uint64(1), s.Failed)
	assert.Equal(t, uint64(1), s.Succeeded)
	assert.Equal(t, []emulator.ActionKey{"good"}, rec.Released())
	assert.Equal(t, 1, rec.Count(emulator.OpPressDown), "failed press-down is not recorded")
}

type panickingEmulator struct{}

func (panickingEmulator) PressDown(emulator.ActionKey) error { panic("boom") }
func (panickingEmulator) PressUp(emulator.ActionKey) error   { return nil }

func TestPool_PanicRecovered(t *testing.T) {
	var mu sync.Mutex
	var panics []any
	p := newTestPool(t, panickingEmulator{}, WithPanicHandler(func(_ PendingAction, v any, stack []byte) {
		mu.Lock()
		defer mu.Unlock()
		panics = append(panics, v)
		assert.NotEmpty(t, stack)
	}))

	require.NoError(t, p.Dispatch(NewPendingAction("a")))
	require.NoError(t, p.Dispatch(NewPendingAction("b")))

	s := waitForStats(t, p, func(s Stats) bool { return s.Panicked == 2 })
	assert.Equal(t, uint64(0), s.Succeeded)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []any{"boom", "boom"}, panics)
}

func TestPool_StopDiscardsQueuedAndFinishesInFlight(t *testing.T) {
	const duration = 60 * time.Millisecond
	rec := emulator.NewRecorder()
	p := NewPool(rec,
		WithLogger(testLogger()),
		WithWorkerCount(1),
		WithKeypressDuration(duration),
		WithKeypressDelay(0),
	)
	require.NoError(t, p.Start())

	for _, k := range []emulator.ActionKey{"first", "second", "third"} {
		require.NoError(t, p.Dispatch(NewPendingAction(k)))
	}
	require.Eventually(t, func() bool { return rec.Count(emulator.OpPressDown) == 1 },
		time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))

	assert.Equal(t, []emulator.ActionKey{"first"}, rec.Released(), "in-flight press completes")
	s := p.Stats()
	assert.Equal(t, uint64(2), s.Discarded)
	assert.Equal(t, uint64(1), s.Succeeded)
	assert.ErrorIs(t, p.Dispatch(NewPendingAction("late")), ErrNotRunning)
}

func TestPool_StopContextExpires(t *testing.T) {
	rec := emulator.NewRecorder()
	p := NewPool(rec,
		WithLogger(testLogger()),
		WithKeypressDuration(300*time.Millisecond),
		WithKeypressDelay(0),
	)
	require.NoError(t, p.Start())
	require.NoError(t, p.Dispatch(NewPendingAction("slow")))
	require.Eventually(t, func() bool { return rec.Count(emulator.OpPressDown) == 1 },
		time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Stop(ctx), context.DeadlineExceeded)

	// The press still runs to completion.
	require.Eventually(t, func() bool { return rec.Count(emulator.OpPressUp) == 1 },
		2*time.Second, 5*time.Millisecond)
}

func TestPool_Restart(t *testing.T) {
	rec := emulator.NewRecorder()
	p := newTestPool(t, rec)
	require.NoError(t, p.Stop(context.Background()))

	require.NoError(t, p.Start())
	require.NoError(t, p.Dispatch(NewPendingAction("z")))
	waitForStats(t, p, func(s Stats) bool { return s.Succeeded == 1 })
}
