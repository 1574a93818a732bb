package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/twitchplays/internal/emulator"
)

// Pool executes PendingActions on a fixed number of worker goroutines.
// The queue is unbounded: Enqueue never blocks and never rejects work
// while the pool is running.
type Pool struct {
	// Configuration
	workerCount int
	duration    time.Duration
	delay       time.Duration
	emu         emulator.Emulator
	logger      *slog.Logger

	// State
	mu      sync.Mutex // protects queue, tickets and lifecycle transitions
	cond    *sync.Cond
	queue   []PendingAction
	tickets int // outstanding Submit requests
	running atomic.Bool
	wg      sync.WaitGroup

	// Handlers
	panicHandler PanicHandler

	// Stats
	enqueued    atomic.Uint64
	processed   atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	discarded   atomic.Uint64
	busy        atomic.Int64
	totalTimeNs atomic.Int64
}

// NewPool creates a stopped pool pressing keys through emu.
func NewPool(emu emulator.Emulator, opts ...Option) *Pool {
	p := &Pool{
		workerCount: 1,
		duration:    100 * time.Millisecond,
		delay:       100 * time.Millisecond,
		emu:         emu,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.panicHandler == nil {
		p.panicHandler = p.logPanic
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkerCount sets the number of workers. Values below 1 are ignored.
func WithWorkerCount(count int) Option {
	return func(p *Pool) {
		if count > 0 {
			p.workerCount = count
		}
	}
}

// WithKeypressDuration sets how long each key is held down.
func WithKeypressDuration(d time.Duration) Option {
	return func(p *Pool) {
		if d >= 0 {
			p.duration = d
		}
	}
}

// WithKeypressDelay sets how long a worker waits after releasing a key
// before taking the next action.
func WithKeypressDelay(d time.Duration) Option {
	return func(p *Pool) {
		if d >= 0 {
			p.delay = d
		}
	}
}

// WithLogger sets the pool logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPanicHandler overrides the default panic handler, which logs.
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) {
		p.panicHandler = h
	}
}

// Start launches the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}

	p.queue = nil
	p.tickets = 0
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i + 1)
	}

	p.logger.Debug("pool started", "workers", p.workerCount,
		"keypress_duration", p.duration, "keypress_delay", p.delay)
	return nil
}

// Stop refuses new work, discards queued actions no worker has taken and
// waits for in-flight press cycles to finish or for ctx to end.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}

	p.running.Store(false)
	dropped := len(p.queue)
	p.queue = nil
	p.tickets = 0
	p.cond.Broadcast()
	p.mu.Unlock()

	if dropped > 0 {
		p.discarded.Add(uint64(dropped))
		p.logger.Warn("discarding queued inputs on shutdown", "count", dropped)
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue appends an action to the queue. A worker only takes it once a
// Submit request is outstanding.
func (p *Pool) Enqueue(action PendingAction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.Load() {
		return ErrNotRunning
	}
	p.queue = append(p.queue, action)
	p.enqueued.Add(1)
	if p.tickets > 0 {
		p.cond.Signal()
	}
	return nil
}

// Submit asks one worker to take one action from the queue. When every
// worker is busy the request waits for the next free worker.
func (p *Pool) Submit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.Load() {
		return ErrNotRunning
	}
	p.tickets++
	p.cond.Signal()
	return nil
}

// Dispatch enqueues action and submits one unit of work for it.
func (p *Pool) Dispatch(action PendingAction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.Load() {
		return ErrNotRunning
	}
	p.queue = append(p.queue, action)
	p.enqueued.Add(1)
	p.tickets++
	p.cond.Signal()
	return nil
}

// next blocks until there is both a submitted request and a queued action,
// or the pool stops. The boolean is false when the worker should exit.
func (p *Pool) next() (PendingAction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.running.Load() && (p.tickets == 0 || len(p.queue) == 0) {
		p.cond.Wait()
	}
	if !p.running.Load() {
		return PendingAction{}, false
	}

	action := p.queue[0]
	p.queue[0] = PendingAction{}
	p.queue = p.queue[1:]
	p.tickets--
	return action, true
}

// worker drains the queue until the pool stops.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	executor := NewExecutor(p.emu, p.duration, p.delay, p.panicHandler)

	for {
		action, ok := p.next()
		if !ok {
			return
		}
		p.execute(id, executor, action)
	}
}

// execute runs one press cycle and records its outcome.
func (p *Pool) execute(id int, executor *Executor, action PendingAction) {
	p.busy.Add(1)
	defer p.busy.Add(-1)
	p.processed.Add(1)

	logger := p.logger.With("worker", id, "action_id", action.ID.String(), "key", action.Key.String())
	logger.Info("executing input", "queued_for", time.Since(action.QueuedAt).Round(time.Millisecond))

	result := executor.Execute(action)
	p.totalTimeNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Panicked:
		p.panicked.Add(1)
	case result.Error != nil:
		p.failed.Add(1)
		logger.Error("input failed", "error", result.Error)
	default:
		p.succeeded.Add(1)
		logger.Debug("input done", "took", result.Duration)
	}
}

func (p *Pool) logPanic(action PendingAction, panicValue any, stack []byte) {
	p.logger.Error("input panicked",
		"action_id", action.ID.String(),
		"key", action.Key.String(),
		"panic", panicValue,
		"stack", string(stack))
}

// QueueDepth returns the number of actions waiting for a worker.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// IsRunning returns true if the pool accepts work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// Stats returns pool statistics.
func (p *Pool) Stats() Stats {
	processed := p.processed.Load()
	totalNs := p.totalTimeNs.Load()

	var avgNs int64
	if processed > 0 {
		avgNs = totalNs / int64(processed)
	}

	return Stats{
		Enqueued:      p.enqueued.Load(),
		Processed:     processed,
		Succeeded:     p.succeeded.Load(),
		Failed:        p.failed.Load(),
		Panicked:      p.panicked.Load(),
		Discarded:     p.discarded.Load(),
		QueueDepth:    p.QueueDepth(),
		Busy:          int(p.busy.Load()),
		Workers:       p.workerCount,
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// Stats contains statistics for a Pool.
type Stats struct {
	// Enqueued is the total number of actions added to the queue.
	Enqueued uint64

	// Processed is the number of actions a worker has started.
	Processed uint64

	// Succeeded is the number of complete press cycles.
	Succeeded uint64

	// Failed is the number of cycles that returned an emulation error.
	Failed uint64

	// Panicked is the number of cycles whose backend panicked.
	Panicked uint64

	// Discarded is the number of queued actions dropped by Stop.
	Discarded uint64

	// QueueDepth is the current number of actions waiting for a worker.
	QueueDepth int

	// Busy is the number of workers currently running a cycle.
	Busy int

	// Workers is the configured pool size.
	Workers int

	// TotalDuration is the cumulative time spent in press cycles.
	TotalDuration time.Duration

	// AvgDuration is the average press cycle time.
	AvgDuration time.Duration
}
