package dispatch

import (
	"runtime/debug"
	"time"

	"github.com/dshills/twitchplays/internal/emulator"
)

// Result is the outcome of one press cycle.
type Result struct {
	// Success is true if both halves of the press completed.
	Success bool

	// Error is the emulation error, if any.
	Error error

	// Panicked is true if the backend panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is the wall-clock time of the cycle including the delay.
	Duration time.Duration
}

// PanicHandler is called when a backend panics during a press cycle.
type PanicHandler func(action PendingAction, panicValue any, stack []byte)

// Executor runs a single press cycle with panic recovery and timing.
type Executor struct {
	emu          emulator.Emulator
	duration     time.Duration
	delay        time.Duration
	sleep        func(time.Duration)
	panicHandler PanicHandler
}

// NewExecutor creates an executor that holds each key for duration and
// then waits delay before returning.
func NewExecutor(emu emulator.Emulator, duration, delay time.Duration, panicHandler PanicHandler) *Executor {
	return &Executor{
		emu:          emu,
		duration:     duration,
		delay:        delay,
		sleep:        time.Sleep,
		panicHandler: panicHandler,
	}
}

// Execute presses and releases action.Key. A failed PressDown skips
// PressUp; the delay is honoured either way so a failing key cannot make
// the worker spin.
func (e *Executor) Execute(action PendingAction) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack

			if e.panicHandler != nil {
				func() {
					defer func() { _ = recover() }()
					e.panicHandler(action, r, stack)
				}()
			}
		}
	}()

	if err := e.emu.PressDown(action.Key); err != nil {
		e.sleep(e.delay)
		result.Error = err
		return result
	}

	e.sleep(e.duration)
	err := e.emu.PressUp(action.Key)
	e.sleep(e.delay)

	if err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}
