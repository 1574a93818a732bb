package emulator

import (
	"sync"
	"time"
)

// Press is one recorded call on a Recorder.
type Press struct {
	Op   string
	Key  ActionKey
	Time time.Time
}

// Recorder is an in-memory Emulator that records every call. It is safe
// for concurrent use and is used as a test double across packages.
type Recorder struct {
	mu      sync.Mutex
	presses []Press

	// FailDown, when set, is returned for PressDown of matching keys.
	FailDown func(key ActionKey) error

	// FailUp, when set, is returned for PressUp of matching keys.
	FailUp func(key ActionKey) error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// PressDown records a key-down.
func (r *Recorder) PressDown(key ActionKey) error {
	if r.FailDown != nil {
		if err := r.FailDown(key); err != nil {
			return NewEmulationError(OpPressDown, key, err)
		}
	}
	r.record(OpPressDown, key)
	return nil
}

// PressUp records a key-up.
func (r *Recorder) PressUp(key ActionKey) error {
	if r.FailUp != nil {
		if err := r.FailUp(key); err != nil {
			return NewEmulationError(OpPressUp, key, err)
		}
	}
	r.record(OpPressUp, key)
	return nil
}

func (r *Recorder) record(op string, key ActionKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presses = append(r.presses, Press{Op: op, Key: key, Time: time.Now()})
}

// Presses returns a copy of all recorded calls in call order.
func (r *Recorder) Presses() []Press {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Press, len(r.presses))
	copy(out, r.presses)
	return out
}

// Count returns the number of recorded calls for op.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.presses {
		if p.Op == op {
			n++
		}
	}
	return n
}

// Released returns the keys passed to PressUp in call order.
func (r *Recorder) Released() []ActionKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []ActionKey
	for _, p := range r.presses {
		if p.Op == OpPressUp {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presses = nil
}
