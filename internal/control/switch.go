// Package control holds the runtime switch that pauses and resumes chat
// command processing without touching the chat connection.
package control

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Switch is a boolean flag shared between the hotkey listener, which
// writes it, and the message path, which reads it once per message.
// All methods are safe for concurrent use; the last write wins.
type Switch struct {
	enabled atomic.Bool
	logger  *slog.Logger

	mu        sync.RWMutex
	observers []func(enabled bool)
}

// NewSwitch creates a switch in the given initial state.
func NewSwitch(enabled bool, logger *slog.Logger) *Switch {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Switch{logger: logger}
	s.enabled.Store(enabled)
	return s
}

// IsEnabled reports whether commands are currently processed.
func (s *Switch) IsEnabled() bool {
	return s.enabled.Load()
}

// Toggle flips the switch and returns the new state.
func (s *Switch) Toggle() bool {
	for {
		old := s.enabled.Load()
		if s.enabled.CompareAndSwap(old, !old) {
			s.changed(!old)
			return !old
		}
	}
}

// Set stores enabled. Observers are only notified on a change.
func (s *Switch) Set(enabled bool) {
	if s.enabled.Swap(enabled) != enabled {
		s.changed(enabled)
	}
}

// OnChange registers fn to be called after every state change, on the
// goroutine that made the change.
func (s *Switch) OnChange(fn func(enabled bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Switch) changed(enabled bool) {
	s.logger.Info("twitch plays commands "+stateName(enabled), "enabled", enabled)

	s.mu.RLock()
	observers := make([]func(bool), len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(enabled)
	}
}

// String returns "enabled" or "disabled".
func (s *Switch) String() string {
	return stateName(s.IsEnabled())
}

func stateName(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
