package emulator

import (
	"errors"
	"fmt"
)

// Sentinel errors for the emulator package.
var (
	// ErrUnknownBackend is returned by New for an unregistered backend name.
	ErrUnknownBackend = errors.New("unknown emulator backend")

	// ErrUnknownKey is returned by backends for key names they cannot press.
	ErrUnknownKey = errors.New("unknown key")

	// ErrUnsupported is returned by backends not available on this platform.
	ErrUnsupported = errors.New("backend not supported on this platform")
)

// Emulation operations.
const (
	OpPressDown = "press_down"
	OpPressUp   = "press_up"
)

// EmulationError reports a failed press or release of a key.
type EmulationError struct {
	Op  string    // OpPressDown or OpPressUp
	Key ActionKey // Key being pressed
	Err error     // Underlying error
}

// NewEmulationError creates an EmulationError.
func NewEmulationError(op string, key ActionKey, err error) *EmulationError {
	return &EmulationError{Op: op, Key: key, Err: err}
}

func (e *EmulationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *EmulationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
