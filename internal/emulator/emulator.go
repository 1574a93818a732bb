// Package emulator defines the key emulation capability driven by the
// dispatch pool, and the registry of platform backends that implement it.
//
// Backends register themselves by name from their own packages (see
// internal/emulator/robotgo and internal/emulator/keybd). The process picks
// exactly one backend at startup with New; "auto" resolves to the backend
// preferred on the host operating system.
package emulator

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
)

// Backend names.
const (
	BackendAuto    = "auto"
	BackendRobotgo = "robotgo"
	BackendKeybd   = "keybd"
	BackendLog     = "log"
)

// ActionKey is an opaque input identifier, such as a key name, understood
// by the selected backend.
type ActionKey string

// String returns the key name.
func (k ActionKey) String() string {
	return string(k)
}

// Emulator performs the two halves of a timed key press. The caller owns
// the timing between PressDown and PressUp.
type Emulator interface {
	// PressDown holds the key down.
	PressDown(key ActionKey) error

	// PressUp releases the key.
	PressUp(key ActionKey) error
}

// Factory creates a backend instance.
type Factory func(logger *slog.Logger) (Emulator, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available by name. It panics if the name is
// already registered or the factory is nil.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("emulator: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("emulator: Register called twice for backend " + name)
	}
	registry[name] = factory
}

// Backends returns the sorted names of registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultBackend returns the backend preferred on the host platform.
// Windows games commonly read scan codes, which keybd sends; everywhere
// else robotgo is used.
func DefaultBackend() string {
	if runtime.GOOS == "windows" {
		return BackendKeybd
	}
	return BackendRobotgo
}

// New creates the named backend. An empty name or "auto" selects
// DefaultBackend.
func New(name string, logger *slog.Logger) (Emulator, error) {
	if name == "" || name == BackendAuto {
		name = DefaultBackend()
	}
	if logger == nil {
		logger = slog.Default()
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, Backends())
	}

	emu, err := factory(logger.With("backend", name))
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", name, err)
	}
	return emu, nil
}

func init() {
	Register(BackendLog, func(logger *slog.Logger) (Emulator, error) {
		return NewLogEmulator(logger), nil
	})
}
