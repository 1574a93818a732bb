// Package robotgo registers the "robotgo" emulator backend, which sends
// key events through github.com/go-vgo/robotgo. Import it for its side
// effect:
//
//	import _ "github.com/dshills/twitchplays/internal/emulator/robotgo"
package robotgo

import (
	"log/slog"

	"github.com/go-vgo/robotgo"

	"github.com/dshills/twitchplays/internal/emulator"
)

// Backend presses keys with robotgo.KeyToggle.
type Backend struct {
	logger *slog.Logger
	toggle func(key string, args ...interface{}) error
}

// New creates a robotgo backend.
func New(logger *slog.Logger) *Backend {
	return &Backend{logger: logger, toggle: robotgo.KeyToggle}
}

// PressDown holds the key down.
func (b *Backend) PressDown(key emulator.ActionKey) error {
	return b.press(emulator.OpPressDown, key, "down")
}

// PressUp releases the key.
func (b *Backend) PressUp(key emulator.ActionKey) error {
	return b.press(emulator.OpPressUp, key, "up")
}

func (b *Backend) press(op string, key emulator.ActionKey, state string) error {
	name, ok := emulator.Canonical(key)
	if !ok {
		return emulator.NewEmulationError(op, key, emulator.ErrUnknownKey)
	}
	if err := b.toggle(name, state); err != nil {
		return emulator.NewEmulationError(op, key, err)
	}
	b.logger.Debug("robotgo key toggled", "key", name, "state", state)
	return nil
}

func init() {
	emulator.Register(emulator.BackendRobotgo, func(logger *slog.Logger) (emulator.Emulator, error) {
		return New(logger), nil
	})
}
