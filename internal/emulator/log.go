package emulator

import "log/slog"

// LogEmulator is a dry-run backend that logs presses instead of sending
// them to the operating system.
type LogEmulator struct {
	logger *slog.Logger
}

// NewLogEmulator creates a LogEmulator writing to logger.
func NewLogEmulator(logger *slog.Logger) *LogEmulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmulator{logger: logger}
}

// PressDown logs the key-down half of a press.
func (e *LogEmulator) PressDown(key ActionKey) error {
	if _, ok := Canonical(key); !ok {
		return NewEmulationError(OpPressDown, key, ErrUnknownKey)
	}
	e.logger.Info("key down", "key", key.String())
	return nil
}

// PressUp logs the key-up half of a press.
func (e *LogEmulator) PressUp(key ActionKey) error {
	if _, ok := Canonical(key); !ok {
		return NewEmulationError(OpPressUp, key, ErrUnknownKey)
	}
	e.logger.Info("key up", "key", key.String())
	return nil
}
