package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnavailable is returned by registrars on builds or hosts without
// global hotkey support.
var ErrUnavailable = errors.New("global hotkeys are not available")

// Handle is a registered OS hotkey.
type Handle interface {
	// Pressed receives once per keydown and is closed after Unregister.
	Pressed() <-chan struct{}
	Unregister() error
}

// Registrar grabs a binding from the OS.
type Registrar func(b Binding) (Handle, error)

// Unavailable is the Registrar used when none is configured.
func Unavailable(b Binding) (Handle, error) {
	return nil, fmt.Errorf("%w in this build", ErrUnavailable)
}

// Listener calls onPress each time its binding is pressed.
type Listener struct {
	binding  Binding
	onPress  func()
	register Registrar
	logger   *slog.Logger
}

// NewListener creates a listener for binding. A nil register uses
// Unavailable.
func NewListener(binding Binding, onPress func(), register Registrar, logger *slog.Logger) *Listener {
	if register == nil {
		register = Unavailable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		binding:  binding,
		onPress:  onPress,
		register: register,
		logger:   logger.With("hotkey", binding.String()),
	}
}

// Run registers the binding and dispatches presses until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	h, err := l.register(l.binding)
	if err != nil {
		return fmt.Errorf("register hotkey %q: %w", l.binding.String(), err)
	}
	defer func() {
		if err := h.Unregister(); err != nil {
			l.logger.Warn("hotkey unregister failed", "error", err)
		}
	}()

	l.logger.Info("hotkey registered")

	pressed := h.Pressed()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-pressed:
			if !ok {
				return nil
			}
			l.logger.Debug("hotkey pressed")
			l.onPress()
		}
	}
}
