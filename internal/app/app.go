// Package app wires chat, the command pipeline, the control switch and the
// global hotkey into one running bot, and manages its lifecycle.
package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dshills/twitchplays/internal/chat"
	"github.com/dshills/twitchplays/internal/command"
	"github.com/dshills/twitchplays/internal/config"
	"github.com/dshills/twitchplays/internal/control"
	"github.com/dshills/twitchplays/internal/dispatch"
	"github.com/dshills/twitchplays/internal/emulator"
	"github.com/dshills/twitchplays/internal/hotkey"
)

// Session is a running chat connection.
type Session interface {
	Run(ctx context.Context) error
	chat.Replier
}

// Runner is a background component bound to the run context.
type Runner interface {
	Run(ctx context.Context) error
}

// SessionFactory opens a chat session delivering messages to handler.
type SessionFactory func(cfg chat.Config, handler chat.Handler, logger *slog.Logger) (Session, error)

// HotkeyFactory binds spec to onPress.
type HotkeyFactory func(spec string, onPress func(), logger *slog.Logger) (Runner, error)

// WatcherFactory calls onChange whenever the config file at path changes.
type WatcherFactory func(path string, onChange func(), logger *slog.Logger) (Runner, error)

// Options configures the application.
type Options struct {
	// Config is the loaded configuration. Required.
	Config *config.Config

	// Logger is the root logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Emulator overrides the backend named in the config.
	Emulator emulator.Emulator

	// NewSession, NewHotkey and NewWatcher override the real
	// implementations. Nil uses the defaults.
	NewSession SessionFactory
	NewHotkey  HotkeyFactory
	NewWatcher WatcherFactory

	// RegisterHotkey grabs the toggle hotkey from the OS for the default
	// HotkeyFactory. Nil leaves the hotkey unavailable.
	RegisterHotkey hotkey.Registrar

	// ShutdownTimeout bounds how long Run waits for in-flight inputs.
	ShutdownTimeout time.Duration
}

// Application is the running bot.
type Application struct {
	cfg    *config.Config
	logger *slog.Logger

	emu       emulator.Emulator
	pool      *dispatch.Pool
	processor *command.Processor
	control   *control.Switch
	session   Session
	hotkey    Runner
	watcher   Runner
	metrics   *Metrics

	shutdownTimeout time.Duration
	running         atomic.Bool
	opts            Options
}

// New creates an Application. Nothing runs until Run is called.
func New(opts Options) (*Application, error) {
	if opts.Config == nil {
		return nil, ErrNoConfig
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.NewSession == nil {
		opts.NewSession = defaultSession
	}
	if opts.NewHotkey == nil {
		opts.NewHotkey = listenerFactory(opts.RegisterHotkey)
	}
	if opts.NewWatcher == nil {
		opts.NewWatcher = defaultWatcher
	}

	app := &Application{
		cfg:             opts.Config,
		logger:          opts.Logger,
		metrics:         NewMetrics(),
		shutdownTimeout: opts.ShutdownTimeout,
		opts:            opts,
	}

	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the configuration the application was built with.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Control returns the switch gating command processing.
func (app *Application) Control() *control.Switch {
	return app.control
}

// Processor returns the command processor.
func (app *Application) Processor() *command.Processor {
	return app.processor
}

// Pool returns the dispatch pool.
func (app *Application) Pool() *dispatch.Pool {
	return app.pool
}

// Metrics returns the run metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// IsRunning returns true if Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
