package app

import (
	"log/slog"

	"github.com/dshills/twitchplays/internal/chat"
	"github.com/dshills/twitchplays/internal/command"
	"github.com/dshills/twitchplays/internal/config/watcher"
	"github.com/dshills/twitchplays/internal/control"
	"github.com/dshills/twitchplays/internal/dispatch"
	"github.com/dshills/twitchplays/internal/emulator"
	"github.com/dshills/twitchplays/internal/hotkey"
	"github.com/dshills/twitchplays/internal/logging"
)

// bootstrapper builds components in dependency order.
type bootstrapper struct {
	app  *Application
	opts Options
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{app: app, opts: opts}
}

func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"emulator", b.initEmulator},
		{"dispatch pool", b.initPool},
		{"command table", b.initProcessor},
		{"control switch", b.initControl},
		{"chat", b.initSession},
		{"hotkey", b.initHotkey},
		{"config watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return &InitError{Component: step.name, Err: err}
		}
	}
	return nil
}

func (b *bootstrapper) logger(component string) *slog.Logger {
	return logging.WithComponent(b.app.logger, component)
}

func (b *bootstrapper) initEmulator() error {
	if b.opts.Emulator != nil {
		b.app.emu = b.opts.Emulator
		return nil
	}
	emu, err := emulator.New(b.app.cfg.Emulator.Backend, b.logger("emulator"))
	if err != nil {
		return err
	}
	b.app.emu = emu
	return nil
}

func (b *bootstrapper) initPool() error {
	cfg := b.app.cfg.Bot
	b.app.pool = dispatch.NewPool(b.app.emu,
		dispatch.WithWorkerCount(cfg.InputThreads),
		dispatch.WithKeypressDuration(cfg.KeypressDuration),
		dispatch.WithKeypressDelay(cfg.KeypressDelay),
		dispatch.WithLogger(b.logger("dispatch")),
	)
	return nil
}

func (b *bootstrapper) initProcessor() error {
	table, err := command.NewTable(b.app.cfg.Keys, b.app.cfg.Bot.CaseInsensitive)
	if err != nil {
		return err
	}
	for _, key := range emulator.UnknownKeys(table.Actions()) {
		b.app.logger.Warn("key name not recognized by the emulator", "key", key.String())
	}
	b.app.processor = command.NewProcessor(table, b.app.pool, b.logger("command"))
	return nil
}

func (b *bootstrapper) initControl() error {
	b.app.control = control.NewSwitch(true, b.logger("control"))
	b.app.control.OnChange(func(bool) { b.app.metrics.RecordToggle() })
	return nil
}

func (b *bootstrapper) initSession() error {
	tw := b.app.cfg.Twitch
	session, err := b.opts.NewSession(chat.Config{
		Username: tw.Username,
		Token:    tw.Token,
		Channel:  tw.ChannelToJoin,
	}, b.app.OnMessage, b.logger("chat"))
	if err != nil {
		return err
	}
	b.app.session = session
	return nil
}

func (b *bootstrapper) initHotkey() error {
	runner, err := b.opts.NewHotkey(b.app.cfg.Hotkeys.ToggleAllowTwitchplaysCommands,
		func() { b.app.control.Toggle() }, b.logger("hotkey"))
	if err != nil {
		return err
	}
	b.app.hotkey = runner
	return nil
}

func (b *bootstrapper) initWatcher() error {
	if !b.app.cfg.Bot.ReloadCommands || b.app.cfg.Path == "" {
		return nil
	}
	runner, err := b.opts.NewWatcher(b.app.cfg.Path, b.app.ReloadCommands, b.logger("watcher"))
	if err != nil {
		return err
	}
	b.app.watcher = runner
	return nil
}

func defaultSession(cfg chat.Config, handler chat.Handler, logger *slog.Logger) (Session, error) {
	return chat.NewTwitchClient(cfg, handler, logger)
}

// listenerFactory builds hotkey listeners that register through register.
func listenerFactory(register hotkey.Registrar) HotkeyFactory {
	return func(spec string, onPress func(), logger *slog.Logger) (Runner, error) {
		binding, err := hotkey.Parse(spec)
		if err != nil {
			return nil, err
		}
		return hotkey.NewListener(binding, onPress, register, logger), nil
	}
}

func defaultWatcher(path string, onChange func(), logger *slog.Logger) (Runner, error) {
	return watcher.New(path, func(watcher.Event) { onChange() }, watcher.WithLogger(logger))
}
