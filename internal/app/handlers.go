package app

import (
	"fmt"
	"strings"

	"github.com/dshills/twitchplays/internal/chat"
	"github.com/dshills/twitchplays/internal/command"
	"github.com/dshills/twitchplays/internal/config"
	"github.com/dshills/twitchplays/internal/emulator"
)

// maxReplyLen is Twitch's per-message limit.
const maxReplyLen = 500

// Bot commands answered in chat, after the configured prefix.
const (
	botCommandCommands = "commands"
	botCommandStatus   = "status"
)

// OnMessage is the chat handler. Echoes of the bot's own lines are dropped,
// bot commands are answered, and everything else goes through the control
// switch to the command processor.
func (app *Application) OnMessage(msg chat.Message) {
	app.metrics.RecordMessage()

	if msg.SelfEcho {
		app.metrics.RecordEcho()
		app.logger.Debug("ignoring message from bot", "text", msg.Text)
		return
	}

	app.logger.Info("message received", "author", msg.Author, "text", msg.Text)

	if app.handleBotCommand(msg.Text) {
		return
	}

	enabled := app.control.IsEnabled()
	if !enabled {
		app.metrics.RecordDisabled()
	}
	switch {
	case app.processor.Handle(msg.Text, enabled):
		app.metrics.RecordMatch()
	case enabled:
		app.metrics.RecordMiss()
	}
}

// handleBotCommand answers "<prefix>commands" and "<prefix>status". It
// reports whether text was one of them.
func (app *Application) handleBotCommand(text string) bool {
	prefix := app.cfg.Bot.Prefix
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(text, prefix)))

	var reply string
	switch name {
	case botCommandCommands:
		reply = app.commandsReply()
	case botCommandStatus:
		reply = app.statusReply()
	default:
		return false
	}

	app.metrics.RecordBotCommand()
	if err := app.session.Say(truncate(reply, maxReplyLen)); err != nil {
		app.logger.Warn("bot reply not sent", "command", name, "error", err)
	}
	return true
}

func (app *Application) commandsReply() string {
	commands := app.processor.Table().Commands()
	if len(commands) == 0 {
		return "No commands configured."
	}
	return "Commands: " + strings.Join(commands, ", ")
}

func (app *Application) statusReply() string {
	state := "disabled"
	if app.control.IsEnabled() {
		state = "enabled"
	}
	stats := app.pool.Stats()
	return fmt.Sprintf("Twitch Plays commands are %s. Queued inputs: %d. Inputs pressed: %d.",
		state, stats.QueueDepth, stats.Succeeded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	// Back up to a rune boundary.
	for cut > 0 && cut < len(s) && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}

// ReloadCommands re-reads [keys] from the config file and swaps the new
// table in. A bad file keeps the current table.
func (app *Application) ReloadCommands() {
	path := app.cfg.Path
	logger := app.logger.With("path", path)

	keys, err := config.LoadKeys(path)
	if err != nil {
		app.metrics.RecordReload(false)
		logger.Error("commandset reload failed, keeping current commands", "error", err)
		return
	}
	table, err := command.NewTable(keys, app.cfg.Bot.CaseInsensitive)
	if err != nil {
		app.metrics.RecordReload(false)
		logger.Error("commandset reload failed, keeping current commands", "error", err)
		return
	}
	if table.Len() == 0 {
		app.metrics.RecordReload(false)
		logger.Error("commandset reload failed, keeping current commands", "error", "no commands configured")
		return
	}

	for _, key := range emulator.UnknownKeys(table.Actions()) {
		logger.Warn("key name not recognized by the emulator", "key", key.String())
	}
	app.processor.SetTable(table)
	app.metrics.RecordReload(true)
	logger.Info("commandset reloaded", "commands", table.Len())
}
