package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts what happened to chat messages during one run.
type Metrics struct {
	messages       atomic.Uint64
	echoes         atomic.Uint64
	matched        atomic.Uint64
	missed         atomic.Uint64
	droppedOff     atomic.Uint64
	botCommands    atomic.Uint64
	toggles        atomic.Uint64
	reloads        atomic.Uint64
	reloadFailures atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordMessage counts a received chat message.
func (m *Metrics) RecordMessage() { m.messages.Add(1) }

// RecordEcho counts a message the bot sent itself.
func (m *Metrics) RecordEcho() { m.echoes.Add(1) }

// RecordMatch counts a message that queued an input.
func (m *Metrics) RecordMatch() { m.matched.Add(1) }

// RecordMiss counts a message that matched no command.
func (m *Metrics) RecordMiss() { m.missed.Add(1) }

// RecordDisabled counts a message dropped while commands were off.
func (m *Metrics) RecordDisabled() { m.droppedOff.Add(1) }

// RecordBotCommand counts a prefixed bot command.
func (m *Metrics) RecordBotCommand() { m.botCommands.Add(1) }

// RecordToggle counts a control switch flip.
func (m *Metrics) RecordToggle() { m.toggles.Add(1) }

// RecordReload counts a commandset reload and whether it worked.
func (m *Metrics) RecordReload(ok bool) {
	if ok {
		m.reloads.Add(1)
		return
	}
	m.reloadFailures.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		Messages:       m.messages.Load(),
		Echoes:         m.echoes.Load(),
		Matched:        m.matched.Load(),
		Missed:         m.missed.Load(),
		Disabled:       m.droppedOff.Load(),
		BotCommands:    m.botCommands.Load(),
		Toggles:        m.toggles.Load(),
		Reloads:        m.reloads.Load(),
		ReloadFailures: m.reloadFailures.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	Messages       uint64
	Echoes         uint64
	Matched        uint64
	Missed         uint64
	Disabled       uint64
	BotCommands    uint64
	Toggles        uint64
	Reloads        uint64
	ReloadFailures uint64
}

// MatchRate returns the share of non-echo messages that queued an input.
func (s MetricsSnapshot) MatchRate() float64 {
	seen := s.Messages - s.Echoes
	if seen == 0 {
		return 0
	}
	return float64(s.Matched) / float64(seen)
}

// LogAttrs returns the snapshot as slog key/value pairs.
func (s MetricsSnapshot) LogAttrs() []any {
	return []any{
		"uptime", s.Uptime.Round(time.Second),
		"messages", s.Messages,
		"echoes", s.Echoes,
		"matched", s.Matched,
		"missed", s.Missed,
		"dropped_while_disabled", s.Disabled,
		"bot_commands", s.BotCommands,
		"toggles", s.Toggles,
		"reloads", s.Reloads,
		"reload_failures", s.ReloadFailures,
	}
}
