package command

import (
	"log/slog"
	"sync/atomic"

	"github.com/dshills/twitchplays/internal/dispatch"
)

// Queue is the part of the dispatch pool the processor feeds.
type Queue interface {
	// Enqueue appends an action to the dispatch queue.
	Enqueue(action dispatch.PendingAction) error

	// Submit asks the pool to run one queued action.
	Submit() error
}

// Processor matches messages against a Table and queues matched actions.
// It is safe for concurrent use.
type Processor struct {
	table  atomic.Pointer[Table]
	queue  Queue
	logger *slog.Logger
}

// NewProcessor creates a processor over table feeding queue.
func NewProcessor(table *Table, queue Queue, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{queue: queue, logger: logger}
	p.table.Store(table)
	return p
}

// Table returns the table currently used for matching.
func (p *Processor) Table() *Table {
	return p.table.Load()
}

// SetTable replaces the table. Messages already being handled finish with
// the table they loaded.
func (p *Processor) SetTable(table *Table) {
	p.table.Store(table)
}

// Handle reports whether message was recognized and queued. Disabled
// messages are dropped without a lookup.
func (p *Processor) Handle(message string, enabled bool) bool {
	if !enabled {
		return false
	}

	action, ok := p.table.Load().Lookup(message)
	if !ok {
		p.logger.Debug("no command matched", "message", message)
		return false
	}

	pending := dispatch.NewPendingAction(action)
	if err := p.queue.Enqueue(pending); err != nil {
		p.logger.Warn("input not queued", "key", action.String(), "error", err)
		return false
	}
	if err := p.queue.Submit(); err != nil {
		p.logger.Warn("input queued but not submitted", "key", action.String(), "error", err)
		return false
	}

	p.logger.Info("queueing input", "key", action.String(), "action_id", pending.ID.String())
	return true
}
