package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/twitchplays/internal/emulator"
)

// PendingAction is one queued key press awaiting a worker.
type PendingAction struct {
	// ID correlates the queue and execution log lines of one action.
	ID uuid.UUID

	// Key is the input to press.
	Key emulator.ActionKey

	// QueuedAt is when the action was created.
	QueuedAt time.Time
}

// NewPendingAction creates a PendingAction for key.
func NewPendingAction(key emulator.ActionKey) PendingAction {
	return PendingAction{
		ID:       uuid.New(),
		Key:      key,
		QueuedAt: time.Now(),
	}
}
