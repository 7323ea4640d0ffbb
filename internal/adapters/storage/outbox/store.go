package outbox

import (
	"context"
	"time"

	domain "clubdash/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// Save persists an outbox entry (insert or update).
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListDue returns pending or retrying entries whose next attempt is at or before now.
	// PRE: limit > 0
	// POST: up to limit entries, oldest first
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)

	// ListDead returns entries that exhausted their attempts.
	// PRE: limit > 0
	ListDead(ctx context.Context, limit int) ([]domain.Entry, error)
}
