package projections

import (
	"context"

	"clubdash/internal/domain/outbox"
)

// QueryGetDeadLetters lists outbox entries that will not be retried, for
// operators to inspect.
func QueryGetDeadLetters(ctx context.Context, limit int, store DeadLetterLister) ([]outbox.Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := store.ListDead(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []outbox.Entry{}
	}
	return entries, nil
}
