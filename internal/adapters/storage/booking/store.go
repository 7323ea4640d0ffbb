package booking

import (
	"context"

	domain "clubdash/internal/domain/booking"
	outboxDomain "clubdash/internal/domain/outbox"
)

// Store persists bookings.
type Store interface {
	// ListByOccurrence returns every booking of one occurrence in request order.
	ListByOccurrence(ctx context.Context, classID, date string) ([]domain.Booking, error)

	// ListByDateRange returns bookings with from <= date <= to.
	ListByDateRange(ctx context.Context, from, to string) ([]domain.Booking, error)

	// ListByUser returns a member's bookings with from <= date <= to.
	ListByUser(ctx context.Context, userID, from, to string) ([]domain.Booking, error)

	// Commit upserts bookings and inserts outbox entries in one transaction.
	// PRE: bookings have been validated
	// POST: either every row is written or none is
	Commit(ctx context.Context, bookings []domain.Booking, effects []outboxDomain.Entry) error
}
