package attendance

import (
	"context"

	domain "clubdash/internal/domain/attendance"
)

// Store persists attendance records.
type Store interface {
	// Save upserts the record for (ClassID, Date, UserID); an existing row keeps its ID.
	Save(ctx context.Context, value domain.Record) error
	ListByOccurrence(ctx context.Context, classID, date string) ([]domain.Record, error)
	ListByDateRange(ctx context.Context, from, to string) ([]domain.Record, error)
	ListByUser(ctx context.Context, userID, from, to string) ([]domain.Record, error)
}
