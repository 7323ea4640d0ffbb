package projections

import (
	"context"

	memberStore "clubdash/internal/adapters/storage/member"
	"clubdash/internal/domain/attendance"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/member"
	"clubdash/internal/domain/outbox"
	"clubdash/internal/domain/schedule"
)

// TemplateLister lists the class catalog.
type TemplateLister interface {
	List(ctx context.Context) ([]schedule.Template, error)
}

// BookingRangeStore lists bookings between two dates inclusive.
type BookingRangeStore interface {
	ListByDateRange(ctx context.Context, from, to string) ([]booking.Booking, error)
}

// MemberBookingStore lists one member's bookings and the occurrences they sit in.
type MemberBookingStore interface {
	ListByUser(ctx context.Context, userID, from, to string) ([]booking.Booking, error)
	ListByOccurrence(ctx context.Context, classID, date string) ([]booking.Booking, error)
}

// AttendanceRangeStore lists attendance records between two dates inclusive.
type AttendanceRangeStore interface {
	ListByDateRange(ctx context.Context, from, to string) ([]attendance.Record, error)
}

// MemberStore reads member profiles.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Profile, error)
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Profile, error)
}

// SnapshotReader reads the latest leaderboard snapshot.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, metric string) (leaderboard.Snapshot, bool, error)
}

// DeadLetterLister lists outbox entries that ran out of attempts.
type DeadLetterLister interface {
	ListDead(ctx context.Context, limit int) ([]outbox.Entry, error)
}
