package booking

import (
	"context"
	"database/sql"
	"fmt"

	"clubdash/internal/adapters/storage"
	outboxStore "clubdash/internal/adapters/storage/outbox"
	domain "clubdash/internal/domain/booking"
	outboxDomain "clubdash/internal/domain/outbox"
)

const bookingColumns = "id, class_id, class_date, user_id, status, requested_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new booking store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListByOccurrence returns every booking of one occurrence.
// PRE: classID and date are non-empty
// POST: rows ordered by request time, then insertion order
func (s *SQLiteStore) ListByOccurrence(ctx context.Context, classID, date string) ([]domain.Booking, error) {
	return s.queryBookings(ctx,
		"SELECT "+bookingColumns+" FROM booking WHERE class_id = ? AND class_date = ? ORDER BY requested_at, rowid",
		classID, date)
}

// ListByDateRange returns bookings for every class between from and to inclusive.
// PRE: from and to are YYYY-MM-DD
func (s *SQLiteStore) ListByDateRange(ctx context.Context, from, to string) ([]domain.Booking, error) {
	return s.queryBookings(ctx,
		"SELECT "+bookingColumns+" FROM booking WHERE class_date BETWEEN ? AND ? ORDER BY class_date, requested_at, rowid",
		from, to)
}

// ListByUser returns one member's bookings between from and to inclusive.
// PRE: userID is non-empty; from and to are YYYY-MM-DD
func (s *SQLiteStore) ListByUser(ctx context.Context, userID, from, to string) ([]domain.Booking, error) {
	return s.queryBookings(ctx,
		"SELECT "+bookingColumns+" FROM booking WHERE user_id = ? AND class_date BETWEEN ? AND ? ORDER BY class_date, requested_at",
		userID, from, to)
}

// Commit upserts bookings and inserts outbox entries atomically.
// PRE: bookings have been validated; the caller holds the occurrence lock
// POST: either every row is written or none is
func (s *SQLiteStore) Commit(ctx context.Context, bookings []domain.Booking, effects []outboxDomain.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking commit: %w", err)
	}
	defer tx.Rollback()

	for _, b := range bookings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO booking (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET status=excluded.status, requested_at=excluded.requested_at, updated_at=excluded.updated_at`,
			b.ID, b.ClassID, b.Date, b.UserID, b.Status, storage.FormatTime(b.RequestedAt), storage.FormatTime(b.UpdatedAt))
		if err != nil {
			return fmt.Errorf("save booking %s: %w", b.ID, err)
		}
	}
	for _, e := range effects {
		if err := outboxStore.Insert(ctx, tx, e); err != nil {
			return fmt.Errorf("enqueue %s: %w", e.Kind, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func scanBooking(rows *sql.Rows) (domain.Booking, error) {
	var b domain.Booking
	var requestedAt, updatedAt string
	if err := rows.Scan(&b.ID, &b.ClassID, &b.Date, &b.UserID, &b.Status, &requestedAt, &updatedAt); err != nil {
		return domain.Booking{}, err
	}
	var err error
	if b.RequestedAt, err = storage.ParseTime(requestedAt); err != nil {
		return domain.Booking{}, fmt.Errorf("booking %s requested_at: %w", b.ID, err)
	}
	if b.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Booking{}, fmt.Errorf("booking %s updated_at: %w", b.ID, err)
	}
	return b, nil
}
