package attendance

import (
	"context"
	"fmt"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/attendance"
)

const recordColumns = "id, class_id, class_date, user_id, status, marked_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an attendance record.
// PRE: record has been validated
// POST: one row per (class, date, member) holds the latest status
func (s *SQLiteStore) Save(ctx context.Context, r domain.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_record (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(class_id, class_date, user_id) DO UPDATE SET status=excluded.status, marked_at=excluded.marked_at`,
		r.ID, r.ClassID, r.Date, r.UserID, r.Status, storage.FormatTime(r.MarkedAt))
	return err
}

// ListByOccurrence returns the records of one occurrence.
func (s *SQLiteStore) ListByOccurrence(ctx context.Context, classID, date string) ([]domain.Record, error) {
	return s.queryRecords(ctx, "SELECT "+recordColumns+" FROM attendance_record WHERE class_id = ? AND class_date = ? ORDER BY user_id", classID, date)
}

// ListByDateRange returns records with from <= date <= to.
// PRE: from and to are YYYY-MM-DD
func (s *SQLiteStore) ListByDateRange(ctx context.Context, from, to string) ([]domain.Record, error) {
	return s.queryRecords(ctx, "SELECT "+recordColumns+" FROM attendance_record WHERE class_date BETWEEN ? AND ? ORDER BY class_date, class_id, user_id", from, to)
}

// ListByUser returns one member's records with from <= date <= to.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID, from, to string) ([]domain.Record, error) {
	return s.queryRecords(ctx, "SELECT "+recordColumns+" FROM attendance_record WHERE user_id = ? AND class_date BETWEEN ? AND ? ORDER BY class_date, class_id", userID, from, to)
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Record
	for rows.Next() {
		var r domain.Record
		var markedAt string
		if err := rows.Scan(&r.ID, &r.ClassID, &r.Date, &r.UserID, &r.Status, &markedAt); err != nil {
			return nil, err
		}
		if r.MarkedAt, err = storage.ParseTime(markedAt); err != nil {
			return nil, fmt.Errorf("attendance %s marked_at: %w", r.ID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
