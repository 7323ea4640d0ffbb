package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/outbox"
)

const entryColumns = "id, kind, payload, status, attempts, max_attempts, next_attempt, created_at, last_error"

// Execer is satisfied by both storage.SQLDB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLiteStore implements the outbox Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert writes a new entry through ex, letting callers enqueue inside their
// own transaction.
// PRE: e has been validated
// POST: entry is stored, or an error is returned if the ID already exists
func Insert(ctx context.Context, ex Execer, e domain.Entry) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO outbox (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		storage.FormatTime(e.NextAttempt), storage.FormatTime(e.CreatedAt), e.LastError)
	return err
}

// Save persists an outbox entry to the database.
// PRE: entry has been validated
// POST: Entry is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   next_attempt=excluded.next_attempt, last_error=excluded.last_error`,
		e.ID, e.Kind, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		storage.FormatTime(e.NextAttempt), storage.FormatTime(e.CreatedAt), e.LastError)
	return err
}

// ListDue returns entries ready for delivery.
// PRE: limit > 0
// POST: Returns up to limit entries ordered by next_attempt
func (s *SQLiteStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error) {
	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM outbox WHERE status IN (?, ?) AND next_attempt <= ? ORDER BY next_attempt, created_at LIMIT ?`,
		domain.StatusPending, domain.StatusRetry, storage.FormatTime(now), limit)
}

// ListDead returns entries that gave up.
// PRE: limit > 0
// POST: Returns up to limit entries, newest first
func (s *SQLiteStore) ListDead(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM outbox WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		domain.StatusDead, limit)
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var nextAttempt, createdAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
			&nextAttempt, &createdAt, &e.LastError); err != nil {
			return nil, err
		}
		if e.NextAttempt, err = storage.ParseTime(nextAttempt); err != nil {
			return nil, fmt.Errorf("outbox %s next_attempt: %w", e.ID, err)
		}
		if e.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("outbox %s created_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
