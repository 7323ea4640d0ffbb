package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/leaderboard"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new leaderboard snapshot store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SaveSnapshot stores a snapshot header and one row per ranked member.
// PRE: snap has been validated
// POST: snapshot and ranks are written in one transaction
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT INTO leaderboard_snapshot (id, metric, taken_at) VALUES (?, ?, ?)",
		snap.ID, snap.Metric, storage.FormatTime(snap.TakenAt)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	for memberID, rank := range snap.Ranks {
		if _, err := tx.ExecContext(ctx, "INSERT INTO leaderboard_rank (snapshot_id, member_id, rank) VALUES (?, ?, ?)",
			snap.ID, memberID, rank); err != nil {
			return fmt.Errorf("insert rank for %s: %w", memberID, err)
		}
	}
	return tx.Commit()
}

// LatestSnapshot loads the newest snapshot for metric with its ranks.
// PRE: metric is non-empty
// POST: ok is false and err nil when no snapshot exists
func (s *SQLiteStore) LatestSnapshot(ctx context.Context, metric string) (domain.Snapshot, bool, error) {
	snap := domain.Snapshot{Metric: metric, Ranks: map[string]int{}}
	var takenAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, taken_at FROM leaderboard_snapshot WHERE metric = ? ORDER BY taken_at DESC, rowid DESC LIMIT 1", metric,
	).Scan(&snap.ID, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	if snap.TakenAt, err = storage.ParseTime(takenAt); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("snapshot %s taken_at: %w", snap.ID, err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT member_id, rank FROM leaderboard_rank WHERE snapshot_id = ?", snap.ID)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var memberID string
		var rank int
		if err := rows.Scan(&memberID, &rank); err != nil {
			return domain.Snapshot{}, false, err
		}
		snap.Ranks[memberID] = rank
	}
	return snap, true, rows.Err()
}
