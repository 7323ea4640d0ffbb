package leaderboard

import (
	"context"

	domain "clubdash/internal/domain/leaderboard"
)

// Store persists leaderboard snapshots.
type Store interface {
	// SaveSnapshot stores a snapshot and its ranks atomically.
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error

	// LatestSnapshot returns the most recent snapshot for metric.
	// POST: ok is false when none exists
	LatestSnapshot(ctx context.Context, metric string) (snap domain.Snapshot, ok bool, err error)
}
