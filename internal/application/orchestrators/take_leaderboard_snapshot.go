package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	memberStore "clubdash/internal/adapters/storage/member"
	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/member"
)

// MemberLister lists member profiles.
type MemberLister interface {
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Profile, error)
}

// SnapshotStore reads and writes leaderboard snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap leaderboard.Snapshot) error
	LatestSnapshot(ctx context.Context, metric string) (leaderboard.Snapshot, bool, error)
}

// TakeSnapshotDeps holds dependencies for TakeLeaderboardSnapshot.
type TakeSnapshotDeps struct {
	Members    MemberLister
	Snapshots  SnapshotStore
	Now        func() time.Time
	GenerateID func() string
}

// ExecuteTakeLeaderboardSnapshot stores the current ranks for metric so the
// next leaderboard can show how members moved.
// PRE: metric is one of leaderboard.ValidMetrics
// POST: the stored snapshot holds one rank per active member
func ExecuteTakeLeaderboardSnapshot(ctx context.Context, metric string, deps TakeSnapshotDeps) (leaderboard.Snapshot, error) {
	if !leaderboard.IsValidMetric(metric) {
		return leaderboard.Snapshot{}, leaderboard.ErrInvalidMetric
	}
	members, err := deps.Members.List(ctx, memberStore.ListFilter{Status: member.StatusActive})
	if err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("list members: %w", err)
	}

	var previous map[string]int
	if prev, ok, err := deps.Snapshots.LatestSnapshot(ctx, metric); err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("load previous snapshot: %w", err)
	} else if ok {
		previous = prev.Ranks
	}

	entries, err := leaderboard.Rank(members, metric, previous)
	if err != nil {
		return leaderboard.Snapshot{}, err
	}
	snap := leaderboard.NewSnapshot(deps.GenerateID(), metric, entries, deps.Now())
	if err := snap.Validate(); err != nil {
		return leaderboard.Snapshot{}, err
	}
	if err := deps.Snapshots.SaveSnapshot(ctx, snap); err != nil {
		return leaderboard.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	slog.Info("leaderboard_snapshot_taken", "snapshot_id", snap.ID, "metric", metric, "members", len(snap.Ranks))
	return snap, nil
}
