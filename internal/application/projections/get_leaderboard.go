package projections

import (
	"context"
	"fmt"
	"time"

	memberStore "clubdash/internal/adapters/storage/member"
	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/member"
)

// GetLeaderboardQuery carries query parameters.
type GetLeaderboardQuery struct {
	Metric string
	Limit  int // 0 returns every member
}

// GetLeaderboardResult carries the query result.
type GetLeaderboardResult struct {
	Metric     string
	Entries    []leaderboard.Entry
	ComparedTo time.Time // when the previous ranks were taken; zero if never
}

// GetLeaderboardDeps holds dependencies for GetLeaderboard.
type GetLeaderboardDeps struct {
	Members   MemberStore
	Snapshots SnapshotReader
}

// QueryGetLeaderboard ranks active members by Metric. Previous ranks come
// from the latest stored snapshot of the same metric.
// PRE: Metric is one of leaderboard.ValidMetrics
func QueryGetLeaderboard(ctx context.Context, query GetLeaderboardQuery, deps GetLeaderboardDeps) (GetLeaderboardResult, error) {
	if !leaderboard.IsValidMetric(query.Metric) {
		return GetLeaderboardResult{}, leaderboard.ErrInvalidMetric
	}
	members, err := deps.Members.List(ctx, memberStore.ListFilter{Status: member.StatusActive})
	if err != nil {
		return GetLeaderboardResult{}, fmt.Errorf("list members: %w", err)
	}
	prev, ok, err := deps.Snapshots.LatestSnapshot(ctx, query.Metric)
	if err != nil {
		return GetLeaderboardResult{}, fmt.Errorf("load snapshot: %w", err)
	}

	result := GetLeaderboardResult{Metric: query.Metric}
	var previous map[string]int
	if ok {
		previous = prev.Ranks
		result.ComparedTo = prev.TakenAt
	}
	entries, err := leaderboard.Rank(members, query.Metric, previous)
	if err != nil {
		return GetLeaderboardResult{}, err
	}
	if query.Limit > 0 && len(entries) > query.Limit {
		entries = entries[:query.Limit]
	}
	result.Entries = entries
	return result, nil
}
