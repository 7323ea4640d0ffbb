package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/member"
)

// TestQueryGetLeaderboard_ComparesWithLatestSnapshot checks rank movement against the stored snapshot.
func TestQueryGetLeaderboard_ComparesWithLatestSnapshot(t *testing.T) {
	taken := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	deps := GetLeaderboardDeps{
		Members: &mockMembers{members: []member.Profile{
			{ID: "a", Name: "Aroha", Status: member.StatusActive, Stats: member.Stats{ThisMonthSessions: 4}},
			{ID: "b", Name: "Ben", Status: member.StatusActive, Stats: member.Stats{ThisMonthSessions: 12}},
			{ID: "c", Name: "Chen", Status: member.StatusActive, Stats: member.Stats{ThisMonthSessions: 9}},
			{ID: "z", Name: "Zed", Status: member.StatusArchived, Stats: member.Stats{ThisMonthSessions: 99}},
		}},
		Snapshots: &mockSnapshots{latest: map[string]leaderboard.Snapshot{
			leaderboard.MetricSessions: {ID: "s1", Metric: leaderboard.MetricSessions, TakenAt: taken, Ranks: map[string]int{"a": 1, "b": 2}},
		}},
	}

	res, err := QueryGetLeaderboard(context.Background(), GetLeaderboardQuery{Metric: leaderboard.MetricSessions}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ComparedTo.Equal(taken) {
		t.Errorf("ComparedTo = %v, want %v", res.ComparedTo, taken)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("entries=%d want 3 (archived excluded)", len(res.Entries))
	}
	b, c, a := res.Entries[0], res.Entries[1], res.Entries[2]
	if b.MemberID != "b" || b.RankChange() != 1 {
		t.Errorf("first = %+v, want b up one", b)
	}
	if c.MemberID != "c" || c.PreviousRank != 0 || c.RankChange() != 0 {
		t.Errorf("second = %+v, want c unranked before", c)
	}
	if a.MemberID != "a" || a.RankChange() != -2 {
		t.Errorf("third = %+v, want a down two", a)
	}

	top, err := QueryGetLeaderboard(context.Background(), GetLeaderboardQuery{Metric: leaderboard.MetricSessions, Limit: 1}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top.Entries) != 1 {
		t.Errorf("limited entries = %d", len(top.Entries))
	}
}

// TestQueryGetLeaderboard_NoSnapshot leaves previous ranks unknown.
func TestQueryGetLeaderboard_NoSnapshot(t *testing.T) {
	deps := GetLeaderboardDeps{
		Members:   &mockMembers{members: []member.Profile{{ID: "a", Status: member.StatusActive}}},
		Snapshots: &mockSnapshots{},
	}
	res, err := QueryGetLeaderboard(context.Background(), GetLeaderboardQuery{Metric: leaderboard.MetricStreak}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ComparedTo.IsZero() || res.Entries[0].PreviousRank != 0 {
		t.Errorf("res = %+v", res)
	}
}

// TestQueryGetLeaderboard_InvalidMetric rejects unknown metrics.
func TestQueryGetLeaderboard_InvalidMetric(t *testing.T) {
	_, err := QueryGetLeaderboard(context.Background(), GetLeaderboardQuery{Metric: "pushups"}, GetLeaderboardDeps{Members: &mockMembers{}, Snapshots: &mockSnapshots{}})
	if !errors.Is(err, leaderboard.ErrInvalidMetric) {
		t.Errorf("err = %v, want ErrInvalidMetric", err)
	}
}

// TestQueryGetDeadLetters clamps the limit and never returns nil.
func TestQueryGetDeadLetters(t *testing.T) {
	store := &mockDeadLetters{}
	got, err := QueryGetDeadLetters(context.Background(), 0, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got = %v, want empty slice", got)
	}
	if store.lastLimit != 100 {
		t.Errorf("limit = %d, want 100", store.lastLimit)
	}
}
