package leaderboard

import (
	"errors"
	"sort"
	"time"

	"clubdash/internal/domain/member"
)

// Metric constants
const (
	MetricSessions        = "sessions"
	MetricStreak          = "streak"
	MetricImprovement     = "improvement"
	MetricCompetitionWins = "competition_wins"
)

// ValidMetrics lists the supported ranking metrics.
var ValidMetrics = []string{MetricSessions, MetricStreak, MetricImprovement, MetricCompetitionWins}

// Domain errors
var (
	ErrInvalidMetric = errors.New("metric must be one of: sessions, streak, improvement, competition_wins")
	ErrEmptyEntries  = errors.New("snapshot must contain at least one entry")
)

// Entry is one ranked member. PreviousRank 0 means no earlier snapshot ranked them.
type Entry struct {
	MemberID     string
	Name         string
	Belt         string
	Score        int
	CurrentRank  int
	PreviousRank int
}

// RankChange returns how many places the member moved up since the previous
// snapshot; negative when they dropped, 0 when unknown.
func (e Entry) RankChange() int {
	if e.PreviousRank == 0 {
		return 0
	}
	return e.PreviousRank - e.CurrentRank
}

// Snapshot freezes the ranks of one metric at a point in time.
type Snapshot struct {
	ID      string
	Metric  string
	TakenAt time.Time
	Ranks   map[string]int // member ID -> rank
}

// Validate checks if the Snapshot has valid data.
// PRE: Snapshot struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Snapshot) Validate() error {
	if !IsValidMetric(s.Metric) {
		return ErrInvalidMetric
	}
	if len(s.Ranks) == 0 {
		return ErrEmptyEntries
	}
	return nil
}

// IsValidMetric checks if metric can be ranked.
func IsValidMetric(metric string) bool {
	for _, m := range ValidMetrics {
		if m == metric {
			return true
		}
	}
	return false
}

// Value returns the figure p is ranked by for metric.
func Value(p member.Profile, metric string) int {
	switch metric {
	case MetricSessions:
		return p.Stats.ThisMonthSessions
	case MetricStreak:
		return p.Stats.Streak
	case MetricImprovement:
		return p.Stats.Improvement
	case MetricCompetitionWins:
		return p.Stats.CompetitionWins
	}
	return 0
}

// Rank sorts members descending by metric and assigns 1-based ranks.
// PRE: metric is valid; previous may be nil
// POST: ties keep input order; PreviousRank is copied from previous, never recomputed
func Rank(members []member.Profile, metric string, previous map[string]int) ([]Entry, error) {
	if !IsValidMetric(metric) {
		return nil, ErrInvalidMetric
	}
	entries := make([]Entry, 0, len(members))
	for _, p := range members {
		entries = append(entries, Entry{
			MemberID:     p.ID,
			Name:         p.Name,
			Belt:         p.Belt,
			Score:        Value(p, metric),
			PreviousRank: previous[p.ID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].CurrentRank = i + 1
	}
	return entries, nil
}

// NewSnapshot captures the current ranks of entries.
func NewSnapshot(id, metric string, entries []Entry, now time.Time) Snapshot {
	ranks := make(map[string]int, len(entries))
	for _, e := range entries {
		ranks[e.MemberID] = e.CurrentRank
	}
	return Snapshot{ID: id, Metric: metric, TakenAt: now, Ranks: ranks}
}
