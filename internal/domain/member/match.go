package member

import "sort"

// Score weights
const (
	BaseScore       = 50
	BeltBonus       = 20
	BeltStepPenalty = 5
	FocusWeight     = 10
	DayWeight       = 3
	FrequencyBonus  = 10
	MinScore        = 0
	MaxScore        = 100
)

// Match is a recommended partner with their compatibility score.
type Match struct {
	Profile Profile
	Score   int
}

// Score computes the compatibility of other as a training partner for self.
// PRE: none; unknown belts rank as white and duplicate tags count once
// POST: result is in [MinScore, MaxScore]
func Score(self, other Profile) int {
	score := BaseScore
	score += max(0, BeltBonus-BeltStepPenalty*abs(BeltIndex(self.Belt)-BeltIndex(other.Belt)))
	score += FocusWeight * intersectStrings(self.TrainingFocus, other.TrainingFocus)
	score += DayWeight * intersectInts(self.Availability.Days, other.Availability.Days)
	score += max(0, FrequencyBonus-abs(self.Stats.ThisMonthSessions-other.Stats.ThisMonthSessions))
	return min(MaxScore, max(MinScore, score))
}

// Recommend scores every active candidate except self and returns the best
// limit matches, highest score first. Equal scores keep candidate order.
// A limit <= 0 returns every match.
func Recommend(self Profile, candidates []Profile, limit int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == self.ID || !c.IsActive() {
			continue
		}
		matches = append(matches, Match{Profile: c, Score: Score(self, c)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func intersectStrings(a, b []string) int {
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	n := 0
	for _, v := range b {
		if seen[v] {
			n++
			delete(seen, v)
		}
	}
	return n
}

func intersectInts(a, b []int) int {
	seen := make(map[int]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	n := 0
	for _, v := range b {
		if seen[v] {
			n++
			delete(seen, v)
		}
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
