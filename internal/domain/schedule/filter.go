package schedule

import "strings"

// Criteria is a conjunction of optional class predicates. A zero-valued
// field places no constraint on the result.
type Criteria struct {
	Text          string   // case-insensitive substring of name, coach, type or description
	DaysOfWeek    []int    // 0 = Sunday
	TimeFrom      string   // HH:MM, inclusive, zero-padded
	TimeTo        string   // HH:MM, inclusive, zero-padded
	Levels        []string // "all-levels" classes match any requested level
	Types         []string
	Coaches       []string
	AvailableOnly bool
	RecurringOnly bool
}

// IsEmpty reports whether the criteria constrain nothing.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == "" && len(c.DaysOfWeek) == 0 &&
		c.TimeFrom == "" && c.TimeTo == "" && len(c.Levels) == 0 &&
		len(c.Types) == 0 && len(c.Coaches) == 0 && !c.AvailableOnly && !c.RecurringOnly
}

// Matches reports whether t satisfies every predicate.
// currentBookings is the confirmed count used by AvailableOnly.
func (c Criteria) Matches(t Template, currentBookings int) bool {
	if !c.matchesText(t) {
		return false
	}
	if len(c.DaysOfWeek) > 0 && !containsInt(c.DaysOfWeek, t.DayOfWeek) {
		return false
	}
	// HH:MM strings compare lexically when zero-padded
	if c.TimeFrom != "" && t.StartTime < c.TimeFrom {
		return false
	}
	if c.TimeTo != "" && t.StartTime > c.TimeTo {
		return false
	}
	if len(c.Levels) > 0 && t.Level != LevelAllLevels && !containsString(c.Levels, t.Level) {
		return false
	}
	if len(c.Types) > 0 && !containsString(c.Types, t.Type) {
		return false
	}
	if len(c.Coaches) > 0 && !containsString(c.Coaches, t.Coach) {
		return false
	}
	if c.AvailableOnly && currentBookings >= t.Capacity {
		return false
	}
	if c.RecurringOnly && !t.Recurring {
		return false
	}
	return true
}

func (c Criteria) matchesText(t Template) bool {
	q := strings.ToLower(strings.TrimSpace(c.Text))
	if q == "" {
		return true
	}
	for _, field := range []string{t.Name, t.Coach, t.Type, t.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the templates matching c, in input order.
// currentBookings maps template ID to confirmed bookings; missing IDs count as zero.
func Filter(templates []Template, c Criteria, currentBookings map[string]int) []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		if c.Matches(t, currentBookings[t.ID]) {
			out = append(out, t)
		}
	}
	return out
}

// FilterOccurrences returns the occurrences matching c, in input order.
// currentBookings is keyed by occurrence ID.
func FilterOccurrences(occs []Occurrence, c Criteria, currentBookings map[string]int) []Occurrence {
	out := make([]Occurrence, 0, len(occs))
	for _, o := range occs {
		if c.Matches(o.Template, currentBookings[o.ID()]) {
			out = append(out, o)
		}
	}
	return out
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
