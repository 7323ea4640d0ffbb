package calendar

// DetectConflicts returns the IDs of confirmed-booked occurrences whose
// [start, end) interval overlaps another confirmed-booked occurrence.
// PRE: views belong to one day and one member
// POST: both sides of each overlapping pair are flagged; waitlisted and
// unbooked occurrences are never flagged
func DetectConflicts(views []View) map[string]bool {
	conflicts := make(map[string]bool)
	for i := range views {
		if !views[i].IsConfirmedBooked() {
			continue
		}
		for j := i + 1; j < len(views); j++ {
			if !views[j].IsConfirmedBooked() {
				continue
			}
			if views[i].Overlaps(views[j].Occurrence) {
				conflicts[views[i].ID()] = true
				conflicts[views[j].ID()] = true
			}
		}
	}
	return conflicts
}

// MarkConflicts groups views by date, runs DetectConflicts per day and sets
// the Conflict flag in place.
func MarkConflicts(views []View) {
	byDay := make(map[string][]View)
	for _, v := range views {
		byDay[v.Date] = append(byDay[v.Date], v)
	}
	flagged := make(map[string]bool)
	for _, day := range byDay {
		for id := range DetectConflicts(day) {
			flagged[id] = true
		}
	}
	for i := range views {
		views[i].Conflict = flagged[views[i].ID()]
	}
}
