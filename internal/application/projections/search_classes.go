package projections

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clubdash/internal/application/listutil"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/schedule"
)

// SearchSortColumns are the accepted sort keys for class search.
var SearchSortColumns = []string{"start", "name", "difficulty", "spots"}

// SearchClassesQuery carries query parameters.
type SearchClassesQuery struct {
	Criteria schedule.Criteria
	WeekOf   string // YYYY-MM-DD; bookings are counted for the 7 days from here. Empty means today.
	Page     listutil.PageParams
	Sort     listutil.SortParams
}

// ClassSummary is one catalog entry with its booking state for the week.
type ClassSummary struct {
	schedule.Template
	DescriptionHTML string
	EndTime         string
	NextDate        string // date of the occurrence counted, "" if none that week
	CurrentBookings int
	SpotsRemaining  int
}

// SearchClassesResult carries the query result.
type SearchClassesResult struct {
	Classes []ClassSummary
	Page    listutil.PageInfo
}

// SearchClassesDeps holds dependencies for SearchClasses.
type SearchClassesDeps struct {
	Templates TemplateLister
	Bookings  BookingRangeStore
	Today     func() time.Time
}

// QuerySearchClasses filters the catalog. Availability is judged on each
// class's occurrence in the week starting at WeekOf.
// PRE: Page has been parsed with listutil
// POST: every predicate in Criteria holds for each returned class
func QuerySearchClasses(ctx context.Context, query SearchClassesQuery, deps SearchClassesDeps) (SearchClassesResult, error) {
	weekStart := deps.Today()
	if query.WeekOf != "" {
		d, err := schedule.ParseDate(query.WeekOf)
		if err != nil {
			return SearchClassesResult{}, err
		}
		weekStart = d
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	templates, err := deps.Templates.List(ctx)
	if err != nil {
		return SearchClassesResult{}, fmt.Errorf("list classes: %w", err)
	}
	bookings, err := deps.Bookings.ListByDateRange(ctx, weekStart.Format(schedule.DateLayout), weekEnd.Format(schedule.DateLayout))
	if err != nil {
		return SearchClassesResult{}, fmt.Errorf("list bookings: %w", err)
	}

	// Malformed templates have no occurrence and show zero bookings.
	occs, _ := schedule.Expand(templates, weekStart, weekEnd)
	confirmed := booking.ConfirmedCounts(bookings, schedule.OccurrenceID)
	nextDate := make(map[string]string, len(occs))
	current := make(map[string]int, len(occs))
	for _, occ := range occs {
		if _, seen := nextDate[occ.Template.ID]; seen {
			continue
		}
		nextDate[occ.Template.ID] = occ.Date
		current[occ.Template.ID] = confirmed[occ.ID()]
	}

	matched := schedule.Filter(templates, query.Criteria, current)
	summaries := make([]ClassSummary, 0, len(matched))
	for _, t := range matched {
		end, _ := t.EndTime()
		s := ClassSummary{
			Template:        t,
			EndTime:         end,
			NextDate:        nextDate[t.ID],
			CurrentBookings: current[t.ID],
		}
		if spots := t.Capacity - s.CurrentBookings; spots > 0 {
			s.SpotsRemaining = spots
		}
		summaries = append(summaries, s)
	}
	sortSummaries(summaries, query.Sort)

	page, info := listutil.Paginate(summaries, query.Page)
	for i := range page {
		page[i].DescriptionHTML = renderMarkdown(page[i].Description)
	}
	return SearchClassesResult{Classes: page, Page: info}, nil
}

// sortSummaries orders by the requested column; the default is the weekly
// timetable order (day, start time, ID).
func sortSummaries(s []ClassSummary, params listutil.SortParams) {
	timetable := func(a, b ClassSummary) bool {
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	}
	less := timetable
	switch params.Sort {
	case "name":
		less = func(a, b ClassSummary) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return timetable(a, b)
		}
	case "difficulty":
		less = func(a, b ClassSummary) bool {
			if a.Difficulty != b.Difficulty {
				return a.Difficulty < b.Difficulty
			}
			return timetable(a, b)
		}
	case "spots":
		less = func(a, b ClassSummary) bool {
			if a.SpotsRemaining != b.SpotsRemaining {
				return a.SpotsRemaining < b.SpotsRemaining
			}
			return timetable(a, b)
		}
	}
	desc := params.Dir == "desc"
	sort.SliceStable(s, func(i, j int) bool {
		if desc {
			return less(s[j], s[i])
		}
		return less(s[i], s[j])
	})
}
