package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// InvalidRangeError is returned when a range starts after it ends.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: %s is after %s", e.Start.Format(DateLayout), e.End.Format(DateLayout))
}

// Occurrence is a concrete dated instance of a Template. It is derived and
// never stored.
type Occurrence struct {
	Template Template
	Date     string // YYYY-MM-DD
	Start    time.Time
	End      time.Time
}

// OccurrenceID identifies the occurrence of classID on date.
func OccurrenceID(classID, date string) string {
	return classID + "@" + date
}

// ID returns the occurrence identifier.
func (o Occurrence) ID() string {
	return OccurrenceID(o.Template.ID, o.Date)
}

// Overlaps reports whether the [Start, End) intervals intersect.
func (o Occurrence) Overlaps(other Occurrence) bool {
	return o.Start.Before(other.End) && other.Start.Before(o.End)
}

// Expand turns templates into occurrences between rangeStart and rangeEnd,
// both inclusive. Only the calendar date of each bound is used; the location
// of rangeStart is the wall clock for every occurrence.
//
// A malformed template is skipped and reported in the joined error while the
// remaining templates still expand, so callers may get both results and an
// error. An InvalidRangeError is returned before any work is done.
func Expand(templates []Template, rangeStart, rangeEnd time.Time) ([]Occurrence, error) {
	loc := rangeStart.Location()
	first := midnight(rangeStart, loc)
	last := midnight(rangeEnd, loc)
	if first.After(last) {
		return nil, &InvalidRangeError{Start: first, End: last}
	}

	var occs []Occurrence
	var errs []error
	for _, t := range templates {
		if err := t.checkExpandable(); err != nil {
			errs = append(errs, err)
			continue
		}
		if !t.Recurring {
			anchor, _ := time.ParseInLocation(DateLayout, t.AnchorDate, loc)
			if !anchor.Before(first) && !anchor.After(last) {
				occs = append(occs, newOccurrence(t, anchor))
			}
			continue
		}
		offset := (t.DayOfWeek - int(first.Weekday()) + 7) % 7
		for d := first.AddDate(0, 0, offset); !d.After(last); d = d.AddDate(0, 0, 7) {
			occs = append(occs, newOccurrence(t, d))
		}
	}
	return occs, errors.Join(errs...)
}

// ExpandDay returns the occurrences of templates on a single day.
func ExpandDay(templates []Template, day time.Time) ([]Occurrence, error) {
	return Expand(templates, day, day)
}

// SortOccurrences orders occurrences by start time, then class ID.
func SortOccurrences(occs []Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		if !occs[i].Start.Equal(occs[j].Start) {
			return occs[i].Start.Before(occs[j].Start)
		}
		return occs[i].Template.ID < occs[j].Template.ID
	})
}

func newOccurrence(t Template, day time.Time) Occurrence {
	clock, _ := time.Parse(TimeLayout, t.StartTime)
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
	return Occurrence{
		Template: t,
		Date:     day.Format(DateLayout),
		Start:    start,
		End:      start.Add(t.Duration()),
	}
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
