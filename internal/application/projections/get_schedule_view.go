package projections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"clubdash/internal/domain/attendance"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/schedule"
)

// MaxScheduleDays bounds the range one schedule request may cover.
const MaxScheduleDays = 92

// ErrRangeTooLong is returned for ranges longer than MaxScheduleDays.
var ErrRangeTooLong = fmt.Errorf("date range may cover at most %d days", MaxScheduleDays)

// GetScheduleViewQuery carries query parameters.
type GetScheduleViewQuery struct {
	From   string // YYYY-MM-DD, inclusive
	To     string // YYYY-MM-DD, inclusive
	UserID string // optional: empty resolves capacity only
}

// DaySchedule is one calendar day of the view.
type DaySchedule struct {
	Date      string
	Weekday   string
	Classes   []calendar.View
	Conflicts int
}

// GetScheduleViewResult carries the query result.
type GetScheduleViewResult struct {
	From    string
	To      string
	Days    []DaySchedule
	Skipped []string // IDs of malformed templates left out of the view
}

// GetScheduleViewDeps holds dependencies for GetScheduleView.
type GetScheduleViewDeps struct {
	Templates  TemplateLister
	Bookings   BookingRangeStore
	Attendance AttendanceRangeStore
}

// QueryGetScheduleView expands the catalog over [From, To] and resolves every
// occurrence against the booking and attendance ledgers for UserID.
// PRE: From and To are YYYY-MM-DD
// POST: every day of the range is present in order; classes within a day are
// sorted by start time then class ID; conflicting confirmed bookings are flagged
// INVARIANT: reads only; no lock is taken
func QueryGetScheduleView(ctx context.Context, query GetScheduleViewQuery, deps GetScheduleViewDeps) (GetScheduleViewResult, error) {
	from, to, err := parseRange(query.From, query.To)
	if err != nil {
		return GetScheduleViewResult{}, err
	}

	var (
		templates []schedule.Template
		bookings  []booking.Booking
		records   []attendance.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		templates, err = deps.Templates.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		bookings, err = deps.Bookings.ListByDateRange(gctx, query.From, query.To)
		return err
	})
	if query.UserID != "" {
		g.Go(func() (err error) {
			records, err = deps.Attendance.ListByDateRange(gctx, query.From, query.To)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return GetScheduleViewResult{}, fmt.Errorf("load schedule: %w", err)
	}

	occs, err := schedule.Expand(templates, from, to)
	skipped, err := malformedTemplates(err)
	if err != nil {
		return GetScheduleViewResult{}, err
	}
	schedule.SortOccurrences(occs)
	views := calendar.ResolveAll(occs, bookings, records, query.UserID)
	calendar.MarkConflicts(views)

	return GetScheduleViewResult{
		From:    query.From,
		To:      query.To,
		Days:    groupByDay(views, from, to),
		Skipped: skipped,
	}, nil
}

// parseRange validates a date range.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := schedule.ParseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := schedule.ParseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, &schedule.InvalidRangeError{Start: from, End: to}
	}
	if to.Sub(from) >= MaxScheduleDays*24*time.Hour {
		return time.Time{}, time.Time{}, ErrRangeTooLong
	}
	return from, to, nil
}

// malformedTemplates logs and collects templates Expand skipped. Any other
// error is returned.
func malformedTemplates(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	var skipped []string
	for _, e := range errs {
		var bad *schedule.MalformedTemplateError
		if !errors.As(e, &bad) {
			return nil, e
		}
		slog.Warn("template_skipped", "template_id", bad.TemplateID, "reason", bad.Reason)
		skipped = append(skipped, bad.TemplateID)
	}
	return skipped, nil
}

// groupByDay buckets sorted views into one entry per day of [from, to].
func groupByDay(views []calendar.View, from, to time.Time) []DaySchedule {
	byDate := make(map[string][]calendar.View)
	for _, v := range views {
		byDate[v.Date] = append(byDate[v.Date], v)
	}
	var days []DaySchedule
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(schedule.DateLayout)
		day := DaySchedule{Date: date, Weekday: d.Weekday().String(), Classes: byDate[date]}
		if day.Classes == nil {
			day.Classes = []calendar.View{}
		}
		for _, v := range day.Classes {
			if v.Conflict {
				day.Conflicts++
			}
		}
		days = append(days, day)
	}
	return days
}
