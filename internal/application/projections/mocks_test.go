package projections

import (
	"context"
	"database/sql"
	"errors"

	memberStore "clubdash/internal/adapters/storage/member"
	"clubdash/internal/domain/attendance"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/member"
	"clubdash/internal/domain/outbox"
	"clubdash/internal/domain/schedule"
)

var errStore = errors.New("store unavailable")

type mockTemplates struct {
	templates []schedule.Template
	err       error
}

// List returns the seeded catalog.
// PRE: none
// POST: Returns the seeded templates or the configured error
func (m *mockTemplates) List(_ context.Context) ([]schedule.Template, error) {
	return m.templates, m.err
}

type mockBookings struct {
	bookings []booking.Booking
	err      error
}

// ListByDateRange returns seeded bookings dated within [from, to].
// PRE: from and to are YYYY-MM-DD
// POST: Returns matching bookings in seed order
func (m *mockBookings) ListByDateRange(_ context.Context, from, to string) ([]booking.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.Date >= from && b.Date <= to {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListByUser returns the member's seeded bookings dated within [from, to].
// PRE: userID is non-empty
// POST: Returns matching bookings in seed order
func (m *mockBookings) ListByUser(ctx context.Context, userID, from, to string) ([]booking.Booking, error) {
	all, err := m.ListByDateRange(ctx, from, to)
	var out []booking.Booking
	for _, b := range all {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, err
}

// ListByOccurrence returns seeded bookings of one occurrence.
// PRE: classID and date are non-empty
// POST: Returns matching bookings in seed order
func (m *mockBookings) ListByOccurrence(_ context.Context, classID, date string) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.ClassID == classID && b.Date == date {
			out = append(out, b)
		}
	}
	return out, m.err
}

type mockAttendance struct {
	records []attendance.Record
	calls   int
}

// ListByDateRange returns every seeded record.
// PRE: none
// POST: Returns the seeded records and counts the call
func (m *mockAttendance) ListByDateRange(_ context.Context, _, _ string) ([]attendance.Record, error) {
	m.calls++
	return m.records, nil
}

type mockMembers struct {
	members []member.Profile
}

// GetByID returns a seeded profile.
// PRE: id is non-empty
// POST: Returns sql.ErrNoRows when absent
func (m *mockMembers) GetByID(_ context.Context, id string) (member.Profile, error) {
	for _, p := range m.members {
		if p.ID == id {
			return p, nil
		}
	}
	return member.Profile{}, sql.ErrNoRows
}

// List returns seeded profiles matching the status filter.
// PRE: filter is valid
// POST: Returns profiles in seed order
func (m *mockMembers) List(_ context.Context, filter memberStore.ListFilter) ([]member.Profile, error) {
	var out []member.Profile
	for _, p := range m.members {
		if filter.Status == "" || p.Status == filter.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockSnapshots struct {
	latest map[string]leaderboard.Snapshot
}

// LatestSnapshot returns the seeded snapshot for metric.
// PRE: metric is non-empty
// POST: ok is false when none was seeded
func (m *mockSnapshots) LatestSnapshot(_ context.Context, metric string) (leaderboard.Snapshot, bool, error) {
	s, ok := m.latest[metric]
	return s, ok, nil
}

type mockDeadLetters struct {
	entries   []outbox.Entry
	lastLimit int
}

// ListDead returns the seeded dead entries.
// PRE: limit > 0
// POST: Records the requested limit
func (m *mockDeadLetters) ListDead(_ context.Context, limit int) ([]outbox.Entry, error) {
	m.lastLimit = limit
	return m.entries, nil
}

// testCatalog is a small week: two Monday classes that overlap, a Wednesday
// class, and a one-off Saturday seminar on 2024-06-08.
func testCatalog() []schedule.Template {
	return []schedule.Template{
		{ID: "mon-1800", Name: "Fundamentals", Description: "Core **gi** work", DayOfWeek: 1, StartTime: "18:00", DurationMinutes: 60, Capacity: 2, Level: schedule.LevelBeginner, Type: "gi", Coach: "Pat", Recurring: true, Difficulty: 1},
		{ID: "mon-1830", Name: "Drilling", DayOfWeek: 1, StartTime: "18:30", DurationMinutes: 60, Capacity: 10, Level: schedule.LevelAllLevels, Type: "gi", Coach: "Sam", Recurring: true, Difficulty: 2},
		{ID: "wed-1930", Name: "Competition Team", DayOfWeek: 3, StartTime: "19:30", DurationMinutes: 90, Capacity: 12, Level: schedule.LevelAdvanced, Type: "no-gi", Coach: "Alex", Recurring: true, Difficulty: 5},
		{ID: "seminar", Name: "Leg Lock Seminar", DayOfWeek: 6, StartTime: "13:00", DurationMinutes: 180, Capacity: 40, Level: schedule.LevelIntermediate, Type: "no-gi", Coach: "Guest", AnchorDate: "2024-06-08", Difficulty: 4},
	}
}
