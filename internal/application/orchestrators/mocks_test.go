package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	memberStore "clubdash/internal/adapters/storage/member"
	"clubdash/internal/domain/attendance"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/member"
	"clubdash/internal/domain/outbox"
	"clubdash/internal/domain/schedule"
)

var fixedTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mockTemplates implements TemplateLookup and CatalogStoreForSeed.
type mockTemplates struct {
	templates map[string]schedule.Template
	saved     int
}

func newMockTemplates(ts ...schedule.Template) *mockTemplates {
	m := &mockTemplates{templates: make(map[string]schedule.Template)}
	for _, t := range ts {
		m.templates[t.ID] = t
	}
	return m
}

func (m *mockTemplates) GetByID(_ context.Context, id string) (schedule.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return schedule.Template{}, fmt.Errorf("get template %s: %w", id, sql.ErrNoRows)
	}
	return t, nil
}

func (m *mockTemplates) Save(_ context.Context, t schedule.Template) error {
	m.templates[t.ID] = t
	m.saved++
	return nil
}

func (m *mockTemplates) Count(_ context.Context) (int, error) {
	return len(m.templates), nil
}

// mockBookingStore implements BookingLedgerStore in memory. Rows keep
// insertion order like the rowid tie-break of the SQLite store.
type mockBookingStore struct {
	mu        sync.Mutex
	rows      []booking.Booking
	effects   []outbox.Entry
	commits   int
	commitErr error
}

func (m *mockBookingStore) ListByOccurrence(_ context.Context, classID, date string) ([]booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []booking.Booking
	for _, b := range m.rows {
		if b.ClassID == classID && b.Date == date {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (m *mockBookingStore) Commit(_ context.Context, bookings []booking.Booking, effects []outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	for _, b := range bookings {
		replaced := false
		for i := range m.rows {
			if m.rows[i].ID == b.ID {
				m.rows[i] = b
				replaced = true
			}
		}
		if !replaced {
			m.rows = append(m.rows, b)
		}
	}
	m.effects = append(m.effects, effects...)
	m.commits++
	return nil
}

func (m *mockBookingStore) confirmed(classID, date string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return booking.ConfirmedCount(m.rows, classID, date)
}

func (m *mockBookingStore) effectsOfKind(kind string) []outbox.Entry {
	var out []outbox.Entry
	for _, e := range m.effects {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// mockMembers implements MemberLookup, MemberLister and MemberStoreForSeed.
type mockMembers struct {
	members []member.Profile
	listErr error
}

func (m *mockMembers) GetByID(_ context.Context, id string) (member.Profile, error) {
	for _, p := range m.members {
		if p.ID == id {
			return p, nil
		}
	}
	return member.Profile{}, sql.ErrNoRows
}

func (m *mockMembers) List(_ context.Context, filter memberStore.ListFilter) ([]member.Profile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []member.Profile
	for _, p := range m.members {
		if filter.Status == "" || p.Status == filter.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockMembers) Save(_ context.Context, p member.Profile) error {
	m.members = append(m.members, p)
	return nil
}

func (m *mockMembers) Count(_ context.Context) (int, error) {
	return len(m.members), nil
}

// mockAttendance implements AttendanceRecorder with the store's upsert rule.
type mockAttendance struct {
	records []attendance.Record
}

func (m *mockAttendance) Save(_ context.Context, r attendance.Record) error {
	for i, existing := range m.records {
		if existing.ClassID == r.ClassID && existing.Date == r.Date && existing.UserID == r.UserID {
			r.ID = existing.ID
			m.records[i] = r
			return nil
		}
	}
	m.records = append(m.records, r)
	return nil
}

// mockSnapshots implements SnapshotStore.
type mockSnapshots struct {
	saved []leaderboard.Snapshot
}

func (m *mockSnapshots) SaveSnapshot(_ context.Context, s leaderboard.Snapshot) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *mockSnapshots) LatestSnapshot(_ context.Context, metric string) (leaderboard.Snapshot, bool, error) {
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Metric == metric {
			return m.saved[i], true, nil
		}
	}
	return leaderboard.Snapshot{}, false, nil
}

// mockOutbox implements OutboxStore.
type mockOutbox struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	order   []string
}

func newMockOutbox(entries ...outbox.Entry) *mockOutbox {
	m := &mockOutbox{entries: make(map[string]outbox.Entry)}
	for _, e := range entries {
		m.entries[e.ID] = e
		m.order = append(m.order, e.ID)
	}
	return m
}

func (m *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutbox) ListDue(_ context.Context, now time.Time, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.IsDue(now) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutbox) entryStatus(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[id].Status
}

var errBoom = errors.New("boom")
