package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"clubdash/internal/adapters/email"
	"clubdash/internal/adapters/lock"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/member"
	"clubdash/internal/domain/outbox"
	"clubdash/internal/domain/schedule"
)

const monday = "2024-06-03"

func mondayFundamentals(capacity int) schedule.Template {
	return schedule.Template{
		ID: "mon-1800", Name: "Fundamentals", DayOfWeek: 1, StartTime: "18:00",
		DurationMinutes: 60, Capacity: capacity, Level: schedule.LevelBeginner,
		Type: "gi", Coach: "Pat", Recurring: true, Difficulty: 1,
	}
}

func newBookingDeps(store *mockBookingStore, members *mockMembers, templates ...schedule.Template) BookingDeps {
	tick := fixedTime
	deps := BookingDeps{
		Templates: newMockTemplates(templates...),
		Bookings:  store,
		Locker:    lock.NewLocal(),
		Now: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
		GenerateID: sequentialIDs(),
	}
	// A nil *mockMembers in the interface would not compare equal to nil.
	if members != nil {
		deps.Members = members
	}
	return deps
}

func book(t *testing.T, deps BookingDeps, user string) BookingResult {
	t.Helper()
	res, err := ExecuteBookClass(context.Background(), BookClassInput{ClassID: "mon-1800", Date: monday, UserID: user}, deps)
	if err != nil {
		t.Fatalf("ExecuteBookClass(%s): %v", user, err)
	}
	return res
}

// TestExecuteBookClass_CapacityScenario books three members into a capacity-2
// class and cancels one.
func TestExecuteBookClass_CapacityScenario(t *testing.T) {
	store := &mockBookingStore{}
	members := &mockMembers{members: []member.Profile{{ID: "userC", Name: "C", Email: "c@example.com", Belt: member.BeltWhite, Status: member.StatusActive}}}
	deps := newBookingDeps(store, members, mondayFundamentals(2))

	if res := book(t, deps, "userA"); res.Booking.Status != booking.StatusConfirmed || res.SpotsRemaining != 1 {
		t.Fatalf("userA = %+v", res)
	}
	if res := book(t, deps, "userB"); res.Booking.Status != booking.StatusConfirmed || res.SpotsRemaining != 0 {
		t.Fatalf("userB = %+v", res)
	}
	res := book(t, deps, "userC")
	if res.Booking.Status != booking.StatusWaitlisted || res.WaitlistPosition != 1 {
		t.Fatalf("userC = %+v, want waitlisted at position 1", res)
	}

	cancel, err := ExecuteCancelBooking(context.Background(), CancelBookingInput{ClassID: "mon-1800", Date: monday, UserID: "userA"}, deps)
	if err != nil {
		t.Fatalf("ExecuteCancelBooking: %v", err)
	}
	if cancel.Promoted == nil || cancel.Promoted.UserID != "userC" {
		t.Fatalf("Promoted = %+v, want userC", cancel.Promoted)
	}
	if got := store.confirmed("mon-1800", monday); got != 2 {
		t.Errorf("confirmed = %d, want 2", got)
	}

	mails := store.effectsOfKind(outbox.KindPromotionEmail)
	if len(mails) != 1 {
		t.Fatalf("promotion emails = %d, want 1", len(mails))
	}
	var p email.Promotion
	if err := json.Unmarshal([]byte(mails[0].Payload), &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.Email != "c@example.com" || p.ClassName != "Fundamentals" || p.StartTime != "18:00" {
		t.Errorf("payload = %+v", p)
	}

	var types []string
	for _, e := range store.effectsOfKind(outbox.KindBookingEvent) {
		var ev booking.Event
		if err := json.Unmarshal([]byte(e.Payload), &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		types = append(types, ev.Type)
	}
	want := []string{booking.EventConfirmed, booking.EventConfirmed, booking.EventWaitlisted, booking.EventCancelled, booking.EventPromoted}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("event types = %v, want %v", types, want)
	}
}

// TestExecuteBookClass_Idempotent returns the existing booking without a write.
func TestExecuteBookClass_Idempotent(t *testing.T) {
	store := &mockBookingStore{}
	deps := newBookingDeps(store, nil, mondayFundamentals(2))
	first := book(t, deps, "userA")
	again := book(t, deps, "userA")
	if !again.Unchanged || again.Booking.ID != first.Booking.ID {
		t.Errorf("again = %+v, want unchanged %s", again, first.Booking.ID)
	}
	if store.commits != 1 {
		t.Errorf("commits = %d, want 1", store.commits)
	}
}

// TestExecuteBookClass_Rejections covers input and schedule errors.
func TestExecuteBookClass_Rejections(t *testing.T) {
	oneOff := schedule.Template{ID: "seminar", Name: "Seminar", DayOfWeek: 6, StartTime: "13:00", DurationMinutes: 180, Capacity: 40, Level: schedule.LevelAllLevels, Recurring: false, AnchorDate: "2024-06-08", Difficulty: 3}
	tests := []struct {
		name  string
		input BookClassInput
		want  error
	}{
		{name: "unknown class", input: BookClassInput{ClassID: "nope", Date: monday, UserID: "u"}, want: ErrClassNotFound},
		{name: "wrong weekday", input: BookClassInput{ClassID: "mon-1800", Date: "2024-06-04", UserID: "u"}, want: ErrNotScheduled},
		{name: "bad date", input: BookClassInput{ClassID: "mon-1800", Date: "03/06/2024", UserID: "u"}, want: ErrInvalidDate},
		{name: "no member", input: BookClassInput{ClassID: "mon-1800", Date: monday}, want: ErrNoMember},
		{name: "one-off on another saturday", input: BookClassInput{ClassID: "seminar", Date: "2024-06-15", UserID: "u"}, want: ErrNotScheduled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockBookingStore{}
			deps := newBookingDeps(store, nil, mondayFundamentals(2), oneOff)
			if _, err := ExecuteBookClass(context.Background(), tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if store.commits != 0 {
				t.Errorf("commits = %d, want 0", store.commits)
			}
		})
	}
}

// TestExecuteBookClass_OneOffOnAnchorDate books a non-recurring class.
func TestExecuteBookClass_OneOffOnAnchorDate(t *testing.T) {
	oneOff := schedule.Template{ID: "seminar", Name: "Seminar", DayOfWeek: 6, StartTime: "13:00", DurationMinutes: 180, Capacity: 40, Level: schedule.LevelAllLevels, AnchorDate: "2024-06-08", Difficulty: 3}
	deps := newBookingDeps(&mockBookingStore{}, nil, oneOff)
	res, err := ExecuteBookClass(context.Background(), BookClassInput{ClassID: "seminar", Date: "2024-06-08", UserID: "u"}, deps)
	if err != nil {
		t.Fatalf("ExecuteBookClass: %v", err)
	}
	if !res.Booking.IsConfirmed() {
		t.Errorf("status = %s, want confirmed", res.Booking.Status)
	}
}

// TestExecuteBookClass_CommitFailure surfaces storage errors.
func TestExecuteBookClass_CommitFailure(t *testing.T) {
	store := &mockBookingStore{commitErr: errBoom}
	deps := newBookingDeps(store, nil, mondayFundamentals(2))
	if _, err := ExecuteBookClass(context.Background(), BookClassInput{ClassID: "mon-1800", Date: monday, UserID: "u"}, deps); !errors.Is(err, errBoom) {
		t.Errorf("err = %v, want wrapped errBoom", err)
	}
}

// TestExecuteBookClass_RefusesCorruptLedger waitlists on an over-capacity
// ledger but never commits a promotion past capacity.
func TestExecuteBookClass_RefusesCorruptLedger(t *testing.T) {
	store := &mockBookingStore{rows: []booking.Booking{
		{ID: "1", ClassID: "mon-1800", Date: monday, UserID: "a", Status: booking.StatusConfirmed},
		{ID: "2", ClassID: "mon-1800", Date: monday, UserID: "b", Status: booking.StatusConfirmed},
	}}
	deps := newBookingDeps(store, nil, mondayFundamentals(1))
	if res := book(t, deps, "c"); res.Booking.Status != booking.StatusWaitlisted {
		t.Fatalf("c = %+v, want waitlisted", res.Booking)
	}

	_, err := ExecuteCancelBooking(context.Background(), CancelBookingInput{ClassID: "mon-1800", Date: monday, UserID: "a"}, deps)
	var capErr *booking.CapacityExceededButConfirmedError
	if !errors.As(err, &capErr) {
		t.Fatalf("err = %v, want CapacityExceededButConfirmedError", err)
	}
	if store.commits != 1 {
		t.Errorf("commits = %d, want only the waitlisting", store.commits)
	}
}

// TestExecuteBookClass_ConcurrentRequests never confirms more than capacity.
func TestExecuteBookClass_ConcurrentRequests(t *testing.T) {
	store := &mockBookingStore{}
	deps := newBookingDeps(store, nil, mondayFundamentals(3))
	var nowMu sync.Mutex
	now := deps.Now
	deps.Now = func() time.Time {
		nowMu.Lock()
		defer nowMu.Unlock()
		return now()
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ExecuteBookClass(context.Background(), BookClassInput{ClassID: "mon-1800", Date: monday, UserID: fmt.Sprintf("u%d", i)}, deps)
			if err != nil {
				t.Errorf("book u%d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := store.confirmed("mon-1800", monday); got != 3 {
		t.Errorf("confirmed = %d, want 3", got)
	}
	waitlisted, _ := store.ListByOccurrence(context.Background(), "mon-1800", monday)
	if len(waitlisted) != 25 {
		t.Errorf("bookings = %d, want 25", len(waitlisted))
	}
}

// TestExecuteBookClass_LockTimeout gives up when the occurrence stays locked.
func TestExecuteBookClass_LockTimeout(t *testing.T) {
	locker := lock.NewLocal()
	deps := newBookingDeps(&mockBookingStore{}, nil, mondayFundamentals(2))
	deps.Locker = locker
	unlock, _ := locker.Lock(context.Background(), schedule.OccurrenceID("mon-1800", monday))
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := ExecuteBookClass(ctx, BookClassInput{ClassID: "mon-1800", Date: monday, UserID: "u"}, deps); !errors.Is(err, lock.ErrLockTimeout) {
		t.Errorf("err = %v, want ErrLockTimeout", err)
	}
}

// TestExecuteCancelBooking_NotBooked reports the missing booking.
func TestExecuteCancelBooking_NotBooked(t *testing.T) {
	deps := newBookingDeps(&mockBookingStore{}, nil, mondayFundamentals(2))
	_, err := ExecuteCancelBooking(context.Background(), CancelBookingInput{ClassID: "mon-1800", Date: monday, UserID: "ghost"}, deps)
	if !errors.Is(err, booking.ErrBookingNotFound) {
		t.Errorf("err = %v, want ErrBookingNotFound", err)
	}
}

// TestExecuteCancelBooking_PromotedWithoutEmail skips the notice when the
// member has no address but still promotes.
func TestExecuteCancelBooking_PromotedWithoutEmail(t *testing.T) {
	store := &mockBookingStore{}
	members := &mockMembers{members: []member.Profile{{ID: "b", Name: "B", Belt: member.BeltWhite, Status: member.StatusActive}}}
	deps := newBookingDeps(store, members, mondayFundamentals(1))
	book(t, deps, "a")
	book(t, deps, "b")

	res, err := ExecuteCancelBooking(context.Background(), CancelBookingInput{ClassID: "mon-1800", Date: monday, UserID: "a"}, deps)
	if err != nil {
		t.Fatalf("ExecuteCancelBooking: %v", err)
	}
	if res.Promoted == nil || res.Promoted.UserID != "b" {
		t.Fatalf("Promoted = %+v", res.Promoted)
	}
	if n := len(store.effectsOfKind(outbox.KindPromotionEmail)); n != 0 {
		t.Errorf("promotion emails = %d, want 0", n)
	}
}

// TestExecuteCancelBooking_RebookJoinsBackOfQueue checks a rebook reuses the
// row and re-enters the capacity check.
func TestExecuteCancelBooking_RebookJoinsBackOfQueue(t *testing.T) {
	store := &mockBookingStore{}
	deps := newBookingDeps(store, nil, mondayFundamentals(1))
	first := book(t, deps, "a")
	book(t, deps, "b")
	book(t, deps, "c")

	if _, err := ExecuteCancelBooking(context.Background(), CancelBookingInput{ClassID: "mon-1800", Date: monday, UserID: "a"}, deps); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n := len(store.effectsOfKind(outbox.KindPromotionEmail)); n != 0 {
		t.Errorf("promotion emails without a member lookup = %d, want 0", n)
	}
	again := book(t, deps, "a")
	if again.Booking.ID != first.Booking.ID {
		t.Errorf("rebook ID = %s, want reused %s", again.Booking.ID, first.Booking.ID)
	}
	if again.Booking.Status != booking.StatusWaitlisted || again.WaitlistPosition != 2 {
		t.Errorf("rebook = %+v, want waitlisted behind c", again)
	}
}
