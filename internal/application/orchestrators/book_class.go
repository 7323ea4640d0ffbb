package orchestrators

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubdash/internal/adapters/lock"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/outbox"
	"clubdash/internal/domain/schedule"
)

// Booking errors visible to members.
var (
	ErrClassNotFound = errors.New("class not found")
	ErrNotScheduled  = errors.New("class does not run on that date")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrNoMember      = errors.New("member identity is required")
)

// TemplateLookup loads a class template.
type TemplateLookup interface {
	GetByID(ctx context.Context, id string) (schedule.Template, error)
}

// BookingLedgerStore loads and commits the bookings of one occurrence.
type BookingLedgerStore interface {
	ListByOccurrence(ctx context.Context, classID, date string) ([]booking.Booking, error)
	Commit(ctx context.Context, bookings []booking.Booking, effects []outbox.Entry) error
}

// BookClassInput carries input for the book orchestrator.
type BookClassInput struct {
	ClassID string
	Date    string // YYYY-MM-DD
	UserID  string
}

// BookingResult describes the member's booking after the operation.
type BookingResult struct {
	Booking          booking.Booking
	WaitlistPosition int // 1-based, 0 unless waitlisted
	SpotsRemaining   int
	Unchanged        bool // the member already held an active booking
}

// BookingDeps holds dependencies for booking and cancelling.
type BookingDeps struct {
	Templates  TemplateLookup
	Bookings   BookingLedgerStore
	Members    MemberLookup // optional: an untyped nil skips promotion emails
	Locker     lock.Locker
	Now        func() time.Time
	GenerateID func() string
}

// ExecuteBookClass requests a place in one class occurrence.
// PRE: input.UserID identifies the calling member
// POST: the member holds a confirmed booking when a spot was free, otherwise
// a waitlisted one; the change and its booking event are committed together
// INVARIANT: confirmed bookings never exceed the template capacity
func ExecuteBookClass(ctx context.Context, input BookClassInput, deps BookingDeps) (BookingResult, error) {
	tmpl, err := loadOccurrenceTemplate(ctx, input.ClassID, input.Date, input.UserID, deps.Templates)
	if err != nil {
		return BookingResult{}, err
	}

	unlock, err := deps.Locker.Lock(ctx, schedule.OccurrenceID(input.ClassID, input.Date))
	if err != nil {
		return BookingResult{}, fmt.Errorf("lock occurrence: %w", err)
	}
	defer unlock()

	ledger, err := loadLedger(ctx, tmpl, input.Date, deps.Bookings)
	if err != nil {
		return BookingResult{}, err
	}

	now := deps.Now()
	b, changed, err := ledger.Book(input.UserID, deps.GenerateID(), now)
	if err != nil {
		return BookingResult{}, refuseInvariant(err)
	}
	if !changed {
		return newBookingResult(ledger, b, true), nil
	}

	effects, err := bookingEvents(deps.GenerateID, now, eventOf{b, false})
	if err != nil {
		return BookingResult{}, err
	}
	if err := deps.Bookings.Commit(ctx, []booking.Booking{b}, effects); err != nil {
		return BookingResult{}, fmt.Errorf("commit booking: %w", err)
	}

	if b.IsConfirmed() {
		slog.Info("booking_confirmed", "booking_id", b.ID, "class_id", b.ClassID, "date", b.Date, "user_id", b.UserID, "spots_remaining", ledger.SpotsRemaining())
	} else {
		slog.Info("booking_waitlisted", "booking_id", b.ID, "class_id", b.ClassID, "date", b.Date, "user_id", b.UserID)
	}
	return newBookingResult(ledger, b, false), nil
}

// loadOccurrenceTemplate checks the input and that the class runs on date.
func loadOccurrenceTemplate(ctx context.Context, classID, date, userID string, templates TemplateLookup) (schedule.Template, error) {
	if userID == "" {
		return schedule.Template{}, ErrNoMember
	}
	day, err := schedule.ParseDate(date)
	if err != nil {
		return schedule.Template{}, ErrInvalidDate
	}
	tmpl, err := templates.GetByID(ctx, classID)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Template{}, ErrClassNotFound
	}
	if err != nil {
		return schedule.Template{}, fmt.Errorf("load class %s: %w", classID, err)
	}
	if !tmpl.OccursOn(day) {
		return schedule.Template{}, ErrNotScheduled
	}
	return tmpl, nil
}

// loadLedger reads the occurrence's bookings.
// PRE: caller holds the occurrence lock
func loadLedger(ctx context.Context, tmpl schedule.Template, date string, store BookingLedgerStore) (*booking.Ledger, error) {
	existing, err := store.ListByOccurrence(ctx, tmpl.ID, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return &booking.Ledger{ClassID: tmpl.ID, Date: date, Capacity: tmpl.Capacity, Bookings: existing}, nil
}

// refuseInvariant logs capacity violations; the error itself stays internal.
func refuseInvariant(err error) error {
	var capErr *booking.CapacityExceededButConfirmedError
	if errors.As(err, &capErr) {
		slog.Error("capacity_invariant_violation", "class_id", capErr.ClassID, "date", capErr.Date, "capacity", capErr.Capacity, "confirmed", capErr.Confirmed)
	}
	return err
}

type eventOf struct {
	b        booking.Booking
	promoted bool
}

// bookingEvents builds one outbox entry per booking transition.
func bookingEvents(generateID func() string, now time.Time, events ...eventOf) ([]outbox.Entry, error) {
	entries := make([]outbox.Entry, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(booking.NewEvent(ev.b, ev.promoted, now))
		if err != nil {
			return nil, fmt.Errorf("encode booking event: %w", err)
		}
		entries = append(entries, outbox.New(generateID(), outbox.KindBookingEvent, string(payload), now))
	}
	return entries, nil
}

func newBookingResult(ledger *booking.Ledger, b booking.Booking, unchanged bool) BookingResult {
	return BookingResult{
		Booking:          b,
		WaitlistPosition: booking.WaitlistPosition(ledger.Bookings, ledger.ClassID, ledger.Date, b.UserID),
		SpotsRemaining:   ledger.SpotsRemaining(),
		Unchanged:        unchanged,
	}
}
