package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"clubdash/internal/adapters/email"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/member"
	"clubdash/internal/domain/outbox"
	"clubdash/internal/domain/schedule"
)

// MemberLookup loads a member profile.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Profile, error)
}

// CancelBookingInput carries input for the cancel orchestrator.
type CancelBookingInput struct {
	ClassID string
	Date    string
	UserID  string
}

// CancelBookingResult reports the cancellation and any promotion it caused.
type CancelBookingResult struct {
	Cancelled      booking.Booking
	Promoted       *booking.Booking
	SpotsRemaining int
}

// ExecuteCancelBooking cancels the member's active booking. Cancelling a
// confirmed booking promotes the earliest waitlisted member, whose
// notification email is queued in the same transaction.
// PRE: input.UserID identifies the calling member
// POST: booking.ErrBookingNotFound when the member has no active booking
// INVARIANT: the confirmed count is unchanged when someone is promoted
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps BookingDeps) (CancelBookingResult, error) {
	tmpl, err := loadOccurrenceTemplate(ctx, input.ClassID, input.Date, input.UserID, deps.Templates)
	if err != nil {
		return CancelBookingResult{}, err
	}

	unlock, err := deps.Locker.Lock(ctx, schedule.OccurrenceID(input.ClassID, input.Date))
	if err != nil {
		return CancelBookingResult{}, fmt.Errorf("lock occurrence: %w", err)
	}
	defer unlock()

	ledger, err := loadLedger(ctx, tmpl, input.Date, deps.Bookings)
	if err != nil {
		return CancelBookingResult{}, err
	}

	now := deps.Now()
	cancelled, promoted, err := ledger.Cancel(input.UserID, now)
	if err != nil {
		return CancelBookingResult{}, refuseInvariant(err)
	}

	changed := []booking.Booking{cancelled}
	events := []eventOf{{cancelled, false}}
	if promoted != nil {
		changed = append(changed, *promoted)
		events = append(events, eventOf{*promoted, true})
	}
	effects, err := bookingEvents(deps.GenerateID, now, events...)
	if err != nil {
		return CancelBookingResult{}, err
	}
	if promoted != nil {
		if e, ok := promotionEmail(ctx, tmpl, *promoted, deps, now); ok {
			effects = append(effects, e)
		}
	}

	if err := deps.Bookings.Commit(ctx, changed, effects); err != nil {
		return CancelBookingResult{}, fmt.Errorf("commit cancellation: %w", err)
	}

	slog.Info("booking_cancelled", "booking_id", cancelled.ID, "class_id", cancelled.ClassID, "date", cancelled.Date, "user_id", cancelled.UserID)
	if promoted != nil {
		slog.Info("booking_promoted", "booking_id", promoted.ID, "class_id", promoted.ClassID, "date", promoted.Date, "user_id", promoted.UserID)
	}
	return CancelBookingResult{Cancelled: cancelled, Promoted: promoted, SpotsRemaining: ledger.SpotsRemaining()}, nil
}

// promotionEmail builds the outbox entry notifying a promoted member.
// Members without a profile or email address are skipped.
func promotionEmail(ctx context.Context, tmpl schedule.Template, promoted booking.Booking, deps BookingDeps, now time.Time) (outbox.Entry, bool) {
	if deps.Members == nil {
		return outbox.Entry{}, false
	}
	m, err := deps.Members.GetByID(ctx, promoted.UserID)
	if err != nil || m.Email == "" {
		slog.Warn("promotion_email_skipped", "user_id", promoted.UserID, "error", err)
		return outbox.Entry{}, false
	}
	payload, err := json.Marshal(email.Promotion{
		BookingID: promoted.ID,
		MemberID:  m.ID,
		Name:      m.Name,
		Email:     m.Email,
		ClassName: tmpl.Name,
		Date:      promoted.Date,
		StartTime: tmpl.StartTime,
		Coach:     tmpl.Coach,
	})
	if err != nil {
		slog.Error("promotion_email_encode_failed", "user_id", promoted.UserID, "error", err)
		return outbox.Entry{}, false
	}
	return outbox.New(deps.GenerateID(), outbox.KindPromotionEmail, string(payload), now), true
}
