package outbox

import (
	"errors"
	"time"
)

// Status constants for outbox entry lifecycle.
const (
	StatusPending = "pending"
	StatusRetry   = "retry"
	StatusSent    = "sent"
	StatusDead    = "dead"
)

// Kind constants for the side effects the outbox delivers.
const (
	KindPromotionEmail = "promotion_email"
	KindBookingEvent   = "booking_event"
)

// DefaultMaxAttempts applies when an entry does not set its own limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyKind    = errors.New("outbox kind is required")
	ErrUnknownKind  = errors.New("outbox kind must be 'promotion_email' or 'booking_event'")
	ErrEmptyPayload = errors.New("payload is required")
	ErrNoCreatedAt  = errors.New("created_at must be set")
)

// Entry is a side effect of a booking change that must be delivered at least
// once after the change is committed.
type Entry struct {
	ID          string
	Kind        string
	Payload     string // JSON
	Status      string
	Attempts    int
	MaxAttempts int
	NextAttempt time.Time
	CreatedAt   time.Time
	LastError   string
}

// New builds a pending entry due immediately.
func New(id, kind, payload string, now time.Time) Entry {
	return Entry{
		ID:          id,
		Kind:        kind,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		NextAttempt: now,
		CreatedAt:   now,
	}
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise; a zero MaxAttempts is defaulted
func (e *Entry) Validate() error {
	if e.Kind == "" {
		return ErrEmptyKind
	}
	if e.Kind != KindPromotionEmail && e.Kind != KindBookingEvent {
		return ErrUnknownKind
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrNoCreatedAt
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// IsDue returns true if the entry should be attempted at now.
func (e *Entry) IsDue(now time.Time) bool {
	if e.Status != StatusPending && e.Status != StatusRetry {
		return false
	}
	return !e.NextAttempt.After(now)
}

// MarkSent records a successful delivery.
// POST: Status is sent and the last error is cleared
func (e *Entry) MarkSent() {
	e.Attempts++
	e.Status = StatusSent
	e.LastError = ""
}

// MarkFailed records a failed delivery and schedules the next attempt with
// exponential backoff, or gives up once MaxAttempts is reached.
// POST: Status is retry with NextAttempt in the future, or dead
func (e *Entry) MarkFailed(err error, now time.Time, base, maxDelay time.Duration) {
	e.Attempts++
	e.LastError = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusDead
		return
	}
	e.Status = StatusRetry
	e.NextAttempt = now.Add(e.RetryDelay(base, maxDelay))
}

// RetryDelay returns 2^(Attempts-1) * base, capped at maxDelay.
func (e *Entry) RetryDelay(base, maxDelay time.Duration) time.Duration {
	shift := e.Attempts - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 30 {
		return maxDelay
	}
	delay := base * time.Duration(1<<shift)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
