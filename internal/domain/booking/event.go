package booking

import "time"

// Event types published when a booking changes state
const (
	EventConfirmed  = "booking.confirmed"
	EventWaitlisted = "booking.waitlisted"
	EventPromoted   = "booking.promoted"
	EventCancelled  = "booking.cancelled"
)

// Event is the message consumers receive for a booking transition. It carries
// enough to notify or count without reading the booking tables.
type Event struct {
	Type       string `json:"type"`
	BookingID  string `json:"booking_id"`
	ClassID    string `json:"class_id"`
	Date       string `json:"class_date"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}

// NewEvent builds the event for b. The type follows the booking's status
// unless promoted is set.
func NewEvent(b Booking, promoted bool, now time.Time) Event {
	typ := EventCancelled
	switch {
	case promoted:
		typ = EventPromoted
	case b.Status == StatusConfirmed:
		typ = EventConfirmed
	case b.Status == StatusWaitlisted:
		typ = EventWaitlisted
	}
	return Event{
		Type:       typ,
		BookingID:  b.ID,
		ClassID:    b.ClassID,
		Date:       b.Date,
		UserID:     b.UserID,
		Status:     b.Status,
		OccurredAt: now.UTC().Format(time.RFC3339),
	}
}
