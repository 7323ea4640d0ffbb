package booking

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Status constants
const (
	StatusConfirmed  = "confirmed"
	StatusWaitlisted = "waitlisted"
	StatusCancelled  = "cancelled"
)

// Domain errors
var (
	ErrEmptyClassID    = errors.New("booking must reference a class")
	ErrEmptyDate       = errors.New("booking must have a class date")
	ErrEmptyUserID     = errors.New("booking must belong to a member")
	ErrInvalidStatus   = errors.New("status must be one of: confirmed, waitlisted, cancelled")
	ErrBookingNotFound = errors.New("no active booking for this class")
)

// Booking is a member's claim on one class occurrence.
// Unique per (ClassID, Date, UserID); a cancelled row is reused on rebooking.
type Booking struct {
	ID          string
	ClassID     string
	Date        string // YYYY-MM-DD
	UserID      string
	Status      string
	RequestedAt time.Time // FIFO key for the waitlist
	UpdatedAt   time.Time
}

// CapacityExceededButConfirmedError signals that a write would leave more
// confirmed bookings than the class holds. It is an internal invariant
// violation and must never reach a member.
type CapacityExceededButConfirmedError struct {
	ClassID   string
	Date      string
	Capacity  int
	Confirmed int
}

func (e *CapacityExceededButConfirmedError) Error() string {
	return fmt.Sprintf("class %s on %s would hold %d confirmed bookings with capacity %d", e.ClassID, e.Date, e.Confirmed, e.Capacity)
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Booking) Validate() error {
	if b.ClassID == "" {
		return ErrEmptyClassID
	}
	if b.Date == "" {
		return ErrEmptyDate
	}
	if b.UserID == "" {
		return ErrEmptyUserID
	}
	switch b.Status {
	case StatusConfirmed, StatusWaitlisted, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true unless the booking was cancelled.
func (b Booking) IsActive() bool {
	return b.Status == StatusConfirmed || b.Status == StatusWaitlisted
}

// IsConfirmed returns true if the booking counts against capacity.
func (b Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// Find looks up the booking for (classID, date, userID) in any status.
// Absence is reported through ok, never as an error.
func Find(bookings []Booking, classID, date, userID string) (Booking, bool) {
	for _, b := range bookings {
		if b.ClassID == classID && b.Date == date && b.UserID == userID {
			return b, true
		}
	}
	return Booking{}, false
}

// FindActive is Find restricted to confirmed and waitlisted bookings.
func FindActive(bookings []Booking, classID, date, userID string) (Booking, bool) {
	b, ok := Find(bookings, classID, date, userID)
	if !ok || !b.IsActive() {
		return Booking{}, false
	}
	return b, true
}

// ConfirmedCount counts confirmed bookings for one occurrence.
func ConfirmedCount(bookings []Booking, classID, date string) int {
	n := 0
	for _, b := range bookings {
		if b.ClassID == classID && b.Date == date && b.IsConfirmed() {
			n++
		}
	}
	return n
}

// ConfirmedCounts counts confirmed bookings keyed by occurrence ID.
func ConfirmedCounts(bookings []Booking, occurrenceID func(classID, date string) string) map[string]int {
	counts := make(map[string]int)
	for _, b := range bookings {
		if b.IsConfirmed() {
			counts[occurrenceID(b.ClassID, b.Date)]++
		}
	}
	return counts
}

// Waitlist returns the waitlisted bookings of one occurrence in queue order:
// earliest RequestedAt first, ties kept in input order.
func Waitlist(bookings []Booking, classID, date string) []Booking {
	var queue []Booking
	for _, b := range bookings {
		if b.ClassID == classID && b.Date == date && b.Status == StatusWaitlisted {
			queue = append(queue, b)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].RequestedAt.Before(queue[j].RequestedAt)
	})
	return queue
}

// WaitlistPosition returns the 1-based queue position of userID, or 0.
func WaitlistPosition(bookings []Booking, classID, date, userID string) int {
	for i, b := range Waitlist(bookings, classID, date) {
		if b.UserID == userID {
			return i + 1
		}
	}
	return 0
}
