package calendar

import (
	"clubdash/internal/domain/attendance"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/schedule"
)

// View is an occurrence together with one member's derived state for it.
// BookingStatus is empty when the member holds no active booking.
type View struct {
	schedule.Occurrence
	IsBooked         bool
	BookingStatus    string
	AttendanceStatus string
	IsFull           bool
	SpotsRemaining   int
	Conflict         bool
}

// Resolve joins an occurrence with booking and attendance snapshots.
// PRE: bookings and records may hold rows for any occurrence; only matching rows are used
// POST: the view is a pure function of its inputs; attendance never implies a
// booking and a booking never implies attendance
func Resolve(occ schedule.Occurrence, bookings []booking.Booking, records []attendance.Record, userID string) View {
	v := View{Occurrence: occ, AttendanceStatus: attendance.StatusNone}

	confirmed := booking.ConfirmedCount(bookings, occ.Template.ID, occ.Date)
	v.IsFull = confirmed >= occ.Template.Capacity
	if remaining := occ.Template.Capacity - confirmed; remaining > 0 {
		v.SpotsRemaining = remaining
	}

	if userID == "" {
		return v
	}
	if b, ok := booking.FindActive(bookings, occ.Template.ID, occ.Date, userID); ok {
		v.IsBooked = true
		v.BookingStatus = b.Status
	}
	v.AttendanceStatus = attendance.StatusFor(records, occ.Template.ID, occ.Date, userID)
	return v
}

// ResolveAll resolves every occurrence against the same snapshots.
func ResolveAll(occs []schedule.Occurrence, bookings []booking.Booking, records []attendance.Record, userID string) []View {
	views := make([]View, 0, len(occs))
	for _, occ := range occs {
		views = append(views, Resolve(occ, bookings, records, userID))
	}
	return views
}

// IsConfirmedBooked reports whether the member holds a confirmed place.
func (v View) IsConfirmedBooked() bool {
	return v.IsBooked && v.BookingStatus == booking.StatusConfirmed
}
