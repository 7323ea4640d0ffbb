package booking

import "time"

// Ledger is the booking state of a single occurrence. Its methods are the
// check-then-act transitions of the booking lifecycle; callers must hold the
// occurrence's write lock from loading the ledger until the changes are saved.
type Ledger struct {
	ClassID  string
	Date     string
	Capacity int
	Bookings []Booking
}

// Book requests a place for userID.
// PRE: caller holds the occurrence lock; id is used only for a brand-new row
// POST: returns the booking and whether it must be persisted; an active
// booking is returned unchanged, otherwise the booking is confirmed when
// spots remain and waitlisted when the class is full
func (l *Ledger) Book(userID, id string, now time.Time) (Booking, bool, error) {
	if b, ok := FindActive(l.Bookings, l.ClassID, l.Date, userID); ok {
		return b, false, nil
	}

	b, existing := Find(l.Bookings, l.ClassID, l.Date, userID)
	if !existing {
		b = Booking{ID: id, ClassID: l.ClassID, Date: l.Date, UserID: userID}
	}
	b.RequestedAt = now
	b.UpdatedAt = now
	b.Status = StatusWaitlisted
	if l.SpotsRemaining() > 0 {
		b.Status = StatusConfirmed
	}
	if err := b.Validate(); err != nil {
		return Booking{}, false, err
	}

	next := l.with(b)
	if b.IsConfirmed() {
		if err := next.checkCapacity(); err != nil {
			return Booking{}, false, err
		}
	}
	l.Bookings = next.Bookings
	return b, true, nil
}

// Cancel cancels userID's active booking. Cancelling a confirmed booking
// promotes the earliest waitlisted booking, keeping the confirmed count.
// PRE: caller holds the occurrence lock
// POST: returns the cancelled booking and the promoted one, if any
func (l *Ledger) Cancel(userID string, now time.Time) (Booking, *Booking, error) {
	b, ok := FindActive(l.Bookings, l.ClassID, l.Date, userID)
	if !ok {
		return Booking{}, nil, ErrBookingNotFound
	}
	wasConfirmed := b.IsConfirmed()
	b.Status = StatusCancelled
	b.UpdatedAt = now
	next := l.with(b)

	var promoted *Booking
	if wasConfirmed {
		if queue := Waitlist(next.Bookings, l.ClassID, l.Date); len(queue) > 0 {
			p := queue[0]
			p.Status = StatusConfirmed
			p.UpdatedAt = now
			next = next.with(p)
			promoted = &p
		}
	}
	if promoted != nil {
		if err := next.checkCapacity(); err != nil {
			return Booking{}, nil, err
		}
	}
	l.Bookings = next.Bookings
	return b, promoted, nil
}

// Confirmed returns the number of confirmed bookings.
func (l *Ledger) Confirmed() int {
	return ConfirmedCount(l.Bookings, l.ClassID, l.Date)
}

// SpotsRemaining returns capacity minus confirmed bookings, never negative.
func (l *Ledger) SpotsRemaining() int {
	if n := l.Capacity - l.Confirmed(); n > 0 {
		return n
	}
	return 0
}

// with returns a copy of the ledger with b inserted or replaced by ID.
func (l *Ledger) with(b Booking) Ledger {
	next := Ledger{ClassID: l.ClassID, Date: l.Date, Capacity: l.Capacity}
	next.Bookings = make([]Booking, 0, len(l.Bookings)+1)
	replaced := false
	for _, existing := range l.Bookings {
		if existing.ID == b.ID {
			next.Bookings = append(next.Bookings, b)
			replaced = true
			continue
		}
		next.Bookings = append(next.Bookings, existing)
	}
	if !replaced {
		next.Bookings = append(next.Bookings, b)
	}
	return next
}

// checkCapacity guards writes that confirm a booking. Waitlisting and plain
// cancellations are never refused, even on a ledger already over capacity.
func (l *Ledger) checkCapacity() error {
	if n := l.Confirmed(); n > l.Capacity {
		return &CapacityExceededButConfirmedError{ClassID: l.ClassID, Date: l.Date, Capacity: l.Capacity, Confirmed: n}
	}
	return nil
}
