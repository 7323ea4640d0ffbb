package projections

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/schedule"
)

// GetMemberBookingsQuery carries query parameters.
type GetMemberBookingsQuery struct {
	UserID           string
	From             string
	To               string
	IncludeCancelled bool
}

// MemberBooking is a booking joined with its class times.
type MemberBooking struct {
	booking.Booking
	ClassName        string
	Coach            string
	Location         string
	Start            time.Time
	End              time.Time
	WaitlistPosition int // 1-based, 0 unless waitlisted
}

// GetMemberBookingsDeps holds dependencies for GetMemberBookings.
type GetMemberBookingsDeps struct {
	Templates TemplateLister
	Bookings  MemberBookingStore
}

// QueryGetMemberBookings lists a member's bookings in [From, To] ordered by
// class start. Waitlisted bookings carry their queue position.
// PRE: UserID is non-empty
func QueryGetMemberBookings(ctx context.Context, query GetMemberBookingsQuery, deps GetMemberBookingsDeps) ([]MemberBooking, error) {
	if _, _, err := parseRange(query.From, query.To); err != nil {
		return nil, err
	}
	templates, err := deps.Templates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	byID := make(map[string]schedule.Template, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}

	bookings, err := deps.Bookings.ListByUser(ctx, query.UserID, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	out := make([]MemberBooking, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsActive() && !query.IncludeCancelled {
			continue
		}
		mb := MemberBooking{Booking: b}
		if t, ok := byID[b.ClassID]; ok {
			mb.ClassName, mb.Coach, mb.Location = t.Name, t.Coach, t.Location
			if day, err := schedule.ParseDate(b.Date); err == nil {
				if occs, _ := schedule.ExpandDay([]schedule.Template{t}, day); len(occs) == 1 {
					mb.Start, mb.End = occs[0].Start, occs[0].End
				}
			}
		}
		if b.Status == booking.StatusWaitlisted {
			queue, err := deps.Bookings.ListByOccurrence(ctx, b.ClassID, b.Date)
			if err != nil {
				return nil, fmt.Errorf("load waitlist: %w", err)
			}
			mb.WaitlistPosition = booking.WaitlistPosition(queue, b.ClassID, b.Date, b.UserID)
		}
		out = append(out, mb)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}
