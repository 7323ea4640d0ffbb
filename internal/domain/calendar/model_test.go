package calendar_test

import (
	"reflect"
	"testing"
	"time"

	"clubdash/internal/domain/attendance"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/schedule"
)

var monday = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func occurrence(t *testing.T, id, start string, minutes, capacity int) schedule.Occurrence {
	t.Helper()
	tmpl := schedule.Template{
		ID: id, Name: id, DayOfWeek: 1, StartTime: start, DurationMinutes: minutes,
		Capacity: capacity, Level: schedule.LevelAllLevels, Recurring: true, Difficulty: 1,
	}
	occs, err := schedule.ExpandDay([]schedule.Template{tmpl}, monday)
	if err != nil || len(occs) != 1 {
		t.Fatalf("ExpandDay(%s) = %v, %v", id, occs, err)
	}
	return occs[0]
}

func confirmed(classID, user string) booking.Booking {
	return booking.Booking{ID: classID + user, ClassID: classID, Date: "2024-06-03", UserID: user, Status: booking.StatusConfirmed}
}

// TestResolve tests each resolution rule.
func TestResolve(t *testing.T) {
	occ := occurrence(t, "fund", "18:00", 60, 2)
	waitlisted := confirmed("fund", "w")
	waitlisted.Status = booking.StatusWaitlisted
	cancelled := confirmed("fund", "x")
	cancelled.Status = booking.StatusCancelled

	bookings := []booking.Booking{confirmed("fund", "a"), confirmed("fund", "b"), waitlisted, cancelled}
	records := []attendance.Record{
		{ClassID: "fund", Date: "2024-06-03", UserID: "a", Status: attendance.StatusMissed},
		{ClassID: "fund", Date: "2024-06-03", UserID: "dropin", Status: attendance.StatusAttended},
	}

	tests := []struct {
		name           string
		user           string
		wantBooked     bool
		wantStatus     string
		wantAttendance string
	}{
		{name: "confirmed booking with missed record", user: "a", wantBooked: true, wantStatus: booking.StatusConfirmed, wantAttendance: attendance.StatusMissed},
		{name: "waitlisted", user: "w", wantBooked: true, wantStatus: booking.StatusWaitlisted, wantAttendance: attendance.StatusNone},
		{name: "cancelled treated as absent", user: "x", wantAttendance: attendance.StatusNone},
		{name: "drop-in attended without booking", user: "dropin", wantAttendance: attendance.StatusAttended},
		{name: "stranger", user: "nobody", wantAttendance: attendance.StatusNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := calendar.Resolve(occ, bookings, records, tt.user)
			if v.IsBooked != tt.wantBooked || v.BookingStatus != tt.wantStatus || v.AttendanceStatus != tt.wantAttendance {
				t.Errorf("Resolve = booked %v status %q attendance %q, want %v %q %q",
					v.IsBooked, v.BookingStatus, v.AttendanceStatus, tt.wantBooked, tt.wantStatus, tt.wantAttendance)
			}
			if !v.IsFull || v.SpotsRemaining != 0 {
				t.Errorf("IsFull = %v SpotsRemaining = %d, want full with 0", v.IsFull, v.SpotsRemaining)
			}
		})
	}
}

// TestResolve_SpotsRemaining counts only confirmed bookings for the occurrence.
func TestResolve_SpotsRemaining(t *testing.T) {
	occ := occurrence(t, "fund", "18:00", 60, 3)
	other := confirmed("fund", "b")
	other.Date = "2024-06-10"
	v := calendar.Resolve(occ, []booking.Booking{confirmed("fund", "a"), other, confirmed("open", "c")}, nil, "a")
	if v.IsFull || v.SpotsRemaining != 2 {
		t.Errorf("IsFull = %v SpotsRemaining = %d, want not full with 2", v.IsFull, v.SpotsRemaining)
	}
}

// TestResolve_IsPure checks identical snapshots give identical views.
func TestResolve_IsPure(t *testing.T) {
	occ := occurrence(t, "fund", "18:00", 60, 2)
	bookings := []booking.Booking{confirmed("fund", "a")}
	records := []attendance.Record{{ClassID: "fund", Date: "2024-06-03", UserID: "a", Status: attendance.StatusAttended}}
	first := calendar.Resolve(occ, bookings, records, "a")
	second := calendar.Resolve(occ, bookings, records, "a")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Resolve not deterministic: %+v vs %+v", first, second)
	}
	if len(bookings) != 1 || bookings[0].Status != booking.StatusConfirmed {
		t.Error("Resolve mutated the booking snapshot")
	}
}
