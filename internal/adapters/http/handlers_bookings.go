package web

import (
	"net/http"

	"clubdash/internal/application/listutil"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
)

// bookingDeps wires the booking orchestrators to the stores.
func bookingDeps() orchestrators.BookingDeps {
	return orchestrators.BookingDeps{
		Templates:  stores.ScheduleStore,
		Bookings:   stores.BookingStore,
		Members:    stores.MemberStore,
		Locker:     locker,
		Now:        timeNow,
		GenerateID: generateID,
	}
}

// handleBookings handles POST /api/bookings (book) and DELETE /api/bookings (cancel).
// DELETE takes class_id and date as query parameters.
func handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		handleBookClass(w, r)
	case http.MethodDelete:
		handleCancelBooking(w, r)
	default:
		methodNotAllowed(w, http.MethodPost, http.MethodDelete)
	}
}

func handleBookClass(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := orchestrators.ExecuteBookClass(r.Context(), orchestrators.BookClassInput{
		ClassID: req.ClassID,
		Date:    req.Date,
		UserID:  callerID(r),
	}, bookingDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Unchanged {
		status = http.StatusOK
	}
	writeJSON(w, status, bookResponse{
		Booking:          toBookingJSON(result.Booking),
		WaitlistPosition: result.WaitlistPosition,
		SpotsRemaining:   result.SpotsRemaining,
		Unchanged:        result.Unchanged,
	})
}

func handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := bookingRequest{ClassID: q.Get("class_id"), Date: q.Get("date")}
	if !validRequest(w, &req) {
		return
	}

	result, err := orchestrators.ExecuteCancelBooking(r.Context(), orchestrators.CancelBookingInput{
		ClassID: req.ClassID,
		Date:    req.Date,
		UserID:  callerID(r),
	}, bookingDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := cancelResponse{Cancelled: toBookingJSON(result.Cancelled), SpotsRemaining: result.SpotsRemaining}
	if result.Promoted != nil {
		p := toBookingJSON(*result.Promoted)
		resp.Promoted = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMyBookings handles GET /api/bookings/mine?from=&to=&include_cancelled=
// The range defaults to today and the following 90 days.
func handleMyBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	start := today()
	params := rangeParams{From: q.Get("from"), To: q.Get("to")}
	if params.From == "" {
		params.From = dateParam(start)
	}
	if params.To == "" {
		params.To = dateParam(start.AddDate(0, 0, projections.MaxScheduleDays-2))
	}
	if !validRequest(w, &params) {
		return
	}

	bookings, err := projections.QueryGetMemberBookings(r.Context(), projections.GetMemberBookingsQuery{
		UserID:           callerID(r),
		From:             params.From,
		To:               params.To,
		IncludeCancelled: listutil.ParseBool(q, "include_cancelled"),
	}, projections.GetMemberBookingsDeps{
		Templates: stores.ScheduleStore,
		Bookings:  stores.BookingStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]memberBookingJSON, 0, len(bookings))
	for _, mb := range bookings {
		out = append(out, toMemberBookingJSON(mb))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMarkAttendance handles POST /api/attendance (coach or admin).
func handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req attendanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	record, err := orchestrators.ExecuteMarkAttendance(r.Context(), orchestrators.MarkAttendanceInput{
		ClassID: req.ClassID,
		Date:    req.Date,
		UserID:  req.MemberID,
		Status:  req.Status,
	}, orchestrators.MarkAttendanceDeps{
		Templates:  stores.ScheduleStore,
		Attendance: stores.AttendanceStore,
		Now:        timeNow,
		GenerateID: generateID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        record.ID,
		"class_id":  record.ClassID,
		"date":      record.Date,
		"member_id": record.UserID,
		"status":    record.Status,
		"marked_at": record.MarkedAt,
	})
}
