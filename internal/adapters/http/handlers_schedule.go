package web

import (
	"net/http"

	"clubdash/internal/application/listutil"
	"clubdash/internal/application/projections"
	"clubdash/internal/domain/schedule"
)

// handleSearchClasses handles GET /api/classes
// Query: q, day (repeated or comma-separated, 0=Sunday), time_from, time_to,
// level, type, coach, available, recurring, week_of, sort, dir, page, per_page.
func handleSearchClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()

	days, bad := listutil.ParseIntList(q, "day")
	if len(bad) > 0 {
		writeError(w, http.StatusBadRequest, "day must be a number 0-6")
		return
	}
	params := searchParams{
		Text:     q.Get("q"),
		Days:     days,
		TimeFrom: q.Get("time_from"),
		TimeTo:   q.Get("time_to"),
		Levels:   listutil.ParseList(q, "level"),
		WeekOf:   q.Get("week_of"),
	}
	if !validRequest(w, &params) {
		return
	}

	result, err := projections.QuerySearchClasses(r.Context(), projections.SearchClassesQuery{
		Criteria: schedule.Criteria{
			Text:          params.Text,
			DaysOfWeek:    params.Days,
			TimeFrom:      params.TimeFrom,
			TimeTo:        params.TimeTo,
			Levels:        params.Levels,
			Types:         listutil.ParseList(q, "type"),
			Coaches:       listutil.ParseList(q, "coach"),
			AvailableOnly: listutil.ParseBool(q, "available"),
			RecurringOnly: listutil.ParseBool(q, "recurring"),
		},
		WeekOf: params.WeekOf,
		Page:   listutil.ParsePageParams(q),
		Sort:   listutil.ParseSortParams(q, projections.SearchSortColumns),
	}, projections.SearchClassesDeps{
		Templates: stores.ScheduleStore,
		Bookings:  stores.BookingStore,
		Today:     today,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	classes := make([]classJSON, 0, len(result.Classes))
	for _, c := range result.Classes {
		classes = append(classes, toClassJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"classes": classes,
		"page":    result.Page,
	})
}

// handleSchedule handles GET /api/schedule?from=&to=
// The range defaults to the seven days from today. Member state is resolved
// for the caller; staff may pass member_id to view another member.
func handleSchedule(w http.ResponseWriter, r *http.Request) {
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
		from, err := schedule.ParseDate(params.From)
		if err != nil {
			from = start
		}
		params.To = dateParam(from.AddDate(0, 0, 6))
	}
	if !validRequest(w, &params) {
		return
	}

	userID := callerID(r)
	if other := q.Get("member_id"); other != "" && other != userID {
		if !isStaff(r) {
			writeError(w, http.StatusForbidden, "only staff may view another member's schedule")
			return
		}
		userID = other
	}

	result, err := projections.QueryGetScheduleView(r.Context(), projections.GetScheduleViewQuery{
		From:   params.From,
		To:     params.To,
		UserID: userID,
	}, projections.GetScheduleViewDeps{
		Templates:  stores.ScheduleStore,
		Bookings:   stores.BookingStore,
		Attendance: stores.AttendanceStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(result))
}
