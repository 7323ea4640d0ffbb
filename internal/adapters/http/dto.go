package web

import (
	"time"

	"clubdash/internal/application/projections"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/leaderboard"
	"clubdash/internal/domain/member"
	"clubdash/internal/domain/schedule"
)

// Request DTOs

type bookingRequest struct {
	ClassID string `json:"class_id" validate:"required,max=100"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
}

type attendanceRequest struct {
	ClassID  string `json:"class_id" validate:"required,max=100"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	MemberID string `json:"member_id" validate:"required,max=100"`
	Status   string `json:"status" validate:"required,oneof=attended missed"`
}

type snapshotRequest struct {
	Metric string `json:"metric" validate:"required,oneof=sessions streak improvement competition_wins"`
}

// searchParams are the /api/classes query parameters after list parsing.
type searchParams struct {
	Text     string   `json:"q" validate:"max=200"`
	Days     []int    `json:"day" validate:"dive,min=0,max=6"`
	TimeFrom string   `json:"time_from" validate:"omitempty,hhmm"`
	TimeTo   string   `json:"time_to" validate:"omitempty,hhmm"`
	Levels   []string `json:"level" validate:"dive,oneof=beginner intermediate advanced all-levels"`
	WeekOf   string   `json:"week_of" validate:"omitempty,datetime=2006-01-02"`
}

type rangeParams struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

// Response DTOs

type bookingJSON struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"class_id"`
	Date        string    `json:"date"`
	MemberID    string    `json:"member_id"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBookingJSON(b booking.Booking) bookingJSON {
	return bookingJSON{
		ID:          b.ID,
		ClassID:     b.ClassID,
		Date:        b.Date,
		MemberID:    b.UserID,
		Status:      b.Status,
		RequestedAt: b.RequestedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type bookResponse struct {
	Booking          bookingJSON `json:"booking"`
	WaitlistPosition int         `json:"waitlist_position,omitempty"`
	SpotsRemaining   int         `json:"spots_remaining"`
	Unchanged        bool        `json:"unchanged"`
}

type cancelResponse struct {
	Cancelled      bookingJSON  `json:"cancelled"`
	Promoted       *bookingJSON `json:"promoted,omitempty"`
	SpotsRemaining int          `json:"spots_remaining"`
}

type classJSON struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	DescriptionHTML   string   `json:"description_html,omitempty"`
	DayOfWeek         int      `json:"day_of_week"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	DurationMinutes   int      `json:"duration_minutes"`
	Capacity          int      `json:"capacity"`
	Level             string   `json:"level"`
	Type              string   `json:"type"`
	Coach             string   `json:"coach"`
	Location          string   `json:"location,omitempty"`
	Color             string   `json:"color,omitempty"`
	Recurring         bool     `json:"recurring"`
	AnchorDate        string   `json:"anchor_date,omitempty"`
	RequiredEquipment []string `json:"required_equipment"`
	Difficulty        int      `json:"difficulty"`
	NextDate          string   `json:"next_date,omitempty"`
	CurrentBookings   int      `json:"current_bookings"`
	SpotsRemaining    int      `json:"spots_remaining"`
}

func toClassJSON(c projections.ClassSummary) classJSON {
	equipment := c.RequiredEquipment
	if equipment == nil {
		equipment = []string{}
	}
	return classJSON{
		ID:                c.ID,
		Name:              c.Name,
		DescriptionHTML:   c.DescriptionHTML,
		DayOfWeek:         c.DayOfWeek,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		DurationMinutes:   c.DurationMinutes,
		Capacity:          c.Capacity,
		Level:             c.Level,
		Type:              c.Type,
		Coach:             c.Coach,
		Location:          c.Location,
		Color:             c.Color,
		Recurring:         c.Recurring,
		AnchorDate:        c.AnchorDate,
		RequiredEquipment: equipment,
		Difficulty:        c.Difficulty,
		NextDate:          c.NextDate,
		CurrentBookings:   c.CurrentBookings,
		SpotsRemaining:    c.SpotsRemaining,
	}
}

type occurrenceJSON struct {
	OccurrenceID     string    `json:"occurrence_id"`
	ClassID          string    `json:"class_id"`
	Name             string    `json:"name"`
	Coach            string    `json:"coach"`
	Location         string    `json:"location,omitempty"`
	Color            string    `json:"color,omitempty"`
	Level            string    `json:"level"`
	Type             string    `json:"type"`
	Date             string    `json:"date"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Capacity         int       `json:"capacity"`
	IsBooked         bool      `json:"is_booked"`
	BookingStatus    string    `json:"booking_status,omitempty"`
	AttendanceStatus string    `json:"attendance_status"`
	IsFull           bool      `json:"is_full"`
	SpotsRemaining   int       `json:"spots_remaining"`
	Conflict         bool      `json:"conflict"`
}

func toOccurrenceJSON(v calendar.View) occurrenceJSON {
	t := v.Template
	return occurrenceJSON{
		OccurrenceID:     v.ID(),
		ClassID:          t.ID,
		Name:             t.Name,
		Coach:            t.Coach,
		Location:         t.Location,
		Color:            t.Color,
		Level:            t.Level,
		Type:             t.Type,
		Date:             v.Date,
		Start:            v.Start,
		End:              v.End,
		Capacity:         t.Capacity,
		IsBooked:         v.IsBooked,
		BookingStatus:    v.BookingStatus,
		AttendanceStatus: v.AttendanceStatus,
		IsFull:           v.IsFull,
		SpotsRemaining:   v.SpotsRemaining,
		Conflict:         v.Conflict,
	}
}

type dayJSON struct {
	Date      string           `json:"date"`
	Weekday   string           `json:"weekday"`
	Conflicts int              `json:"conflicts"`
	Classes   []occurrenceJSON `json:"classes"`
}

type scheduleResponse struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Days    []dayJSON `json:"days"`
	Skipped []string  `json:"skipped,omitempty"`
}

func toScheduleResponse(res projections.GetScheduleViewResult) scheduleResponse {
	out := scheduleResponse{From: res.From, To: res.To, Skipped: res.Skipped, Days: make([]dayJSON, 0, len(res.Days))}
	for _, d := range res.Days {
		day := dayJSON{Date: d.Date, Weekday: d.Weekday, Conflicts: d.Conflicts, Classes: make([]occurrenceJSON, 0, len(d.Classes))}
		for _, v := range d.Classes {
			day.Classes = append(day.Classes, toOccurrenceJSON(v))
		}
		out.Days = append(out.Days, day)
	}
	return out
}

type memberBookingJSON struct {
	bookingJSON
	ClassName        string     `json:"class_name,omitempty"`
	Coach            string     `json:"coach,omitempty"`
	Location         string     `json:"location,omitempty"`
	Start            *time.Time `json:"start,omitempty"`
	End              *time.Time `json:"end,omitempty"`
	WaitlistPosition int        `json:"waitlist_position,omitempty"`
}

func toMemberBookingJSON(mb projections.MemberBooking) memberBookingJSON {
	out := memberBookingJSON{
		bookingJSON:      toBookingJSON(mb.Booking),
		ClassName:        mb.ClassName,
		Coach:            mb.Coach,
		Location:         mb.Location,
		WaitlistPosition: mb.WaitlistPosition,
	}
	if !mb.Start.IsZero() {
		start, end := mb.Start, mb.End
		out.Start, out.End = &start, &end
	}
	return out
}

type partnerJSON struct {
	MemberID      string   `json:"member_id"`
	Name          string   `json:"name"`
	Belt          string   `json:"belt"`
	TrainingFocus []string `json:"training_focus"`
	Days          []int    `json:"days"`
	Score         int      `json:"score"`
}

func toPartnerJSON(m member.Match) partnerJSON {
	p := partnerJSON{
		MemberID:      m.Profile.ID,
		Name:          m.Profile.Name,
		Belt:          m.Profile.Belt,
		TrainingFocus: m.Profile.TrainingFocus,
		Days:          m.Profile.Availability.Days,
		Score:         m.Score,
	}
	if p.TrainingFocus == nil {
		p.TrainingFocus = []string{}
	}
	if p.Days == nil {
		p.Days = []int{}
	}
	return p
}

type leaderboardEntryJSON struct {
	MemberID     string `json:"member_id"`
	Name         string `json:"name"`
	Belt         string `json:"belt"`
	Score        int    `json:"score"`
	CurrentRank  int    `json:"current_rank"`
	PreviousRank int    `json:"previous_rank,omitempty"`
	RankChange   int    `json:"rank_change"`
}

type leaderboardResponse struct {
	Metric     string                 `json:"metric"`
	ComparedTo *time.Time             `json:"compared_to,omitempty"`
	Entries    []leaderboardEntryJSON `json:"entries"`
}

func toLeaderboardResponse(res projections.GetLeaderboardResult) leaderboardResponse {
	out := leaderboardResponse{Metric: res.Metric, Entries: make([]leaderboardEntryJSON, 0, len(res.Entries))}
	if !res.ComparedTo.IsZero() {
		at := res.ComparedTo
		out.ComparedTo = &at
	}
	for _, e := range res.Entries {
		out.Entries = append(out.Entries, toLeaderboardEntryJSON(e))
	}
	return out
}

func toLeaderboardEntryJSON(e leaderboard.Entry) leaderboardEntryJSON {
	return leaderboardEntryJSON{
		MemberID:     e.MemberID,
		Name:         e.Name,
		Belt:         e.Belt,
		Score:        e.Score,
		CurrentRank:  e.CurrentRank,
		PreviousRank: e.PreviousRank,
		RankChange:   e.RankChange(),
	}
}

type snapshotResponse struct {
	ID      string    `json:"id"`
	Metric  string    `json:"metric"`
	TakenAt time.Time `json:"taken_at"`
	Ranked  int       `json:"ranked"`
}

// dateParam formats d as YYYY-MM-DD.
func dateParam(d time.Time) string {
	return d.Format(schedule.DateLayout)
}
