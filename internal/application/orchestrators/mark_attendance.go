package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"clubdash/internal/domain/attendance"
)

// AttendanceRecorder persists attendance records.
type AttendanceRecorder interface {
	Save(ctx context.Context, r attendance.Record) error
}

// MarkAttendanceInput carries input for the attendance orchestrator.
type MarkAttendanceInput struct {
	ClassID string
	Date    string
	UserID  string
	Status  string // attended or missed
}

// MarkAttendanceDeps holds dependencies for MarkAttendance.
type MarkAttendanceDeps struct {
	Templates  TemplateLookup
	Attendance AttendanceRecorder
	Now        func() time.Time
	GenerateID func() string
}

// ExecuteMarkAttendance records whether a member attended an occurrence.
// Attendance is independent of bookings: walk-ins can be marked attended and
// booked members can be marked missed.
// PRE: the class runs on input.Date
// POST: exactly one record exists for (class, date, member) with input.Status
func ExecuteMarkAttendance(ctx context.Context, input MarkAttendanceInput, deps MarkAttendanceDeps) (attendance.Record, error) {
	if _, err := loadOccurrenceTemplate(ctx, input.ClassID, input.Date, input.UserID, deps.Templates); err != nil {
		return attendance.Record{}, err
	}

	r := attendance.Record{
		ID:       deps.GenerateID(),
		ClassID:  input.ClassID,
		Date:     input.Date,
		UserID:   input.UserID,
		Status:   input.Status,
		MarkedAt: deps.Now(),
	}
	if err := r.Validate(); err != nil {
		return attendance.Record{}, err
	}
	if err := deps.Attendance.Save(ctx, r); err != nil {
		return attendance.Record{}, err
	}

	slog.Info("attendance_marked", "class_id", r.ClassID, "date", r.Date, "user_id", r.UserID, "status", r.Status)
	return r, nil
}
