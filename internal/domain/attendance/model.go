package attendance

import (
	"errors"
	"time"
)

// Status constants. StatusNone is never stored; it is the resolved value when
// no record exists.
const (
	StatusAttended = "attended"
	StatusMissed   = "missed"
	StatusNone     = "none"
)

// Domain errors
var (
	ErrEmptyClassID  = errors.New("attendance must reference a class")
	ErrEmptyDate     = errors.New("attendance must have a class date")
	ErrEmptyUserID   = errors.New("attendance must be associated with a member")
	ErrInvalidStatus = errors.New("status must be 'attended' or 'missed'")
)

// Record holds the post-hoc attendance of one member at one occurrence.
// It is independent of bookings: a drop-in has a record without a booking and
// a no-show keeps its booking with no record until someone marks it.
type Record struct {
	ID       string
	ClassID  string
	Date     string // YYYY-MM-DD
	UserID   string
	Status   string
	MarkedAt time.Time
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Record) Validate() error {
	if r.ClassID == "" {
		return ErrEmptyClassID
	}
	if r.Date == "" {
		return ErrEmptyDate
	}
	if r.UserID == "" {
		return ErrEmptyUserID
	}
	if r.Status != StatusAttended && r.Status != StatusMissed {
		return ErrInvalidStatus
	}
	return nil
}

// Find looks up the record for (classID, date, userID).
func Find(records []Record, classID, date, userID string) (Record, bool) {
	for _, r := range records {
		if r.ClassID == classID && r.Date == date && r.UserID == userID {
			return r, true
		}
	}
	return Record{}, false
}

// StatusFor returns the attendance status for (classID, date, userID),
// StatusNone when there is no record.
func StatusFor(records []Record, classID, date, userID string) string {
	if r, ok := Find(records, classID, date, userID); ok {
		return r.Status
	}
	return StatusNone
}

// CountAttended counts attended records per member.
func CountAttended(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Status == StatusAttended {
			counts[r.UserID]++
		}
	}
	return counts
}
