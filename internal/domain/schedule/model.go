package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts used for wall-clock dates and times. All dates are local time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Level constants
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelAllLevels    = "all-levels"
)

// ValidLevels contains all valid level values.
var ValidLevels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAllLevels}

// Domain errors
var (
	ErrEmptyID   = errors.New("class template ID cannot be empty")
	ErrEmptyName = errors.New("class name cannot be empty")
)

// Template represents a recurring weekly class slot.
// Occurrences are resolved on-the-fly from Template + date range.
type Template struct {
	ID                string
	Name              string
	Description       string // markdown
	DayOfWeek         int    // 0 = Sunday ... 6 = Saturday
	StartTime         string // HH:MM format
	DurationMinutes   int
	Capacity          int
	Level             string
	Type              string
	Coach             string
	Location          string
	Color             string
	Recurring         bool
	AnchorDate        string // YYYY-MM-DD, one-off classes only
	RequiredEquipment []string
	Difficulty        int // 1-5
}

// MalformedTemplateError reports a template that cannot be expanded.
// It is fatal to that template only.
type MalformedTemplateError struct {
	TemplateID string
	Reason     string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("malformed class template %q: %s", e.TemplateID, e.Reason)
}

func malformed(id, format string, args ...any) *MalformedTemplateError {
	return &MalformedTemplateError{TemplateID: id, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks if the Template has valid data.
// PRE: Template struct is populated
// POST: Returns nil if valid, a *MalformedTemplateError or sentinel error otherwise
func (t *Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if err := t.checkExpandable(); err != nil {
		return err
	}
	if t.Difficulty < 1 || t.Difficulty > 5 {
		return malformed(t.ID, "difficulty %d outside 1-5", t.Difficulty)
	}
	return nil
}

// checkExpandable verifies the fields expansion depends on.
func (t *Template) checkExpandable() error {
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		return malformed(t.ID, "day of week %d outside 0-6", t.DayOfWeek)
	}
	if t.Capacity <= 0 {
		return malformed(t.ID, "capacity must be positive, got %d", t.Capacity)
	}
	if t.DurationMinutes <= 0 {
		return malformed(t.ID, "duration must be positive, got %d", t.DurationMinutes)
	}
	if !IsClockTime(t.StartTime) {
		return malformed(t.ID, "start time %q is not HH:MM", t.StartTime)
	}
	if !t.Recurring {
		if t.AnchorDate == "" {
			return malformed(t.ID, "one-off class has no anchor date")
		}
		if _, err := time.Parse(DateLayout, t.AnchorDate); err != nil {
			return malformed(t.ID, "anchor date %q is not YYYY-MM-DD", t.AnchorDate)
		}
	}
	return nil
}

// IsClockTime reports whether s is a zero-padded 24-hour HH:MM time.
// time.Parse alone accepts "9:05", which breaks lexical ordering.
func IsClockTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// Duration returns the class length.
func (t *Template) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// EndTime returns the HH:MM wall-clock end of the class.
// PRE: StartTime is in HH:MM format
func (t *Template) EndTime() (string, error) {
	start, err := time.Parse(TimeLayout, t.StartTime)
	if err != nil {
		return "", fmt.Errorf("invalid start time %q: %w", t.StartTime, err)
	}
	return start.Add(t.Duration()).Format(TimeLayout), nil
}

// OccursOn reports whether the template produces an occurrence on day.
// Malformed templates never occur.
func (t *Template) OccursOn(day time.Time) bool {
	if t.checkExpandable() != nil {
		return false
	}
	if !t.Recurring {
		return day.Format(DateLayout) == t.AnchorDate
	}
	return int(day.Weekday()) == t.DayOfWeek
}

// ParseDate parses a YYYY-MM-DD date as local midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// IsValidLevel reports whether level is a known class level.
func IsValidLevel(level string) bool {
	for _, l := range ValidLevels {
		if l == level {
			return true
		}
	}
	return false
}
