package schedule_test

import (
	"errors"
	"testing"
	"time"

	"clubdash/internal/domain/schedule"
)

func validTemplate() schedule.Template {
	return schedule.Template{
		ID:              "t-1",
		Name:            "Fundamentals",
		DayOfWeek:       1,
		StartTime:       "18:00",
		DurationMinutes: 60,
		Capacity:        20,
		Level:           schedule.LevelBeginner,
		Type:            "gi",
		Coach:           "Pat",
		Recurring:       true,
		Difficulty:      2,
	}
}

// TestTemplate_Validate tests validation of Template.
func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*schedule.Template)
		wantErr       bool
		wantMalformed bool
	}{
		{name: "valid template", mutate: func(*schedule.Template) {}},
		{name: "valid one-off", mutate: func(tp *schedule.Template) { tp.Recurring = false; tp.AnchorDate = "2024-06-03" }},
		{name: "empty ID", mutate: func(tp *schedule.Template) { tp.ID = "" }, wantErr: true},
		{name: "empty name", mutate: func(tp *schedule.Template) { tp.Name = " " }, wantErr: true},
		{name: "day below range", mutate: func(tp *schedule.Template) { tp.DayOfWeek = -1 }, wantErr: true, wantMalformed: true},
		{name: "day above range", mutate: func(tp *schedule.Template) { tp.DayOfWeek = 7 }, wantErr: true, wantMalformed: true},
		{name: "zero capacity", mutate: func(tp *schedule.Template) { tp.Capacity = 0 }, wantErr: true, wantMalformed: true},
		{name: "zero duration", mutate: func(tp *schedule.Template) { tp.DurationMinutes = 0 }, wantErr: true, wantMalformed: true},
		{name: "bad start time", mutate: func(tp *schedule.Template) { tp.StartTime = "6pm" }, wantErr: true, wantMalformed: true},
		{name: "unpadded start time", mutate: func(tp *schedule.Template) { tp.StartTime = "9:05" }, wantErr: true, wantMalformed: true},
		{name: "one-off without anchor", mutate: func(tp *schedule.Template) { tp.Recurring = false }, wantErr: true, wantMalformed: true},
		{name: "difficulty out of range", mutate: func(tp *schedule.Template) { tp.Difficulty = 6 }, wantErr: true, wantMalformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := validTemplate()
			tt.mutate(&tp)
			err := tp.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Template.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var mErr *schedule.MalformedTemplateError
			if got := errors.As(err, &mErr); got != tt.wantMalformed {
				t.Errorf("errors.As(MalformedTemplateError) = %v, want %v (err=%v)", got, tt.wantMalformed, err)
			}
		})
	}
}

// TestTemplate_EndTime tests end-of-class wall-clock calculation.
func TestTemplate_EndTime(t *testing.T) {
	tp := validTemplate()
	tp.StartTime = "18:30"
	tp.DurationMinutes = 90
	got, err := tp.EndTime()
	if err != nil {
		t.Fatalf("EndTime: %v", err)
	}
	if got != "20:00" {
		t.Errorf("EndTime = %q, want 20:00", got)
	}
}

// TestTemplate_OccursOn tests weekday and anchor matching.
func TestTemplate_OccursOn(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	tp := validTemplate()
	if !tp.OccursOn(monday) {
		t.Error("recurring Monday class should occur on a Monday")
	}
	if tp.OccursOn(tuesday) {
		t.Error("recurring Monday class should not occur on a Tuesday")
	}

	oneOff := validTemplate()
	oneOff.Recurring = false
	oneOff.AnchorDate = "2024-06-04"
	if !oneOff.OccursOn(tuesday) {
		t.Error("one-off class should occur on its anchor date")
	}
	if oneOff.OccursOn(monday) {
		t.Error("one-off class should not occur off its anchor date")
	}

	broken := validTemplate()
	broken.Capacity = 0
	if broken.OccursOn(monday) {
		t.Error("malformed template should never occur")
	}
}
