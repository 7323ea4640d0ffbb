package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// Training focus tags
const (
	FocusGi          = "gi"
	FocusNoGi        = "no-gi"
	FocusCompetition = "competition"
	FocusSelfDefense = "self-defense"
	FocusFitness     = "fitness"
	FocusTechnique   = "technique"
)

// ValidFocus lists the accepted training focus tags.
var ValidFocus = []string{FocusGi, FocusNoGi, FocusCompetition, FocusSelfDefense, FocusFitness, FocusTechnique}

// Domain errors
var (
	ErrEmptyID           = errors.New("member ID is required")
	ErrEmptyName         = errors.New("member name cannot be empty")
	ErrNameTooLong       = errors.New("member name cannot exceed 100 characters")
	ErrInvalidEmail      = errors.New("member email must be valid")
	ErrInvalidStatus     = errors.New("status must be 'active', 'inactive', or 'archived'")
	ErrInvalidFocus      = errors.New("unknown training focus")
	ErrInvalidDay        = errors.New("availability days must be between 0 and 6")
	ErrNegativeStatistic = errors.New("member statistics cannot be negative")
)

// Availability is the set of weekdays a member usually trains (Sunday=0).
type Availability struct {
	Days []int
}

// Stats holds the figures used for partner matching and leaderboards.
type Stats struct {
	ThisMonthSessions int
	Streak            int // consecutive training weeks
	Improvement       int // percentage points over the last period
	CompetitionWins   int
}

// Profile is the read-only member view used for scoring and ranking.
type Profile struct {
	ID            string
	Name          string
	Email         string
	Belt          string
	Status        string
	TrainingFocus []string
	Availability  Availability
	Stats         Stats
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email, when present, must contain '@'
func (p *Profile) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	if p.Status != StatusActive && p.Status != StatusInactive && p.Status != StatusArchived {
		return ErrInvalidStatus
	}
	if !IsValidBelt(p.Belt) {
		return ErrInvalidBelt
	}
	for _, f := range p.TrainingFocus {
		if !contains(ValidFocus, f) {
			return ErrInvalidFocus
		}
	}
	for _, d := range p.Availability.Days {
		if d < 0 || d > 6 {
			return ErrInvalidDay
		}
	}
	s := p.Stats
	if s.ThisMonthSessions < 0 || s.Streak < 0 || s.CompetitionWins < 0 {
		return ErrNegativeStatistic
	}
	return nil
}

// IsActive returns true if the member is currently active.
func (p *Profile) IsActive() bool {
	return p.Status == StatusActive
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
