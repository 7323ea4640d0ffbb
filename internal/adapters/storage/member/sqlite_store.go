package member

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/member"
)

const profileColumns = "id, name, email, belt, status, training_focus, availability_days, sessions_this_month, streak, improvement, competition_wins"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member profile store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a profile by its ID.
// PRE: id is non-empty
// POST: Returns the profile or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM member_profile WHERE id = ?", id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return domain.Profile{}, fmt.Errorf("member not found: %w", err)
	}
	return p, err
}

// Save persists a profile (insert or update).
// PRE: profile has been validated
// POST: Profile is persisted
func (s *SQLiteStore) Save(ctx context.Context, p domain.Profile) error {
	focus, err := json.Marshal(nonNilStrings(p.TrainingFocus))
	if err != nil {
		return fmt.Errorf("encode training focus: %w", err)
	}
	days, err := json.Marshal(nonNilInts(p.Availability.Days))
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO member_profile (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, belt=excluded.belt, status=excluded.status,
			training_focus=excluded.training_focus, availability_days=excluded.availability_days,
			sessions_this_month=excluded.sessions_this_month, streak=excluded.streak,
			improvement=excluded.improvement, competition_wins=excluded.competition_wins`,
		p.ID, p.Name, p.Email, p.Belt, p.Status, string(focus), string(days),
		p.Stats.ThisMonthSessions, p.Stats.Streak, p.Stats.Improvement, p.Stats.CompetitionWins)
	return err
}

// List retrieves profiles in insertion order, optionally filtered by status.
// Insertion order is the stable tie-break for leaderboards.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Profile, error) {
	query := "SELECT " + profileColumns + " FROM member_profile"
	var args []any
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// Count returns the number of stored profiles.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member_profile").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (domain.Profile, error) {
	var p domain.Profile
	var focus, days string
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Belt, &p.Status, &focus, &days,
		&p.Stats.ThisMonthSessions, &p.Stats.Streak, &p.Stats.Improvement, &p.Stats.CompetitionWins)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := json.Unmarshal([]byte(focus), &p.TrainingFocus); err != nil {
		return domain.Profile{}, fmt.Errorf("decode training focus for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(days), &p.Availability.Days); err != nil {
		return domain.Profile{}, fmt.Errorf("decode availability for %s: %w", p.ID, err)
	}
	return p, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
