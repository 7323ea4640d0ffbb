package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"clubdash/internal/adapters/storage"
	domain "clubdash/internal/domain/schedule"
)

const templateColumns = "id, name, description, day_of_week, start_time, duration_minutes, capacity, level, type, coach, location, color, recurring, anchor_date, required_equipment, difficulty"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new class catalog store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a class template by its ID.
// PRE: id is non-empty
// POST: Returns the template or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Template, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM class_template WHERE id = ?", id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return domain.Template{}, fmt.Errorf("class template not found: %w", err)
	}
	return t, err
}

// Save persists a class template (insert or update).
// PRE: template has been validated
// POST: Template is persisted
func (s *SQLiteStore) Save(ctx context.Context, t domain.Template) error {
	equipment, err := json.Marshal(nonNil(t.RequiredEquipment))
	if err != nil {
		return fmt.Errorf("encode equipment: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO class_template (`+templateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description, day_of_week=excluded.day_of_week,
			start_time=excluded.start_time, duration_minutes=excluded.duration_minutes, capacity=excluded.capacity,
			level=excluded.level, type=excluded.type, coach=excluded.coach, location=excluded.location, color=excluded.color,
			recurring=excluded.recurring, anchor_date=excluded.anchor_date, required_equipment=excluded.required_equipment,
			difficulty=excluded.difficulty`,
		t.ID, t.Name, t.Description, t.DayOfWeek, t.StartTime, t.DurationMinutes, t.Capacity,
		t.Level, t.Type, t.Coach, t.Location, t.Color, t.Recurring, t.AnchorDate, string(equipment), t.Difficulty,
	)
	return err
}

// Delete removes a class template and, by cascade, its bookings and attendance.
// PRE: id is non-empty
// POST: Template with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM class_template WHERE id = ?", id)
	return err
}

// List retrieves the whole catalog ordered by weekday and start time.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Template, error) {
	return s.queryTemplates(ctx, "SELECT "+templateColumns+" FROM class_template ORDER BY day_of_week, start_time, id")
}

// ListByDay retrieves the templates scheduled on one weekday (Sunday=0).
func (s *SQLiteStore) ListByDay(ctx context.Context, dayOfWeek int) ([]domain.Template, error) {
	return s.queryTemplates(ctx, "SELECT "+templateColumns+" FROM class_template WHERE day_of_week = ? ORDER BY start_time, id", dayOfWeek)
}

// Count returns the number of templates in the catalog.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM class_template").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (domain.Template, error) {
	var t domain.Template
	var equipment string
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.DayOfWeek, &t.StartTime, &t.DurationMinutes, &t.Capacity,
		&t.Level, &t.Type, &t.Coach, &t.Location, &t.Color, &t.Recurring, &t.AnchorDate, &equipment, &t.Difficulty)
	if err != nil {
		return domain.Template{}, err
	}
	if err := json.Unmarshal([]byte(equipment), &t.RequiredEquipment); err != nil {
		return domain.Template{}, fmt.Errorf("decode equipment for %s: %w", t.ID, err)
	}
	return t, nil
}

func (s *SQLiteStore) queryTemplates(ctx context.Context, query string, args ...any) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
