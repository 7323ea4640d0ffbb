package schedule

import (
	"context"

	domain "clubdash/internal/domain/schedule"
)

// Store persists the class catalog.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Template, error)
	Save(ctx context.Context, value domain.Template) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Template, error)
	ListByDay(ctx context.Context, dayOfWeek int) ([]domain.Template, error)
	Count(ctx context.Context) (int, error)
}
