package member

import (
	"context"

	domain "clubdash/internal/domain/member"
)

// Store persists member profiles.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	Save(ctx context.Context, value domain.Profile) error
	List(ctx context.Context, filter ListFilter) ([]domain.Profile, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status string
}
