package ports

import (
	"context"

	"github.com/google/uuid"

	"rijks-verifier/internal/core/domain"
)

// RunListFilter pages through stored runs, newest first.
type RunListFilter struct {
	Limit  int
	Offset int
}

// RunRepository stores finished verification runs.
type RunRepository interface {
	Save(ctx context.Context, report *domain.RunReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RunReport, error)
	List(ctx context.Context, filter RunListFilter) ([]*domain.RunReport, int, error)
}
