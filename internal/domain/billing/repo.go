package billing

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a bill listing. Zero values mean "no filter".
type ListFilter struct {
	PatientRef string
	Status     string
}

type BillRepository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// Mutate loads the bill under a row lock, applies fn, and persists the
	// result in the same transaction. fn returning an error aborts the
	// mutation and is returned unchanged.
	Mutate(ctx context.Context, id uuid.UUID, fn func(b *Bill) error) (*Bill, error)
	// List returns bills matching the filter ordered by created_at
	// descending, capped at limit.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Bill, error)
}
