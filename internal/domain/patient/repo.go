package patient

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search matches q case-insensitively against name, phone, and email,
	// capped at limit. An empty q lists everyone newest first.
	Search(ctx context.Context, q string, limit int) ([]*Patient, error)
}
