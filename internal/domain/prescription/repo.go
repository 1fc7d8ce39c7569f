package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a prescription listing. Zero values mean "no filter".
type ListFilter struct {
	PatientRef string
	DoctorRef  string
	From       *time.Time
	To         *time.Time
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns prescriptions matching the filter ordered by created_at
	// descending, capped at limit.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Prescription, error)
}
