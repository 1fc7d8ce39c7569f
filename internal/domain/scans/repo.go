package scans

import (
	"context"

	"github.com/google/uuid"
)

type ScanRepository interface {
	Create(ctx context.Context, s *Scan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Scan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient returns a patient's scans ordered by created_at
	// descending, capped at limit.
	ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Scan, error)
}
