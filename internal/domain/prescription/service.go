package prescription

import (
	"context"

	"github.com/google/uuid"
)

// MaxListResults caps the number of prescriptions returned by a listing.
const MaxListResults = 500

type Service struct {
	prescriptions PrescriptionRepository
}

func NewService(prescriptions PrescriptionRepository) *Service {
	return &Service{prescriptions: prescriptions}
}

// CreatePrescription validates and persists a prescription. doctorRef is
// the authenticated prescriber and overrides anything in the payload.
func (s *Service) CreatePrescription(ctx context.Context, p *Prescription, doctorRef string) error {
	if doctorRef == "" {
		return &ValidationError{Message: "prescriber identity is required"}
	}
	if p.PatientRef == "" {
		return &ValidationError{Message: "patient_ref is required"}
	}
	if len(p.Items) == 0 {
		return &ValidationError{Message: "at least one item is required"}
	}
	for _, it := range p.Items {
		if it.Drug == "" {
			return &ValidationError{Message: "item drug is required"}
		}
	}
	p.DoctorRef = doctorRef
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	return s.prescriptions.Delete(ctx, id)
}

// ListPrescriptions returns prescriptions matching the filter ordered
// newest first. The limit is clamped to MaxListResults.
func (s *Service) ListPrescriptions(ctx context.Context, filter ListFilter, limit, offset int) ([]*Prescription, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, &ValidationError{Message: "to must not precede from"}
	}
	if limit <= 0 || limit > MaxListResults {
		limit = MaxListResults
	}
	if offset < 0 {
		offset = 0
	}
	return s.prescriptions.List(ctx, filter, limit, offset)
}
