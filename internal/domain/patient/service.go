package patient

import (
	"context"

	"github.com/google/uuid"
)

// MaxSearchResults caps the number of patients returned by a search.
const MaxSearchResults = 50

type Service struct {
	patients PatientRepository
}

func NewService(patients PatientRepository) *Service {
	return &Service{patients: patients}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return &ValidationError{Message: "first_name is required"}
	}
	if p.LastName == "" {
		return &ValidationError{Message: "last_name is required"}
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// UpdatePatient applies a whitelisted update to an existing patient.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		if *upd.FirstName == "" {
			return nil, &ValidationError{Message: "first_name must not be empty"}
		}
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		if *upd.LastName == "" {
			return nil, &ValidationError{Message: "last_name must not be empty"}
		}
		p.LastName = *upd.LastName
	}
	if upd.BirthDate != nil {
		p.BirthDate = upd.BirthDate
	}
	if upd.Gender != nil {
		p.Gender = upd.Gender
	}
	if upd.Phone != nil {
		p.Phone = upd.Phone
	}
	if upd.Email != nil {
		p.Email = upd.Email
	}
	if upd.Address != nil {
		p.Address = upd.Address
	}
	if upd.Notes != nil {
		p.Notes = upd.Notes
	}

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

// SearchPatients matches q against names and contact details, capped at
// MaxSearchResults.
func (s *Service) SearchPatients(ctx context.Context, q string) ([]*Patient, error) {
	return s.patients.Search(ctx, q, MaxSearchResults)
}
