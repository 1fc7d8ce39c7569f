package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a booking listing. Zero values mean "no filter".
type ListFilter struct {
	PatientRef string
	DoctorRef  string
	Status     string
	// Day restricts results to bookings starting within the UTC day
	// [Day, Day+24h).
	Day *time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns bookings matching the filter ordered by scheduled_at
	// ascending, capped at limit.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Booking, error)
	// ListActiveByParticipants returns all non-cancelled bookings that
	// involve the given patient or doctor.
	ListActiveByParticipants(ctx context.Context, patientRef, doctorRef string) ([]*Booking, error)
}
