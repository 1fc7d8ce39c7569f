package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxListResults caps the number of bookings returned by a listing.
const MaxListResults = 500

type Service struct {
	bookings BookingRepository
	logger   zerolog.Logger
}

func NewService(bookings BookingRepository, logger zerolog.Logger) *Service {
	return &Service{bookings: bookings, logger: logger}
}

// CheckConflict reports the first active booking colliding with the window
// [start, start+duration) for the given patient or doctor. The booking
// identified by excludeID is ignored so a booking never conflicts with
// itself during reschedule. Returns nil when the window is free.
func (s *Service) CheckConflict(ctx context.Context, patientRef, doctorRef string, start time.Time, durationMinutes int, excludeID uuid.UUID) (*Booking, error) {
	existing, err := s.bookings.ListActiveByParticipants(ctx, patientRef, doctorRef)
	if err != nil {
		return nil, fmt.Errorf("loading participant bookings: %w", err)
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return HasConflict(patientRef, doctorRef, start, end, existing, excludeID), nil
}

// CreateBooking validates the booking, rejects any window collision, and
// persists it with status "scheduled". Later states are reached through
// RescheduleBooking only.
func (s *Service) CreateBooking(ctx context.Context, b *Booking) error {
	if b.PatientRef == "" {
		return &ValidationError{Message: "patient_ref is required"}
	}
	if b.DoctorRef == "" {
		return &ValidationError{Message: "doctor_ref is required"}
	}
	if b.ScheduledAt.IsZero() {
		return &ValidationError{Message: "scheduled_at is required"}
	}
	if b.DurationMinutes <= 0 {
		return &ValidationError{Message: "duration_minutes must be positive"}
	}
	if b.Status != "" && b.Status != StatusScheduled {
		return &ValidationError{Message: "new bookings must start as scheduled"}
	}
	b.Status = StatusScheduled
	// Normalize before persisting: the exclusion constraints compare
	// wall-clock ranges, so zoned inputs must land in the store as UTC.
	b.ScheduledAt = b.ScheduledAt.UTC()

	conflict, err := s.CheckConflict(ctx, b.PatientRef, b.DoctorRef, b.ScheduledAt, b.DurationMinutes, uuid.Nil)
	if err != nil {
		return err
	}
	if conflict != nil {
		s.logger.Info().
			Str("patient_ref", b.PatientRef).
			Str("doctor_ref", b.DoctorRef).
			Str("conflicting_booking", conflict.ID.String()).
			Msg("booking rejected: window collision")
		return ErrConflict
	}

	// The exclusion constraints catch races between the check above and
	// the insert; the repo maps them back to ErrConflict.
	return s.bookings.Create(ctx, b)
}

// RescheduleBooking applies a whitelisted update to an existing booking.
// When the effective window changes, the merged window (updated fields
// over stored ones) is re-checked for collisions with the booking itself
// excluded. Cancelled bookings cannot be changed.
func (s *Service) RescheduleBooking(ctx context.Context, id uuid.UUID, upd BookingUpdate) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, &ValidationError{Message: "booking is cancelled"}
	}

	if upd.Status != nil {
		if !ValidStatus(*upd.Status) {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid status: %s", *upd.Status)}
		}
		b.Status = *upd.Status
	}
	if upd.Reason != nil {
		b.Reason = upd.Reason
	}
	if upd.Notes != nil {
		b.Notes = upd.Notes
	}

	windowChanged := false
	if upd.ScheduledAt != nil {
		b.ScheduledAt = upd.ScheduledAt.UTC()
		windowChanged = true
	}
	if upd.DurationMinutes != nil {
		if *upd.DurationMinutes <= 0 {
			return nil, &ValidationError{Message: "duration_minutes must be positive"}
		}
		b.DurationMinutes = *upd.DurationMinutes
		windowChanged = true
	}

	if windowChanged && b.Active() {
		conflict, err := s.CheckConflict(ctx, b.PatientRef, b.DoctorRef, b.ScheduledAt, b.DurationMinutes, b.ID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			s.logger.Info().
				Str("booking", b.ID.String()).
				Str("conflicting_booking", conflict.ID.String()).
				Msg("reschedule rejected: window collision")
			return nil, ErrConflict
		}
	}

	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CancelBooking moves a booking to the terminal cancelled status, freeing
// its window.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	cancelled := StatusCancelled
	return s.RescheduleBooking(ctx, id, BookingUpdate{Status: &cancelled})
}

// GetBooking returns a booking by id.
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// DeleteBooking removes a booking outright. Cancelling is the normal path;
// deletion exists for administrative cleanup.
func (s *Service) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return s.bookings.Delete(ctx, id)
}

// ListBookings returns bookings matching the filter ordered by scheduled_at
// ascending. The limit is clamped to MaxListResults.
func (s *Service) ListBookings(ctx context.Context, filter ListFilter, limit, offset int) ([]*Booking, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid status: %s", filter.Status)}
	}
	if limit <= 0 || limit > MaxListResults {
		limit = MaxListResults
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.List(ctx, filter, limit, offset)
}
