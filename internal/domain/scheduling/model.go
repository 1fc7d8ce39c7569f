package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses. A cancelled booking is terminal and never participates
// in conflict detection.
const (
	StatusScheduled = "scheduled"
	StatusCheckedIn = "checked-in"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCheckedIn: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

// ValidStatus reports whether s is a recognized booking status.
func ValidStatus(s string) bool { return validStatuses[s] }

// Booking maps to the booking table.
type Booking struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientRef      string    `db:"patient_ref" json:"patient_ref"`
	DoctorRef       string    `db:"doctor_ref" json:"doctor_ref"`
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          string    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the booking window.
func (b *Booking) End() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Active reports whether the booking occupies its window. Cancelled
// bookings free their slot.
func (b *Booking) Active() bool { return b.Status != StatusCancelled }

// BookingUpdate carries the fields a caller may change on an existing
// booking. Nil fields are left untouched.
type BookingUpdate struct {
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// overlaps reports whether the half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back windows do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return bStart.Before(aEnd) && bEnd.After(aStart)
}

// HasConflict reports whether a booking window [start, end) for the given
// patient and doctor collides with any existing booking. A collision needs
// a shared participant (same patient or same doctor) plus window overlap.
// Cancelled bookings, bookings missing either participant ref, and the
// booking identified by excludeID are skipped.
func HasConflict(patientRef, doctorRef string, start, end time.Time, existing []*Booking, excludeID uuid.UUID) *Booking {
	for _, b := range existing {
		if b.ID == excludeID {
			continue
		}
		if !b.Active() {
			continue
		}
		if b.PatientRef == "" || b.DoctorRef == "" {
			continue
		}
		if b.PatientRef != patientRef && b.DoctorRef != doctorRef {
			continue
		}
		if overlaps(b.ScheduledAt, b.End(), start, end) {
			return b
		}
	}
	return nil
}
