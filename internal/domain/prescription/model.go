package prescription

import (
	"time"

	"github.com/google/uuid"
)

// PrescriptionItem is a single drug line on a prescription.
type PrescriptionItem struct {
	Drug         string `json:"drug"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// Prescription maps to the prescription table. Items are stored as JSONB.
// DoctorRef is stamped from the authenticated caller, never from the
// request body.
type Prescription struct {
	ID         uuid.UUID          `db:"id" json:"id"`
	PatientRef string             `db:"patient_ref" json:"patient_ref"`
	DoctorRef  string             `db:"doctor_ref" json:"doctor_ref"`
	Items      []PrescriptionItem `db:"items" json:"items"`
	Notes      *string            `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
}
