package scans

import (
	"time"

	"github.com/google/uuid"
)

// Scan maps to the scan table. The payload itself lives in the blob store
// under the scan id; this row carries the metadata.
type Scan struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientRef  string    `db:"patient_ref" json:"patient_ref"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	Size        int64     `db:"size" json:"size"`
	Hash        string    `db:"hash" json:"hash"`
	UploadedBy  string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
