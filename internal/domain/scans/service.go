package scans

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medoffice/medoffice/internal/platform/blobstore"
)

// MaxListResults caps the number of scans returned by a listing.
const MaxListResults = 500

type Service struct {
	scans  ScanRepository
	blobs  blobstore.Store
	logger zerolog.Logger
}

func NewService(scans ScanRepository, blobs blobstore.Store, logger zerolog.Logger) *Service {
	return &Service{scans: scans, blobs: blobs, logger: logger}
}

// Upload stores the payload in the blob store and records the metadata
// row. The blob is keyed by the scan id; a failed metadata insert rolls
// the blob back out.
func (s *Service) Upload(ctx context.Context, patientRef, fileName, contentType, uploadedBy string, content io.Reader) (*Scan, error) {
	if patientRef == "" {
		return nil, &ValidationError{Message: "patient_ref is required"}
	}
	if fileName == "" {
		return nil, &ValidationError{Message: "file name is required"}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New()
	info, err := s.blobs.Put(ctx, id.String(), content)
	if err != nil {
		if errors.Is(err, blobstore.ErrObjectTooLarge) {
			return nil, &ValidationError{Message: "file exceeds maximum allowed size"}
		}
		return nil, fmt.Errorf("storing payload: %w", err)
	}

	scan := &Scan{
		ID:          id,
		PatientRef:  patientRef,
		FileName:    fileName,
		ContentType: contentType,
		Size:        info.Size,
		Hash:        info.Hash,
		UploadedBy:  uploadedBy,
	}
	if err := s.scans.Create(ctx, scan); err != nil {
		if delErr := s.blobs.Delete(ctx, id.String()); delErr != nil {
			s.logger.Error().Err(delErr).Str("scan", id.String()).Msg("orphaned blob after failed metadata insert")
		}
		return nil, fmt.Errorf("recording scan metadata: %w", err)
	}
	return scan, nil
}

// Download returns the scan metadata and a reader over its payload.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*Scan, io.ReadCloser, error) {
	scan, err := s.scans.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.blobs.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, blobstore.ErrObjectNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("loading payload: %w", err)
	}
	return scan, rc, nil
}

func (s *Service) GetScan(ctx context.Context, id uuid.UUID) (*Scan, error) {
	return s.scans.GetByID(ctx, id)
}

// Delete removes the metadata row and the payload.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.scans.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, id.String()); err != nil && !errors.Is(err, blobstore.ErrObjectNotFound) {
		return fmt.Errorf("deleting payload: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's scans newest first. The limit is
// clamped to MaxListResults.
func (s *Service) ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Scan, error) {
	if patientRef == "" {
		return nil, &ValidationError{Message: "patient_ref is required"}
	}
	if limit <= 0 || limit > MaxListResults {
		limit = MaxListResults
	}
	if offset < 0 {
		offset = 0
	}
	return s.scans.ListByPatient(ctx, patientRef, limit, offset)
}
