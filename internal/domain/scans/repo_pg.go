package scans

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type scanRepoPG struct{ pool *pgxpool.Pool }

func NewScanRepoPG(pool *pgxpool.Pool) ScanRepository { return &scanRepoPG{pool: pool} }

const scanCols = `id, patient_ref, file_name, content_type, size, hash, uploaded_by, created_at`

func scanRow(row pgx.Row) (*Scan, error) {
	var s Scan
	err := row.Scan(&s.ID, &s.PatientRef, &s.FileName, &s.ContentType, &s.Size, &s.Hash,
		&s.UploadedBy, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *scanRepoPG) Create(ctx context.Context, s *Scan) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO scan (id, patient_ref, file_name, content_type, size, hash, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.PatientRef, s.FileName, s.ContentType, s.Size, s.Hash, s.UploadedBy)
	return err
}

func (r *scanRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Scan, error) {
	return scanRow(r.pool.QueryRow(ctx, `SELECT `+scanCols+` FROM scan WHERE id = $1`, id))
}

func (r *scanRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scan WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scanRepoPG) ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Scan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+scanCols+` FROM scan WHERE patient_ref = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientRef, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
