package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// exclusionViolation is the SQLSTATE raised when an insert or update hits
// the btree_gist exclusion constraints on the booking table.
const exclusionViolation = "23P01"

type bookingRepoPG struct{ pool *pgxpool.Pool }

func NewBookingRepoPG(pool *pgxpool.Pool) BookingRepository { return &bookingRepoPG{pool: pool} }

const bookingCols = `id, patient_ref, doctor_ref, scheduled_at, duration_minutes,
	status, reason, notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PatientRef, &b.DoctorRef, &b.ScheduledAt, &b.DurationMinutes,
		&b.Status, &b.Reason, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &b, err
}

func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return ErrConflict
	}
	return err
}

func (r *bookingRepoPG) Create(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking (id, patient_ref, doctor_ref, scheduled_at, duration_minutes,
			status, reason, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.PatientRef, b.DoctorRef, b.ScheduledAt, b.DurationMinutes,
		b.Status, b.Reason, b.Notes)
	return mapConstraintErr(err)
}

func (r *bookingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingCols+` FROM booking WHERE id = $1`, id))
}

func (r *bookingRepoPG) Update(ctx context.Context, b *Booking) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE booking SET scheduled_at=$2, duration_minutes=$3, status=$4,
			reason=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.ScheduledAt, b.DurationMinutes, b.Status, b.Reason, b.Notes)
	if err != nil {
		return mapConstraintErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookingRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM booking WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookingRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Booking, error) {
	query := `SELECT ` + bookingCols + ` FROM booking WHERE 1=1`
	var args []interface{}
	idx := 1

	if filter.PatientRef != "" {
		query += fmt.Sprintf(` AND patient_ref = $%d`, idx)
		args = append(args, filter.PatientRef)
		idx++
	}
	if filter.DoctorRef != "" {
		query += fmt.Sprintf(` AND doctor_ref = $%d`, idx)
		args = append(args, filter.DoctorRef)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, filter.Status)
		idx++
	}
	if filter.Day != nil {
		dayStart := filter.Day.UTC().Truncate(24 * time.Hour)
		query += fmt.Sprintf(` AND scheduled_at >= $%d AND scheduled_at < $%d`, idx, idx+1)
		args = append(args, dayStart, dayStart.Add(24*time.Hour))
		idx += 2
	}

	query += fmt.Sprintf(` ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *bookingRepoPG) ListActiveByParticipants(ctx context.Context, patientRef, doctorRef string) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE status != 'cancelled' AND (patient_ref = $1 OR doctor_ref = $2)`,
		patientRef, doctorRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
