package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type billRepoPG struct{ pool *pgxpool.Pool }

func NewBillRepoPG(pool *pgxpool.Pool) BillRepository { return &billRepoPG{pool: pool} }

const billCols = `id, patient_ref, booking_ref, items, payments,
	subtotal, tax_rate, tax_amount, total, status, created_at, updated_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.PatientRef, &b.BookingRef, &b.Items, &b.Payments,
		&b.Subtotal, &b.TaxRate, &b.TaxAmount, &b.Total, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &b, err
}

func (r *billRepoPG) Create(ctx context.Context, b *Bill) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bill (id, patient_ref, booking_ref, items, payments,
			subtotal, tax_rate, tax_amount, total, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		b.ID, b.PatientRef, b.BookingRef, b.Items, b.Payments,
		b.Subtotal, b.TaxRate, b.TaxAmount, b.Total, b.Status)
	return err
}

func (r *billRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return scanBill(r.pool.QueryRow(ctx, `SELECT `+billCols+` FROM bill WHERE id = $1`, id))
}

// Mutate runs read-modify-write under SELECT ... FOR UPDATE so concurrent
// payments against the same bill serialize instead of clobbering each
// other's totals.
func (r *billRepoPG) Mutate(ctx context.Context, id uuid.UUID, fn func(b *Bill) error) (*Bill, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := scanBill(tx.QueryRow(ctx, `SELECT `+billCols+` FROM bill WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if err := fn(b); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE bill SET items=$2, payments=$3, subtotal=$4, tax_rate=$5,
			tax_amount=$6, total=$7, status=$8, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Items, b.Payments, b.Subtotal, b.TaxRate, b.TaxAmount, b.Total, b.Status)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}

func (r *billRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Bill, error) {
	query := `SELECT ` + billCols + ` FROM bill WHERE 1=1`
	var args []interface{}
	idx := 1

	if filter.PatientRef != "" {
		query += fmt.Sprintf(` AND patient_ref = $%d`, idx)
		args = append(args, filter.PatientRef)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, filter.Status)
		idx++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
