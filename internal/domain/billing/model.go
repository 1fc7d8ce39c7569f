package billing

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Bill statuses. A cancelled bill is terminal: it takes no further items
// or payments.
const (
	StatusPending   = "pending"
	StatusPartial   = "partial"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// OverpayEpsilon is the tolerance applied when rejecting payments above
// the amount due, absorbing float rounding on the caller side.
const OverpayEpsilon = 0.0001

// SettleEpsilon is the tolerance within which a bill counts as fully paid.
const SettleEpsilon = 0.01

// BillItem is a single line on a bill.
type BillItem struct {
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Quantity    int     `json:"quantity"`
}

// Payment records money received against a bill.
type Payment struct {
	ID     uuid.UUID `json:"id"`
	Amount float64   `json:"amount"`
	Method string    `json:"method,omitempty"`
	PaidAt time.Time `json:"paid_at"`
}

// Bill maps to the bill table. Items and payments are embedded documents
// stored as JSONB so a single row lock covers the whole ledger entry.
type Bill struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientRef string     `db:"patient_ref" json:"patient_ref"`
	BookingRef *uuid.UUID `db:"booking_ref" json:"booking_ref,omitempty"`
	Items      []BillItem `db:"items" json:"items"`
	Payments   []Payment  `db:"payments" json:"payments"`
	Subtotal   float64    `db:"subtotal" json:"subtotal"`
	TaxRate    float64    `db:"tax_rate" json:"tax_rate"`
	TaxAmount  float64    `db:"tax_amount" json:"tax_amount"`
	Total      float64    `db:"total" json:"total"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// RecomputeTotals rederives subtotal, tax, and total from the line items.
// Totals are never patched directly; every mutation calls this.
func (b *Bill) RecomputeTotals() {
	subtotal := 0.0
	for _, it := range b.Items {
		subtotal += it.Cost * float64(it.Quantity)
	}
	b.Subtotal = subtotal
	b.TaxAmount = subtotal * b.TaxRate
	b.Total = subtotal + b.TaxAmount
}

// PaidSum returns the sum of all recorded payments.
func (b *Bill) PaidSum() float64 {
	sum := 0.0
	for _, p := range b.Payments {
		sum += p.Amount
	}
	return sum
}

// Due returns the outstanding balance.
func (b *Bill) Due() float64 {
	return b.Total - b.PaidSum()
}

// Settled reports whether the payments cover the total within
// SettleEpsilon.
func (b *Bill) Settled() bool {
	return math.Abs(b.PaidSum()-b.Total) < SettleEpsilon
}
