package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxListResults caps the number of bills returned by a listing.
const MaxListResults = 500

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusPartial:   true,
	StatusPaid:      true,
	StatusCancelled: true,
}

type Service struct {
	bills   BillRepository
	taxRate float64
	logger  zerolog.Logger
}

// NewService wires the ledger. taxRate applies to bills created from this
// point on; existing bills keep the rate they were created with.
func NewService(bills BillRepository, taxRate float64, logger zerolog.Logger) *Service {
	return &Service{bills: bills, taxRate: taxRate, logger: logger}
}

func validateItem(it BillItem) error {
	if it.Description == "" {
		return &ValidationError{Message: "item description is required"}
	}
	if it.Cost < 0 {
		return &ValidationError{Message: "item cost must not be negative"}
	}
	if it.Quantity <= 0 {
		return &ValidationError{Message: "item quantity must be positive"}
	}
	return nil
}

// CreateBill opens a ledger entry for a patient. Totals are derived from
// the items; the bill starts pending.
func (s *Service) CreateBill(ctx context.Context, b *Bill) error {
	if b.PatientRef == "" {
		return &ValidationError{Message: "patient_ref is required"}
	}
	for _, it := range b.Items {
		if err := validateItem(it); err != nil {
			return err
		}
	}
	if b.Items == nil {
		b.Items = []BillItem{}
	}
	b.Payments = []Payment{}
	b.TaxRate = s.taxRate
	b.Status = StatusPending
	b.RecomputeTotals()
	return s.bills.Create(ctx, b)
}

// GetBill returns a bill by id.
func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.bills.GetByID(ctx, id)
}

// AddItem appends a line item and rederives the totals. Adding to a fully
// paid bill reopens it as pending; cancelled bills reject the item.
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, item BillItem) (*Bill, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	return s.bills.Mutate(ctx, id, func(b *Bill) error {
		if b.Status == StatusCancelled {
			return &ValidationError{Message: "bill is cancelled"}
		}
		b.Items = append(b.Items, item)
		b.RecomputeTotals()
		if b.Status == StatusPaid {
			b.Status = StatusPending
		}
		return nil
	})
}

// PayBill records a payment against the bill and returns the updated bill
// together with the recorded payment. The amount must be positive and at
// most the outstanding balance plus OverpayEpsilon; a rejection for
// overpayment carries the current balance. Once the payments cover the
// total within SettleEpsilon the bill flips to paid, otherwise partial.
func (s *Service) PayBill(ctx context.Context, id uuid.UUID, amount float64, method string) (*Bill, *Payment, error) {
	var recorded Payment
	bill, err := s.bills.Mutate(ctx, id, func(b *Bill) error {
		if b.Status == StatusCancelled {
			return &ValidationError{Message: "bill is cancelled"}
		}
		if amount <= 0 {
			return &ValidationError{Message: "payment amount must be positive"}
		}
		due := b.Due()
		if amount > due+OverpayEpsilon {
			return &ValidationError{
				Message: fmt.Sprintf("payment %.2f exceeds amount due %.2f", amount, due),
				Due:     &due,
			}
		}

		recorded = Payment{
			ID:     uuid.New(),
			Amount: amount,
			Method: method,
			PaidAt: time.Now().UTC(),
		}
		b.Payments = append(b.Payments, recorded)
		if b.Settled() {
			b.Status = StatusPaid
		} else {
			b.Status = StatusPartial
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("bill", bill.ID.String()).
		Str("payment", recorded.ID.String()).
		Float64("amount", amount).
		Str("status", bill.Status).
		Msg("payment recorded")
	return bill, &recorded, nil
}

// CancelBill moves a bill to the terminal cancelled status regardless of
// its payment state. Recorded payments stay on the bill for the audit
// trail; refunds are handled outside the ledger.
func (s *Service) CancelBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.bills.Mutate(ctx, id, func(b *Bill) error {
		b.Status = StatusCancelled
		return nil
	})
}

// ListBills returns bills matching the filter ordered newest first. The
// limit is clamped to MaxListResults.
func (s *Service) ListBills(ctx context.Context, filter ListFilter, limit, offset int) ([]*Bill, error) {
	if filter.Status != "" && !validStatuses[filter.Status] {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid status: %s", filter.Status)}
	}
	if limit <= 0 || limit > MaxListResults {
		limit = MaxListResults
	}
	if offset < 0 {
		offset = 0
	}
	return s.bills.List(ctx, filter, limit, offset)
}
