package billing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repository --

type mockBillRepo struct {
	mu    sync.Mutex
	bills map[uuid.UUID]*Bill
}

func newMockBillRepo() *mockBillRepo {
	return &mockBillRepo{bills: make(map[uuid.UUID]*Bill)}
}

func copyBill(b *Bill) *Bill {
	copied := *b
	copied.Items = append([]BillItem(nil), b.Items...)
	copied.Payments = append([]Payment(nil), b.Payments...)
	return &copied
}

func (m *mockBillRepo) Create(_ context.Context, b *Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	m.bills[b.ID] = copyBill(b)
	return nil
}

func (m *mockBillRepo) GetByID(_ context.Context, id uuid.UUID) (*Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBill(b), nil
}

func (m *mockBillRepo) Mutate(_ context.Context, id uuid.UUID, fn func(b *Bill) error) (*Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	b := copyBill(stored)
	if err := fn(b); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now()
	m.bills[id] = copyBill(b)
	return b, nil
}

func (m *mockBillRepo) List(_ context.Context, filter ListFilter, limit, offset int) ([]*Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Bill
	for _, b := range m.bills {
		if filter.PatientRef != "" && b.PatientRef != filter.PatientRef {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		result = append(result, copyBill(b))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func newTestService(taxRate float64) (*Service, *mockBillRepo) {
	repo := newMockBillRepo()
	return NewService(repo, taxRate, zerolog.Nop()), repo
}

func seedBill(t *testing.T, svc *Service, patient string, items ...BillItem) *Bill {
	t.Helper()
	b := &Bill{PatientRef: patient, Items: items}
	if err := svc.CreateBill(context.Background(), b); err != nil {
		t.Fatalf("seedBill: %v", err)
	}
	return b
}

func consultation(cost float64) BillItem {
	return BillItem{Description: "consultation", Cost: cost, Quantity: 1}
}

// -- CreateBill --

func TestCreateBill_ComputesTotals(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1",
		BillItem{Description: "consultation", Cost: 50, Quantity: 1},
		BillItem{Description: "lab panel", Cost: 25, Quantity: 2},
	)

	if b.Total != 100 {
		t.Errorf("expected total 100, got %f", b.Total)
	}
	if b.Status != StatusPending {
		t.Errorf("expected pending, got %s", b.Status)
	}
}

func TestCreateBill_AppliesConfiguredTaxRate(t *testing.T) {
	svc, _ := newTestService(0.08)
	b := seedBill(t, svc, "p1", consultation(100))

	if b.TaxRate != 0.08 {
		t.Errorf("expected tax rate 0.08, got %f", b.TaxRate)
	}
	if b.Total != 108 {
		t.Errorf("expected total 108, got %f", b.Total)
	}
}

func TestCreateBill_MissingPatient(t *testing.T) {
	svc, _ := newTestService(0)
	err := svc.CreateBill(context.Background(), &Bill{Items: []BillItem{consultation(50)}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestCreateBill_InvalidItems(t *testing.T) {
	svc, _ := newTestService(0)
	cases := []BillItem{
		{Description: "", Cost: 10, Quantity: 1},
		{Description: "x", Cost: -1, Quantity: 1},
		{Description: "x", Cost: 10, Quantity: 0},
	}
	for i, it := range cases {
		err := svc.CreateBill(context.Background(), &Bill{PatientRef: "p1", Items: []BillItem{it}})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

// -- PayBill --

func TestPayBill_PartialThenPaid(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))

	got, _, err := svc.PayBill(context.Background(), b.ID, 60, "card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPartial {
		t.Errorf("expected partial after 60/100, got %s", got.Status)
	}
	if got.Due() != 40 {
		t.Errorf("expected due 40, got %f", got.Due())
	}

	got, _, err = svc.PayBill(context.Background(), b.ID, 40, "cash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPaid {
		t.Errorf("expected paid after settling, got %s", got.Status)
	}

	// The settled bill takes no further money.
	_, _, err = svc.PayBill(context.Background(), b.ID, 0.01, "cash")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError on overpayment, got %v", err)
	}
}

func TestPayBill_ReturnsRecordedPayment(t *testing.T) {
	svc, repo := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))

	got, payment, err := svc.PayBill(context.Background(), b.ID, 60, "card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment == nil {
		t.Fatal("expected the recorded payment alongside the bill")
	}
	if payment.ID == uuid.Nil {
		t.Error("expected payment to carry an id")
	}
	if payment.Amount != 60 || payment.Method != "card" {
		t.Errorf("expected 60 by card, got %f by %s", payment.Amount, payment.Method)
	}
	if len(got.Payments) != 1 || got.Payments[0].ID != payment.ID {
		t.Error("expected the returned payment to be the one appended to the bill")
	}
	stored := repo.bills[b.ID]
	if len(stored.Payments) != 1 || stored.Payments[0].ID != payment.ID {
		t.Error("expected the returned payment to match the persisted one")
	}
}

func TestPayBill_RejectsNonPositive(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))

	for _, amount := range []float64{0, -5} {
		_, _, err := svc.PayBill(context.Background(), b.ID, amount, "cash")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("amount %f: expected ValidationError, got %v", amount, err)
		}
	}
}

func TestPayBill_OverpaymentCarriesDue(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))

	_, _, err := svc.PayBill(context.Background(), b.ID, 150, "card")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Due == nil || *ve.Due != 100 {
		t.Errorf("expected rejection to carry due 100, got %v", ve.Due)
	}
}

func TestPayBill_ToleratesRoundingAboveDue(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))

	// Just inside the overpay tolerance.
	if _, _, err := svc.PayBill(context.Background(), b.ID, 100.00005, "card"); err != nil {
		t.Errorf("expected payment within tolerance to be accepted, got %v", err)
	}
}

func TestPayBill_SettlesWithinCent(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))

	got, _, err := svc.PayBill(context.Background(), b.ID, 99.995, "card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPaid {
		t.Errorf("expected paid within half a cent, got %s", got.Status)
	}
}

func TestPayBill_CancelledRejects(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))
	if _, err := svc.CancelBill(context.Background(), b.ID); err != nil {
		t.Fatal(err)
	}

	_, _, err := svc.PayBill(context.Background(), b.ID, 50, "cash")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError on cancelled bill, got %v", err)
	}
}

func TestPayBill_NotFound(t *testing.T) {
	svc, _ := newTestService(0)
	_, _, err := svc.PayBill(context.Background(), uuid.New(), 10, "cash")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -- AddItem --

func TestAddItem_ReopensPaidBill(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))
	if _, _, err := svc.PayBill(context.Background(), b.ID, 100, "card"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.AddItem(context.Background(), b.ID, BillItem{Description: "follow-up", Cost: 20, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 120 {
		t.Errorf("expected total 120, got %f", got.Total)
	}
	if got.Status != StatusPending {
		t.Errorf("expected paid bill to reopen as pending, got %s", got.Status)
	}
	if got.Due() != 20 {
		t.Errorf("expected due 20, got %f", got.Due())
	}
}

func TestAddItem_KeepsPartialStatus(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))
	if _, _, err := svc.PayBill(context.Background(), b.ID, 60, "card"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.AddItem(context.Background(), b.ID, BillItem{Description: "lab", Cost: 30, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPartial {
		t.Errorf("expected partial, got %s", got.Status)
	}
	if got.Due() != 70 {
		t.Errorf("expected due 70, got %f", got.Due())
	}
}

func TestAddItem_CancelledRejects(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))
	if _, err := svc.CancelBill(context.Background(), b.ID); err != nil {
		t.Fatal(err)
	}

	_, err := svc.AddItem(context.Background(), b.ID, consultation(10))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError on cancelled bill, got %v", err)
	}
}

func TestAddItem_InvalidItem(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))

	_, err := svc.AddItem(context.Background(), b.ID, BillItem{Description: "", Cost: 10, Quantity: 1})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

// -- CancelBill --

func TestCancelBill_Unconditional(t *testing.T) {
	svc, _ := newTestService(0)
	b := seedBill(t, svc, "p1", consultation(100))
	if _, _, err := svc.PayBill(context.Background(), b.ID, 100, "card"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.CancelBill(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}
	// Payments survive cancellation for the audit trail.
	if len(got.Payments) != 1 {
		t.Errorf("expected payments retained, got %d", len(got.Payments))
	}
}

// -- ListBills --

func TestListBills_NewestFirst(t *testing.T) {
	svc, repo := newTestService(0)
	for i, patient := range []string{"p1", "p2", "p3"} {
		b := seedBill(t, svc, patient, consultation(10))
		// Space out created_at so ordering is deterministic.
		repo.bills[b.ID].CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
	}

	items, err := svc.ListBills(context.Background(), ListFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 bills, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Fatal("expected descending created_at order")
		}
	}
}

func TestListBills_FilterByPatientAndStatus(t *testing.T) {
	svc, _ := newTestService(0)
	seedBill(t, svc, "p1", consultation(10))
	b2 := seedBill(t, svc, "p1", consultation(20))
	seedBill(t, svc, "p2", consultation(30))
	if _, _, err := svc.PayBill(context.Background(), b2.ID, 20, "cash"); err != nil {
		t.Fatal(err)
	}

	items, err := svc.ListBills(context.Background(), ListFilter{PatientRef: "p1", Status: StatusPaid}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != b2.ID {
		t.Errorf("expected only the paid p1 bill, got %d items", len(items))
	}
}

func TestListBills_InvalidStatus(t *testing.T) {
	svc, _ := newTestService(0)
	_, err := svc.ListBills(context.Background(), ListFilter{Status: "overdue"}, 0, 0)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
