package patient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	copied := *p
	m.patients[p.ID] = &copied
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	copied := *p
	m.patients[p.ID] = &copied
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) Search(_ context.Context, q string, limit int) ([]*Patient, error) {
	q = strings.ToLower(q)
	matches := func(s *string) bool {
		return s != nil && strings.Contains(strings.ToLower(*s), q)
	}
	var result []*Patient
	for _, p := range m.patients {
		if q == "" ||
			strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) ||
			matches(p.Phone) || matches(p.Email) {
			copied := *p
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastName < result[j].LastName })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func newTestService() (*Service, *mockPatientRepo) {
	repo := newMockPatientRepo()
	return NewService(repo), repo
}

func seedPatient(t *testing.T, svc *Service, first, last string) *Patient {
	t.Helper()
	p := &Patient{FirstName: first, LastName: last}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("seedPatient: %v", err)
	}
	return p
}

func TestCreatePatient_RequiresName(t *testing.T) {
	svc, _ := newTestService()
	cases := []Patient{
		{LastName: "Okafor"},
		{FirstName: "Ada"},
	}
	for i := range cases {
		err := svc.CreatePatient(context.Background(), &cases[i])
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestUpdatePatient_WhitelistedFields(t *testing.T) {
	svc, _ := newTestService()
	p := seedPatient(t, svc, "Ada", "Okafor")

	phone := "+1-555-0101"
	got, err := svc.UpdatePatient(context.Background(), p.ID, PatientUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Phone == nil || *got.Phone != phone {
		t.Errorf("expected phone updated, got %v", got.Phone)
	}
	if got.FirstName != "Ada" {
		t.Errorf("expected first name untouched, got %s", got.FirstName)
	}
}

func TestUpdatePatient_RejectsEmptyName(t *testing.T) {
	svc, _ := newTestService()
	p := seedPatient(t, svc, "Ada", "Okafor")

	empty := ""
	_, err := svc.UpdatePatient(context.Background(), p.ID, PatientUpdate{FirstName: &empty})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdatePatient(context.Background(), uuid.New(), PatientUpdate{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchPatients_MatchesNameAndContact(t *testing.T) {
	svc, _ := newTestService()
	seedPatient(t, svc, "Ada", "Okafor")
	seedPatient(t, svc, "Ben", "Ramirez")

	items, err := svc.SearchPatients(context.Background(), "okaf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].LastName != "Okafor" {
		t.Errorf("expected only Okafor, got %d items", len(items))
	}
}

func TestSearchPatients_EmptyQueryListsAll(t *testing.T) {
	svc, _ := newTestService()
	seedPatient(t, svc, "Ada", "Okafor")
	seedPatient(t, svc, "Ben", "Ramirez")

	items, err := svc.SearchPatients(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 patients, got %d", len(items))
	}
}

func TestDeletePatient(t *testing.T) {
	svc, _ := newTestService()
	p := seedPatient(t, svc, "Ada", "Okafor")

	if err := svc.DeletePatient(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetPatient(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
