package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/paydue/backend/internal/models"
	"github.com/paydue/backend/internal/query"
)

// ---------------------------------------------------------------------------
// Mock store
// ---------------------------------------------------------------------------

// mockStore keeps payments in a map keyed by name+owner and reproduces the
// duplicate-key contract of the real table.
type mockStore struct {
	payments map[string]*models.Payment
	err      error

	findAllCalls    int
	filterCalls     int
	lastFilterExpr  query.Expr
	lastFilterSort  query.Sort
	lastFilterOwner uuid.UUID
}

func newMockStore() *mockStore {
	return &mockStore{payments: make(map[string]*models.Payment)}
}

func key(name string, ownerID uuid.UUID) string { return name + ownerID.String() }

func (m *mockStore) FindAll(_ context.Context, ownerID uuid.UUID) ([]models.Payment, error) {
	m.findAllCalls++
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Payment
	for _, p := range m.payments {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockStore) FindOne(_ context.Context, name string, ownerID uuid.UUID) (*models.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.payments[key(name, ownerID)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) Create(_ context.Context, p *models.Payment) error {
	if m.err != nil {
		return m.err
	}
	if _, exists := m.payments[key(p.Name, p.OwnerID)]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	m.payments[key(p.Name, p.OwnerID)] = p
	return nil
}

func (m *mockStore) UpdateOne(_ context.Context, name string, ownerID uuid.UUID, patch Patch) (*models.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.payments[key(name, ownerID)]
	if !ok {
		return nil, nil
	}
	p.Cost, p.DueDate, p.Priority = patch.Cost, patch.DueDate, patch.Priority
	cp := *p
	return &cp, nil
}

func (m *mockStore) DeleteOne(_ context.Context, name string, ownerID uuid.UUID) (*models.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.payments[key(name, ownerID)]
	if !ok {
		return nil, nil
	}
	delete(m.payments, key(name, ownerID))
	return p, nil
}

func (m *mockStore) FindWithFilter(_ context.Context, ownerID uuid.UUID, expr query.Expr, sort query.Sort) ([]models.Payment, error) {
	m.filterCalls++
	m.lastFilterOwner = ownerID
	m.lastFilterExpr = expr
	m.lastFilterSort = sort
	return nil, m.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testNow = time.Date(2026, time.March, 14, 15, 30, 0, 0, time.UTC)

func newTestService(store Store) *service {
	return NewService(store, func() time.Time { return testNow })
}

func costPtr(c float64) *float64 { return &c }

func validInput() Input {
	return Input{
		Name:     "Rent",
		Cost:     costPtr(1200),
		DueDate:  "2026-03-17",
		Priority: "normal",
	}
}

func wantValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Error() != msg {
		t.Errorf("got message %q, want %q", verr.Error(), msg)
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreateThenFindOneReturnsSubmittedFields(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	owner := uuid.New()

	in := Input{Name: "Rent", Cost: costPtr(1200.005), DueDate: "2026-03-17", Priority: "High"}
	if _, err := svc.Create(context.Background(), owner, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.FindOne(context.Background(), "Rent", owner)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if got == nil {
		t.Fatal("created payment not found")
	}
	if got.Cost != 1200.01 {
		t.Errorf("cost not rounded half away from zero: got %v, want 1200.01", got.Cost)
	}
	if got.Priority != "high" {
		t.Errorf("priority not lower-cased: got %q", got.Priority)
	}
	if !got.DueDate.Equal(time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due date not day-truncated: got %v", got.DueDate)
	}
}

func TestCreateDuplicateNameSameOwner(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	owner := uuid.New()

	if _, err := svc.Create(context.Background(), owner, validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), owner, validInput())
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestCreateSameNameDifferentOwners(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	if _, err := svc.Create(context.Background(), uuid.New(), validInput()); err != nil {
		t.Fatalf("first owner: %v", err)
	}
	if _, err := svc.Create(context.Background(), uuid.New(), validInput()); err != nil {
		t.Fatalf("second owner should succeed: %v", err)
	}
}

func TestCreateDateBounds(t *testing.T) {
	svc := newTestService(newMockStore())
	owner := uuid.New()

	in := validInput()
	in.DueDate = "2026-03-13" // yesterday
	_, err := svc.Create(context.Background(), owner, in)
	wantValidation(t, err, "Due date must be today or later")

	in.DueDate = "2026-03-14" // today is fine
	if _, err := svc.Create(context.Background(), owner, in); err != nil {
		t.Errorf("due today should be accepted: %v", err)
	}

	in.Name = "Lease"
	in.DueDate = "2036-03-15" // ten years and a day out
	_, err = svc.Create(context.Background(), owner, in)
	wantValidation(t, err, "Due date must be within 10 years")
}

func TestCreateAcceptsFormDateLayout(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	in := validInput()
	in.DueDate = "03-17-2026"
	p, err := svc.Create(context.Background(), uuid.New(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.DueDate.Equal(time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MM-DD-YYYY layout parsed wrong: %v", p.DueDate)
	}
}

func TestCreateCostValidation(t *testing.T) {
	svc := newTestService(newMockStore())
	owner := uuid.New()

	cases := []struct {
		name string
		cost *float64
		msg  string
	}{
		{"missing", nil, "Invalid cost"},
		{"negative", costPtr(-1), "Invalid cost"},
		{"over cap", costPtr(1000000.01), "Max cost is 1 million"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			in.Cost = tc.cost
			_, err := svc.Create(context.Background(), owner, in)
			wantValidation(t, err, tc.msg)
		})
	}

	in := validInput()
	in.Cost = costPtr(0)
	if _, err := svc.Create(context.Background(), owner, in); err != nil {
		t.Errorf("zero cost should be accepted: %v", err)
	}
}

func TestCreateNameValidation(t *testing.T) {
	svc := newTestService(newMockStore())
	owner := uuid.New()

	bad := []struct {
		name string
		raw  string
		msg  string
	}{
		{"empty", "", "Payment name is required"},
		{"blank", "   ", "Payment name is required"},
		{"double space", "Car  Loan", "Invalid payment name"},
		{"special chars", "Rent & Bills", "Invalid payment name"},
		{"too long", "abcdefghijklmnopqrstuvwxyzabcde", "Invalid payment name"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			in.Name = tc.raw
			_, err := svc.Create(context.Background(), owner, in)
			wantValidation(t, err, tc.msg)
		})
	}

	// Surrounding whitespace is trimmed, interior single spaces are fine.
	in := validInput()
	in.Name = "  Car Loan  "
	p, err := svc.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Car Loan" {
		t.Errorf("name not trimmed: %q", p.Name)
	}
}

func TestCreateInvalidPriority(t *testing.T) {
	svc := newTestService(newMockStore())
	in := validInput()
	in.Priority = "urgent"
	_, err := svc.Create(context.Background(), uuid.New(), in)
	wantValidation(t, err, "Invalid priority")
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestUpdateAllowsPastDueDate(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	owner := uuid.New()

	if _, err := svc.Create(context.Background(), owner, validInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := validInput()
	in.DueDate = "2026-03-01" // in the past: rejected on create, fine on update
	got, err := svc.Update(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got == nil {
		t.Fatal("expected updated payment")
	}
	if !got.DueDate.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due date: got %v", got.DueDate)
	}
}

func TestUpdateStillEnforcesTenYearBound(t *testing.T) {
	svc := newTestService(newMockStore())
	in := validInput()
	in.DueDate = "2036-03-15"
	_, err := svc.Update(context.Background(), uuid.New(), in)
	wantValidation(t, err, "Due date must be within 10 years")
}

func TestUpdateMissingPaymentIsNotAnError(t *testing.T) {
	svc := newTestService(newMockStore())
	got, err := svc.Update(context.Background(), uuid.New(), validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing payment, got %+v", got)
	}
}

func TestDeleteReturnsRemovedPayment(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	owner := uuid.New()

	if _, err := svc.Create(context.Background(), owner, validInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Delete(context.Background(), owner, "Rent")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got == nil || got.Name != "Rent" {
		t.Errorf("expected deleted payment back, got %+v", got)
	}
	if again, _ := svc.Delete(context.Background(), owner, "Rent"); again != nil {
		t.Error("second delete should find nothing")
	}
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestFilterEmptyParamsDelegatesToFindAll(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	if _, err := svc.Filter(context.Background(), uuid.New(), query.Params{}); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if store.findAllCalls != 1 {
		t.Errorf("expected FindAll fallback, got %d calls", store.findAllCalls)
	}
	if store.filterCalls != 0 {
		t.Errorf("filter store call not expected, got %d", store.filterCalls)
	}
}

func TestFilterInvalidValueNeverReachesStore(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.Filter(context.Background(), uuid.New(), query.Params{Date: []string{"someday"}})
	wantValidation(t, err, "Invalid filter")
	if store.filterCalls != 0 || store.findAllCalls != 0 {
		t.Error("store must not be touched on invalid filter")
	}
}

func TestFilterPassesOwnerScopeAndBuiltQuery(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)
	owner := uuid.New()

	_, err := svc.Filter(context.Background(), owner, query.Params{
		Date:     []string{"overdue", "today"},
		Priority: []string{"high", "low"},
	})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if store.lastFilterOwner != owner {
		t.Error("owner scope not forwarded")
	}
	if _, ok := store.lastFilterExpr.(query.And); !ok {
		t.Errorf("expected And expression, got %T", store.lastFilterExpr)
	}
	if store.lastFilterSort.Key != query.SortByDueDate {
		t.Errorf("default sort should be due date, got %+v", store.lastFilterSort)
	}
}
