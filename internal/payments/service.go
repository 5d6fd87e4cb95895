package payments

import (
	"context"
	"errors"
	"html"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/paydue/backend/internal/models"
	"github.com/paydue/backend/internal/query"
)

// ErrDuplicateName is returned when the owner already has a payment with
// that name. The database constraint is the sole correctness mechanism for
// the uniqueness invariant; create is racy by design and callers handle
// this error.
var ErrDuplicateName = errors.New("payment already exists")

// ValidationError is a client-caused input failure carrying the message the
// handler surfaces verbatim.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Alphanumeric words separated by single spaces; no leading, trailing or
// doubled spaces.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9]+( [a-zA-Z0-9]+)*$`)

const (
	maxNameLen = 30
	maxCost    = 1000000
)

// Accepted due-date layouts: the form's MM-DD-YYYY and ISO dates.
var dateLayouts = []string{"01-02-2006", "2006-01-02"}

// Input is a validated-on-entry payment submission. Cost is a pointer so a
// missing field is distinguishable from zero.
type Input struct {
	Name     string
	Cost     *float64
	DueDate  string
	Priority string
}

// Store is the persistence surface the service needs.
type Store interface {
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]models.Payment, error)
	FindOne(ctx context.Context, name string, ownerID uuid.UUID) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	UpdateOne(ctx context.Context, name string, ownerID uuid.UUID, patch Patch) (*models.Payment, error)
	DeleteOne(ctx context.Context, name string, ownerID uuid.UUID) (*models.Payment, error)
	FindWithFilter(ctx context.Context, ownerID uuid.UUID, expr query.Expr, sort query.Sort) ([]models.Payment, error)
}

type Service interface {
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]models.Payment, error)
	FindOne(ctx context.Context, name string, ownerID uuid.UUID) (*models.Payment, error)
	Create(ctx context.Context, ownerID uuid.UUID, in Input) (*models.Payment, error)
	Update(ctx context.Context, ownerID uuid.UUID, in Input) (*models.Payment, error)
	Delete(ctx context.Context, ownerID uuid.UUID, name string) (*models.Payment, error)
	Filter(ctx context.Context, ownerID uuid.UUID, params query.Params) ([]models.Payment, error)
}

type service struct {
	store   Store
	builder *query.Builder
	now     func() time.Time
}

// NewService builds the payment service. now is injectable for tests; nil
// means time.Now.
func NewService(store Store, now func() time.Time) *service {
	if now == nil {
		now = time.Now
	}
	return &service{store: store, builder: query.NewBuilder(now), now: now}
}

var _ Service = (*service)(nil)

func (s *service) FindAll(ctx context.Context, ownerID uuid.UUID) ([]models.Payment, error) {
	return s.store.FindAll(ctx, ownerID)
}

func (s *service) FindOne(ctx context.Context, name string, ownerID uuid.UUID) (*models.Payment, error) {
	return s.store.FindOne(ctx, name, ownerID)
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, in Input) (*models.Payment, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	cost, err := normalizeCost(in.Cost)
	if err != nil {
		return nil, err
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	today := dayStart(s.now())
	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate.Before(today) {
		return nil, ValidationError("Due date must be today or later")
	}
	if dueDate.After(today.AddDate(10, 0, 0)) {
		return nil, ValidationError("Due date must be within 10 years")
	}

	p := &models.Payment{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Name:     name,
		Cost:     cost,
		DueDate:  dueDate,
		Priority: priority,
	}
	if err := s.store.Create(ctx, p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return p, nil
}

// Update patches cost, due date and priority. Unlike Create it does not
// reject due dates in the past; only the 10-year bound is re-checked.
// Returns (nil, nil) when the owner has no payment with that name.
func (s *service) Update(ctx context.Context, ownerID uuid.UUID, in Input) (*models.Payment, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	cost, err := normalizeCost(in.Cost)
	if err != nil {
		return nil, err
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate.After(dayStart(s.now()).AddDate(10, 0, 0)) {
		return nil, ValidationError("Due date must be within 10 years")
	}

	return s.store.UpdateOne(ctx, name, ownerID, Patch{
		Cost:     cost,
		DueDate:  dueDate,
		Priority: priority,
	})
}

func (s *service) Delete(ctx context.Context, ownerID uuid.UUID, name string) (*models.Payment, error) {
	normalized, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.store.DeleteOne(ctx, normalized, ownerID)
}

// Filter runs the query builder over the raw parameters and executes the
// result. Empty parameters fall back to the unfiltered listing; any
// out-of-enum value fails before the store is touched.
func (s *service) Filter(ctx context.Context, ownerID uuid.UUID, params query.Params) ([]models.Payment, error) {
	if params.Empty() {
		return s.store.FindAll(ctx, ownerID)
	}
	expr, sort, err := s.builder.Build(params)
	if err != nil {
		if errors.Is(err, query.ErrInvalidFilter) {
			return nil, ValidationError("Invalid filter")
		}
		return nil, err
	}
	return s.store.FindWithFilter(ctx, ownerID, expr, sort)
}

func normalizeName(raw string) (string, error) {
	name := html.EscapeString(strings.TrimSpace(raw))
	if name == "" {
		return "", ValidationError("Payment name is required")
	}
	if len(name) > maxNameLen || !nameRe.MatchString(name) {
		return "", ValidationError("Invalid payment name")
	}
	return name, nil
}

// normalizeCost bounds the cost and rounds it to 2 decimals, half away
// from zero.
func normalizeCost(cost *float64) (float64, error) {
	if cost == nil {
		return 0, ValidationError("Invalid cost")
	}
	c := *cost
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return 0, ValidationError("Invalid cost")
	}
	if c > maxCost {
		return 0, ValidationError("Max cost is 1 million")
	}
	return math.Round(c*100) / 100, nil
}

func normalizePriority(raw string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(raw))
	if !models.ValidPriority(p) {
		return "", ValidationError("Invalid priority")
	}
	return p, nil
}

func parseDueDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ValidationError("Invalid date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dayStart(t), nil
		}
	}
	return time.Time{}, ValidationError("Invalid date")
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
