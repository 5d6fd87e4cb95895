package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paydue/backend/internal/models"
	"github.com/paydue/backend/internal/query"
)

// Patch is the set of payment fields the update operation may change.
type Patch struct {
	Cost     float64
	DueDate  time.Time
	Priority string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projection = "name, cost, due_date, priority"

// FindAll returns every payment for the owner in due-date order, projected
// to the fields the client renders.
func (r *Repository) FindAll(ctx context.Context, ownerID uuid.UUID) ([]models.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projection+` FROM payments
		WHERE owner_id = $1 ORDER BY due_date ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// FindOne returns the owner's payment with the given name, or nil.
func (r *Repository) FindOne(ctx context.Context, name string, ownerID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.pool.QueryRow(ctx, `
		SELECT `+projection+` FROM payments
		WHERE name = $1 AND owner_id = $2
	`, name, ownerID).Scan(&p.Name, &p.Cost, &p.DueDate, &p.Priority)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the payment. A (owner_id, name) conflict surfaces as the
// driver's unique-violation error; the service maps it to ErrDuplicateName.
func (r *Repository) Create(ctx context.Context, p *models.Payment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO payments (id, owner_id, name, cost, due_date, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, p.ID, p.OwnerID, p.Name, p.Cost, p.DueDate, p.Priority).Scan(&p.CreatedAt)
}

// UpdateOne patches cost, due date and priority on the named payment.
// Returns nil when no row matched.
func (r *Repository) UpdateOne(ctx context.Context, name string, ownerID uuid.UUID, patch Patch) (*models.Payment, error) {
	var p models.Payment
	err := r.pool.QueryRow(ctx, `
		UPDATE payments SET cost = $3, due_date = $4, priority = $5
		WHERE name = $1 AND owner_id = $2
		RETURNING `+projection+`
	`, name, ownerID, patch.Cost, patch.DueDate, patch.Priority).Scan(&p.Name, &p.Cost, &p.DueDate, &p.Priority)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteOne removes the named payment and returns it, or nil when absent.
func (r *Repository) DeleteOne(ctx context.Context, name string, ownerID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := r.pool.QueryRow(ctx, `
		DELETE FROM payments
		WHERE name = $1 AND owner_id = $2
		RETURNING `+projection+`
	`, name, ownerID).Scan(&p.Name, &p.Cost, &p.DueDate, &p.Priority)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindWithFilter executes a built filter expression, always ANDed with the
// owner scope. expr may be nil when only a sort directive was supplied.
func (r *Repository) FindWithFilter(ctx context.Context, ownerID uuid.UUID, expr query.Expr, sort query.Sort) ([]models.Payment, error) {
	where := "owner_id = $1"
	args := []any{ownerID}
	if expr != nil {
		frag, fargs := query.ToSQL(expr, len(args))
		where += " AND " + frag
		args = append(args, fargs...)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+projection+` FROM payments
		WHERE `+where+` ORDER BY `+query.OrderBy(sort), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func scanPayments(rows pgx.Rows) ([]models.Payment, error) {
	var list []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.Name, &p.Cost, &p.DueDate, &p.Priority); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
