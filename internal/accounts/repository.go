package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paydue/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new account. Duplicate usernames surface as the driver's
// unique-violation error; the service maps it to ErrDuplicateUsername.
func (r *Repository) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, username, salt, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, a.ID, a.Username, a.Salt, a.PasswordHash).Scan(&a.CreatedAt)
}

// FindByUsername returns the account with the exact username, or nil if
// there is none.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, salt, password_hash, created_at
		FROM accounts WHERE username = $1
	`, username).Scan(&a.ID, &a.Username, &a.Salt, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdatePassword persists a freshly derived salt and hash together. Returns
// nil if no account has the given id.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, salt []byte, passwordHash string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts SET salt = $2, password_hash = $3
		WHERE id = $1
		RETURNING id, username, salt, password_hash, created_at
	`, id, salt, passwordHash).Scan(&a.ID, &a.Username, &a.Salt, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
