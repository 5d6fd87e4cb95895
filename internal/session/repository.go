package session

import (
	"context"
	"encoding/json"
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

var _ Store = (*Repository)(nil)

func (r *Repository) Insert(ctx context.Context, sess *models.Session) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO sessions (token, account_id, username, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, sess.Token, sess.AccountID, sess.Username, sess.ExpiresAt).Scan(&sess.CreatedAt)
}

// Get returns the session for the token if it has not expired yet.
func (r *Repository) Get(ctx context.Context, token uuid.UUID) (*models.Session, error) {
	var sess models.Session
	var pending []byte
	err := r.pool.QueryRow(ctx, `
		SELECT token, account_id, username, pending_payment, created_at, expires_at
		FROM sessions WHERE token = $1 AND expires_at > now()
	`, token).Scan(&sess.Token, &sess.AccountID, &sess.Username, &pending, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		var pp models.PendingPayment
		if err := json.Unmarshal(pending, &pp); err != nil {
			return nil, err
		}
		sess.PendingPayment = &pp
	}
	return &sess, nil
}

func (r *Repository) Delete(ctx context.Context, token uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE token = $1", token)
	return err
}

// SetPendingPayment writes the slot; pp == nil clears it.
func (r *Repository) SetPendingPayment(ctx context.Context, token uuid.UUID, pp *models.PendingPayment) error {
	var payload []byte
	if pp != nil {
		var err error
		payload, err = json.Marshal(pp)
		if err != nil {
			return err
		}
	}
	_, err := r.pool.Exec(ctx, "UPDATE sessions SET pending_payment = $2 WHERE token = $1", token, payload)
	return err
}

func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= now()")
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
