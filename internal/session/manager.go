// Package session is the bridge between the HTTP layer and per-user
// transient state: the authenticated account projection and the single
// pending-edit payment slot. Sessions are rows keyed by an opaque cookie
// token; nothing here is a store of record.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/paydue/backend/internal/models"
)

// ErrBadCSRF is returned when a CSRF token fails verification.
var ErrBadCSRF = errors.New("invalid csrf token")

const csrfTTL = time.Hour

// Store is the persistence surface the manager needs.
type Store interface {
	Insert(ctx context.Context, sess *models.Session) error
	Get(ctx context.Context, token uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, token uuid.UUID) error
	SetPendingPayment(ctx context.Context, token uuid.UUID, pp *models.PendingPayment) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type Manager struct {
	store      Store
	ttl        time.Duration
	csrfSecret []byte
	now        func() time.Time
}

func NewManager(store Store, ttl time.Duration, csrfSecret []byte) *Manager {
	return &Manager{store: store, ttl: ttl, csrfSecret: csrfSecret, now: time.Now}
}

// Create starts a session for the account and returns it with a fresh
// token.
func (m *Manager) Create(ctx context.Context, acc *models.Account) (*models.Session, error) {
	sess := &models.Session{
		Token:     uuid.New(),
		AccountID: acc.ID,
		Username:  acc.Username,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.Insert(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the live session for the token, or (nil, nil) when the token
// is unknown or expired.
func (m *Manager) Get(ctx context.Context, token uuid.UUID) (*models.Session, error) {
	return m.store.Get(ctx, token)
}

func (m *Manager) Delete(ctx context.Context, token uuid.UUID) error {
	return m.store.Delete(ctx, token)
}

// SetPendingPayment stages a payment projection in the session for the edit
// form.
func (m *Manager) SetPendingPayment(ctx context.Context, token uuid.UUID, pp *models.PendingPayment) error {
	return m.store.SetPendingPayment(ctx, token, pp)
}

// ClearPendingPayment empties the slot. Reading does not clear it; the
// client clears explicitly once the form is filled.
func (m *Manager) ClearPendingPayment(ctx context.Context, token uuid.UUID) error {
	return m.store.SetPendingPayment(ctx, token, nil)
}

// DeleteExpired removes expired session rows and reports how many went.
func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

// IssueCSRF returns a short-lived token bound to the session.
func (m *Manager) IssueCSRF(sessionToken uuid.UUID) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionToken.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(csrfTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.csrfSecret)
}

// VerifyCSRF checks that the token is valid, unexpired, and bound to the
// given session.
func (m *Manager) VerifyCSRF(token string, sessionToken uuid.UUID) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadCSRF
		}
		return m.csrfSecret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrBadCSRF
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != sessionToken.String() {
		return ErrBadCSRF
	}
	return nil
}
