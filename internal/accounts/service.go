package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/pbkdf2"

	"github.com/paydue/backend/internal/models"
)

// Key-derivation parameters. Both the salt and the derived key are 64 bytes;
// the hash is stored hex-encoded.
const (
	kdfIterations = 10000
	saltLength    = 64
	keyLength     = 64
)

// ErrDuplicateUsername is returned when signing up with a taken username.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrInvalidUsername is returned when the username fails the charset or
// length rule.
var ErrInvalidUsername = errors.New("invalid username")

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,16}$`)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, a *models.Account) error
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, salt []byte, passwordHash string) (*models.Account, error)
}

type Service interface {
	Signup(ctx context.Context, username, password string) (*models.Account, error)
	Authenticate(ctx context.Context, username, password string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) (*models.Account, error)
}

type service struct {
	store Store
}

func NewService(store Store) *service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func (s *service) Signup(ctx context.Context, username, password string) (*models.Account, error) {
	if !usernameRe.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	salt, hash, err := EncryptPassword(password)
	if err != nil {
		return nil, err
	}
	acc := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		Salt:         salt,
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, acc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return acc, nil
}

// Authenticate returns (nil, nil) for an unknown username and for a wrong
// password alike; only storage failures are errors.
func (s *service) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	acc, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, nil
	}
	derived := deriveKey(password, acc.Salt)
	if subtle.ConstantTimeCompare([]byte(derived), []byte(acc.PasswordHash)) != 1 {
		return nil, nil
	}
	return acc, nil
}

// UpdatePassword re-derives salt and hash and persists them together.
// Returns (nil, nil) when no account has the given id.
func (s *service) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) (*models.Account, error) {
	salt, hash, err := EncryptPassword(newPassword)
	if err != nil {
		return nil, err
	}
	return s.store.UpdatePassword(ctx, id, salt, hash)
}

// EncryptPassword generates a fresh random salt and derives the
// hex-encoded key for the plaintext. Pure apart from the randomness.
func EncryptPassword(password string) (salt []byte, hashHex string, err error) {
	salt = make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, "", err
	}
	return salt, deriveKey(password, salt), nil
}

func deriveKey(password string, salt []byte) string {
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, keyLength, sha512.New)
	return hex.EncodeToString(key)
}
