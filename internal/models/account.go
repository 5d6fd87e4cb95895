package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user. Salt and PasswordHash are only ever written
// together: signup and password update re-derive both.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Salt         []byte    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
