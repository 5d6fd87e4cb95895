package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated browser session. The token is the opaque
// cookie value. PendingPayment holds at most one payment projection staged
// for the edit form; it is cleared by an explicit client call, not on read.
type Session struct {
	Token          uuid.UUID
	AccountID      uuid.UUID
	Username       string
	PendingPayment *PendingPayment
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// PendingPayment is the slice of a payment kept in the session to pre-fill
// the edit form.
type PendingPayment struct {
	Name     string    `json:"name"`
	Cost     float64   `json:"cost"`
	DueDate  time.Time `json:"dueDate"`
	Priority string    `json:"priority"`
}
