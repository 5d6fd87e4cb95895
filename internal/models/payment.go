package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority values, stored lower-cased.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the known priority values.
// Callers are expected to lower-case p first.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// Payment is a recurring payment owned by one account. (OwnerID, Name) is
// unique; the JSON shape is the essential projection the client renders.
type Payment struct {
	ID        uuid.UUID `json:"-"`
	OwnerID   uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost"`
	DueDate   time.Time `json:"dueDate"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"-"`
}
