package storage

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a looked-up user does not exist.
var ErrNotFound = errors.New("not found")

// UserProfile is the stored account document. AwarenessData is kept as
// raw JSON so whatever shape the client saved round-trips untouched.
type UserProfile struct {
	ID                 string
	Name               string
	AwarenessData      json.RawMessage
	AwarenessCompleted bool
	LastSelectedMonth  string
	Budgets            []BudgetRecord
	LastVisitedAt      time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BudgetRecord is one saved month. The three item arrays are raw JSON
// documents; the client normalizes them on load.
type BudgetRecord struct {
	MonthLabel     string          `json:"monthLabel"`
	Incomes        json.RawMessage `json:"incomes"`
	Expenses       json.RawMessage `json:"expenses"`
	PreviousCredit json.RawMessage `json:"previousCredit"`
}

// Snapshot export states.
const (
	ExportPending = "pending"
	ExportDone    = "exported"
	ExportError   = "error"
)

// Snapshot is one append-only totals record, queued for export.
type Snapshot struct {
	ID            string
	MonthLabel    string
	TotalIncome   float64
	TotalExpenses float64
	Remaining     float64
	ExportStatus  string
	CreatedAt     time.Time
}

// KeystrokeEvent is a single captured input event.
type KeystrokeEvent struct {
	Key        string    `json:"key"`
	InputValue string    `json:"inputValue"`
	FieldName  string    `json:"fieldName,omitempty"`
	EventType  string    `json:"eventType,omitempty"`
	TypedAt    time.Time `json:"typedAt"`
}

// KeystrokeLog is one uploaded batch of events for a session.
type KeystrokeLog struct {
	ID        string            `json:"id"`
	SessionID string            `json:"sessionId"`
	UserID    string            `json:"userId,omitempty"`
	Page      string            `json:"page,omitempty"`
	Events    []KeystrokeEvent  `json:"events"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
