package domain

import "time"

// EscalationStatus is the lifecycle state of a support escalation.
// Status only moves forward: pending -> in_progress -> resolved.
type EscalationStatus string

const (
	EscalationPending    EscalationStatus = "pending"
	EscalationInProgress EscalationStatus = "in_progress"
	EscalationResolved   EscalationStatus = "resolved"
)

// Valid reports whether s is a known escalation status
func (s EscalationStatus) Valid() bool {
	switch s {
	case EscalationPending, EscalationInProgress, EscalationResolved:
		return true
	}
	return false
}

// Escalation represents a support escalation record, created at most once per session
type Escalation struct {
	ID          string           `json:"id" db:"id"`
	SessionID   string           `json:"session_id" db:"session_id"`
	UserID      string           `json:"user_id" db:"user_id"`
	UserEmail   string           `json:"user_email" db:"user_email"`
	UserName    string           `json:"user_name" db:"user_name"`
	Status      EscalationStatus `json:"status" db:"status"`
	EscalatedAt time.Time        `json:"escalated_at" db:"escalated_at"`
}

// EscalateRequest is the POST /escalate request body
type EscalateRequest struct {
	SessionID string `json:"session_id"`
}

// EscalateResponse is returned for both fresh and repeated escalations
type EscalateResponse struct {
	SessionID        string           `json:"session_id"`
	Status           EscalationStatus `json:"status"`
	AlreadyEscalated bool             `json:"already_escalated"`
	EscalatedAt      time.Time        `json:"escalated_at"`
}

// EscalationFilter narrows the admin escalation listing
type EscalationFilter struct {
	Status EscalationStatus
	Limit  int
}
