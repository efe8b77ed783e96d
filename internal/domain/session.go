package domain

import "time"

// ChatMessage is the projection of a stored chat message used by the
// escalation workflow: enough to establish ownership and recency.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	UserID    string    `json:"user_id" db:"user_id"` // empty for anonymous messages
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Escalated bool      `json:"escalated" db:"escalated"`
}

// ChatSessionSummary is the denormalized per-session projection kept for fast
// listing. It is eventually consistent with the escalation record and is not
// a source of truth.
type ChatSessionSummary struct {
	SessionID        string           `json:"session_id" db:"session_id"`
	UserID           string           `json:"user_id" db:"user_id"`
	IsEscalated      bool             `json:"is_escalated" db:"is_escalated"`
	EscalationStatus EscalationStatus `json:"escalation_status,omitempty" db:"escalation_status"`
	EscalatedAt      *time.Time       `json:"escalated_at,omitempty" db:"escalated_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// SessionEscalationPatch is the merge-write applied to a session summary when
// its session is escalated. Only these fields are touched.
type SessionEscalationPatch struct {
	IsEscalated      bool
	EscalationStatus EscalationStatus
	EscalatedAt      time.Time
}
