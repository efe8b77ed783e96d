package repository

import (
	"context"
	"time"

	"support-be/internal/domain"
)

// MessageRepository defines the interface for chat message projections
type MessageRepository interface {
	// ListBySession retrieves the {userId, timestamp} projections for a
	// session, oldest first. An empty slice means the session is unknown.
	ListBySession(ctx context.Context, sessionID string) ([]*domain.ChatMessage, error)

	// CountSince counts messages created at or after the given instant
	CountSince(ctx context.Context, since time.Time) (int64, error)

	// DistinctCounts derives session and user counts from raw messages.
	// Legacy fallback for deployments whose session summaries have not been
	// backfilled yet.
	DistinctCounts(ctx context.Context) (sessions int64, users int64, err error)

	// MarkEscalated flags a single message as escalated, for display only
	MarkEscalated(ctx context.Context, messageID string) error
}

// EscalationRepository defines the interface for escalation records
type EscalationRepository interface {
	// GetBySession retrieves the escalation for a session, nil if absent
	GetBySession(ctx context.Context, sessionID string) (*domain.Escalation, error)

	// CreateIfAbsent inserts esc unless the session already has a record.
	// The insert is conditional at the store (insert-if-not-exists), so two
	// simultaneous escalations of one session cannot both create. Returns
	// the surviving record and whether this call created it.
	CreateIfAbsent(ctx context.Context, esc *domain.Escalation) (*domain.Escalation, bool, error)

	// Count returns the total number of escalation records
	Count(ctx context.Context) (int64, error)

	// CountByStatus counts escalations in the given status
	CountByStatus(ctx context.Context, status domain.EscalationStatus) (int64, error)

	// List retrieves escalations for the back-office view, newest first
	List(ctx context.Context, filter domain.EscalationFilter) ([]*domain.Escalation, error)
}

// SessionRepository defines the interface for denormalized session summaries
type SessionRepository interface {
	// ApplyEscalation merge-writes the escalation projection onto the
	// session summary, creating it when absent. Unrelated fields are left
	// untouched.
	ApplyEscalation(ctx context.Context, sessionID, userID string, patch domain.SessionEscalationPatch) error

	// Count returns the total number of session summaries
	Count(ctx context.Context) (int64, error)

	// CountDistinctUsers counts distinct non-empty session owners
	CountDistinctUsers(ctx context.Context) (int64, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Messages    MessageRepository
	Escalations EscalationRepository
	Sessions    SessionRepository
}
