package service

import (
	"context"

	"support-be/internal/cache"
	"support-be/internal/domain"
)

// AuthService defines the interface for the identity collaborator
type AuthService interface {
	// VerifyToken validates an opaque bearer credential and returns the
	// verified principal, or an authentication error
	VerifyToken(ctx context.Context, token string) (*domain.Principal, error)
}

// Escalator defines the escalation workflow consumed by the HTTP layer
type Escalator interface {
	// Escalate promotes a session to "needs human attention", idempotently
	Escalate(ctx context.Context, sessionID string, principal *domain.Principal) (*domain.EscalateResponse, error)

	// GetSessionEscalation reads escalation state for a session the caller owns
	GetSessionEscalation(ctx context.Context, sessionID string, principal *domain.Principal) (*domain.EscalateResponse, error)

	// ListEscalations is the admin back-office read side
	ListEscalations(ctx context.Context, filter domain.EscalationFilter) ([]*domain.Escalation, error)
}

// StatsProvider serves cached aggregate statistics
type StatsProvider interface {
	GetStats(ctx context.Context) (*domain.StatsSnapshot, cache.Status, error)
}
