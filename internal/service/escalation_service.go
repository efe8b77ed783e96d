package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"support-be/internal/domain"
	"support-be/internal/repository"
	"support-be/pkg/errors"
	"support-be/pkg/logger"
	"support-be/pkg/redis"
)

// EscalationService promotes chat sessions to "needs human attention". The
// create step is idempotent: a session gets at most one escalation record and
// repeated requests read the existing one.
type EscalationService struct {
	messages     repository.MessageRepository
	escalations  repository.EscalationRepository
	sessions     repository.SessionRepository
	redisClient  *redis.Client // optional, nil when redis is not configured
	storeTimeout time.Duration
	logger       *logger.Logger
	now          func() time.Time
}

// NewEscalationService creates the escalation workflow service
func NewEscalationService(
	messages repository.MessageRepository,
	escalations repository.EscalationRepository,
	sessions repository.SessionRepository,
	redisClient *redis.Client,
	storeTimeout time.Duration,
	log *logger.Logger,
) *EscalationService {
	return &EscalationService{
		messages:     messages,
		escalations:  escalations,
		sessions:     sessions,
		redisClient:  redisClient,
		storeTimeout: storeTimeout,
		logger:       log.Named("escalation"),
		now:          time.Now,
	}
}

// Escalate runs the escalation workflow for sessionID on behalf of principal.
// Preconditions (enforced upstream): the principal is verified and the
// request has passed the rate gate.
func (s *EscalationService) Escalate(ctx context.Context, sessionID string, principal *domain.Principal) (*domain.EscalateResponse, error) {
	if principal == nil {
		return nil, errors.NewAuthenticationError("Authentication required")
	}
	if sessionID == "" {
		return nil, errors.NewValidationError("session_id is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	// Ownership and recency in one read
	msgs, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Message store unavailable", err)
	}
	if len(msgs) == 0 {
		return nil, errors.NewNotFoundError("Session not found")
	}

	owner := sessionOwner(msgs)
	latest := msgs[len(msgs)-1]
	if owner != "" && owner != principal.UserID {
		s.logger.WithFields(map[string]interface{}{
			"session_id": sessionID,
			"user_id":    principal.UserID,
		}).Warn("Escalation denied: caller does not own session")
		return nil, errors.NewAuthorizationError("You may only escalate your own session")
	}

	candidate := &domain.Escalation{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		UserID:      principal.UserID,
		UserEmail:   principal.Email,
		UserName:    principal.Name,
		Status:      domain.EscalationPending,
		EscalatedAt: s.now().UTC(),
	}

	record, created, err := s.escalations.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Escalation store unavailable", err)
	}

	// Denormalize onto the parent session for fast listing
	patch := domain.SessionEscalationPatch{
		IsEscalated:      true,
		EscalationStatus: record.Status,
		EscalatedAt:      record.EscalatedAt,
	}
	if err := s.sessions.ApplyEscalation(ctx, sessionID, record.UserID, patch); err != nil {
		return nil, errors.NewServiceUnavailableError("Session store unavailable", err)
	}

	// Cosmetic: flag the latest message and warm the status cache. Neither
	// failure fails the escalation.
	if err := s.messages.MarkEscalated(ctx, latest.ID); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("Failed to flag latest message as escalated")
	}
	s.cacheStatus(sessionID, record.Status)

	if created {
		s.logger.WithFields(map[string]interface{}{
			"session_id": sessionID,
			"user_id":    principal.UserID,
		}).Info("Session escalated")
	}

	return &domain.EscalateResponse{
		SessionID:        sessionID,
		Status:           record.Status,
		AlreadyEscalated: !created,
		EscalatedAt:      record.EscalatedAt,
	}, nil
}

// GetSessionEscalation reads escalation state for a session the caller owns
func (s *EscalationService) GetSessionEscalation(ctx context.Context, sessionID string, principal *domain.Principal) (*domain.EscalateResponse, error) {
	if principal == nil {
		return nil, errors.NewAuthenticationError("Authentication required")
	}
	if sessionID == "" {
		return nil, errors.NewValidationError("session_id is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	msgs, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Message store unavailable", err)
	}
	if len(msgs) == 0 {
		return nil, errors.NewNotFoundError("Session not found")
	}
	if owner := sessionOwner(msgs); owner != "" && owner != principal.UserID && !principal.IsAdmin {
		return nil, errors.NewAuthorizationError("You may only view your own session")
	}

	esc, err := s.escalations.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Escalation store unavailable", err)
	}
	if esc == nil {
		return nil, errors.NewNotFoundError("Session has not been escalated")
	}

	return &domain.EscalateResponse{
		SessionID:        sessionID,
		Status:           esc.Status,
		AlreadyEscalated: true,
		EscalatedAt:      esc.EscalatedAt,
	}, nil
}

// ListEscalations is the admin back-office read side
func (s *EscalationService) ListEscalations(ctx context.Context, filter domain.EscalationFilter) ([]*domain.Escalation, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.NewValidationError("Unknown escalation status", map[string]interface{}{
			"status": filter.Status,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	escalations, err := s.escalations.List(ctx, filter)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Escalation store unavailable", err)
	}
	return escalations, nil
}

// cacheStatus best-effort mirrors the escalation status into redis
func (s *EscalationService) cacheStatus(sessionID string, status domain.EscalationStatus) {
	if s.redisClient == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := s.redisClient.KeyBuilder.KeyEscalationStatus(sessionID)
		if err := s.redisClient.Set(ctx, key, string(status), redis.TTLEscalationStatus); err != nil {
			s.logger.WithError(err).Debug("Failed to cache escalation status")
		}
	}()
}

// sessionOwner returns the userId of the earliest message that carries one.
// Fully anonymous sessions have no owner and anyone holding the session id
// may escalate them.
func sessionOwner(msgs []*domain.ChatMessage) string {
	for _, msg := range msgs {
		if msg.UserID != "" {
			return msg.UserID
		}
	}
	return ""
}
