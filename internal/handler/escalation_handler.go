package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"support-be/internal/domain"
	"support-be/internal/middleware"
	"support-be/internal/service"
	"support-be/pkg/errors"
	"support-be/pkg/logger"
)

const maxSessionIDLength = 128

type EscalationHandler struct {
	escalator service.Escalator
	logger    *logger.Logger
}

func NewEscalationHandler(escalator service.Escalator, log *logger.Logger) *EscalationHandler {
	return &EscalationHandler{
		escalator: escalator,
		logger:    log,
	}
}

// Escalate handles POST /api/v1/support/escalate
func (h *EscalationHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := middleware.PrincipalFromContext(ctx)
	if principal == nil {
		respondError(w, errors.NewAuthenticationError("Authentication required"), h.logger)
		return
	}

	var req domain.EscalateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.NewValidationError("Invalid request body", nil), h.logger)
		return
	}
	if err := validateSessionID(req.SessionID); err != nil {
		respondError(w, err, h.logger)
		return
	}

	response, err := h.escalator.Escalate(ctx, req.SessionID, principal)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, response, h.logger)
}

// GetSessionEscalation handles GET /api/v1/support/sessions/{sessionID}/escalation
func (h *EscalationHandler) GetSessionEscalation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := middleware.PrincipalFromContext(ctx)
	if principal == nil {
		respondError(w, errors.NewAuthenticationError("Authentication required"), h.logger)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if err := validateSessionID(sessionID); err != nil {
		respondError(w, err, h.logger)
		return
	}

	response, err := h.escalator.GetSessionEscalation(ctx, sessionID, principal)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, response, h.logger)
}

// ListEscalations handles GET /api/v1/support/escalations (admin only)
func (h *EscalationHandler) ListEscalations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := domain.EscalationFilter{
		Status: domain.EscalationStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, errors.NewValidationError("limit must be a positive integer", nil), h.logger)
			return
		}
		filter.Limit = limit
	}

	escalations, err := h.escalator.ListEscalations(ctx, filter)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"escalations": escalations,
		"count":       len(escalations),
	}, h.logger)
}

// validateSessionID rejects empty or absurdly long session identifiers
func validateSessionID(sessionID string) error {
	if sessionID == "" {
		return errors.NewValidationError("session_id is required", nil)
	}
	if len(sessionID) > maxSessionIDLength {
		return errors.NewValidationError("session_id is too long", map[string]interface{}{
			"max_length": maxSessionIDLength,
		})
	}
	return nil
}
