package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-be/internal/cache"
	"support-be/internal/domain"
	"support-be/internal/middleware"
	apperrors "support-be/pkg/errors"
	"support-be/pkg/logger"
)

// fakeEscalator returns canned workflow results
type fakeEscalator struct {
	response *domain.EscalateResponse
	list     []*domain.Escalation
	err      error

	gotSessionID string
	gotPrincipal *domain.Principal
}

func (f *fakeEscalator) Escalate(_ context.Context, sessionID string, principal *domain.Principal) (*domain.EscalateResponse, error) {
	f.gotSessionID = sessionID
	f.gotPrincipal = principal
	return f.response, f.err
}

func (f *fakeEscalator) GetSessionEscalation(_ context.Context, sessionID string, principal *domain.Principal) (*domain.EscalateResponse, error) {
	f.gotSessionID = sessionID
	f.gotPrincipal = principal
	return f.response, f.err
}

func (f *fakeEscalator) ListEscalations(context.Context, domain.EscalationFilter) ([]*domain.Escalation, error) {
	return f.list, f.err
}

func authenticatedRequest(method, target, body string, principal *domain.Principal) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if principal != nil {
		ctx := context.WithValue(r.Context(), middleware.PrincipalContextKey, principal)
		r = r.WithContext(ctx)
	}
	return r
}

func TestEscalate_Success(t *testing.T) {
	escalator := &fakeEscalator{
		response: &domain.EscalateResponse{
			SessionID:        "s-1",
			Status:           domain.EscalationPending,
			AlreadyEscalated: false,
			EscalatedAt:      time.Now().UTC(),
		},
	}
	h := NewEscalationHandler(escalator, logger.NewNop())

	principal := &domain.Principal{UserID: "user-1"}
	r := authenticatedRequest(http.MethodPost, "/api/v1/support/escalate", `{"session_id":"s-1"}`, principal)
	w := httptest.NewRecorder()

	h.Escalate(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-1", escalator.gotSessionID)
	assert.Equal(t, principal, escalator.gotPrincipal)

	var resp domain.EscalateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.EscalationPending, resp.Status)
	assert.False(t, resp.AlreadyEscalated)
}

func TestEscalate_Failures(t *testing.T) {
	principal := &domain.Principal{UserID: "user-1"}

	tests := []struct {
		name       string
		body       string
		principal  *domain.Principal
		serviceErr error
		wantStatus int
	}{
		{
			name:       "no principal",
			body:       `{"session_id":"s-1"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			body:       `{`,
			principal:  principal,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing session id",
			body:       `{}`,
			principal:  principal,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "session id too long",
			body:       `{"session_id":"` + strings.Repeat("x", maxSessionIDLength+1) + `"}`,
			principal:  principal,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "session not found",
			body:       `{"session_id":"s-404"}`,
			principal:  principal,
			serviceErr: apperrors.NewNotFoundError("Session not found"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "access denied",
			body:       `{"session_id":"s-1"}`,
			principal:  principal,
			serviceErr: apperrors.NewAuthorizationError("You may only escalate your own session"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "store down",
			body:       `{"session_id":"s-1"}`,
			principal:  principal,
			serviceErr: apperrors.NewServiceUnavailableError("Message store unavailable", nil),
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEscalationHandler(&fakeEscalator{err: tt.serviceErr}, logger.NewNop())
			r := authenticatedRequest(http.MethodPost, "/api/v1/support/escalate", tt.body, tt.principal)
			w := httptest.NewRecorder()

			h.Escalate(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			var envelope apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.NotEmpty(t, envelope.Error.Type)
		})
	}
}

func TestListEscalations_InvalidLimit(t *testing.T) {
	h := NewEscalationHandler(&fakeEscalator{}, logger.NewNop())

	r := authenticatedRequest(http.MethodGet, "/api/v1/support/escalations?limit=zero", "", &domain.Principal{UserID: "a", IsAdmin: true})
	w := httptest.NewRecorder()

	h.ListEscalations(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEscalations_Success(t *testing.T) {
	escalator := &fakeEscalator{
		list: []*domain.Escalation{
			{ID: "e-1", SessionID: "s-1", Status: domain.EscalationPending},
			{ID: "e-2", SessionID: "s-2", Status: domain.EscalationPending},
		},
	}
	h := NewEscalationHandler(escalator, logger.NewNop())

	r := authenticatedRequest(http.MethodGet, "/api/v1/support/escalations?status=pending&limit=10", "", &domain.Principal{UserID: "a", IsAdmin: true})
	w := httptest.NewRecorder()

	h.ListEscalations(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Escalations []*domain.Escalation `json:"escalations"`
		Count       int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

// fakeStatsProvider serves a canned snapshot
type fakeStatsProvider struct {
	snapshot *domain.StatsSnapshot
	status   cache.Status
	err      error
}

func (f *fakeStatsProvider) GetStats(context.Context) (*domain.StatsSnapshot, cache.Status, error) {
	return f.snapshot, f.status, f.err
}

func TestGetStats_SetsCacheHeader(t *testing.T) {
	h := NewStatsHandler(&fakeStatsProvider{
		snapshot: &domain.StatsSnapshot{TotalChats: 12, EscalatedChats: 3},
		status:   cache.StatusHit,
	}, logger.NewNop())

	r := authenticatedRequest(http.MethodGet, "/api/v1/support/stats", "", &domain.Principal{UserID: "a", IsAdmin: true})
	w := httptest.NewRecorder()

	h.GetStats(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))

	var snapshot domain.StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, int64(12), snapshot.TotalChats)
}

func TestGetStats_Unavailable(t *testing.T) {
	h := NewStatsHandler(&fakeStatsProvider{
		err: apperrors.NewServiceUnavailableError("store down", nil),
	}, logger.NewNop())

	r := authenticatedRequest(http.MethodGet, "/api/v1/support/stats", "", &domain.Principal{UserID: "a", IsAdmin: true})
	w := httptest.NewRecorder()

	h.GetStats(w, r)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
