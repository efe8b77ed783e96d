package handler

import (
	"context"
	"net/http"
	"time"

	"support-be/pkg/database"
	"support-be/pkg/logger"
	"support-be/pkg/redis"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *database.PostgresDB
	redis  *redis.Client // may be nil
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: log,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]string{}
	status := http.StatusOK
	overall := "healthy"

	if err := h.db.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
		components["database"] = "unhealthy"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	} else {
		components["database"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Health(ctx); err != nil {
			h.logger.WithError(err).Warn("Redis health check failed")
			components["redis"] = "unhealthy"
			overall = "degraded"
		} else {
			components["redis"] = "healthy"
		}
	}

	respondJSON(w, status, HealthResponse{
		Status:     overall,
		Timestamp:  time.Now().UTC(),
		Service:    "support-be",
		Components: components,
	}, h.logger)
}
