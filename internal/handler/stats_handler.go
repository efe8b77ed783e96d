package handler

import (
	"net/http"

	"support-be/internal/service"
	"support-be/pkg/logger"
)

type StatsHandler struct {
	stats  service.StatsProvider
	logger *logger.Logger
}

func NewStatsHandler(stats service.StatsProvider, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: log,
	}
}

// GetStats handles GET /api/v1/support/stats (admin only). The X-Cache
// header reports hit, miss or stale so dashboards can tell fresh data from
// a degraded read.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot, status, err := h.stats.GetStats(r.Context())
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	w.Header().Set("X-Cache", string(status))
	respondJSON(w, http.StatusOK, snapshot, h.logger)
}
