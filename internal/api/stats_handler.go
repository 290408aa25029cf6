package api

import (
	"context"
	"net/http"

	"github.com/geoquiz/geoquiz-api/internal/stats"
	"go.uber.org/zap"
)

// StatsSource produces an operational snapshot; *stats.Collector is the production implementation
type StatsSource interface {
	Collect(ctx context.Context) (*stats.Stats, error)
}

// StatsHandler serves the operational statistics view
type StatsHandler struct {
	source StatsSource
	logger *zap.Logger
}

func NewStatsHandler(source StatsSource, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{source: source, logger: logger}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.source.Collect(r.Context())
	if err != nil {
		h.logger.Error("Failed to collect statistics",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to collect statistics")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
