package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger  *slog.Logger
	store   Pinger
	version string
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(logger *slog.Logger, store Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		store:   store,
		version: version,
	}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health handles GET /api/v1/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			h.logger.ErrorContext(ctx, "health check: database unreachable", slog.Any("error", err))
			writeJSON(h.logger, w, HealthResponse{Status: "degraded", Version: h.version}, http.StatusServiceUnavailable)
			return
		}
	}

	writeJSON(h.logger, w, HealthResponse{Status: "ok", Version: h.version}, http.StatusOK)
}
