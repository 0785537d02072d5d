package handlers

import (
	"log/slog"
	"net/http"

	"github.com/maati-dev/maati/internal/server/storage"
)

// LogHandler serves the activity log.
type LogHandler struct {
	logger *slog.Logger
	logs   storage.LogStorage
}

// NewLogHandler creates the activity log handler.
func NewLogHandler(logger *slog.Logger, logs storage.LogStorage) *LogHandler {
	return &LogHandler{logger: logger, logs: logs}
}

// List handles GET /api/v1/logs?villageId=V&limit=N.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	villageID := r.URL.Query().Get("villageId")
	limit := queryInt(r, "limit", 0)

	entries, err := h.logs.ListLogs(ctx, villageID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list logs", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, entries, len(entries), 1, len(entries))
}

// AnalyticsHandler serves dashboard aggregates.
type AnalyticsHandler struct {
	logger    *slog.Logger
	analytics storage.AnalyticsStorage
}

// NewAnalyticsHandler creates the analytics handler.
func NewAnalyticsHandler(logger *slog.Logger, analytics storage.AnalyticsStorage) *AnalyticsHandler {
	return &AnalyticsHandler{logger: logger, analytics: analytics}
}

// Options handles GET /api/v1/analytics/options?villageId=V.
func (h *AnalyticsHandler) Options(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	villageID := r.URL.Query().Get("villageId")
	if villageID == "" {
		sendError(h.logger, w, "villageId is required", http.StatusBadRequest)
		return
	}

	result, err := h.analytics.OptionAnalytics(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to aggregate options", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendResult(h.logger, w, http.StatusOK, "", result)
}

// Buildings handles GET /api/v1/analytics/buildings?villageId=V.
func (h *AnalyticsHandler) Buildings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	villageID := r.URL.Query().Get("villageId")
	if villageID == "" {
		sendError(h.logger, w, "villageId is required", http.StatusBadRequest)
		return
	}

	result, err := h.analytics.BuildingAnalytics(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to aggregate buildings", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendResult(h.logger, w, http.StatusOK, "", result)
}
