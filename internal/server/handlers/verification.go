package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
	"github.com/maati-dev/maati/pkg/api"
)

// VerificationHandler serves facility and field (plot) verifications.
type VerificationHandler struct {
	logger        *slog.Logger
	verifications storage.VerificationStorage
	logs          storage.LogStorage
}

// NewVerificationHandler creates the verification handler.
func NewVerificationHandler(logger *slog.Logger, verifications storage.VerificationStorage, logs storage.LogStorage) *VerificationHandler {
	return &VerificationHandler{logger: logger, verifications: verifications, logs: logs}
}

// ListFacilityByVillage handles GET /api/v1/villages/{id}/facility-verifications.
func (h *VerificationHandler) ListFacilityByVillage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	list, err := h.verifications.ListFacilityVerifications(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list facility verifications", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, list, len(list), 1, len(list))
}

// UpdateFacilityStatus handles PUT /api/v1/facility-verifications/{id}/status.
func (h *VerificationHandler) UpdateFacilityStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	verificationID := r.PathValue("id")

	change, err := h.decodeStatusChange(r)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.verifications.UpdateFacilityStatus(ctx, verificationID, change); err != nil {
		if errors.Is(err, storage.ErrVerificationNotFound) {
			sendError(h.logger, w, "verification not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update facility status", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "facility-verification", change.Status, "", verificationID)
	sendResult(h.logger, w, http.StatusOK, "status updated", nil)
}

// ListFieldByVillage handles GET /api/v1/villages/{id}/field-verifications.
func (h *VerificationHandler) ListFieldByVillage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	list, err := h.verifications.ListFieldVerifications(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list field verifications", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, list, len(list), 1, len(list))
}

// UpdateFieldStatus handles PUT /api/v1/field-verifications/{id}/status.
func (h *VerificationHandler) UpdateFieldStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	verificationID := r.PathValue("id")

	change, err := h.decodeStatusChange(r)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.verifications.UpdateFieldStatus(ctx, verificationID, change); err != nil {
		if errors.Is(err, storage.ErrVerificationNotFound) {
			sendError(h.logger, w, "verification not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update field status", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "field-verification", change.Status, "", verificationID)
	sendResult(h.logger, w, http.StatusOK, "status updated", nil)
}

func (h *VerificationHandler) decodeStatusChange(r *http.Request) (models.StatusChange, error) {
	var req api.StatusUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		return models.StatusChange{}, err
	}
	userID, _ := GetUserID(r.Context())
	return models.StatusChange{
		Status:    req.Status,
		ChangedBy: userID,
		Remarks:   req.Remarks,
		ChangedAt: time.Now(),
	}, nil
}

// MaterialHandler serves construction material updates.
type MaterialHandler struct {
	logger    *slog.Logger
	materials storage.MaterialStorage
	logs      storage.LogStorage
}

// NewMaterialHandler creates the material handler.
func NewMaterialHandler(logger *slog.Logger, materials storage.MaterialStorage, logs storage.LogStorage) *MaterialHandler {
	return &MaterialHandler{logger: logger, materials: materials, logs: logs}
}

// ListByVillage handles GET /api/v1/villages/{id}/material-updates.
func (h *MaterialHandler) ListByVillage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	list, err := h.materials.ListMaterialUpdates(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list material updates", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, list, len(list), 1, len(list))
}

// Create handles POST /api/v1/material-updates.
// New records start in status pending.
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.MaterialUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, _ := GetUserID(ctx)
	now := time.Now()
	update := &models.MaterialUpdate{
		UpdateID:   uuid.New().String(),
		VillageID:  req.VillageID,
		MaterialID: req.MaterialID,
		Unit:       req.Unit,
		Quantity:   req.Quantity,
		Status:     models.StatusPending,
		UpdatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.materials.CreateMaterialUpdate(ctx, update); err != nil {
		h.logger.ErrorContext(ctx, "failed to create material update", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "material-update", "created", update.VillageID, update.UpdateID)
	sendResult(h.logger, w, http.StatusCreated, "material update recorded", update)
}

// UpdateStatus handles PUT /api/v1/material-updates/{id}/status.
func (h *MaterialHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	updateID := r.PathValue("id")

	var req api.StatusUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, _ := GetUserID(ctx)
	change := models.StatusChange{
		Status:    req.Status,
		ChangedBy: userID,
		Remarks:   req.Remarks,
		ChangedAt: time.Now(),
	}

	if err := h.materials.UpdateMaterialStatus(ctx, updateID, change); err != nil {
		if errors.Is(err, storage.ErrMaterialUpdateNotFound) {
			sendError(h.logger, w, "material update not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update material status", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "material-update", change.Status, "", updateID)
	sendResult(h.logger, w, http.StatusOK, "status updated", nil)
}

// StatusHistory handles GET /api/v1/material-updates/{id}/status-history.
func (h *MaterialHandler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	updateID := r.PathValue("id")

	history, err := h.materials.MaterialStatusHistory(ctx, updateID)
	if err != nil {
		if errors.Is(err, storage.ErrMaterialUpdateNotFound) {
			sendError(h.logger, w, "material update not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get status history", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, history, len(history), 1, len(history))
}
