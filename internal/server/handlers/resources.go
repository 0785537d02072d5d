package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
	"github.com/maati-dev/maati/pkg/api"
)

// appendActivity records a mutation in the activity log. Failures are logged
// and swallowed so they never fail the request that caused them.
func appendActivity(ctx context.Context, logger *slog.Logger, logs storage.LogStorage, entryType, action, villageID, relatedID string) {
	userID, _ := GetUserID(ctx)
	err := logs.AppendLog(ctx, &models.LogEntry{
		LogID:      uuid.New().String(),
		Type:       entryType,
		Action:     action,
		VillageID:  villageID,
		UserID:     userID,
		RelatedID:  relatedID,
		UpdateTime: time.Now(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to append activity log",
			slog.String("type", entryType), slog.Any("error", err))
	}
}

// MeetingHandler serves consultation meeting records.
type MeetingHandler struct {
	logger   *slog.Logger
	meetings storage.MeetingStorage
	logs     storage.LogStorage
}

// NewMeetingHandler creates the meeting handler.
func NewMeetingHandler(logger *slog.Logger, meetings storage.MeetingStorage, logs storage.LogStorage) *MeetingHandler {
	return &MeetingHandler{logger: logger, meetings: meetings, logs: logs}
}

// ListByVillage handles GET /api/v1/villages/{id}/meetings.
func (h *MeetingHandler) ListByVillage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	meetings, err := h.meetings.ListMeetings(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list meetings", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, meetings, len(meetings), 1, len(meetings))
}

// Create handles POST /api/v1/meetings.
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.MeetingRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	heldOn, err := time.Parse(time.RFC3339, req.HeldOn)
	if err != nil {
		sendError(h.logger, w, "heldOn must be an RFC 3339 timestamp", http.StatusBadRequest)
		return
	}

	meeting := &models.Meeting{
		MeetingID:   uuid.New().String(),
		VillageID:   req.VillageID,
		Title:       req.Title,
		Description: req.Description,
		HeldBy:      req.HeldBy,
		Place:       req.Place,
		HeldOn:      heldOn,
		Attendees:   req.Attendees,
		CreatedAt:   time.Now(),
	}

	if err := h.meetings.CreateMeeting(ctx, meeting); err != nil {
		h.logger.ErrorContext(ctx, "failed to create meeting", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "meeting", "created", meeting.VillageID, meeting.MeetingID)
	sendResult(h.logger, w, http.StatusCreated, "meeting recorded", meeting)
}

// Delete handles DELETE /api/v1/meetings/{id}.
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	meetingID := r.PathValue("id")

	if err := h.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		if errors.Is(err, storage.ErrMeetingNotFound) {
			sendError(h.logger, w, "meeting not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete meeting", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "meeting", "deleted", "", meetingID)
	sendResult(h.logger, w, http.StatusOK, "meeting deleted", nil)
}

// BuildingHandler serves community building records.
type BuildingHandler struct {
	logger    *slog.Logger
	buildings storage.BuildingStorage
	logs      storage.LogStorage
}

// NewBuildingHandler creates the building handler.
func NewBuildingHandler(logger *slog.Logger, buildings storage.BuildingStorage, logs storage.LogStorage) *BuildingHandler {
	return &BuildingHandler{logger: logger, buildings: buildings, logs: logs}
}

// ListByVillage handles GET /api/v1/villages/{id}/buildings.
func (h *BuildingHandler) ListByVillage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	buildings, err := h.buildings.ListBuildings(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list buildings", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, buildings, len(buildings), 1, len(buildings))
}

// Create handles POST /api/v1/buildings.
func (h *BuildingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.BuildingRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	building := &models.Building{
		BuildingID: uuid.New().String(),
		VillageID:  req.VillageID,
		Name:       req.Name,
		TypeID:     req.TypeID,
		Stage:      req.Stage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.buildings.CreateBuilding(ctx, building); err != nil {
		h.logger.ErrorContext(ctx, "failed to create building", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "building", "created", building.VillageID, building.BuildingID)
	sendResult(h.logger, w, http.StatusCreated, "building recorded", building)
}

// Update handles PUT /api/v1/buildings/{id}.
func (h *BuildingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buildingID := r.PathValue("id")

	var req api.BuildingRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	building := &models.Building{
		BuildingID: buildingID,
		Name:       req.Name,
		TypeID:     req.TypeID,
		Stage:      req.Stage,
		UpdatedAt:  time.Now(),
	}

	if err := h.buildings.UpdateBuilding(ctx, building); err != nil {
		if errors.Is(err, storage.ErrBuildingNotFound) {
			sendError(h.logger, w, "building not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update building", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "building", "updated", req.VillageID, buildingID)
	sendResult(h.logger, w, http.StatusOK, "building updated", nil)
}

// Delete handles DELETE /api/v1/buildings/{id}.
func (h *BuildingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buildingID := r.PathValue("id")

	if err := h.buildings.DeleteBuilding(ctx, buildingID); err != nil {
		if errors.Is(err, storage.ErrBuildingNotFound) {
			sendError(h.logger, w, "building not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete building", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "building", "deleted", "", buildingID)
	sendResult(h.logger, w, http.StatusOK, "building deleted", nil)
}

// FeedbackHandler serves villager complaints and suggestions.
type FeedbackHandler struct {
	logger   *slog.Logger
	feedback storage.FeedbackStorage
	logs     storage.LogStorage
}

// NewFeedbackHandler creates the feedback handler.
func NewFeedbackHandler(logger *slog.Logger, feedback storage.FeedbackStorage, logs storage.LogStorage) *FeedbackHandler {
	return &FeedbackHandler{logger: logger, feedback: feedback, logs: logs}
}

// ListByVillage handles GET /api/v1/villages/{id}/feedback.
func (h *FeedbackHandler) ListByVillage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	list, err := h.feedback.ListFeedback(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list feedback", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, list, len(list), 1, len(list))
}

// Get handles GET /api/v1/feedback/{id}.
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedbackID := r.PathValue("id")

	feedback, err := h.feedback.GetFeedback(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, storage.ErrFeedbackNotFound) {
			sendError(h.logger, w, "feedback not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get feedback", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendResult(h.logger, w, http.StatusOK, "", feedback)
}

// Create handles POST /api/v1/feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.FeedbackRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	feedback := &models.Feedback{
		FeedbackID:   uuid.New().String(),
		VillageID:    req.VillageID,
		FamilyID:     req.FamilyID,
		Name:         req.Name,
		Mobile:       req.Mobile,
		Email:        req.Email,
		FeedbackType: req.FeedbackType,
		Comments:     req.Comments,
		CreatedAt:    time.Now(),
	}

	if err := h.feedback.CreateFeedback(ctx, feedback); err != nil {
		h.logger.ErrorContext(ctx, "failed to create feedback", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	appendActivity(ctx, h.logger, h.logs, "feedback", "created", feedback.VillageID, feedback.FeedbackID)
	sendResult(h.logger, w, http.StatusCreated, "feedback submitted", feedback)
}
