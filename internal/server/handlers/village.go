package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/maati-dev/maati/internal/server/storage"
)

// defaultPageLimit is the beneficiary page size when the client sends none.
const defaultPageLimit = 10

// VillageHandler serves village records and beneficiary families.
type VillageHandler struct {
	logger   *slog.Logger
	villages storage.VillageStorage
	families storage.FamilyStorage
}

// NewVillageHandler creates the village handler.
func NewVillageHandler(logger *slog.Logger, villages storage.VillageStorage, families storage.FamilyStorage) *VillageHandler {
	return &VillageHandler{
		logger:   logger,
		villages: villages,
		families: families,
	}
}

// List handles GET /api/v1/villages?stage=N.
func (h *VillageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stage := 0
	if raw := r.URL.Query().Get("stage"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			sendError(h.logger, w, "invalid stage parameter", http.StatusBadRequest)
			return
		}
		stage = parsed
	}

	cards, err := h.villages.ListVillages(ctx, stage)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list villages", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, cards, len(cards), 1, len(cards))
}

// Get handles GET /api/v1/villages/{id}.
func (h *VillageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	village, err := h.villages.GetVillage(ctx, villageID)
	if err != nil {
		if errors.Is(err, storage.ErrVillageNotFound) {
			sendError(h.logger, w, "village not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get village", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendResult(h.logger, w, http.StatusOK, "", village)
}

// FamilyCount handles GET /api/v1/villages/{id}/family-count.
func (h *VillageHandler) FamilyCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	count, err := h.villages.FamilyCount(ctx, villageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count families", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendResult(h.logger, w, http.StatusOK, "", count)
}

// Beneficiaries handles
// GET /api/v1/villages/{id}/beneficiaries?page&limit&optionId&mukhiyaName.
func (h *VillageHandler) Beneficiaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	villageID := r.PathValue("id")

	query := storage.BeneficiaryQuery{
		MukhiyaName: r.URL.Query().Get("mukhiyaName"),
		Page:        queryInt(r, "page", 1),
		Limit:       queryInt(r, "limit", defaultPageLimit),
		OptionID:    queryInt(r, "optionId", 0),
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = defaultPageLimit
	}

	cards, total, err := h.families.ListBeneficiaries(ctx, villageID, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list beneficiaries", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendList(h.logger, w, cards, total, query.Page, query.Limit)
}

// FamilyDetail handles GET /api/v1/families/{id}.
func (h *VillageHandler) FamilyDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	familyID := r.PathValue("id")

	detail, err := h.families.GetFamilyDetail(ctx, familyID)
	if err != nil {
		if errors.Is(err, storage.ErrFamilyNotFound) {
			sendError(h.logger, w, "family not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get family detail", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendResult(h.logger, w, http.StatusOK, "", detail)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}
