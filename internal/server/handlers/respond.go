package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/maati-dev/maati/pkg/api"
)

// validate is the shared request validator. Handlers call decodeBody which
// runs it on every decoded payload.
var validate = validator.New()

// decodeBody decodes the JSON request body into dst and validates it.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// sendResult writes the standard {error,message,result} envelope.
func sendResult(logger *slog.Logger, w http.ResponseWriter, statusCode int, message string, result any) {
	env := api.Envelope{Message: message}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			logger.Error("failed to marshal result", slog.Any("error", err))
			sendError(logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		env.Result = raw
	}
	writeJSON(logger, w, env, statusCode)
}

// sendList writes a paginated list payload inside the envelope:
// {"result": {"count": n, "page": p, "limit": l, "items": [...]}}.
func sendList(logger *slog.Logger, w http.ResponseWriter, items any, count, page, limit int) {
	raw, err := json.Marshal(items)
	if err != nil {
		logger.Error("failed to marshal list items", slog.Any("error", err))
		sendError(logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	sendResult(logger, w, http.StatusOK, "", api.ListResult{
		Items: raw,
		Count: count,
		Page:  page,
		Limit: limit,
	})
}

// sendError writes an error envelope with the given status code.
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	writeJSON(logger, w, api.Envelope{Error: true, Message: message}, statusCode)
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}
