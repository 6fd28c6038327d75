package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"vocabnotes/internal/contextutil"
	"vocabnotes/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as the response body with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	// Request body limits hit while reading an import
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.WarnContext(ctx, "request body too large", "limit", tooLarge.Limit)
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body is larger than %d bytes", tooLarge.Limit))
		return
	}
	if errors.Is(err, bufio.ErrTooLong) {
		logger.WarnContext(ctx, "import line too long", "error", err)
		writeError(w, http.StatusBadRequest, "A line in the import is too long")
		return
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation error", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		logger.WarnContext(ctx, "note not found", "id", notFoundErr.ID)
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	if errors.Is(err, service.ErrImportParse) {
		logger.WarnContext(ctx, "import rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errors.Is(err, service.ErrPersistence) {
		logger.ErrorContext(ctx, "persistence error", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Storage is unavailable, nothing was changed")
		return
	}

	// Default to internal server error
	logger.ErrorContext(ctx, "service error", "error", err)
	writeError(w, http.StatusInternalServerError, defaultMsg)
}
