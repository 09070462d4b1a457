package errorhandler

import (
	"context"
	"net/http"

	"github.com/recaudopro/recaudo-api/internal/pkg/apperr"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
)

// HandleError logs err and sends a formatted error response.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error()
	if status < http.StatusInternalServerError {
		event = logger.FromContext(ctx).Warn()
	}
	event.
		Str("error_code", code).
		Int("status_code", status).
		Err(err).
		Msg(message)

	response.Error(w, status, code, message)
}

// HandleKind maps an apperr kind to its HTTP status. It returns false when err
// carries no kind so the caller can apply its own domain mapping.
func HandleKind(ctx context.Context, w http.ResponseWriter, err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindPreconditionFailed:
		field := apperr.FieldOf(err)
		logger.LogWarn(ctx, "Precondition failed", "field", field, "error", err.Error())
		response.ErrorWithDetails(w, http.StatusBadRequest, "PRECONDITION_FAILED", "Missing or invalid input",
			map[string]string{field: "This field is required or invalid"})
		return true
	case apperr.KindNotFound:
		HandleError(ctx, w, http.StatusNotFound, "NOT_FOUND", "Resource not found", err)
		return true
	case apperr.KindFetchFailed:
		HandleError(ctx, w, http.StatusInternalServerError, "FETCH_FAILED", "Could not load data", err)
		return true
	case apperr.KindDegraded:
		HandleError(ctx, w, http.StatusServiceUnavailable, "DEGRADED", "Data temporarily incomplete", err)
		return true
	}
	return false
}

// Handle maps err through HandleKind and falls back to 500.
func Handle(ctx context.Context, w http.ResponseWriter, err error) {
	if HandleKind(ctx, w, err) {
		return
	}
	HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
}
