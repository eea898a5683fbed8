// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/anuj-jha-1/Expense-Tracker/internal/handler/dto"
	"github.com/anuj-jha-1/Expense-Tracker/internal/middleware"
	"github.com/anuj-jha-1/Expense-Tracker/internal/query"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// Handler serves the router-level fallbacks.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Debug("write response failed", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a single JSON object from the body into dst.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		// Trailing data after the object is malformed input.
		if _, tokErr := dec.Token(); tokErr != io.EOF {
			err = errors.New("unexpected data after JSON object")
		}
	}
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
	return false
}

// validationCodes maps validation causes to API error codes.
var validationCodes = []struct {
	err  error
	code string
}{
	{service.ErrMissingField, "MISSING_FIELD"},
	{service.ErrInvalidType, "INVALID_TYPE"},
	{service.ErrInvalidCategory, "INVALID_CATEGORY"},
	{service.ErrInvalidAmount, "INVALID_AMOUNT"},
	{service.ErrInvalidDate, "INVALID_DATE"},
	{service.ErrDescriptionTooLong, "DESCRIPTION_TOO_LONG"},
	{service.ErrInvalidEmail, "INVALID_EMAIL"},
	{service.ErrWeakPassword, "WEAK_PASSWORD"},
}

// writeServiceError maps service errors to HTTP responses.
// Unknown errors are logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		code := "VALIDATION_FAILED"
		for _, vc := range validationCodes {
			if errors.Is(err, vc.err) {
				code = vc.code
				break
			}
		}
		writeError(w, http.StatusBadRequest, code, verr.Error())
	case errors.Is(err, query.ErrInvalidType):
		writeError(w, http.StatusBadRequest, "INVALID_TYPE", "type must be income or expense")
	case errors.Is(err, query.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, "INVALID_ORDER", fmt.Sprintf("order must be one of %s, %s, %s",
			query.OrderDateDesc, query.OrderDateAsc, query.OrderCreated))
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "VERSION_CONFLICT", "transaction was modified, reload and retry")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
	default:
		logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}
