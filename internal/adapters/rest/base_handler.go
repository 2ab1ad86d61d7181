package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pharmaseek/marketplace/backend/internal/platform/apperror"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
)

// ErrorResponse is the JSON shape of every error returned by the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// BaseHandler contains common dependencies and helper methods for all handlers
type BaseHandler struct {
	logger logger.Logger
}

// NewBaseHandler creates a new base handler with common dependencies
func NewBaseHandler(logger logger.Logger) *BaseHandler {
	return &BaseHandler{
		logger: logger,
	}
}

// WriteJSONResponse writes a successful JSON response
func (h *BaseHandler) WriteJSONResponse(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(r.Context(), "failed to encode response",
			"error", err,
			"status_code", statusCode,
		)
	}
}

// WriteJSONError writes a JSON error response
func (h *BaseHandler) WriteJSONError(w http.ResponseWriter, r *http.Request, code string, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   strings.ToLower(code),
		Code:    code,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error(r.Context(), "failed to encode error response",
			"error", err,
			"error_code", code,
			"status_code", statusCode,
		)
	}
}

// HandleError translates a service error into a JSON error response.
// AppErrors carry their own HTTP status and business code; anything else
// becomes an opaque 500.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.HTTPStatus)

		resp := ErrorResponse{
			Error:   strings.ToLower(string(appErr.Code)),
			Code:    string(appErr.BusinessCode),
			Message: appErr.Message,
			Details: appErr.Details,
		}

		if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
			h.logger.Error(r.Context(), "failed to encode error response",
				"error", encErr,
				"business_code", appErr.BusinessCode,
			)
		}
		return
	}

	h.logger.Error(r.Context(), "unhandled error", "error", err)
	h.WriteJSONError(w, r, "internal_server_error", "An unexpected error occurred", http.StatusInternalServerError)
}

// parsePagination extracts limit/offset query parameters with defaults
func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
