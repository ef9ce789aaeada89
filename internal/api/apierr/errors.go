package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/screenpong/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeScreenNotFound  = "SCREEN_NOT_FOUND"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeAdminDisabled   = "ADMIN_DISABLED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrScreenNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeScreenNotFound, "Screen not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Player not found"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid admin password"}}
	case errors.Is(err, model.ErrInvalidPayload):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewAdminDisabledError is returned when no admin password is configured
func NewAdminDisabledError() error {
	return &httpError{http.StatusForbidden, APIError{CodeAdminDisabled, "Admin endpoints are disabled"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
