package handler

import (
	"net/http"

	"github.com/mcoot/lighthouse/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes a JSON error response for the web API
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// WriteGameError writes a bare status for game endpoints
func WriteGameError(w http.ResponseWriter, err error) {
	apierr.WriteGameError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return apierr.NewForbiddenError(message)
}
