package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/lighthouse/internal/matchproto"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/auth"
	"github.com/mcoot/lighthouse/internal/services/match"
	"github.com/mcoot/lighthouse/internal/services/publish"
	"github.com/mcoot/lighthouse/internal/services/resource"
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
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeSessionMissing       = "SESSION_MISSING"
	CodeUnapprovedSession    = "UNAPPROVED_SESSION"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeUnsupportedClient    = "UNSUPPORTED_CLIENT"
	CodeRegistrationDisabled = "REGISTRATION_DISABLED"
	CodeUsernameExists       = "USERNAME_EXISTS"
	CodeNotTokenOwner        = "NOT_TOKEN_OWNER"
	CodeTokenNotFound        = "TOKEN_NOT_FOUND"
	CodeTokenAlreadyApproved = "TOKEN_ALREADY_APPROVED"
	CodeMalformedMatch       = "MALFORMED_MATCH"
	CodeUnknownMatchType     = "UNKNOWN_MATCH_TYPE"
	CodeUnknownPlayer        = "UNKNOWN_PLAYER"
	CodeNoRoom               = "NO_ROOM"
	CodeQuotaExceeded        = "QUOTA_EXCEEDED"
	CodeInvalidSlot          = "INVALID_SLOT"
	CodeNotOwner             = "NOT_OWNER"
	CodeSlotNotFound         = "SLOT_NOT_FOUND"
	CodeResourceNotFound     = "RESOURCE_NOT_FOUND"
	CodeResourceExists       = "RESOURCE_EXISTS"
	CodeUnsafeResource       = "UNSAFE_RESOURCE"
	CodeInvalidHash          = "INVALID_HASH"
	CodeInternalError        = "INTERNAL_ERROR"
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

// WriteError writes a JSON error response for the web API
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// WriteGameError writes the status alone. The game client only looks at
// the status code.
func WriteGameError(w http.ResponseWriter, err error) {
	w.WriteHeader(Status(err))
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Sessions and credentials
	case errors.Is(err, auth.ErrSessionMissing):
		return &httpError{http.StatusForbidden, APIError{CodeSessionMissing, "No valid session"}}
	case errors.Is(err, auth.ErrSessionUnapproved):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnapprovedSession, "Session has not been approved"}}
	case errors.Is(err, auth.ErrUnknownUser), errors.Is(err, auth.ErrInvalidPassword):
		return &httpError{http.StatusForbidden, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrUnsupportedClientVersion):
		return &httpError{http.StatusBadRequest, APIError{CodeUnsupportedClient, "Unsupported client version"}}
	case errors.Is(err, auth.ErrRegistrationDisabled):
		return &httpError{http.StatusNotFound, APIError{CodeRegistrationDisabled, "Registration is disabled"}}
	case errors.Is(err, auth.ErrMissingCredentials):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Username and password are required"}}
	case errors.Is(err, auth.ErrPasswordMismatch):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Passwords do not match"}}
	case errors.Is(err, auth.ErrNotTokenOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotTokenOwner, "Token belongs to another user"}}
	case errors.Is(err, model.ErrUserExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, model.ErrTokenNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTokenNotFound, "Token not found"}}
	case errors.Is(err, model.ErrTokenAlreadyApproved):
		return &httpError{http.StatusConflict, APIError{CodeTokenAlreadyApproved, "Token already approved"}}

	// Match protocol
	case errors.Is(err, matchproto.ErrUnknownType):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownMatchType, "Unknown match message type"}}
	case errors.Is(err, matchproto.ErrMalformedBody):
		return &httpError{http.StatusBadRequest, APIError{CodeMalformedMatch, "Malformed match message"}}
	case errors.Is(err, match.ErrUnknownPlayer):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownPlayer, "Unknown player"}}
	case errors.Is(err, match.ErrNoRoomFound):
		return &httpError{http.StatusNotFound, APIError{CodeNoRoom, "No suitable room"}}

	// Publishing
	case errors.Is(err, publish.ErrQuotaExceeded):
		return &httpError{http.StatusBadRequest, APIError{CodeQuotaExceeded, "Slot quota exceeded"}}
	case errors.Is(err, publish.ErrMissingRootLevel):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSlot, "Slot has no root level"}}
	case errors.Is(err, publish.ErrMissingLocation):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSlot, "Slot has no location"}}
	case errors.Is(err, publish.ErrNotOwner):
		return &httpError{http.StatusBadRequest, APIError{CodeNotOwner, "Slot belongs to another user"}}
	case errors.Is(err, model.ErrSlotNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSlotNotFound, "Slot not found"}}

	// Resources
	case errors.Is(err, model.ErrResourceNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeResourceNotFound, "Resource not found"}}
	case errors.Is(err, model.ErrResourceExists):
		return &httpError{http.StatusConflict, APIError{CodeResourceExists, "Resource already exists"}}
	case errors.Is(err, resource.ErrUnsafeResource):
		return &httpError{http.StatusConflict, APIError{CodeUnsafeResource, "Resource type not allowed"}}
	case errors.Is(err, resource.ErrInvalidHash):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidHash, "Invalid resource hash"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
