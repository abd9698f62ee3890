package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the failure classes the client distinguishes.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrSessionExpired   = errors.New("session expired")
	ErrNetwork          = errors.New("network error")
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrServiceUnavail   = errors.New("service unavailable")
)

// APIError represents a structured error returned by the backend,
// preserving the code and message for display.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Unauthorized creates an error for a missing or expired access token.
// It is recoverable: the request layer refreshes the session once and retries.
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// SessionExpired creates a terminal error: the refresh flow itself failed and
// the session has been destroyed. The caller must re-authenticate.
func SessionExpired(message string) *APIError {
	return &APIError{
		Code:    "SESSION_EXPIRED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrSessionExpired,
	}
}

// Network wraps a transport-level failure (timeout, unreachable host).
// Surfaced to the caller as a displayable message, not auto-retried here.
func Network(err error) *APIError {
	return &APIError{
		Code:    "NETWORK_ERROR",
		Message: "could not reach the server",
		Err:     fmt.Errorf("%w: %w", ErrNetwork, err),
	}
}

// Validation creates an error for caller-supplied input rejected either
// locally or by the backend. Field messages are preserved verbatim.
func Validation(message string, fields map[string]string) *APIError {
	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Fields:  fields,
		Err:     ErrValidation,
	}
}

// PermissionDenied creates an error for an operation the current user is not
// allowed to perform. Raised client-side before any network call.
func PermissionDenied(message string) *APIError {
	return &APIError{
		Code:    "PERMISSION_DENIED",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrPermissionDenied,
	}
}

// NotFound creates an error for a missing resource.
func NotFound(resource, id string) *APIError {
	return &APIError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Conflict creates an error for a request that clashes with current state.
func Conflict(message string) *APIError {
	return &APIError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// FromStatus translates an HTTP status code and error body into the matching
// sentinel-backed APIError. Used at the response boundary.
func FromStatus(status int, code, message string) error {
	switch status {
	case http.StatusUnauthorized:
		return Unauthorized(message)
	case http.StatusForbidden:
		return PermissionDenied(message)
	case http.StatusNotFound:
		return &APIError{Code: orDefault(code, "NOT_FOUND"), Message: message, Status: status, Err: ErrNotFound}
	case http.StatusBadRequest:
		return Validation(message, nil)
	case http.StatusConflict:
		return Conflict(message)
	case http.StatusServiceUnavailable:
		return &APIError{Code: orDefault(code, "SERVICE_UNAVAILABLE"), Message: message, Status: status, Err: ErrServiceUnavail}
	default:
		return &APIError{Code: orDefault(code, "API_ERROR"), Message: message, Status: status}
	}
}

// IsTerminal reports whether the error ends the current session, forcing a
// re-login rather than an inline message.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func orDefault(code, fallback string) string {
	if code == "" {
		return fallback
	}
	return code
}
