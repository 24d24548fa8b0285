// Package apperror provides domain-specific error types for the bucketlist
// service. These errors carry an HTTP status code and a user-safe message.
// The Echo error handler maps them to the canonical {"error": ...} payload.
//
// NEVER return raw database or infrastructure errors to the client. Always
// wrap them in an apperror type or return a generic internal error.
package apperror

import (
	"fmt"
	"net/http"
)

// AppError is the base error type for all domain errors. It carries an
// HTTP status code, a machine-readable error type, and a human-readable
// message safe to show to the client.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// --- Constructors for common error types ---

// NewValidation creates a 400 Bad Request error for malformed or missing
// request fields. Validation failures are never security-relevant.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    "validation_error",
		Message: message,
	}
}

// NewNotFound creates a 404 Not Found error. Ownership mismatches use this
// same constructor so a caller cannot distinguish "does not exist" from
// "exists under another owner".
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    "not_found",
		Message: message,
	}
}

// NewUnauthorized creates a 401 Unauthorized error for missing, malformed,
// forged, or expired credentials. The specific sub-cause goes in Internal
// for server-side logging; the client-visible shape is identical for all
// sub-causes to avoid oracle leaks.
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    "unauthorized",
		Message: message,
	}
}

// WithInternal attaches an underlying cause for server-side logging and
// returns the same error. The client-visible shape is unchanged.
func (e *AppError) WithInternal(err error) *AppError {
	e.Internal = err
	return e
}

// NewForbidden creates a 403 Forbidden error: the caller is authenticated
// but not permitted to perform this operation.
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Type:    "forbidden",
		Message: message,
	}
}

// NewConflict creates a 409 Conflict error for uniqueness violations
// (duplicate email, duplicate bucket name per owner, duplicate activity
// description per bucket).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    "conflict",
		Message: message,
	}
}

// NewDependency creates a 500 error for a downstream failure (e.g. the mail
// relay refusing a password-reset message). The operation is not retried;
// the caller must resubmit.
func NewDependency(message string, err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "dependency_error",
		Message:  message,
		Internal: err,
	}
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}
