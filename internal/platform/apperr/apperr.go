// Package apperr defines the error kinds shared by every domain service and
// the mapping from those kinds to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDuplicateIdentity is returned when a registration reuses an email.
	ErrDuplicateIdentity = errors.New("user already exists")

	// ErrInvalidCredentials is returned on login failure. The message is
	// identical for an unknown email and a wrong password so callers cannot
	// enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenInvalid covers bad signatures, expired tokens, and malformed tokens.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrForbidden is returned whenever the access policy denies an operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition is returned when an appointment status change is
	// not reachable from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a resource id resolves to nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a versioned update lost a concurrent race.
	ErrConflict = errors.New("resource was modified concurrently")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err), errors.Is(err, ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateIdentity), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
