// Package common defines shared constants and sentinel errors used across
// client and server layers of librarian. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors (malformed identifiers, bad input).
	ErrorValidation = errors.New("validation error")
	// ErrWrongPassword is a wrong current password on password change. It
	// matches ErrorValidation, not the auth family: the caller's token is valid.
	ErrWrongPassword = fmt.Errorf("%w: current password is incorrect", ErrorValidation)

	// Conflict errors.
	ErrDuplicateEmail    = errors.New("email is already in use")
	ErrAlreadyBorrowed   = errors.New("book is already borrowed by the user")
	ErrAlreadyInState    = errors.New("account is already in requested state")
	ErrNoActiveLoan      = errors.New("no active loan for user and book")
	ErrInvalidCredential = errors.New("invalid email or password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrTransientStore is returned when a storage call kept failing with
	// a retryable error until the retry budget was exhausted.
	ErrTransientStore = errors.New("storage temporarily unavailable")
)

// IsAuthError reports whether err belongs to the authentication family.
// Callers must present all of them to clients as the same outcome.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrorUnauthorized) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrRefreshTokenExpired) ||
		errors.Is(err, ErrInvalidCredential)
}
