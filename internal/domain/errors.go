package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes the HTTP layer maps to status codes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailNotVerified   = errors.New("email not verified")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrChallengeNotFound     = errors.New("no pending challenge")
	ErrChallengeExpired      = errors.New("challenge expired")
	ErrChallengeMismatch     = errors.New("challenge mismatch")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
