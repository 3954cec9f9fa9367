// Package common defines shared constants and sentinel errors used across
// client and server layers of TaskKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// ErrorUnavailable signals that the datastore could not be reached.
	ErrorUnavailable = errors.New("service unavailable")

	// Auth errors (invalid, tampered, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
)
