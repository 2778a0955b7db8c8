package application

import "errors"

// Client-facing failure classes. Handlers map each one to a status code and
// a fixed message; anything else is an internal error.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotConfirmed       = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid token")
	// ErrStaleToken means a well-formed, unexpired refresh token that is no
	// longer the stored one: a possible replay, not a benign retry.
	ErrStaleToken   = errors.New("stale refresh token")
	ErrVerification = errors.New("verification error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("account already exists")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ErrUnavailable marks an optional collaborator that is not configured.
var ErrUnavailable = errors.New("service unavailable")
