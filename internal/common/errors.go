package common

import "errors"

// Sentinel errors shared between the API client, the session layer and the
// CLI. Callers should match them with errors.Is.
var (
	// Transport-level errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth flow errors.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session lifecycle errors.
	ErrNoSession       = errors.New("no stored session")
	ErrSessionRejected = errors.New("session rejected by server")
)
