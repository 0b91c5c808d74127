package service

import "errors"

// Failure taxonomy surfaced to the transport layer. Callers are expected to
// branch on each kind explicitly: a second verification attempt, a vanished
// session and a timed-out session all demand different remedies.
var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionExpired         = errors.New("session expired")
	ErrSessionAlreadyVerified = errors.New("session already verified")

	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrProjectNotFound = errors.New("project not found")
	ErrApiKeyNotFound  = errors.New("api key not found")
	ErrEmailTaken      = errors.New("email already registered")

	// ErrIntegrityViolation marks a generated-credential collision. It is
	// fatal for the request and must reach the operator, never be absorbed
	// by a silent retry.
	ErrIntegrityViolation = errors.New("integrity violation")
)
