package repository

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrApiKeyNotFound  = errors.New("api key not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrOrgNotFound     = errors.New("organization not found")

	// ErrDuplicateToken surfaces a unique-index collision on a generated
	// credential. With 256-bit tokens this indicates broken randomness or a
	// store integrity fault, so it is fatal and never retried silently.
	ErrDuplicateToken = errors.New("duplicate token")

	ErrEmailTaken = errors.New("email already registered")
)
