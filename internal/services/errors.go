package services

import "errors"

// Domain errors. Handlers translate these into HTTP status codes; nothing
// below the handler layer knows about HTTP.
var (
	// ErrNotFound covers both genuinely absent records and records owned by
	// another user, so ownership mismatches are indistinguishable from
	// nonexistence.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when the users.email uniqueness invariant
	// would be violated, whether caught by a pre-check or by the storage
	// layer's UNIQUE constraint.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is deliberately undifferentiated: callers cannot
	// tell an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
