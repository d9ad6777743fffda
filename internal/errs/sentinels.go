// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the mutation target does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthenticated indicates an owner-scoped call was made without an active session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrDuplicateGame indicates the (owner, title, platform, partition) uniqueness rule would be violated.
	ErrDuplicateGame = errors.New("duplicate game")

	// ErrStoreUnavailable indicates a transport or query failure in the record store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation error")

	// ErrInvalidCredentials indicates failed sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken, profile present).
	ErrAlreadyExists = errors.New("already exists")
)
