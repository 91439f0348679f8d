// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/client layers.
var (
	// ErrNotFound indicates the requested entity does not exist (or is not visible to the viewer).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials or token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the viewer is authenticated but does not own the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalid indicates a request that failed validation.
	ErrInvalid = errors.New("invalid argument")

	// ErrAuthRequired is returned by client controllers when an action needs a viewer and there is none.
	ErrAuthRequired = errors.New("authentication required")

	// ErrBusy is returned when a widget already has a remote call outstanding.
	ErrBusy = errors.New("action already in progress")
)
