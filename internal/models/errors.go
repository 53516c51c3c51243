package models

import "errors"

var (
	// ErrInvalidInteractionType is returned when a client submits an
	// interaction type outside the supported enum. Rejected before any
	// side effect.
	ErrInvalidInteractionType = errors.New("invalid interaction type")

	// ErrAuthenticationRequired is returned when a non-view interaction
	// is attempted without an authenticated user.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrNotFound is returned when a row lookup yields no result.
	ErrNotFound = errors.New("not found")
)
