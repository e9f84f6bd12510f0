// Package common contains shared constants and sentinel errors used across
// screenpad components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Identity errors. Identity-scoped writes fail fast with ErrNoIdentity
	// instead of producing an anonymous row on the backend.
	ErrNoIdentity = errors.New("no identity bound")

	// Outbox errors.
	ErrReplayInProgress = errors.New("replay already in progress")

	// Import/export errors.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
)
