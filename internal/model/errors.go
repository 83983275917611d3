package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// ErrInvalidKind rejects grants with an unknown action kind.
	ErrInvalidKind = errors.New("invalid award kind")
	// ErrAmountMismatch rejects client-supplied XP amounts that disagree
	// with the server-side policy table.
	ErrAmountMismatch = errors.New("xp amount does not match policy")
	// ErrDuplicateEvent marks an event id that was already recorded.
	// Callers receive the prior result, not this error; it exists for
	// audit logging inside the service.
	ErrDuplicateEvent = errors.New("duplicate event")
	// ErrStoreUnavailable wraps transient storage failures. Safe to retry
	// with the same event id.
	ErrStoreUnavailable = errors.New("store unavailable")
)
