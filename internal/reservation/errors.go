package reservation

import "errors"

var (
	// ErrNotFound: the identifier has no record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidIdentifier: malformed input, distinct from absence.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrPreconditionFailed: the conditional update lost the race, or the
	// entity is not in the expected pre-state.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidTransition: the requested status change is not permitted
	// from the current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrStoreUnavailable: the backing store failed. Not retried here.
	ErrStoreUnavailable = errors.New("store unavailable")
)
