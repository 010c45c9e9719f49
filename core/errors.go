package core

import "errors"

// Sentinel errors shared across the module. Wrap with fmt.Errorf("...: %w")
// to add context; callers match with errors.Is.
var (
	// ErrNotFound reports that a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSerialization reports a malformed persisted state blob. The call
	// that hit it aborts outright; there is no partial recovery.
	ErrSerialization = errors.New("state serialization failure")

	// ErrFundsLock reports that the funds-locking capability refused the
	// stake. No position is recorded when it fires.
	ErrFundsLock = errors.New("funds lock failure")
)
