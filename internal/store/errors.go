package store

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness constraint was violated,
	// e.g. a second payout for the same driver and date.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotEligible indicates a guarded conditional update matched no rows
	// because the record is no longer in the required state.
	ErrNotEligible = errors.New("record not in required state")
)
