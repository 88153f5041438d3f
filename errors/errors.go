// Package errors defines all exported error sentinels for the seedindex library.
//
// This is the single source of truth for error values. The root package and
// the filter, sorter and bit vector packages all wrap these sentinels with
// context, so errors.Is checks work across package boundaries.
package errors

import "errors"

// Lifecycle errors
var (
	// ErrIllegalState reports an operation that is invalid for the current
	// lifecycle state: add after freeze, query before freeze, extra freeze.
	ErrIllegalState = errors.New("seedindex: illegal state")
)

// Argument errors
var (
	// ErrInvalidArgument reports a malformed parameter: non-positive
	// capacity, hash width out of range, bad sort range, out-of-order
	// histogram insertion.
	ErrInvalidArgument = errors.New("seedindex: invalid argument")

	// ErrBoundsViolation reports a bit vector or positional index outside
	// [0, length).
	ErrBoundsViolation = errors.New("seedindex: index out of bounds")
)

// Build errors
var (
	// ErrCapacityExceeded reports more adds than the declared or counted
	// capacity. The wrapping message carries both counts.
	ErrCapacityExceeded = errors.New("seedindex: capacity exceeded")
)
