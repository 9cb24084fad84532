package inventory

import "errors"

var (
	// ErrInsufficientInventory is a normal outcome, not a fault: the
	// requested quantity exceeds what is free on at least one night.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	ErrValidation   = errors.New("validation error")
	ErrHoldNotFound = errors.New("hold not found")

	// ErrInvariantViolation means the serialization discipline broke:
	// a negative available count was observed, or a commit found no
	// live hold. Surfaced to operators, never recovered silently.
	ErrInvariantViolation = errors.New("inventory invariant violation")
)
