package reservation

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("booking not found")
	ErrForbidden  = errors.New("forbidden")

	// ErrConfirmationTimeout means the provider did not settle the
	// intent within the configured ceiling; the booking is cancelled
	// and its hold released before this is returned.
	ErrConfirmationTimeout = errors.New("payment confirmation timed out")

	// ErrPaymentCancelled means the intent reached the canceled state
	// on the provider side before the booking was confirmed.
	ErrPaymentCancelled = errors.New("payment intent was cancelled")
)
