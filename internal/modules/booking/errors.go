package booking

import "errors"

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking state transition")

	// ErrPaymentNotSettled guards the confirm transition: the shadow
	// intent must report succeeded before a booking may confirm.
	ErrPaymentNotSettled = errors.New("payment not settled")
)
