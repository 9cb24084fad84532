package payment

import "errors"

var (
	// ErrPaymentDeclined is a business rejection from the provider.
	// Terminal for the attempt; never retried.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrGatewayUnavailable means transient failures exhausted the
	// retry budget. The orchestrator unwinds and surfaces it.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrIntentNotFound = errors.New("payment intent not found")
)
