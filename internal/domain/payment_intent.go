package domain

import "time"

type PaymentIntentStatus string

const (
	IntentRequiresPayment PaymentIntentStatus = "requires_payment"
	IntentSucceeded       PaymentIntentStatus = "succeeded"
	IntentCanceled        PaymentIntentStatus = "canceled"
	IntentFailed          PaymentIntentStatus = "failed"
)

// PaymentIntent is a local shadow of the payment provider's resource.
// The provider owns the lifecycle; we only record the last status it
// reported and react to changes.
type PaymentIntent struct {
	ID        string              `json:"id"`
	BookingID int64               `json:"booking_id"`
	Amount    float64             `json:"amount"`
	Currency  string              `json:"currency"`
	Status    PaymentIntentStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
