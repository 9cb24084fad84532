package domain

import "time"

type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "pending_payment"
	BookingConfirmed      BookingStatus = "confirmed"
	BookingCancelled      BookingStatus = "cancelled"
	BookingRefunded       BookingStatus = "refunded"
)

// Terminal reports whether no transition may leave s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingRefunded
}

type Booking struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id" validate:"required"`
	HotelID    int64 `json:"hotel_id" validate:"required"`
	RoomTypeID int64 `json:"room_type_id" validate:"required"`

	CheckIn  time.Time `json:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" validate:"required"`
	Rooms    int       `json:"rooms" validate:"required,gt=0"`
	Guests   int       `json:"guests" validate:"required,gt=0"`

	TotalPrice float64       `json:"total_price" validate:"gte=0"`
	Currency   string        `json:"currency"`
	Status     BookingStatus `json:"status"`

	// HoldID references the provisional inventory hold while the booking
	// is pending payment. The hold is deleted when it becomes a debit.
	HoldID          string `json:"hold_id,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty" gorm:"type:text"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
}
