package reservation

import (
	"context"
	"time"

	"staybook/internal/domain"
	"staybook/internal/modules/payment"
)

// Ledger is the inventory surface the orchestrator sequences first.
type Ledger interface {
	TryReserve(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time, quantity int) (*domain.Hold, error)
	Release(ctx context.Context, holdID string) error
	AttachBooking(ctx context.Context, holdID string, bookingID int64) error
}

type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.Booking, error)
	GetByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
}

type IntentStore interface {
	Create(ctx context.Context, p *domain.PaymentIntent) error
	UpdateStatus(ctx context.Context, id string, status domain.PaymentIntentStatus) error
}

// StateMachine drives the booking lifecycle transitions the saga ends in.
type StateMachine interface {
	Confirm(ctx context.Context, bookingID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID int64, reason string) (*domain.Booking, error)
	Refund(ctx context.Context, bookingID int64) (*domain.Booking, error)
}

type RoomTypeReader interface {
	GetByID(ctx context.Context, id int64) (*domain.RoomType, error)
}

// Gateway re-exports the payment boundary for wiring convenience.
type Gateway = payment.Gateway
