package booking

import (
	"context"

	"staybook/internal/domain"
	"staybook/internal/events"
)

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	CancelFromPending(ctx context.Context, bookingID int64, reason string) (int64, error)
	CancelFromConfirmed(ctx context.Context, bookingID int64, reason string) (int64, error)
	MarkRefunded(ctx context.Context, bookingID int64) (int64, error)
}

// InventoryLedger is the slice of the ledger the state machine drives:
// committing a hold into a debit on confirm, releasing it on cancel.
type InventoryLedger interface {
	Commit(ctx context.Context, holdID string) (*domain.Hold, error)
	Release(ctx context.Context, holdID string) error
}

type IntentReader interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentIntent, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}
