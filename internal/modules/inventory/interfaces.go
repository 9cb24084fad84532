package inventory

import (
	"context"
	"time"

	"staybook/internal/domain"
	"staybook/internal/repository"
)

// HoldRepository is the persistence surface the ledger needs.
type HoldRepository interface {
	CreateHold(ctx context.Context, h *domain.Hold) error
	GetHold(ctx context.Context, id string) (*domain.Hold, error)
	DeleteHold(ctx context.Context, id string) (int64, error)
	AttachBooking(ctx context.Context, holdID string, bookingID int64) error
	ActiveHolds(ctx context.Context, roomTypeID int64, from, to, now time.Time) ([]domain.Hold, error)
	DebitStays(ctx context.Context, roomTypeID int64, from, to time.Time, relistOnRefund bool) ([]repository.DebitStay, error)
	CommitHold(ctx context.Context, holdID string, now time.Time) (*domain.Hold, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type RoomTypeReader interface {
	GetByID(ctx context.Context, id int64) (*domain.RoomType, error)
}

// CacheInvalidator bumps the availability cache generation after any
// inventory mutation. Advisory only; admission never reads the cache.
type CacheInvalidator interface {
	BumpVersion(ctx context.Context, roomTypeID int64) error
}
