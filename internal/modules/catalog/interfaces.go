package catalog

import (
	"context"
	"time"

	"staybook/internal/domain"
)

type HotelStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Hotel, error)
	List(ctx context.Context, city string, limit, offset int) ([]domain.Hotel, error)
}

type RoomTypeStore interface {
	GetByHotel(ctx context.Context, hotelID int64) ([]domain.RoomType, error)
}

// AvailabilityReader answers the minimum available count across a
// date range. Backed by the inventory ledger.
type AvailabilityReader interface {
	Availability(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time) (int, error)
}
