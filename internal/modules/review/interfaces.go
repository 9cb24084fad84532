package review

import (
	"context"

	"staybook/internal/domain"
)

type ReviewStore interface {
	Create(ctx context.Context, rv *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	GetByHotel(ctx context.Context, hotelID int64, limit, offset int) ([]domain.Review, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type HotelGate interface {
	GetByID(ctx context.Context, id int64) (*domain.Hotel, error)
}

// StayGate answers whether the user actually stayed at the hotel.
// Reviews are gated on a confirmed booking.
type StayGate interface {
	HasConfirmedBookingForHotel(ctx context.Context, userID, hotelID int64) (bool, error)
}

// Aggregator is notified after every review mutation so the hotel
// summary tracks the review set.
type Aggregator interface {
	OnReviewCreated(ctx context.Context, hotelID int64) error
	OnReviewRemoved(ctx context.Context, hotelID int64) error
}
