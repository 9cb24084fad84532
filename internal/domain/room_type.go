package domain

import "time"

type RoomType struct {
	ID          int64  `json:"id"`
	HotelID     int64  `json:"hotel_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`

	NightlyPrice float64 `json:"nightly_price" validate:"required,gte=0"`

	// TotalQuantity is the fixed physical capacity: how many bookable
	// units of this type exist. Changed only via admin update.
	TotalQuantity int `json:"total_quantity" validate:"required,gt=0"`

	// Capacity is the number of guests a single unit sleeps.
	Capacity int `json:"capacity" validate:"required,gt=0"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
