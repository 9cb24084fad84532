package domain

import "time"

type Hotel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required"`
	City        string `json:"city"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Stars       int    `json:"stars,omitempty"`

	// Derived rating summary, recomputed wholesale from the review set
	// on every review mutation. Never adjusted by deltas.
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RoomTypes []RoomType `json:"room_types,omitempty" gorm:"foreignKey:HotelID"`
}
