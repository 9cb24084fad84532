package domain

import "time"

type Review struct {
	ID      int64  `json:"id"`
	HotelID int64  `json:"hotel_id"`
	UserID  int64  `json:"user_id"`
	Rating  int    `json:"rating"`
	Title   string `json:"title,omitempty"`
	Comment string `json:"comment,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
