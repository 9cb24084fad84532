package reservation

import (
	"time"

	"staybook/internal/domain"
)

// PlaceBookingRequest is the orchestrator-level input, dates already
// parsed and normalized to UTC midnight.
type PlaceBookingRequest struct {
	UserID     int64
	RoomTypeID int64
	CheckIn    time.Time
	CheckOut   time.Time
	Rooms      int
	Guests     int
}

type PlaceBookingResult struct {
	Booking      *domain.Booking `json:"booking"`
	ClientSecret string          `json:"client_secret,omitempty"`
}

// createBookingPayload is the HTTP shape; dates travel as YYYY-MM-DD.
type createBookingPayload struct {
	RoomTypeID int64  `json:"room_type_id" binding:"required"`
	CheckIn    string `json:"check_in" binding:"required"`
	CheckOut   string `json:"check_out" binding:"required"`
	Rooms      int    `json:"rooms" binding:"required"`
	Guests     int    `json:"guests" binding:"required"`
}

type cancelBookingPayload struct {
	Reason string `json:"reason"`
}

type webhookPayload struct {
	IntentID string `json:"intent_id" binding:"required"`
	Status   string `json:"status" binding:"required"`
}
