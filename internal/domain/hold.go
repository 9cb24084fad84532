package domain

import "time"

// Hold is a provisional, time-bounded reservation of inventory created
// by an in-flight booking attempt. It counts against availability until
// it either becomes a permanent debit on confirmation or is released.
// A hold past its expiry is logically void even before the sweep
// removes the row; availability reads must skip it.
type Hold struct {
	ID         string    `json:"id"`
	RoomTypeID int64     `json:"room_type_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Quantity   int       `json:"quantity"`

	// BookingID is zero until the owning booking row is persisted.
	BookingID int64 `json:"booking_id,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}
