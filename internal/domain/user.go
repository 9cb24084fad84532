package domain

import "time"

type Role string

const (
	RoleGuest Role = "guest"
	RoleOps   Role = "ops"
)

// User is a thin reference entity. Registration, credentials and token
// issuance live in a separate identity service; bookings and reviews
// only need a stable user id and role.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email" validate:"required,email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
