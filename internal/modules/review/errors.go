package review

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid review request")
	ErrNotFound       = errors.New("review not found")
	ErrForbidden      = errors.New("forbidden")

	// ErrConflict surfaces the one-review-per-(user,hotel) constraint.
	ErrConflict = errors.New("review already exists for this hotel")
)
