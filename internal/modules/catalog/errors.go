package catalog

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid catalog request")
	ErrNotFound       = errors.New("hotel not found")
)
