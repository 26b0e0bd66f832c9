package geo

import "errors"

// Error constants.
var (
	ErrInvalidCoordinate = errors.New("coordinate out of range")
	ErrInvalidRadius     = errors.New("radius must be positive")
)
