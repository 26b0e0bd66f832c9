package seed

import "errors"

// Error constants.
var (
	ErrInvalidCount = errors.New("seed count must be positive")
	ErrBaseline     = errors.New("failed to read roster statistics before seeding")
	ErrVerification = errors.New("roster total did not grow by the number of created classmates")
)
