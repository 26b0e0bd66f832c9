package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrUpstream     = errors.New("backend unavailable")
	ErrInvalidRoute = errors.New("invalid route")
)
