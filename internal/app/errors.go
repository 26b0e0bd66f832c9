package app

import "errors"

// Error constants.
var (
	ErrMount      = errors.New("app mount failed")
	ErrNoBackend  = errors.New("app has no backend configured")
	ErrNilMux     = errors.New("mux is nil")
	ErrRemounting = errors.New("app is already mounted")
)
