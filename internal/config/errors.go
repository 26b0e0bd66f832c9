package config

import "errors"

var (
	// ErrInvalidConfig reports a key whose value no binary can run with.
	ErrInvalidConfig = errors.New("invalid classmates config")
	// ErrLoadConfig reports an unreadable .env, YAML file or environment.
	ErrLoadConfig = errors.New("cannot load classmates config")
)
