package repository

import "errors"

// Sentinel kinds for historical store errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidKick    = errors.New("invalid kick record")
)
