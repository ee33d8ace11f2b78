package service

import (
	"errors"

	"github.com/okian/kickhub/internal/domain/filter"
)

// Sentinel kinds for service errors.
var (
	ErrSessionNotFound    = errors.New("live session not found")
	ErrComparisonNotFound = errors.New("comparison not found")
	ErrUnknownStadium     = errors.New("unknown stadium")
	ErrPlayerIndex        = errors.New("player index out of range")
	ErrNoStream           = errors.New("no stream name provided")
	ErrStopped            = errors.New("service stopped")
	ErrUnknownMode        = filter.ErrUnknownMode
)
