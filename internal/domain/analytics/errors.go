package analytics

import "errors"

// ErrUnknownMode is returned when a menu label names no mode.
var ErrUnknownMode = errors.New("unknown mode")
