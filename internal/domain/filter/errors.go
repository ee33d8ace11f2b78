package filter

import "github.com/okian/kickhub/internal/domain/analytics"

// ErrUnknownMode is returned when a menu label names no mode. It is the same
// sentinel the stats modes use.
var ErrUnknownMode = analytics.ErrUnknownMode
