package live

import (
	"github.com/okian/kickhub/internal/domain/model"
)

// StadiumLookup resolves a stadium name to its geometry. A miss is a normal
// outcome, not an error.
type StadiumLookup interface {
	Lookup(name string) (model.Stadium, bool)
}

// Option applies a configuration option to the Reducer.
type Option func(*Reducer)

// WithStadiums sets the geometry source used to annotate display kicks.
func WithStadiums(l StadiumLookup) Option {
	return func(r *Reducer) {
		r.stadiums = l
	}
}

// WithLegacyZeroSwallow controls whether a score or time of exactly zero is
// treated as absent, the way archived streams were folded historically.
func WithLegacyZeroSwallow(enabled bool) Option {
	return func(r *Reducer) {
		r.legacyZero = enabled
	}
}

// WithViolationHook registers a callback for data integrity signals.
func WithViolationHook(fn func(Violation)) Option {
	return func(r *Reducer) {
		if fn != nil {
			r.onViolation = fn
		}
	}
}
