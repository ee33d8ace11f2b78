package worker

import (
	"time"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/pkg/logger"
)

// Option applies a configuration option to the LiveWorker.
type Option func(*LiveWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *LiveWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *LiveWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithTickInterval sets how often one record is folded.
func WithTickInterval(d time.Duration) Option {
	return func(w *LiveWorker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithOnUpdate registers a callback receiving every published snapshot.
// It runs on the worker goroutine and must not retain the snapshot for writing.
func WithOnUpdate(fn func(*live.MatchState)) Option {
	return func(w *LiveWorker) {
		if fn != nil {
			w.onUpdate = fn
		}
	}
}
