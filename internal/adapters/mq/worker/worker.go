// Package worker runs the single writer of a live match state.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/kickhub/internal/adapters/mq/queue"
	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/pkg/logger"
	"github.com/okian/kickhub/pkg/metrics"
)

const defaultTickInterval = 5 * time.Millisecond

// Source is where the worker takes records from.
type Source interface {
	Pop() (queue.Record, bool)
}

// Worker folds queued records until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the loop to exit.
	Shutdown(ctx context.Context) error
}

// LiveWorker owns one MatchState. On each tick it pops at most one record,
// folds it and publishes an immutable snapshot for readers.
type LiveWorker struct {
	source   Source
	reducer  *live.Reducer
	interval time.Duration
	name     string
	onUpdate func(*live.MatchState)

	state     *live.MatchState
	snapshot  atomic.Pointer[live.MatchState]
	processed atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewLiveWorker creates a worker folding records from source with reducer.
func NewLiveWorker(source Source, reducer *live.Reducer, opts ...Option) *LiveWorker {
	w := &LiveWorker{
		source:   source,
		reducer:  reducer,
		interval: defaultTickInterval,
		name:     "live-worker",
		onUpdate: func(*live.MatchState) {},
		state:    live.NewMatchState(),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	w.snapshot.Store(w.state.Clone())
	return w
}

// Run starts the worker loop.
func (w *LiveWorker) Run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug(ctx, "live worker started", logger.Duration("tick", w.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case <-ticker.C:
			w.step(ctx)
		}
	}
}

// Shutdown stops the worker. Records still queued are not folded.
func (w *LiveWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once the loop has exited.
func (w *LiveWorker) Done() <-chan struct{} { return w.done }

// Snapshot returns the latest published state. Callers must not modify it.
func (w *LiveWorker) Snapshot() *live.MatchState { return w.snapshot.Load() }

// Processed returns how many records have been folded.
func (w *LiveWorker) Processed() int64 { return w.processed.Load() }

func (w *LiveWorker) step(ctx context.Context) {
	r, ok := w.source.Pop()
	if !ok {
		return
	}

	start := time.Now()
	w.state = w.reducer.Step(w.state, r.Event)
	snap := w.state.Snapshot()
	w.snapshot.Store(snap)
	metrics.RecordReducerLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordEventReduced()
	w.processed.Add(1)

	w.logger.Debug(ctx, "record folded",
		logger.String("key", r.Key),
		logger.String("type", string(r.Event.Type)),
		logger.Int("event_count", snap.EventCount),
	)
	w.onUpdate(snap)
}
