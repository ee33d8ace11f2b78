// Package service ties the live transport, the historical store and the
// stats engine together behind the operations the HTTP API, the MCP tools
// and the CLI call.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/adapters/transport"
	"github.com/okian/kickhub/internal/domain/analytics"
	"github.com/okian/kickhub/internal/domain/filter"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
)

const (
	defaultTickInterval = 5 * time.Millisecond
	defaultDedupeSize   = 100_000
	defaultTopTeammates = 3
	defaultMaxNameChars = 20
)

// StadiumProvider resolves stadium geometry by name.
type StadiumProvider interface {
	Lookup(name string) (model.Stadium, bool)
	Names() []string
}

type noStadiums struct{}

func (noStadiums) Lookup(string) (model.Stadium, bool) { return model.Stadium{}, false }
func (noStadiums) Names() []string                     { return nil }

// Service implements the API dependencies for live sessions and comparisons.
type Service struct {
	mu sync.RWMutex

	log      transport.Log
	store    repository.Store
	stadiums StadiumProvider

	tick         time.Duration
	dedupeSize   int
	legacyZero   bool
	tiesAsWins   bool
	topTeammates int
	maxNameChars int

	sessions    map[string]*Session
	comparisons map[string]*Controller

	// runCtx outlives the request that started a session.
	runCtx  context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool

	logger logger.Logger
}

// New constructs a Service. Without options it runs on an in-memory log and
// store with no stadium geometry.
func New(opts ...Option) *Service {
	s := &Service{
		stadiums:     noStadiums{},
		tick:         defaultTickInterval,
		dedupeSize:   defaultDedupeSize,
		legacyZero:   true,
		topTeammates: defaultTopTeammates,
		maxNameChars: defaultMaxNameChars,
		sessions:     make(map[string]*Session),
		comparisons:  make(map[string]*Controller),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = transport.NewMemoryLog()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start makes the service ready to run live sessions.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}
	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.started = true
	s.logger.Info(ctx, "kickhub service started",
		logger.Duration("tick", s.tick),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("legacyZeroSwallow", s.legacyZero),
		logger.Int("stadiums", len(s.stadiums.Names())),
	)
	return nil
}

// Stop ends every live session and closes the transport and the store.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping kickhub service...", logger.Int("sessions", len(sessions)))
	for _, sess := range sessions {
		sess.stop(ctx)
	}
	s.cancel()

	if err := s.log.Close(); err != nil {
		s.logger.Error(ctx, "error closing transport", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing store", logger.Error(err))
	}
	s.logger.Info(ctx, "kickhub service stopped")
}

func (s *Service) running() (context.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.stopped:
		return nil, ErrStopped
	case !s.started:
		return nil, fmt.Errorf("%w: not started", ErrStopped)
	}
	return s.runCtx, nil
}

// AppendEvent writes e to a live stream and returns its record key.
func (s *Service) AppendEvent(ctx context.Context, stream, streamID string, e model.Event) (string, error) { //nolint:gocritic // events are values on the wire
	return s.log.Append(ctx, stream, streamID, e)
}

// FindStream resolves a match id to the live stream child that announced it.
func (s *Service) FindStream(ctx context.Context, stream, matchID string) (string, error) {
	if stream == "" {
		return "", ErrNoStream
	}
	return repository.FindStreamForMatch(ctx, s.store, stream, matchID)
}

// Choices lists what a comparison can be configured with.
type Choices struct {
	Stadiums    []string `json:"stadiums"`
	Players     []string `json:"players"`
	Comparisons []string `json:"comparisons"`
	Games       []string `json:"games"`
	Stats       []string `json:"stats"`
	Kicks       []string `json:"kicks"`
}

// Choices returns the selectable stadiums, archived players and modes.
func (s *Service) Choices(ctx context.Context) (Choices, error) {
	players, err := s.store.Players(ctx)
	if err != nil {
		return Choices{}, fmt.Errorf("list players: %w", err)
	}
	return Choices{
		Stadiums:    s.stadiums.Names(),
		Players:     players,
		Comparisons: filter.Labels(filter.ComparisonModes()),
		Games:       filter.Labels(filter.GameModes()),
		Stats:       filter.Labels(analytics.StatsModes()),
		Kicks:       filter.Labels(filter.KickModes()),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	queued := 0
	for id, sess := range s.sessions {
		ids = append(ids, id)
		queued += sess.queue.Len()
	}
	sort.Strings(ids)

	return map[string]interface{}{
		"started":        s.started && !s.stopped,
		"sessions":       ids,
		"activeSessions": len(ids),
		"queuedRecords":  queued,
		"comparisons":    len(s.comparisons),
		"tickInterval":   s.tick.String(),
		"dedupeSize":     s.dedupeSize,
		"stadiums":       len(s.stadiums.Names()),
	}
}
