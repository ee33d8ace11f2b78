package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/domain/analytics"
	"github.com/okian/kickhub/internal/domain/filter"
	"github.com/okian/kickhub/internal/domain/format"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
	"github.com/okian/kickhub/pkg/metrics"
)

// PlayerSource fetches archived histories.
type PlayerSource interface {
	PlayerKicks(ctx context.Context, name string) (model.KickResult, error)
	FinalScores(ctx context.Context, matchIDs []string) (map[string]model.FinalScore, error)
}

// Controller is the single owner of one comparison. Every action replaces its
// filter.Context wholesale; views are computed from a consistent copy.
type Controller struct {
	id         string
	source     PlayerSource
	stadiums   StadiumProvider
	tiesAsWins bool
	top        int
	logger     logger.Logger

	mu      sync.Mutex
	context filter.Context
	kicks   filter.PlayerKicks
	finals  map[string]model.FinalScore
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerStadiums sets where stadium names are resolved.
func WithControllerStadiums(p StadiumProvider) ControllerOption {
	return func(c *Controller) {
		if p != nil {
			c.stadiums = p
		}
	}
}

// WithControllerTiesAsWins counts ties as wins in player records.
func WithControllerTiesAsWins(enabled bool) ControllerOption {
	return func(c *Controller) { c.tiesAsWins = enabled }
}

// WithControllerTopTeammates bounds teammate rankings.
func WithControllerTopTeammates(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.top = n
		}
	}
}

// NewController creates a comparison over source with default modes.
func NewController(id string, source PlayerSource, opts ...ControllerOption) *Controller {
	c := &Controller{
		id:       id,
		source:   source,
		stadiums: noStadiums{},
		top:      defaultTopTeammates,
		context:  filter.NewContext(),
		kicks:    make(filter.PlayerKicks),
		finals:   make(map[string]model.FinalScore),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.Get().Named("comparison").With(logger.String("comparison", id))
	return c
}

// ID returns the comparison id.
func (c *Controller) ID() string { return c.id }

// Context returns the current configuration.
func (c *Controller) Context() filter.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.context
}

func (c *Controller) replace(fn func(filter.Context) filter.Context) {
	c.mu.Lock()
	c.context = fn(c.context)
	c.mu.Unlock()
}

// SetStadium selects the stadium kicks are filtered and drawn on.
func (c *Controller) SetStadium(name string) error {
	st, ok := c.stadiums.Lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownStadium)
	}
	c.replace(func(fc filter.Context) filter.Context { return fc.WithStadium(st) })
	return nil
}

func (c *Controller) SetComparisonMode(m filter.ComparisonMode) {
	c.replace(func(fc filter.Context) filter.Context { return fc.WithComparison(m) })
}

func (c *Controller) SetGameMode(m filter.GameMode) {
	c.replace(func(fc filter.Context) filter.Context { return fc.WithGame(m) })
}

func (c *Controller) SetStatsMode(m analytics.StatsMode) {
	c.replace(func(fc filter.Context) filter.Context { return fc.WithStats(m) })
}

func (c *Controller) SetKickMode(m filter.KickMode) {
	c.replace(func(fc filter.Context) filter.Context { return fc.WithKick(m) })
}

// AddPlayer fetches a player's history and adds them to the comparison.
// The fetch runs without the lock held; on failure nothing changes.
func (c *Controller) AddPlayer(ctx context.Context, name string) error {
	if c.Context().HasPlayer(name) {
		return nil
	}

	kr, err := c.source.PlayerKicks(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			metrics.RecordPlayerFetch("not_found")
		} else {
			metrics.RecordPlayerFetch("error")
		}
		c.logger.Warn(ctx, "player fetch failed", logger.String("player", name), logger.Error(err))
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	ids := make([]string, 0)
	for id := range kr.Matches() {
		ids = append(ids, id)
	}
	finals, err := c.source.FinalScores(ctx, ids)
	if err != nil {
		metrics.RecordPlayerFetch("error")
		return fmt.Errorf("final scores for %s: %w", name, err)
	}
	metrics.RecordPlayerFetch("ok")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.kicks[name] = kr
	maps.Copy(c.finals, finals)
	c.context = c.context.WithPlayer(name)
	c.logger.Info(ctx, "player added", logger.String("player", name), logger.Int("matches", len(ids)))
	return nil
}

// RemovePlayer drops the player at index i.
func (c *Controller) RemovePlayer(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	players := c.context.Players()
	next, ok := c.context.WithoutPlayer(i)
	if !ok {
		return fmt.Errorf("%d: %w", i, ErrPlayerIndex)
	}
	delete(c.kicks, players[i])
	c.context = next
	return nil
}

// PlayerView is one player's column in a comparison.
type PlayerView struct {
	Name    string            `json:"name"`
	Color   string            `json:"color"`
	Kicks   int               `json:"kicks"`
	Summary analytics.Summary `json:"summary"`
	Card    analytics.Card    `json:"card"`
}

// View is a computed comparison.
type View struct {
	ID         string                `json:"id"`
	Stadium    string                `json:"stadium,omitempty"`
	Comparison filter.ComparisonMode `json:"comparison"`
	Game       filter.GameMode       `json:"game"`
	Stats      analytics.StatsMode   `json:"stats"`
	Kick       filter.KickMode       `json:"kick"`
	Players    []PlayerView          `json:"players"`
	Kicks      []model.Kick          `json:"kicks"`
}

// View runs the filter pipeline and aggregator over the current configuration.
func (c *Controller) View() View {
	c.mu.Lock()
	fc := c.context
	all := make(filter.PlayerKicks, len(c.kicks))
	maps.Copy(all, c.kicks)
	finals := maps.Clone(c.finals)
	c.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordPipelineDuration(float64(time.Since(start).Microseconds()) / 1000)
	}()

	res := filter.Run(all, fc)
	kicks := filter.DisplayKicks(res.Display, fc)
	counts := filter.KickCounts(kicks)

	v := View{
		ID:         c.id,
		Comparison: fc.Comparison(),
		Game:       fc.Game(),
		Stats:      fc.Stats(),
		Kick:       fc.Kick(),
		Kicks:      kicks,
	}
	if st := fc.Stadium(); st != nil {
		v.Stadium = st.Name
	}
	for i, name := range fc.Players() {
		summary := analytics.Summarize(res.Data.For(name), finals, analytics.WithTiesAsWins(c.tiesAsWins))
		v.Players = append(v.Players, PlayerView{
			Name:    name,
			Color:   format.PlayerColor(i),
			Kicks:   counts[name],
			Summary: summary,
			Card:    analytics.BuildCard(fc.Stats(), summary, c.top),
		})
	}
	return v
}

// ComparisonRequest creates a comparison in one call.
type ComparisonRequest struct {
	Stadium    string                 `json:"stadium,omitempty"`
	Players    []string               `json:"players,omitempty"`
	Comparison *filter.ComparisonMode `json:"comparison,omitempty"`
	Game       *filter.GameMode       `json:"game,omitempty"`
	Stats      *analytics.StatsMode   `json:"stats,omitempty"`
	Kick       *filter.KickMode       `json:"kick,omitempty"`
}

// ComparisonPatch changes the modes or stadium of a comparison. Nil fields
// are left alone.
type ComparisonPatch struct {
	Stadium    *string                `json:"stadium,omitempty"`
	Comparison *filter.ComparisonMode `json:"comparison,omitempty"`
	Game       *filter.GameMode       `json:"game,omitempty"`
	Stats      *analytics.StatsMode   `json:"stats,omitempty"`
	Kick       *filter.KickMode       `json:"kick,omitempty"`
}

// Apply applies p to c. The stadium is validated before anything changes.
func (p ComparisonPatch) Apply(c *Controller) error {
	if p.Stadium != nil {
		if err := c.SetStadium(*p.Stadium); err != nil {
			return err
		}
	}
	if p.Comparison != nil {
		c.SetComparisonMode(*p.Comparison)
	}
	if p.Game != nil {
		c.SetGameMode(*p.Game)
	}
	if p.Stats != nil {
		c.SetStatsMode(*p.Stats)
	}
	if p.Kick != nil {
		c.SetKickMode(*p.Kick)
	}
	return nil
}

// CreateComparison builds a controller, applies req and registers it.
func (s *Service) CreateComparison(ctx context.Context, req ComparisonRequest) (View, error) {
	c, err := s.build(ctx, uuid.NewString(), req)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	s.comparisons[c.ID()] = c
	metrics.UpdateComparisons(len(s.comparisons))
	s.mu.Unlock()
	return c.View(), nil
}

// Compare computes a one-off comparison without registering it.
func (s *Service) Compare(ctx context.Context, req ComparisonRequest) (View, error) {
	c, err := s.build(ctx, uuid.NewString(), req)
	if err != nil {
		return View{}, err
	}
	return c.View(), nil
}

func (s *Service) build(ctx context.Context, id string, req ComparisonRequest) (*Controller, error) {
	c := s.newController(id)
	patch := ComparisonPatch{Comparison: req.Comparison, Game: req.Game, Stats: req.Stats, Kick: req.Kick}
	if req.Stadium != "" {
		patch.Stadium = &req.Stadium
	}
	if err := patch.Apply(c); err != nil {
		return nil, err
	}
	for _, name := range req.Players {
		if err := c.AddPlayer(ctx, name); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *Service) newController(id string) *Controller {
	return NewController(id, s.store,
		WithControllerStadiums(s.stadiums),
		WithControllerTiesAsWins(s.tiesAsWins),
		WithControllerTopTeammates(s.topTeammates),
	)
}

// Comparison returns a registered controller.
func (s *Service) Comparison(id string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comparisons[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrComparisonNotFound)
	}
	return c, nil
}

// ComparisonView recomputes a registered comparison.
func (s *Service) ComparisonView(id string) (View, error) {
	c, err := s.Comparison(id)
	if err != nil {
		return View{}, err
	}
	return c.View(), nil
}

// UpdateComparison applies p and returns the recomputed view.
func (s *Service) UpdateComparison(id string, p ComparisonPatch) (View, error) {
	c, err := s.Comparison(id)
	if err != nil {
		return View{}, err
	}
	if err := p.Apply(c); err != nil {
		return View{}, err
	}
	return c.View(), nil
}

// AddComparisonPlayer adds a player and returns the recomputed view.
func (s *Service) AddComparisonPlayer(ctx context.Context, id, name string) (View, error) {
	c, err := s.Comparison(id)
	if err != nil {
		return View{}, err
	}
	if err := c.AddPlayer(ctx, name); err != nil {
		return View{}, err
	}
	return c.View(), nil
}

// RemoveComparisonPlayer removes the player at index and returns the view.
func (s *Service) RemoveComparisonPlayer(id string, index int) (View, error) {
	c, err := s.Comparison(id)
	if err != nil {
		return View{}, err
	}
	if err := c.RemovePlayer(index); err != nil {
		return View{}, err
	}
	return c.View(), nil
}

// DeleteComparison forgets a comparison.
func (s *Service) DeleteComparison(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comparisons[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrComparisonNotFound)
	}
	delete(s.comparisons, id)
	metrics.UpdateComparisons(len(s.comparisons))
	return nil
}
