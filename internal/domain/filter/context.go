package filter

import (
	"slices"

	"github.com/okian/kickhub/internal/domain/analytics"
	"github.com/okian/kickhub/internal/domain/model"
)

// Context is the active comparison configuration. It is a value: every
// setter returns a new Context and leaves the receiver untouched.
type Context struct {
	players    []string
	stadium    *model.Stadium
	comparison ComparisonMode
	game       GameMode
	stats      analytics.StatsMode
	kick       KickMode
}

// NewContext returns the default configuration: no players, no stadium,
// all-time comparison over the entire match.
func NewContext() Context {
	return Context{
		comparison: AllTime,
		game:       EntireMatch,
		stats:      analytics.StatsShotsSaves,
		kick:       GoalsScored,
	}
}

func (c Context) Players() []string           { return slices.Clone(c.players) }
func (c Context) Comparison() ComparisonMode  { return c.comparison }
func (c Context) Game() GameMode              { return c.game }
func (c Context) Stats() analytics.StatsMode  { return c.stats }
func (c Context) Kick() KickMode              { return c.kick }
func (c Context) HasPlayer(name string) bool  { return slices.Contains(c.players, name) }
func (c Context) PlayerIndex(name string) int { return slices.Index(c.players, name) }

// Stadium returns a copy of the selected stadium, or nil.
func (c Context) Stadium() *model.Stadium {
	if c.stadium == nil {
		return nil
	}
	s := *c.stadium
	return &s
}

// WithPlayer appends name unless it is already compared.
func (c Context) WithPlayer(name string) Context {
	if c.HasPlayer(name) {
		return c
	}
	c.players = append(slices.Clone(c.players), name)
	return c
}

// WithoutPlayer drops the player at index i. It reports false when i is out
// of range.
func (c Context) WithoutPlayer(i int) (Context, bool) {
	if i < 0 || i >= len(c.players) {
		return c, false
	}
	c.players = slices.Delete(slices.Clone(c.players), i, i+1)
	return c, true
}

// WithStadium selects the stadium whose kicks are compared.
func (c Context) WithStadium(s model.Stadium) Context {
	c.stadium = &s
	return c
}

func (c Context) WithComparison(m ComparisonMode) Context { c.comparison = m; return c }
func (c Context) WithGame(m GameMode) Context             { c.game = m; return c }
func (c Context) WithStats(m analytics.StatsMode) Context { c.stats = m; return c }
func (c Context) WithKick(m KickMode) Context             { c.kick = m; return c }
