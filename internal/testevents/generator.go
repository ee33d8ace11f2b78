package testevents

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
)

// Odds out of 100 for what the ball holder does next.
const (
	passOdds    = 55
	stealOdds   = 75
	saveOdds    = 88
	goalOdds    = 97
	oddsPercent = 100
)

// Default match shape.
const (
	defaultTimeLimit  = 180.0
	minKickGap        = 0.5
	kickGapRange      = 3.0
	defaultScoreLimit = 3
)

// Rosters used by generated matches. Index 0 keeps goal.
var (
	redRoster  = []string{"Alice", "Bruno", "Chen"}
	blueRoster = []string{"Dana", "Emil", "Farah"}
)

// MatchOptions shapes one generated match.
type MatchOptions struct {
	Stadium    string
	Red, Blue  []string
	Kicks      int
	ScoreLimit int
	TimeLimit  float64
}

// DefaultMatchOptions returns a three-a-side match on stadium.
func DefaultMatchOptions(stadium string, kicks int) MatchOptions {
	return MatchOptions{
		Stadium:    stadium,
		Red:        redRoster,
		Blue:       blueRoster,
		Kicks:      kicks,
		ScoreLimit: defaultScoreLimit,
		TimeLimit:  defaultTimeLimit,
	}
}

// Generator builds synthetic matches. Two generators with the same seed
// produce the same events.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

type holder struct {
	team model.Team
	name string
}

// Match plays out one match: a start event, up to o.Kicks kicks ending early
// once a side reaches the score limit, a victory event and the chat line
// announcing matchID.
func (g *Generator) Match(matchID string, o MatchOptions) []model.Event {
	roster := map[model.Team][]string{model.TeamRed: o.Red, model.TeamBlue: o.Blue}
	score := map[model.Team]int{}
	at := 0.0

	events := make([]model.Event, 0, o.Kicks+3)
	events = append(events, model.Event{
		Type:       model.KindStart,
		Stadium:    o.Stadium,
		ScoreLimit: model.Int(o.ScoreLimit),
		TimeLimit:  model.Float(o.TimeLimit),
	})

	ball := holder{team: model.TeamRed, name: o.Red[len(o.Red)-1]}
	for i := 0; i < o.Kicks; i++ {
		if o.ScoreLimit > 0 && (score[model.TeamRed] >= o.ScoreLimit || score[model.TeamBlue] >= o.ScoreLimit) {
			break
		}
		at += minKickGap + g.rng.Float64()*kickGapRange
		e := model.Event{
			FromTeam: ball.team,
			FromName: ball.name,
			Time:     model.Float(at),
			FromX:    g.coord(fieldHalfWidth),
			FromY:    g.coord(fieldHalfHeight),
		}

		opponent := ball.team.Opponent()
		switch roll := g.rng.IntN(oddsPercent); {
		case roll < passOdds && len(roster[ball.team]) > 1:
			mate := g.other(roster[ball.team], ball.name)
			e.Type, e.ToTeam, e.ToName = model.KindPass, ball.team, mate
			ball.name = mate
		case roll < stealOdds:
			thief := g.pick(roster[opponent])
			e.Type, e.ToTeam, e.ToName = model.KindSteal, opponent, thief
			ball = holder{team: opponent, name: thief}
		case roll < saveOdds:
			keeper := roster[opponent][0]
			e.Type, e.ToTeam, e.ToName = model.KindSave, opponent, keeper
			ball = holder{team: opponent, name: keeper}
		case roll < goalOdds:
			score[ball.team]++
			e.Type = model.KindGoal
			g.withScore(&e, score)
			ball = holder{team: opponent, name: g.pick(roster[opponent])}
		default:
			score[opponent]++
			e.Type = model.KindOwnGoal
			g.withScore(&e, score)
			ball = holder{team: ball.team, name: g.pick(roster[ball.team])}
		}
		e.ToX, e.ToY = g.coord(fieldHalfWidth), g.coord(fieldHalfHeight)
		events = append(events, e)
	}

	victory := model.Event{Type: model.KindVictory, Time: model.Float(at)}
	g.withScore(&victory, score)
	events = append(events, victory, model.Event{Message: fmt.Sprintf(repository.MatchIDMessage, matchID)})
	return events
}

func (g *Generator) withScore(e *model.Event, score map[model.Team]int) {
	e.ScoreRed = model.Int(score[model.TeamRed])
	e.ScoreBlue = model.Int(score[model.TeamBlue])
}

func (g *Generator) coord(half float64) float64 {
	return (g.rng.Float64()*2 - 1) * half
}

func (g *Generator) pick(names []string) string {
	return names[g.rng.IntN(len(names))]
}

// other picks a name from names that is not self. names holds at least two.
func (g *Generator) other(names []string, self string) string {
	for {
		if n := g.pick(names); n != self {
			return n
		}
	}
}

// generateMatches creates config.Matches matches, each under a fresh stream
// child and match id.
func generateMatches(ctx context.Context, config *Config, stats *Stats) []Match {
	logger.Get().Info(ctx, "generating matches",
		logger.Int("matches", config.Matches),
		logger.Int("kicks", config.Kicks),
		logger.Int64("seed", int64(config.Seed)))

	g := NewGenerator(config.Seed)
	opts := DefaultMatchOptions(config.Stadium, config.Kicks)
	if config.ScoreLimit > 0 {
		opts.ScoreLimit = config.ScoreLimit
	}

	matches := make([]Match, config.Matches)
	for i := range matches {
		matchID := uuid.NewString()
		matches[i] = Match{
			Stream:   config.Stream,
			StreamID: "replay-" + uuid.NewString(),
			MatchID:  matchID,
			Events:   g.Match(matchID, opts),
		}
		stats.EventsGenerated += len(matches[i].Events)
	}
	stats.MatchesGenerated = len(matches)

	logger.Get().Info(ctx, "generated matches", logger.Int("events", stats.EventsGenerated))
	return matches
}
