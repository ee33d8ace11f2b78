package filter

import (
	"github.com/okian/kickhub/internal/domain/format"
	"github.com/okian/kickhub/internal/domain/model"
)

// offensive mirrors a kick so the actor attacks left to right and, when the
// stadium is known, aims it at the right-hand goal.
func offensive(e model.Event, stadium *model.Stadium) model.Event { //nolint:gocritic // events are values on the wire
	if e.FromTeam != model.TeamRed {
		e.FromX = -e.FromX
	}
	if stadium.HasGoalposts() {
		gp, _ := stadium.Goal(model.TeamBlue)
		e.ToX, e.ToY = gp.Mid.X, gp.Mid.Y
	}
	return e
}

// defensive mirrors a kick so the recipient defends the left-hand goal and,
// when the stadium is known, aims it at that goal.
func defensive(e model.Event, stadium *model.Stadium) model.Event { //nolint:gocritic // events are values on the wire
	if e.ToTeam != model.TeamRed {
		e.FromX = -e.FromX
	}
	if stadium.HasGoalposts() {
		gp, _ := stadium.Goal(model.TeamRed)
		e.ToX, e.ToY = gp.Mid.X, gp.Mid.Y
	}
	return e
}

func mapKicks(m model.KickMap, keep func(model.Kind) bool, fn func(model.Event) model.Event) model.KickMap {
	out := make(model.KickMap, len(m))
	for k, e := range m {
		if keep(e.Type) {
			out[k] = fn(e)
		}
	}
	return out
}

func kinds(ks ...model.Kind) func(model.Kind) bool {
	return func(k model.Kind) bool {
		for _, want := range ks {
			if k == want {
				return true
			}
		}
		return false
	}
}

// acting builds a display stage over the kicks a player made.
func acting(keep func(model.Kind) bool, useStadium bool) Stage {
	return func(all PlayerKicks, c Context) PlayerKicks {
		stadium := c.stadium
		if !useStadium {
			stadium = nil
		}
		return each(all, c, func(kr model.KickResult) model.KickResult {
			return model.KickResult{
				PlayerName: kr.PlayerName,
				From:       mapKicks(kr.From, keep, func(e model.Event) model.Event { return offensive(e, stadium) }),
				To:         model.KickMap{},
			}
		})
	}
}

// receiving builds a display stage over the kicks a player faced.
func receiving(keep func(model.Kind) bool, useStadium bool) Stage {
	return func(all PlayerKicks, c Context) PlayerKicks {
		stadium := c.stadium
		if !useStadium {
			stadium = nil
		}
		return each(all, c, func(kr model.KickResult) model.KickResult {
			return model.KickResult{
				PlayerName: kr.PlayerName,
				From:       model.KickMap{},
				To:         mapKicks(kr.To, keep, func(e model.Event) model.Event { return defensive(e, stadium) }),
			}
		})
	}
}

// kickStage picks the display stage for m. Passes and steals keep their real
// end point, so those stages ignore the stadium.
func kickStage(m KickMode) Stage {
	switch m {
	case GoalsScored:
		return acting(kinds(model.KindGoal, model.KindError), true)
	case ShotsTaken:
		return acting(kinds(model.KindGoal, model.KindError, model.KindSave), true)
	case GoalsAllowed:
		return receiving(kinds(model.KindError), true)
	case ShotsFaced:
		return receiving(kinds(model.KindSave, model.KindError), true)
	case PassesAttempted:
		return acting(kinds(model.KindPass, model.KindSteal), false)
	case StealsMade:
		return receiving(kinds(model.KindSteal), false)
	}
	return acting(kinds(model.KindGoal, model.KindError), true)
}

// Result holds both outputs of a pipeline run.
type Result struct {
	// Data feeds the aggregator: stadium, comparison and game stages applied.
	Data PlayerKicks
	// Display feeds the field view: Data narrowed by kick mode and mirrored.
	Display PlayerKicks
}

// Run applies the stages in their fixed order.
func Run(all PlayerKicks, c Context) Result {
	stadium := ByStadium(all, c)
	compared := comparisonStage(c.comparison)(stadium, c)
	data := gameStage(c.game)(compared, c)
	return Result{
		Data:    data,
		Display: kickStage(c.kick)(data, c),
	}
}

// For returns a player's kicks from a stage output, or an empty history.
func (p PlayerKicks) For(name string) model.KickResult {
	if kr, ok := p[name]; ok {
		return kr
	}
	return model.EmptyKickResult(name)
}

// DisplayKicks flattens the display set into coloured kick records, players in
// comparison order and kicks in archive order.
func DisplayKicks(display PlayerKicks, c Context) []model.Kick {
	out := []model.Kick{}
	for i, name := range c.players {
		color := format.PlayerColor(i)
		all := display.For(name).Combined()
		for _, key := range all.Keys() {
			out = append(out, model.Kick{Color: color, Username: name, Event: all[key]})
		}
	}
	return out
}

// KickCounts returns the number of display kicks per player.
func KickCounts(kicks []model.Kick) map[string]int {
	out := make(map[string]int)
	for _, k := range kicks {
		out[k.Username]++
	}
	return out
}
