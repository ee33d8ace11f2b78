package filter

import (
	"sort"

	"github.com/okian/kickhub/internal/domain/model"
)

// PlayerKicks maps a player name to that player's archived kicks.
type PlayerKicks map[string]model.KickResult

// Stage narrows the kicks of the players in the context.
type Stage func(PlayerKicks, Context) PlayerKicks

// each applies fn to every compared player. Players without data are treated
// as having no kicks.
func each(all PlayerKicks, c Context, fn func(model.KickResult) model.KickResult) PlayerKicks {
	out := make(PlayerKicks, len(c.players))
	for _, name := range c.players {
		kr, ok := all[name]
		if !ok {
			kr = model.EmptyKickResult(name)
		}
		out[name] = fn(kr)
	}
	return out
}

// keepBoth filters both sides of a history with the same predicate.
func keepBoth(keep func(model.Event) bool) func(model.KickResult) model.KickResult {
	return func(kr model.KickResult) model.KickResult {
		return model.KickResult{
			PlayerName: kr.PlayerName,
			From:       kr.From.Filter(keep),
			To:         kr.To.Filter(keep),
		}
	}
}

// ByStadium keeps kicks played in the selected stadium. With no stadium
// selected nothing is kept.
func ByStadium(all PlayerKicks, c Context) PlayerKicks {
	if c.stadium == nil {
		return PlayerKicks{}
	}
	name := c.stadium.Name
	return each(all, c, keepBoth(func(e model.Event) bool { return e.Stadium == name }))
}

// ByCommonMatches keeps kicks from matches every compared player took part in.
func ByCommonMatches(all PlayerKicks, c Context) PlayerKicks {
	seen := make(map[string]struct{}, len(c.players))
	tally := make(map[string]int)
	for _, name := range c.players {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		for match := range all[name].Matches() {
			tally[match]++
		}
	}
	want := len(seen)
	return each(all, c, keepBoth(func(e model.Event) bool { return tally[e.MatchID] == want }))
}

// ByLastN keeps, per player, the n matches with the highest save sequence.
func ByLastN(n int) Stage {
	return func(all PlayerKicks, c Context) PlayerKicks {
		return each(all, c, func(kr model.KickResult) model.KickResult {
			recent := recentMatches(kr, n)
			return keepBoth(func(e model.Event) bool {
				_, ok := recent[e.MatchID]
				return ok
			})(kr)
		})
	}
}

func recentMatches(kr model.KickResult, n int) map[string]struct{} {
	latest := make(map[string]int64)
	for _, e := range kr.Combined() {
		if cur, ok := latest[e.MatchID]; !ok || e.Saved > cur {
			latest[e.MatchID] = e.Saved
		}
	}
	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if latest[ids[i]] != latest[ids[j]] {
			return latest[ids[i]] > latest[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// ByScore keeps kicks whose acting team's score stood in relation keep to
// the opponent's when the kick happened.
func ByScore(keep func(us, them int) bool) Stage {
	return func(all PlayerKicks, c Context) PlayerKicks {
		return each(all, c, keepBoth(func(e model.Event) bool {
			return keep(e.TeamScore(e.FromTeam))
		}))
	}
}

// ByPeriod keeps kicks whose clock relates to the time limit as keep says.
func ByPeriod(keep func(at, limit float64) bool) Stage {
	return func(all PlayerKicks, c Context) PlayerKicks {
		return each(all, c, keepBoth(func(e model.Event) bool {
			return keep(model.FloatValue(e.Time), model.FloatValue(e.TimeLimit))
		}))
	}
}

func comparisonStage(m ComparisonMode) Stage {
	switch m {
	case CommonMatches:
		return ByCommonMatches
	case LastMatch, Last3Matches, Last5Matches, Last10Matches:
		return ByLastN(m.window())
	case AllTime:
		return ByStadium
	}
	return ByStadium
}

func gameStage(m GameMode) Stage {
	switch m {
	case EntireMatch:
		return ByScore(func(_, _ int) bool { return true })
	case WhileWinning:
		return ByScore(func(us, them int) bool { return us > them })
	case WhileLosing:
		return ByScore(func(us, them int) bool { return us < them })
	case WhileTied:
		return ByScore(func(us, them int) bool { return us == them })
	case InRegulation:
		return ByPeriod(func(at, limit float64) bool { return at <= limit })
	case InOvertime:
		return ByPeriod(func(at, limit float64) bool { return at > limit })
	}
	return ByScore(func(_, _ int) bool { return true })
}
