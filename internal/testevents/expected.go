package testevents

import (
	"sort"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
)

// Expect folds events with the same reducer a live session runs. Stadium
// geometry is not loaded, so shot annotations are left out.
func Expect(events []model.Event, legacyZero bool) *live.MatchState {
	r := live.NewReducer(live.WithLegacyZeroSwallow(legacyZero))
	s := live.NewMatchState()
	for i := range events {
		s = r.Step(s, events[i])
	}
	return s
}

// Scorer is one player's goal tally across the replayed matches.
type Scorer struct {
	Name  string
	Team  model.Team
	Goals int
}

// TopScorers tallies goals over states and returns the best n, most goals
// first and ties by name.
func TopScorers(states []*live.MatchState, n int) []Scorer {
	byName := map[string]*Scorer{}
	for _, s := range states {
		for _, team := range model.Teams() {
			for name, p := range s.Roster(team) {
				sc, ok := byName[name]
				if !ok {
					sc = &Scorer{Name: name, Team: team}
					byName[name] = sc
				}
				sc.Goals += p.GoalsScored
			}
		}
	}

	out := make([]Scorer, 0, len(byName))
	for _, sc := range byName {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
