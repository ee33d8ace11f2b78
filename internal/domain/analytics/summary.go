// Package analytics turns a player's archived kicks into summary statistics.
package analytics

import (
	"sort"

	"github.com/okian/kickhub/internal/domain/model"
)

// Summary is the flat per-player record shown on comparison cards.
type Summary struct {
	Name    string `json:"name"`
	Matches int    `json:"matches"`

	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Ties          int `json:"ties"`
	TotalWinDiff  int `json:"totalWinDiff"`
	TotalLossDiff int `json:"totalLossDiff"`
	PointsFor     int `json:"pointsFor"`
	PointsAgainst int `json:"pointsAgainst"`

	ShotsFaced     int            `json:"shotsFaced"`
	Saves          int            `json:"saves"`
	StealsMade     int            `json:"stealsMade"`
	PassesReceived int            `json:"passesReceived"`
	PassesFrom     map[string]int `json:"passesFrom"`

	ShotsTaken      int            `json:"shotsTaken"`
	Goals           int            `json:"goals"`
	PassesAttempted int            `json:"passesAttempted"`
	PassesCompleted int            `json:"passesCompleted"`
	PassesTo        map[string]int `json:"passesTo"`
}

// Option configures Summarize.
type Option func(*options)

type options struct {
	tiesAsWins bool
}

// WithTiesAsWins counts tied matches as wins with a zero margin, matching how
// archived records were tallied before ties were tracked.
func WithTiesAsWins(enabled bool) Option {
	return func(o *options) {
		o.tiesAsWins = enabled
	}
}

// Summarize aggregates one player's history. finals maps match id to the
// archived final score; matches without a final score count towards Matches
// but not towards the record.
func Summarize(kr model.KickResult, finals map[string]model.FinalScore, opts ...Option) Summary {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := Summary{
		Name:       kr.PlayerName,
		PassesFrom: map[string]int{},
		PassesTo:   map[string]int{},
	}

	last := lastKickPerMatch(kr.Combined())
	s.Matches = len(last)
	for matchID, k := range last {
		final, ok := finals[matchID]
		if !ok {
			continue
		}
		team := k.ToTeam
		if k.FromName == kr.PlayerName {
			team = k.FromTeam
		}
		s.record(final, team, o.tiesAsWins)
	}

	for _, k := range kr.To {
		switch k.Type {
		case model.KindSave:
			s.ShotsFaced++
			s.Saves++
		case model.KindError:
			s.ShotsFaced++
		case model.KindSteal:
			s.StealsMade++
		case model.KindPass:
			s.PassesReceived++
			s.PassesFrom[k.FromName]++
		}
	}

	for _, k := range kr.From {
		switch k.Type {
		case model.KindGoal, model.KindError:
			s.ShotsTaken++
			s.Goals++
		case model.KindSave:
			s.ShotsTaken++
		case model.KindPass:
			s.PassesAttempted++
			s.PassesCompleted++
			s.PassesTo[k.ToName]++
		case model.KindSteal:
			s.PassesAttempted++
		}
	}
	return s
}

func (s *Summary) record(final model.FinalScore, team model.Team, tiesAsWins bool) {
	us, them := final.For(team)
	diff := us - them
	if diff < 0 {
		diff = -diff
	}
	switch {
	case us > them, us == them && tiesAsWins:
		s.Wins++
		s.TotalWinDiff += diff
	case us < them:
		s.Losses++
		s.TotalLossDiff -= diff
	default:
		s.Ties++
	}
	s.PointsFor += us
	s.PointsAgainst += them
}

// lastKickPerMatch picks, per match, the kick with the highest save sequence.
// Ties go to the lowest archive id so the choice never depends on map order.
func lastKickPerMatch(all model.KickMap) map[string]model.Event {
	keys := all.Keys()
	out := make(map[string]model.Event)
	for _, key := range keys {
		k := all[key]
		cur, seen := out[k.MatchID]
		if !seen || k.Saved > cur.Saved {
			out[k.MatchID] = k
		}
	}
	return out
}

// Ranked is one entry of a teammate ranking.
type Ranked struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Top returns the n largest counts, highest first, names ascending on ties.
func Top(counts map[string]int, n int) []Ranked {
	out := make([]Ranked, 0, len(counts))
	for name, c := range counts {
		out = append(out, Ranked{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
