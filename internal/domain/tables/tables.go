// Package tables turns running match state into ranked display tables.
package tables

import (
	"fmt"
	"slices"
	"sort"

	"github.com/okian/kickhub/internal/domain/format"
	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/internal/domain/types"
)

const defaultMaxNameChars = 20

// Option configures the table builders.
type Option func(*options)

type options struct {
	maxNameChars int
}

// WithMaxNameChars bounds the length of player names in the Player column.
func WithMaxNameChars(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxNameChars = n
		}
	}
}

func apply(opts []Option) options {
	o := options{maxNameChars: defaultMaxNameChars}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// entry is a row awaiting ordering. keys sort descending in order; name
// breaks remaining ties ascending.
type entry struct {
	keys    []float64
	name    string
	row     types.Row
	unrated bool
}

// ranked sorts entries and assigns ranks. Entries with identical keys share
// a rank and the next distinct entry gets the following rank.
func ranked(entries []entry) []types.Row {
	sort.SliceStable(entries, func(i, j int) bool {
		if c := slices.Compare(entries[j].keys, entries[i].keys); c != 0 {
			return c < 0
		}
		return entries[i].name < entries[j].name
	})

	rows := make([]types.Row, 0, len(entries))
	rank := 0
	var prev []float64
	for _, e := range entries {
		if !e.unrated {
			if prev == nil || !slices.Equal(prev, e.keys) {
				rank++
				prev = e.keys
			}
			e.row["rank"] = rank
		}
		rows = append(rows, e.row)
	}
	return rows
}

var rankHeader = types.Header{Key: "rank", Name: "#"}

// Offense ranks a team's players by goals, then shots, then completed and
// attempted passes.
func Offense(roster map[string]*live.PlayerStats, opts ...Option) types.Table {
	o := apply(opts)
	entries := make([]entry, 0, len(roster))
	for _, p := range roster {
		entries = append(entries, entry{
			keys: []float64{float64(p.GoalsScored), float64(p.ShotsTaken), float64(p.PassesCompleted), float64(p.PassesAttempted)},
			name: p.Name,
			row: types.Row{
				"name":            format.LimitChars(p.Name, o.maxNameChars),
				"goalsScored":     p.GoalsScored,
				"shotsTaken":      p.ShotsTaken,
				"passesCompleted": p.PassesCompleted,
				"passesAttempted": p.PassesAttempted,
				"passes":          fmt.Sprintf("%d / %d", p.PassesCompleted, p.PassesAttempted),
			},
		})
	}
	return types.Table{
		Headers: []types.Header{
			rankHeader,
			{Key: "name", Name: "Player"},
			{Key: "goalsScored", Name: "Goals"},
			{Key: "shotsTaken", Name: "Shots"},
			{Key: "passes", Name: "Passes"},
		},
		Rows: ranked(entries),
	}
}

// Defense ranks a team's players by shots faced, then steals taken.
// The Own Goals column nets out errors already charged to the keeper.
func Defense(roster map[string]*live.PlayerStats, opts ...Option) types.Table {
	o := apply(opts)
	entries := make([]entry, 0, len(roster))
	for _, p := range roster {
		entries = append(entries, entry{
			keys: []float64{float64(p.ShotsFaced), float64(p.StealsTaken)},
			name: p.Name,
			row: types.Row{
				"name":        format.LimitChars(p.Name, o.maxNameChars),
				"ownGoals":    p.OwnGoals - p.ErrorsAllowed,
				"savesMade":   p.SavesMade,
				"shotsFaced":  p.ShotsFaced,
				"stealsTaken": p.StealsTaken,
				"saves":       fmt.Sprintf("%d / %d", p.SavesMade, p.ShotsFaced),
			},
		})
	}
	return types.Table{
		Headers: []types.Header{
			rankHeader,
			{Key: "name", Name: "Player"},
			{Key: "ownGoals", Name: "Own Goals"},
			{Key: "saves", Name: "Save Attempts"},
			{Key: "stealsTaken", Name: "Steals"},
		},
		Rows: ranked(entries),
	}
}

// Possession ranks a team's players by time on the ball and adds a team total
// row, which is not ranked.
func Possession(players map[model.Team]map[string]*live.PlayerStats, team model.Team, opts ...Option) types.Table {
	o := apply(opts)
	ours := players[team]
	var ourTotal, theirTotal float64
	for _, p := range ours {
		ourTotal += p.TimePossessed
	}
	for _, p := range players[team.Opponent()] {
		theirTotal += p.TimePossessed
	}
	matchTotal := ourTotal + theirTotal

	row := func(name string, top float64) types.Row {
		return types.Row{
			"name":          format.LimitChars(name, o.maxNameChars),
			"timePossessed": top,
			"timeClock":     format.Clock(top),
			"perTeam":       format.Pct(top, ourTotal),
			"perMatch":      format.Pct(top, matchTotal),
		}
	}

	entries := make([]entry, 0, len(ours)+1)
	for _, p := range ours {
		entries = append(entries, entry{keys: []float64{p.TimePossessed}, name: p.Name, row: row(p.Name, p.TimePossessed)})
	}
	totalName := format.FirstCap(string(team)) + " Team"
	entries = append(entries, entry{keys: []float64{ourTotal}, name: totalName, row: row(totalName, ourTotal), unrated: true})

	return types.Table{
		Headers: []types.Header{
			rankHeader,
			{Key: "name", Name: "Player"},
			{Key: "timeClock", Name: "T.O.P."},
			{Key: "perTeam", Name: "% of Team"},
			{Key: "perMatch", Name: "% of Match"},
		},
		Rows: ranked(entries),
	}
}

// Live returns the six tables of the live page: offense, defense and time of
// possession for each team.
func Live(s *live.MatchState, opts ...Option) []types.Table {
	if s == nil {
		s = live.NewMatchState()
	}
	out := make([]types.Table, 0, 6)
	for _, build := range []struct {
		title string
		fn    func(model.Team) types.Table
	}{
		{"Offense", func(t model.Team) types.Table { return Offense(s.Roster(t), opts...) }},
		{"Defense", func(t model.Team) types.Table { return Defense(s.Roster(t), opts...) }},
		{"Time of Possession", func(t model.Team) types.Table { return Possession(s.Players, t, opts...) }},
	} {
		for _, team := range model.Teams() {
			tbl := build.fn(team)
			tbl.Title = format.FirstCap(string(team)) + " " + build.title
			out = append(out, tbl)
		}
	}
	return out
}
