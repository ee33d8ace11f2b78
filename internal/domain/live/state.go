// Package live folds a match's event stream into running match state.
package live

import (
	"github.com/okian/kickhub/internal/domain/model"
)

// PlayerStats are one player's running counters within a match.
type PlayerStats struct {
	Team            model.Team `json:"team"`
	Name            string     `json:"name"`
	GoalsScored     int        `json:"goalsScored"`
	ShotsTaken      int        `json:"shotsTaken"`
	ShotsFaced      int        `json:"shotsFaced"`
	SavesMade       int        `json:"savesMade"`
	ErrorsAllowed   int        `json:"errorsAllowed"`
	OwnGoals        int        `json:"ownGoals"`
	PassesAttempted int        `json:"passesAttempted"`
	PassesCompleted int        `json:"passesCompleted"`
	PassesReceived  int        `json:"passesReceived"`
	StealsTaken     int        `json:"stealsTaken"`
	StealsGiven     int        `json:"stealsGiven"`
	TimePossessed   float64    `json:"timePossessed"`
}

// Score is the running score of both teams.
type Score struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// MatchState is the running state of one live stream.
type MatchState struct {
	EventCount  int     `json:"eventCount"`
	StadiumName string  `json:"stadium,omitempty"`
	IsFinal     bool    `json:"isFinal"`
	IsOvertime  bool    `json:"isOvertime"`
	Time        float64 `json:"time"`
	TimeLimit   float64 `json:"timeLimit"`
	ScoreLimit  int     `json:"scoreLimit"`
	Score       Score   `json:"score"`

	Players     map[model.Team]map[string]*PlayerStats `json:"players"`
	RecentKicks []model.Kick                           `json:"kicks"`

	// Possessor is empty while nobody holds the ball.
	Possessor          string  `json:"possessor,omitempty"`
	PossessionGainedAt float64 `json:"possessionGainedAt"`
}

// NewMatchState returns the state of a stream before its first event.
func NewMatchState() *MatchState {
	return &MatchState{
		Players: map[model.Team]map[string]*PlayerStats{
			model.TeamRed:  {},
			model.TeamBlue: {},
		},
		RecentKicks: []model.Kick{},
	}
}

// Clone returns a deep copy safe to hand to readers.
func (s *MatchState) Clone() *MatchState {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = make(map[model.Team]map[string]*PlayerStats, len(s.Players))
	for team, roster := range s.Players {
		cp := make(map[string]*PlayerStats, len(roster))
		for name, p := range roster {
			v := *p
			cp[name] = &v
		}
		out.Players[team] = cp
	}
	out.RecentKicks = make([]model.Kick, len(s.RecentKicks))
	copy(out.RecentKicks, s.RecentKicks)
	return &out
}

// Snapshot copies the scalars and the rosters but shares the recent kicks
// with s. The reducer only ever appends kicks, and the shared slice is capped
// at its length, so the snapshot stays valid while s keeps folding. Readers
// must not modify the kicks.
func (s *MatchState) Snapshot() *MatchState {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = make(map[model.Team]map[string]*PlayerStats, len(s.Players))
	for team, roster := range s.Players {
		cp := make(map[string]*PlayerStats, len(roster))
		for name, p := range roster {
			v := *p
			cp[name] = &v
		}
		out.Players[team] = cp
	}
	n := len(s.RecentKicks)
	out.RecentKicks = s.RecentKicks[:n:n]
	return &out
}

// Roster returns the players of team t, never nil.
func (s *MatchState) Roster(t model.Team) map[string]*PlayerStats {
	if s == nil || s.Players == nil {
		return map[string]*PlayerStats{}
	}
	if r, ok := s.Players[t]; ok {
		return r
	}
	return map[string]*PlayerStats{}
}

// player resolves (team, name) to its stats, creating them on first sight.
// A missing or unknown team, or an empty name, resolves to nil.
func (s *MatchState) player(team model.Team, name string) *PlayerStats {
	if !team.Valid() || name == "" {
		return nil
	}
	if s.Players == nil {
		s.Players = map[model.Team]map[string]*PlayerStats{}
	}
	roster, ok := s.Players[team]
	if !ok {
		roster = map[string]*PlayerStats{}
		s.Players[team] = roster
	}
	p, ok := roster[name]
	if !ok {
		p = &PlayerStats{Team: team, Name: name}
		roster[name] = p
	}
	return p
}
