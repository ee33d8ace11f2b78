// Package model contains domain models passed between layers.
package model

import (
	"sort"
)

// Kind names what happened in a single match event.
type Kind string

// Event kinds carried by live and historical feeds.
const (
	KindPass    Kind = "pass"
	KindSteal   Kind = "steal"
	KindGoal    Kind = "goal"
	KindError   Kind = "error"
	KindOwnGoal Kind = "own_goal"
	KindSave    Kind = "save"
	KindStart   Kind = "start"
	KindVictory Kind = "victory"
)

// Kinds lists every known event kind.
func Kinds() []Kind {
	return []Kind{KindPass, KindSteal, KindGoal, KindError, KindOwnGoal, KindSave, KindStart, KindVictory}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPass, KindSteal, KindGoal, KindError, KindOwnGoal, KindSave, KindStart, KindVictory:
		return true
	}
	return false
}

// IsKick reports whether k involves a ball touch (everything but start/victory).
func (k Kind) IsKick() bool {
	return k.Valid() && k != KindStart && k != KindVictory
}

// ParseKind converts a wire string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", ErrUnknownKind
	}
	return k, nil
}

// Team is one side of a match.
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Teams lists both sides in display order.
func Teams() []Team { return []Team{TeamRed, TeamBlue} }

// Valid reports whether t is red or blue.
func (t Team) Valid() bool { return t == TeamRed || t == TeamBlue }

// Opponent returns the other side. Unknown teams map to themselves.
func (t Team) Opponent() Team {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	}
	return t
}

// ParseTeam converts a wire string into a Team.
func ParseTeam(s string) (Team, error) {
	t := Team(s)
	if !t.Valid() {
		return "", ErrUnknownTeam
	}
	return t, nil
}

// Event is one immutable record from a match stream.
//
// Optional numeric fields are pointers: nil means the field was not sent.
// The JSON names follow the live feed.
type Event struct {
	Type     Kind   `json:"type"`
	FromTeam Team   `json:"fromTeam,omitempty"`
	FromName string `json:"fromName,omitempty"`
	ToTeam   Team   `json:"toTeam,omitempty"`
	ToName   string `json:"toName,omitempty"`

	Time       *float64 `json:"time,omitempty"`
	ScoreRed   *int     `json:"scoreRed,omitempty"`
	ScoreBlue  *int     `json:"scoreBlue,omitempty"`
	ScoreLimit *int     `json:"scoreLimit,omitempty"`
	TimeLimit  *float64 `json:"timeLimit,omitempty"`

	Stadium    string `json:"stadium,omitempty"`
	Correction bool   `json:"correction,omitempty"`

	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`

	// MatchID and Saved are set on archived kicks. Saved increases with
	// every save to the archive and stands in for recency.
	MatchID string `json:"match,omitempty"`
	Saved   int64  `json:"saved,omitempty"`

	Message string `json:"message,omitempty"`
}

// Int returns a pointer to v, for building events.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building events.
func Float(v float64) *float64 { return &v }

// IntValue dereferences p, treating nil as zero.
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// FloatValue dereferences p, treating nil as zero.
func FloatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// TeamScore returns the score of team t carried on the event and the
// opposing team's score. Missing scores read as zero.
func (e *Event) TeamScore(t Team) (us, them int) {
	red, blue := IntValue(e.ScoreRed), IntValue(e.ScoreBlue)
	if t == TeamRed {
		return red, blue
	}
	return blue, red
}

// KickMap holds archived events keyed by their archive id.
type KickMap map[string]Event

// Keys returns the ids in ascending order.
func (m KickMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Filter returns the events for which keep reports true.
func (m KickMap) Filter(keep func(Event) bool) KickMap {
	out := make(KickMap, len(m))
	for k, e := range m {
		if keep(e) {
			out[k] = e
		}
	}
	return out
}

// KickResult is one player's archived history: From holds events the player
// acted in, To holds events where the player was the recipient or defender.
type KickResult struct {
	PlayerName string  `json:"playerName"`
	From       KickMap `json:"from"`
	To         KickMap `json:"to"`
}

// EmptyKickResult returns a history with no events.
func EmptyKickResult(name string) KickResult {
	return KickResult{PlayerName: name, From: KickMap{}, To: KickMap{}}
}

// Combined returns From and To merged. Ids present on both sides keep the
// From entry.
func (r KickResult) Combined() KickMap {
	out := make(KickMap, len(r.From)+len(r.To))
	for k, e := range r.To {
		out[k] = e
	}
	for k, e := range r.From {
		out[k] = e
	}
	return out
}

// Matches returns the distinct match ids the player touched.
func (r KickResult) Matches() map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range r.From {
		out[e.MatchID] = struct{}{}
	}
	for _, e := range r.To {
		out[e.MatchID] = struct{}{}
	}
	return out
}

// FinalScore is the archived result of a finished match.
type FinalScore struct {
	Red  int `json:"scoreRed"`
	Blue int `json:"scoreBlue"`
}

// For returns team t's score and the opposing score.
func (f FinalScore) For(t Team) (us, them int) {
	if t == TeamRed {
		return f.Red, f.Blue
	}
	return f.Blue, f.Red
}
