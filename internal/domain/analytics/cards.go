package analytics

import (
	"fmt"
	"strconv"

	"github.com/okian/kickhub/internal/domain/format"
)

// StatsMode selects which stat card a comparison shows.
type StatsMode int

const (
	StatsShotsSaves StatsMode = iota
	StatsPassing
	StatsTeammates
	StatsRecord
)

// StatsModes lists the modes in menu order.
func StatsModes() []StatsMode {
	return []StatsMode{StatsShotsSaves, StatsPassing, StatsTeammates, StatsRecord}
}

func (m StatsMode) String() string {
	switch m {
	case StatsShotsSaves:
		return "Shots/Saves"
	case StatsPassing:
		return "Passing"
	case StatsTeammates:
		return "Teammates"
	case StatsRecord:
		return "Record"
	}
	return "StatsMode(" + strconv.Itoa(int(m)) + ")"
}

// ParseStatsMode maps a menu label back to its mode.
func ParseStatsMode(s string) (StatsMode, error) {
	for _, m := range StatsModes() {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("stats mode %q: %w", s, ErrUnknownMode)
}

// MarshalText renders the menu label.
func (m StatsMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText parses a menu label.
func (m *StatsMode) UnmarshalText(b []byte) error {
	v, err := ParseStatsMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Line is one headline figure on a card.
type Line struct {
	Value      string `json:"value"`
	Label      string `json:"label"`
	Definition string `json:"definition"`
}

// Card is the rendered stats block for one player.
type Card struct {
	Mode       StatsMode `json:"mode"`
	Lines      []Line    `json:"lines,omitempty"`
	PassesTo   []Ranked  `json:"passesTo,omitempty"`
	PassesFrom []Ranked  `json:"passesFrom,omitempty"`
}

// BuildCard renders s for mode m. top bounds the teammate rankings.
func BuildCard(m StatsMode, s Summary, top int) Card {
	c := Card{Mode: m}
	switch m {
	case StatsShotsSaves:
		c.Lines = []Line{
			{
				Value:      format.Pct(float64(s.Goals), float64(s.ShotsTaken)),
				Label:      "shot percentage",
				Definition: format.Plural(s.Goals, "goal") + " / " + format.Plural(s.ShotsTaken, "shot") + " taken",
			},
			{
				Value:      format.Pct(float64(s.Saves), float64(s.ShotsFaced)),
				Label:      "save percentage",
				Definition: format.Plural(s.Saves, "save") + " / " + format.Plural(s.ShotsFaced, "shot") + " faced",
			},
		}
	case StatsPassing:
		c.Lines = []Line{
			{
				Value:      format.Pct(float64(s.PassesCompleted), float64(s.PassesAttempted)),
				Label:      "pass completion rate",
				Definition: fmt.Sprintf("%d comp. / %d att.", s.PassesCompleted, s.PassesAttempted),
			},
			{
				Value:      format.Ratio(float64(s.PassesAttempted), float64(s.ShotsTaken)),
				Label:      "pass/shoot ratio",
				Definition: fmt.Sprintf("%d pass att. / %d shot att.", s.PassesAttempted, s.ShotsTaken),
			},
		}
	case StatsTeammates:
		c.PassesTo = Top(s.PassesTo, top)
		c.PassesFrom = Top(s.PassesFrom, top)
	case StatsRecord:
		c.Lines = []Line{
			{
				Value:      format.Pct(float64(s.Wins), float64(s.Wins+s.Losses)),
				Label:      "win percentage",
				Definition: format.Plural(s.Wins, "win") + " vs " + format.Plural(s.Losses, "loss", "losses"),
			},
			{
				Value:      strconv.Itoa(s.PointsFor - s.PointsAgainst),
				Label:      "score differential",
				Definition: format.Plural(s.PointsFor, "point") + " for - " + format.Plural(s.PointsAgainst, "point") + " against",
			},
		}
	}
	return c
}
