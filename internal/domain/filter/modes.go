// Package filter narrows compared players' archived kicks through a fixed
// chain of stages: stadium, comparison window, game situation, kick type.
package filter

import (
	"fmt"
	"strconv"
)

// ComparisonMode selects which matches are compared.
type ComparisonMode int

const (
	AllTime ComparisonMode = iota
	CommonMatches
	LastMatch
	Last3Matches
	Last5Matches
	Last10Matches
)

// ComparisonModes lists the modes in menu order.
func ComparisonModes() []ComparisonMode {
	return []ComparisonMode{AllTime, CommonMatches, LastMatch, Last3Matches, Last5Matches, Last10Matches}
}

func (m ComparisonMode) String() string {
	switch m {
	case AllTime:
		return "All-Time"
	case CommonMatches:
		return "Common Matches"
	case LastMatch:
		return "Last Match"
	case Last3Matches:
		return "Last 3 Matches"
	case Last5Matches:
		return "Last 5 Matches"
	case Last10Matches:
		return "Last 10 Matches"
	}
	return "ComparisonMode(" + strconv.Itoa(int(m)) + ")"
}

// window returns how many recent matches the mode keeps, or 0 for no limit.
func (m ComparisonMode) window() int {
	switch m {
	case LastMatch:
		return 1
	case Last3Matches:
		return 3
	case Last5Matches:
		return 5
	case Last10Matches:
		return 10
	case AllTime, CommonMatches:
	}
	return 0
}

// GameMode selects kicks by the match situation they happened in.
type GameMode int

const (
	EntireMatch GameMode = iota
	WhileWinning
	WhileLosing
	WhileTied
	InRegulation
	InOvertime
)

// GameModes lists the modes in menu order.
func GameModes() []GameMode {
	return []GameMode{EntireMatch, WhileWinning, WhileLosing, WhileTied, InRegulation, InOvertime}
}

func (m GameMode) String() string {
	switch m {
	case EntireMatch:
		return "Entire Match"
	case WhileWinning:
		return "While Winning"
	case WhileLosing:
		return "While Losing"
	case WhileTied:
		return "While Tied"
	case InRegulation:
		return "In Regulation"
	case InOvertime:
		return "In Overtime"
	}
	return "GameMode(" + strconv.Itoa(int(m)) + ")"
}

// KickMode selects which kicks are drawn on the field.
type KickMode int

const (
	GoalsScored KickMode = iota
	ShotsTaken
	GoalsAllowed
	ShotsFaced
	PassesAttempted
	StealsMade
)

// KickModes lists the modes in menu order.
func KickModes() []KickMode {
	return []KickMode{GoalsScored, ShotsTaken, GoalsAllowed, ShotsFaced, PassesAttempted, StealsMade}
}

func (m KickMode) String() string {
	switch m {
	case GoalsScored:
		return "Goals Scored"
	case ShotsTaken:
		return "Shots Taken"
	case GoalsAllowed:
		return "Goals Allowed"
	case ShotsFaced:
		return "Shots Faced"
	case PassesAttempted:
		return "Passes Attempted"
	case StealsMade:
		return "Steals Made"
	}
	return "KickMode(" + strconv.Itoa(int(m)) + ")"
}

type mode interface {
	~int
	String() string
}

func parse[M mode](all []M, label, kind string) (M, error) {
	for _, m := range all {
		if m.String() == label {
			return m, nil
		}
	}
	var zero M
	return zero, fmt.Errorf("%s %q: %w", kind, label, ErrUnknownMode)
}

// ParseComparisonMode maps a menu label to its mode.
func ParseComparisonMode(s string) (ComparisonMode, error) {
	return parse(ComparisonModes(), s, "comparison mode")
}

// ParseGameMode maps a menu label to its mode.
func ParseGameMode(s string) (GameMode, error) {
	return parse(GameModes(), s, "game mode")
}

// ParseKickMode maps a menu label to its mode.
func ParseKickMode(s string) (KickMode, error) {
	return parse(KickModes(), s, "kick mode")
}

func (m ComparisonMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m GameMode) MarshalText() ([]byte, error)       { return []byte(m.String()), nil }
func (m KickMode) MarshalText() ([]byte, error)       { return []byte(m.String()), nil }

func (m *ComparisonMode) UnmarshalText(b []byte) error {
	v, err := ParseComparisonMode(string(b))
	if err == nil {
		*m = v
	}
	return err
}

func (m *GameMode) UnmarshalText(b []byte) error {
	v, err := ParseGameMode(string(b))
	if err == nil {
		*m = v
	}
	return err
}

func (m *KickMode) UnmarshalText(b []byte) error {
	v, err := ParseKickMode(string(b))
	if err == nil {
		*m = v
	}
	return err
}

// Labels returns the menu labels of the given modes.
func Labels[M mode](all []M) []string {
	out := make([]string, len(all))
	for i, m := range all {
		out[i] = m.String()
	}
	return out
}
