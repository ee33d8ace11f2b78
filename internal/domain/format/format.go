// Package format holds the display helpers shared by tables, stat cards and
// kick renderers.
package format

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/okian/kickhub/internal/domain/model"
)

const (
	kickAlpha  = 0.90
	secsPerMin = 60
)

var teamRGB = map[model.Team]string{
	model.TeamRed:  "217, 3, 104",
	model.TeamBlue: "63, 167, 214",
}

// playerRGB is the colour cycle used for compared players.
var playerRGB = []string{
	"217, 3, 104",
	"63, 167, 214",
	"255, 212, 0",
	"89, 205, 144",
	"144, 70, 207",
	"213, 87, 59",
	"173, 252, 146",
	"247, 178, 189",
	"192, 253, 251",
	"178, 139, 132",
}

// TeamColor returns the kick colour for team t. Anything but red draws blue.
func TeamColor(t model.Team) string {
	if t == model.TeamRed {
		return rgba(teamRGB[model.TeamRed])
	}
	return rgba(teamRGB[model.TeamBlue])
}

// PlayerColor returns the colour of the i-th compared player. The palette
// wraps around.
func PlayerColor(i int) string {
	if i < 0 {
		i = -i
	}
	return rgba(playerRGB[i%len(playerRGB)])
}

func rgba(rgb string) string {
	return fmt.Sprintf("rgba(%s, %.2f)", rgb, kickAlpha)
}

// Clock renders seconds as m:ss. Negative input renders as 0:00.
func Clock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/secsPerMin, total%secsPerMin)
}

// Pct renders num/den as a whole percentage. A zero denominator yields "0%".
func Pct(num, den float64) string {
	if den == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", 100*num/den)
}

// Ratio renders num/den with two decimals. A zero denominator yields the
// numerator itself.
func Ratio(num, den float64) string {
	if den == 0 {
		return fmt.Sprintf("%.2f", num)
	}
	return fmt.Sprintf("%.2f", num/den)
}

// Plural renders "1 goal", "2 goals". An explicit plural form may be given
// for irregular words.
func Plural(n int, singular string, plural ...string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	word := singular + "s"
	if len(plural) > 0 && plural[0] != "" {
		word = plural[0]
	}
	return fmt.Sprintf("%d %s", n, word)
}

// LimitChars truncates s to at most n runes, marking the cut with "...".
func LimitChars(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// FirstCap upper-cases the first letter of s.
func FirstCap(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
