package testevents

import (
	"fmt"
	"log"
	"math"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
)

const possessionTolerance = 1e-6

// Compare lists every way got differs from want. Recent kicks are skipped.
func Compare(want, got *live.MatchState) []string {
	if got == nil {
		return []string{"no state"}
	}

	var diffs []string
	add := func(format string, args ...any) { diffs = append(diffs, fmt.Sprintf(format, args...)) }

	if want.EventCount != got.EventCount {
		add("eventCount: want %d, got %d", want.EventCount, got.EventCount)
	}
	if want.Score != got.Score {
		add("score: want %d-%d, got %d-%d", want.Score.Red, want.Score.Blue, got.Score.Red, got.Score.Blue)
	}
	if want.IsFinal != got.IsFinal {
		add("isFinal: want %t, got %t", want.IsFinal, got.IsFinal)
	}
	if want.StadiumName != got.StadiumName {
		add("stadium: want %q, got %q", want.StadiumName, got.StadiumName)
	}

	for _, team := range model.Teams() {
		wantRoster, gotRoster := want.Roster(team), got.Roster(team)
		if len(wantRoster) != len(gotRoster) {
			add("%s roster: want %d players, got %d", team, len(wantRoster), len(gotRoster))
		}
		for name, w := range wantRoster {
			g, ok := gotRoster[name]
			if !ok {
				add("%s/%s: missing", team, name)
				continue
			}
			if math.Abs(w.TimePossessed-g.TimePossessed) > possessionTolerance {
				add("%s/%s timePossessed: want %.3f, got %.3f", team, name, w.TimePossessed, g.TimePossessed)
			}
			wc, gc := *w, *g
			wc.TimePossessed, gc.TimePossessed = 0, 0
			if wc != gc {
				add("%s/%s counters: want %+v, got %+v", team, name, wc, gc)
			}
		}
	}
	return diffs
}

// verifyMatch checks one session against the local fold of its match.
func verifyMatch(m Match, view SessionView, stats *Stats) error {
	want := Expect(m.Events, true)
	diffs := Compare(want, view.State)
	if len(diffs) == 0 {
		stats.SessionsVerified++
		return nil
	}

	stats.Mismatches += len(diffs)
	for _, d := range diffs {
		log.Printf("⚠️  %s/%s: %s", m.Stream, m.StreamID, d)
	}
	return fmt.Errorf("session %s: %d mismatches", view.ID, len(diffs))
}

// displayTopScorers logs the leading scorers across every replayed match.
func displayTopScorers(states []*live.MatchState, n int) {
	top := TopScorers(states, n)
	log.Printf("🏆 Top %d scorers:", len(top))
	for i, sc := range top {
		log.Printf("   %d. %s (%s) - Goals: %d", i+1, sc.Name, sc.Team, sc.Goals)
	}
}
