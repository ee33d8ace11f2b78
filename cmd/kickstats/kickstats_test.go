package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/kickhub/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

const stadiumsYAML = `
stadiums:
  - name: Classic
    goalposts:
      red:  {mid: {x: -370, y: 0}}
      blue: {mid: {x: 370, y: 0}}
`

func matchFeed() []model.Event {
	return []model.Event{
		{Type: model.KindStart, Stadium: "Classic", TimeLimit: model.Float(60)},
		{Type: model.KindPass, FromTeam: model.TeamRed, FromName: "bob", ToTeam: model.TeamRed, ToName: "alice", Time: model.Float(1)},
		{Type: model.KindGoal, FromTeam: model.TeamRed, FromName: "alice", Time: model.Float(2), ScoreRed: model.Int(1)},
		{Type: model.KindSteal, FromTeam: model.TeamRed, FromName: "bob", ToTeam: model.TeamBlue, ToName: "dana", Time: model.Float(3)},
		{Type: model.KindVictory, Time: model.Float(4), ScoreRed: model.Int(1), ScoreBlue: model.Int(0)},
		{Message: "Match ID: m9"},
	}
}

func writeFeed(dir string, events []model.Event) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range events {
		convey.So(enc.Encode(e), convey.ShouldBeNil)
	}
	path := filepath.Join(dir, "match.jsonl")
	convey.So(os.WriteFile(path, buf.Bytes(), 0o600), convey.ShouldBeNil)
	return path
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestKickstats(t *testing.T) {
	convey.Convey("Given a match feed, a stadium file and an empty archive", t, func() {
		dir := t.TempDir()
		feed := writeFeed(dir, matchFeed())
		stadiums := filepath.Join(dir, "stadiums.yaml")
		convey.So(os.WriteFile(stadiums, []byte(stadiumsYAML), 0o600), convey.ShouldBeNil)
		common := []string{"--db", filepath.Join(dir, "db", "kickhub.db"), "--stadiums", stadiums, "--log-level", "error"}

		convey.Convey("When the feed is replayed", func() {
			out, err := execute(append([]string{"replay", feed}, common...)...)

			convey.Convey("Then the summary and live tables are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldStartWith, "6 events, score 1-0 on Classic (final)")
				convey.So(out, convey.ShouldContainSubstring, "Red Offense")
				convey.So(out, convey.ShouldContainSubstring, "Blue Time of Possession")
			})
		})

		convey.Convey("When the feed is imported", func() {
			out, err := execute(append([]string{"import", feed}, common...)...)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the match id is taken from the feed", func() {
				convey.So(out, convey.ShouldEqual, "archived 3 kicks of match m9\n")
			})

			convey.Convey("Then the archived players can be compared", func() {
				out, err := execute(append([]string{"compare", "alice", "dana", "--stadium", "Classic"}, common...)...)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Classic: ")
				convey.So(out, convey.ShouldContainSubstring, "Teammates")
				convey.So(strings.ToLower(out), convey.ShouldContainSubstring, "dana")
			})

			convey.Convey("Then an unknown mode label is rejected", func() {
				_, err := execute(append([]string{"compare", "alice", "--stadium", "Classic", "--game", "Sideways"}, common...)...)
				convey.So(err, convey.ShouldNotBeNil)
			})

			convey.Convey("Then a player missing from the archive is an error", func() {
				_, err := execute(append([]string{"compare", "zoe", "--stadium", "Classic"}, common...)...)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "compare")
			})
		})

		convey.Convey("When compare gets no players", func() {
			_, err := execute(append([]string{"compare"}, common...)...)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestAnnouncedMatch(t *testing.T) {
	convey.Convey("Given feeds with and without an announcement", t, func() {
		convey.So(announcedMatch(matchFeed()), convey.ShouldEqual, "m9")
		convey.So(announcedMatch(matchFeed()[:5]), convey.ShouldEqual, "")
	})
}
