package analytics_test

import (
	"errors"
	"testing"

	"github.com/okian/kickhub/internal/domain/analytics"
	"github.com/okian/kickhub/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func history() model.KickResult {
	return model.KickResult{
		PlayerName: "pav",
		From: model.KickMap{
			"f1": {Type: model.KindGoal, FromTeam: model.TeamRed, FromName: "pav", MatchID: "m1", Saved: 1},
			"f2": {Type: model.KindError, FromTeam: model.TeamRed, FromName: "pav", ToTeam: model.TeamBlue, ToName: "gk", MatchID: "m1", Saved: 2},
			"f3": {Type: model.KindSave, FromTeam: model.TeamBlue, FromName: "pav", ToTeam: model.TeamRed, ToName: "gk", MatchID: "m2", Saved: 5},
			"f4": {Type: model.KindPass, FromTeam: model.TeamBlue, FromName: "pav", ToTeam: model.TeamBlue, ToName: "vin", MatchID: "m2", Saved: 6},
			"f5": {Type: model.KindPass, FromTeam: model.TeamBlue, FromName: "pav", ToTeam: model.TeamBlue, ToName: "vin", MatchID: "m2", Saved: 7},
			"f6": {Type: model.KindSteal, FromTeam: model.TeamRed, FromName: "pav", ToTeam: model.TeamBlue, ToName: "x", MatchID: "m3", Saved: 9},
		},
		To: model.KickMap{
			"t1": {Type: model.KindSave, FromTeam: model.TeamBlue, FromName: "x", ToTeam: model.TeamRed, ToName: "pav", MatchID: "m1", Saved: 3},
			"t2": {Type: model.KindError, FromTeam: model.TeamBlue, FromName: "x", ToTeam: model.TeamRed, ToName: "pav", MatchID: "m3", Saved: 10},
			"t3": {Type: model.KindSteal, FromTeam: model.TeamBlue, FromName: "x", ToTeam: model.TeamRed, ToName: "pav", MatchID: "m3", Saved: 8},
			"t4": {Type: model.KindPass, FromTeam: model.TeamBlue, FromName: "vin", ToTeam: model.TeamBlue, ToName: "pav", MatchID: "m2", Saved: 4},
		},
	}
}

var finals = map[string]model.FinalScore{
	"m1": {Red: 3, Blue: 1},
	"m2": {Red: 2, Blue: 0},
	"m3": {Red: 2, Blue: 2},
}

func TestSummarize(t *testing.T) {
	Convey("Given a player's history across three matches", t, func() {
		Convey("When it is summarized with default options", func() {
			s := analytics.Summarize(history(), finals)

			Convey("Then offense counts come from the acting side", func() {
				So(s.Name, ShouldEqual, "pav")
				So(s.ShotsTaken, ShouldEqual, 3)
				So(s.Goals, ShouldEqual, 2)
				So(s.PassesAttempted, ShouldEqual, 3)
				So(s.PassesCompleted, ShouldEqual, 2)
				So(s.PassesTo, ShouldResemble, map[string]int{"vin": 2})
			})

			Convey("Then defense counts come from the receiving side", func() {
				So(s.ShotsFaced, ShouldEqual, 2)
				So(s.Saves, ShouldEqual, 1)
				So(s.StealsMade, ShouldEqual, 1)
				So(s.PassesReceived, ShouldEqual, 1)
				So(s.PassesFrom, ShouldResemble, map[string]int{"vin": 1})
			})

			Convey("Then the record uses the team of each match's last kick", func() {
				So(s.Matches, ShouldEqual, 3)
				So(s.Wins, ShouldEqual, 1)
				So(s.Losses, ShouldEqual, 1)
				So(s.Ties, ShouldEqual, 1)
				So(s.TotalWinDiff, ShouldEqual, 2)
				So(s.TotalLossDiff, ShouldEqual, -2)
				So(s.PointsFor, ShouldEqual, 3+0+2)
				So(s.PointsAgainst, ShouldEqual, 1+2+2)
			})
		})

		Convey("When ties count as wins", func() {
			s := analytics.Summarize(history(), finals, analytics.WithTiesAsWins(true))

			Convey("Then the tie becomes a zero-margin win", func() {
				So(s.Wins, ShouldEqual, 2)
				So(s.Ties, ShouldEqual, 0)
				So(s.TotalWinDiff, ShouldEqual, 2)
			})
		})

		Convey("When a match has no archived final score", func() {
			s := analytics.Summarize(history(), map[string]model.FinalScore{"m1": {Red: 3, Blue: 1}})

			Convey("Then it counts as played but not in the record", func() {
				So(s.Matches, ShouldEqual, 3)
				So(s.Wins, ShouldEqual, 1)
				So(s.Losses, ShouldEqual, 0)
			})
		})

		Convey("When the history is empty", func() {
			s := analytics.Summarize(model.EmptyKickResult("nobody"), finals)

			Convey("Then every counter is zero", func() {
				So(s.Matches, ShouldEqual, 0)
				So(s.ShotsTaken, ShouldEqual, 0)
				So(s.PassesTo, ShouldBeEmpty)
			})
		})
	})
}

func TestTop(t *testing.T) {
	Convey("Given teammate pass counts", t, func() {
		counts := map[string]int{"a": 2, "b": 5, "c": 2, "d": 1}

		Convey("Top keeps the n highest, names breaking ties", func() {
			So(analytics.Top(counts, 3), ShouldResemble, []analytics.Ranked{
				{Name: "b", Count: 5},
				{Name: "a", Count: 2},
				{Name: "c", Count: 2},
			})
			So(analytics.Top(map[string]int{}, 3), ShouldBeEmpty)
		})
	})
}

func TestBuildCard(t *testing.T) {
	Convey("Given a summary", t, func() {
		s := analytics.Summarize(history(), finals)

		Convey("The shots card reports shooting and saving", func() {
			c := analytics.BuildCard(analytics.StatsShotsSaves, s, 3)
			So(c.Lines[0].Value, ShouldEqual, "67%")
			So(c.Lines[0].Definition, ShouldEqual, "2 goals / 3 shots taken")
			So(c.Lines[1].Value, ShouldEqual, "50%")
		})

		Convey("The passing card reports completion and ratio", func() {
			c := analytics.BuildCard(analytics.StatsPassing, s, 3)
			So(c.Lines[0].Value, ShouldEqual, "67%")
			So(c.Lines[1].Value, ShouldEqual, "1.00")
		})

		Convey("The record card reports wins and differential", func() {
			c := analytics.BuildCard(analytics.StatsRecord, s, 3)
			So(c.Lines[0].Value, ShouldEqual, "50%")
			So(c.Lines[0].Definition, ShouldEqual, "1 win vs 1 loss")
			So(c.Lines[1].Value, ShouldEqual, "0")
		})

		Convey("The teammates card ranks passing partners", func() {
			c := analytics.BuildCard(analytics.StatsTeammates, s, 3)
			So(c.PassesTo, ShouldResemble, []analytics.Ranked{{Name: "vin", Count: 2}})
			So(c.Lines, ShouldBeEmpty)
		})
	})
}

func TestStatsModes(t *testing.T) {
	Convey("Stats modes round-trip through their labels", t, func() {
		for _, m := range analytics.StatsModes() {
			got, err := analytics.ParseStatsMode(m.String())
			So(err, ShouldBeNil)
			So(got, ShouldEqual, m)
		}
		_, err := analytics.ParseStatsMode("Dribbling")
		So(errors.Is(err, analytics.ErrUnknownMode), ShouldBeTrue)
	})
}
