package report_test

import (
	"bytes"
	"strings"
	"testing"

	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/analytics"
	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/internal/domain/tables"
	"github.com/okian/kickhub/internal/domain/types"
	"github.com/okian/kickhub/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	Convey("Given a display table", t, func() {
		tbl := types.Table{
			Title:   "Red Offense",
			Headers: []types.Header{{Key: "name", Name: "Player"}, {Key: "goals", Name: "Goals"}},
			Rows:    []types.Row{{"name": "alice", "goals": 3}, {"name": "bob", "goals": 1}},
		}

		Convey("When it is rendered", func() {
			var buf bytes.Buffer
			err := report.Table(&buf, tbl)
			out := buf.String()

			Convey("Then the title, headers and cells are written in order", func() {
				So(err, ShouldBeNil)
				So(out, ShouldStartWith, "Red Offense\n")
				So(strings.ToLower(out), ShouldContainSubstring, "player")
				So(out, ShouldContainSubstring, "alice")
				So(strings.Index(out, "alice"), ShouldBeLessThan, strings.Index(out, "bob"))
			})
		})
	})

	Convey("Given the live tables of a match", t, func() {
		s := live.NewMatchState()
		live.NewReducer().Step(s, model.Event{Type: model.KindGoal, FromTeam: model.TeamRed, FromName: "alice", Time: model.Float(3)})

		Convey("When they are all rendered", func() {
			var buf bytes.Buffer
			err := report.Tables(&buf, tables.Live(s))

			Convey("Then each team table appears", func() {
				So(err, ShouldBeNil)
				for _, title := range []string{"Red Offense", "Blue Offense", "Red Defense", "Blue Time of Possession"} {
					So(buf.String(), ShouldContainSubstring, title)
				}
			})
		})
	})
}

func TestComparisonTable(t *testing.T) {
	Convey("Given a comparison view", t, func() {
		alice := analytics.Summary{Name: "alice", Goals: 1, ShotsTaken: 2, PassesTo: map[string]int{"bob": 2}}
		bob := analytics.Summary{Name: "bob", Saves: 1, ShotsFaced: 1, PassesFrom: map[string]int{"alice": 2}}
		v := service.View{
			Stadium: "Classic",
			Players: []service.PlayerView{
				{Name: "alice", Summary: alice, Card: analytics.BuildCard(analytics.StatsShotsSaves, alice, 3)},
				{Name: "bob", Summary: bob, Card: analytics.BuildCard(analytics.StatsShotsSaves, bob, 3)},
			},
		}

		Convey("When the cards are laid out", func() {
			tbl := report.ComparisonTable(v)

			Convey("Then each player gets a column and each line a row", func() {
				So(tbl.Title, ShouldStartWith, "Classic: ")
				So(tbl.HeaderNames(), ShouldResemble, []string{"Stat", "alice", "bob"})
				So(len(tbl.Rows), ShouldEqual, 2)
				So(tbl.Rows[0]["stat"], ShouldEqual, "shot percentage")
				So(tbl.Rows[0]["p0"], ShouldEqual, "50%")
			})
		})

		Convey("When teammates are laid out", func() {
			v.Players[0].Card = analytics.BuildCard(analytics.StatsTeammates, alice, 3)
			v.Players[1].Card = analytics.BuildCard(analytics.StatsTeammates, bob, 3)
			tbl := report.TeammateTable(v)

			Convey("Then pass partners are listed per player", func() {
				So(len(tbl.Rows), ShouldEqual, 2)
				So(tbl.Rows[0]["to"], ShouldEqual, "bob (2)")
				So(tbl.Rows[1]["from"], ShouldEqual, "alice (2)")
			})
		})
	})
}
