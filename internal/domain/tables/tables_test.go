package tables_test

import (
	"testing"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/internal/domain/tables"
	"github.com/okian/kickhub/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func column(tbl types.Table, key string) []any {
	out := make([]any, len(tbl.Rows))
	for i, r := range tbl.Rows {
		out[i] = r[key]
	}
	return out
}

func TestOffense(t *testing.T) {
	Convey("Given players with goals and shots", t, func() {
		roster := map[string]*live.PlayerStats{
			"c": {Name: "c", GoalsScored: 1, ShotsTaken: 9},
			"a": {Name: "a", GoalsScored: 3, ShotsTaken: 5},
			"b": {Name: "b", GoalsScored: 3, ShotsTaken: 2},
		}

		Convey("When the offense table is built", func() {
			tbl := tables.Offense(roster)

			Convey("Then rows sort by goals then shots", func() {
				So(column(tbl, "goalsScored"), ShouldResemble, []any{3, 3, 1})
				So(column(tbl, "shotsTaken"), ShouldResemble, []any{5, 2, 9})
				So(column(tbl, "rank"), ShouldResemble, []any{1, 2, 3})
			})
		})

		Convey("When passing breaks the remaining ties", func() {
			roster := map[string]*live.PlayerStats{
				"x": {Name: "x", PassesCompleted: 2, PassesAttempted: 4},
				"y": {Name: "y", PassesCompleted: 2, PassesAttempted: 6},
				"z": {Name: "z", PassesCompleted: 5, PassesAttempted: 5},
				"w": {Name: "w", PassesCompleted: 2, PassesAttempted: 6},
			}
			tbl := tables.Offense(roster)

			Convey("Then completed beats attempted, and equal rows share a rank", func() {
				So(column(tbl, "name"), ShouldResemble, []any{"z", "w", "y", "x"})
				So(column(tbl, "rank"), ShouldResemble, []any{1, 2, 2, 3})
				So(tbl.Rows[0]["passes"], ShouldEqual, "5 / 5")
			})
		})

		Convey("When names are long", func() {
			roster := map[string]*live.PlayerStats{
				"abcdefghijklmnopqrstuvwxyz": {Name: "abcdefghijklmnopqrstuvwxyz"},
			}
			tbl := tables.Offense(roster, tables.WithMaxNameChars(10))

			Convey("Then the name column is truncated", func() {
				So(tbl.Rows[0]["name"], ShouldEqual, "abcdefg...")
			})
		})
	})
}

func TestDefense(t *testing.T) {
	Convey("Given defenders with equal shots faced", t, func() {
		roster := map[string]*live.PlayerStats{
			"gk":  {Name: "gk", ShotsFaced: 4, SavesMade: 3, StealsTaken: 5, OwnGoals: 2, ErrorsAllowed: 1},
			"def": {Name: "def", ShotsFaced: 4, SavesMade: 2, StealsTaken: 1},
			"fw":  {Name: "fw", ShotsFaced: 1},
		}

		Convey("When the defense table is built", func() {
			tbl := tables.Defense(roster)

			Convey("Then more steals taken wins the tie ahead of name order", func() {
				So(column(tbl, "name"), ShouldResemble, []any{"gk", "def", "fw"})
				So(column(tbl, "rank"), ShouldResemble, []any{1, 2, 3})
			})

			Convey("Then own goals net out corrected errors", func() {
				So(tbl.Rows[0]["ownGoals"], ShouldEqual, 1)
				So(tbl.Rows[0]["saves"], ShouldEqual, "3 / 4")
			})
		})
	})
}

func TestPossession(t *testing.T) {
	Convey("Given possession times for both teams", t, func() {
		players := map[model.Team]map[string]*live.PlayerStats{
			model.TeamRed: {
				"a": {Name: "a", TimePossessed: 30},
				"b": {Name: "b", TimePossessed: 10},
			},
			model.TeamBlue: {
				"x": {Name: "x", TimePossessed: 60},
			},
		}

		Convey("When the red table is built", func() {
			tbl := tables.Possession(players, model.TeamRed)

			Convey("Then the team total leads and players follow by time", func() {
				So(column(tbl, "name"), ShouldResemble, []any{"Red Team", "a", "b"})
				So(tbl.Rows[0]["timeClock"], ShouldEqual, "0:40")
				So(tbl.Rows[0]["perTeam"], ShouldEqual, "100%")
				So(tbl.Rows[0]["perMatch"], ShouldEqual, "40%")
				So(tbl.Rows[1]["perTeam"], ShouldEqual, "75%")
				So(tbl.Rows[1]["perMatch"], ShouldEqual, "30%")
			})

			Convey("Then only players are ranked", func() {
				_, ok := tbl.Rows[0]["rank"]
				So(ok, ShouldBeFalse)
				So(tbl.Rows[1]["rank"], ShouldEqual, 1)
				So(tbl.Rows[2]["rank"], ShouldEqual, 2)
			})
		})

		Convey("When a team has no players", func() {
			tbl := tables.Possession(map[model.Team]map[string]*live.PlayerStats{}, model.TeamBlue)

			Convey("Then only a zero total row remains", func() {
				So(len(tbl.Rows), ShouldEqual, 1)
				So(tbl.Rows[0]["perTeam"], ShouldEqual, "0%")
			})
		})
	})
}

func TestLive(t *testing.T) {
	Convey("Given a folded match", t, func() {
		r := live.NewReducer()
		s := r.Step(nil, model.Event{Type: model.KindGoal, FromTeam: model.TeamRed, FromName: "a", Time: model.Float(4)})

		Convey("Live builds six titled tables", func() {
			out := tables.Live(s)
			So(len(out), ShouldEqual, 6)
			So(out[0].Title, ShouldEqual, "Red Offense")
			So(out[1].Title, ShouldEqual, "Blue Offense")
			So(out[5].Title, ShouldEqual, "Blue Time of Possession")
			So(out[0].Rows[0]["goalsScored"], ShouldEqual, 1)
		})

		Convey("A nil state yields empty tables", func() {
			So(len(tables.Live(nil)), ShouldEqual, 6)
		})
	})
}
