package testevents

import (
	"bytes"
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/kickhub/internal/adapters/http/api"
	"github.com/okian/kickhub/internal/adapters/stadium"
	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		opts := DefaultMatchOptions("Classic", 120)

		Convey("Then the same seed replays the same match", func() {
			a := NewGenerator(7).Match("m1", opts)
			b := NewGenerator(7).Match("m1", opts)
			So(a, ShouldResemble, b)
		})

		Convey("Then a match is framed by start, victory and its announcement", func() {
			events := NewGenerator(3).Match("m1", opts)
			So(len(events), ShouldBeGreaterThan, 3)
			So(events[0].Type, ShouldEqual, model.KindStart)
			So(events[0].Stadium, ShouldEqual, "Classic")
			So(events[len(events)-2].Type, ShouldEqual, model.KindVictory)
			So(events[len(events)-1].Message, ShouldEqual, "Match ID: m1")
		})

		Convey("Then the final score adds up and respects the limit", func() {
			events := NewGenerator(11).Match("m1", opts)
			goals := map[model.Team]int{}
			for _, e := range events {
				switch e.Type {
				case model.KindGoal:
					goals[e.FromTeam]++
				case model.KindOwnGoal:
					goals[e.FromTeam.Opponent()]++
				}
			}
			victory := events[len(events)-2]
			So(*victory.ScoreRed, ShouldEqual, goals[model.TeamRed])
			So(*victory.ScoreBlue, ShouldEqual, goals[model.TeamBlue])
			So(max(goals[model.TeamRed], goals[model.TeamBlue]), ShouldBeLessThanOrEqualTo, opts.ScoreLimit)
		})

		Convey("Then passes stay within a team and never target the passer", func() {
			for _, e := range NewGenerator(5).Match("m1", opts) {
				if e.Type == model.KindPass {
					So(e.ToTeam, ShouldEqual, e.FromTeam)
					So(e.ToName, ShouldNotEqual, e.FromName)
				}
			}
		})
	})
}

func TestExpectAndCompare(t *testing.T) {
	Convey("Given a generated match", t, func() {
		events := NewGenerator(9).Match("m1", DefaultMatchOptions("Classic", 80))
		want := Expect(events, true)

		Convey("Then the local fold sees every event and the final whistle", func() {
			So(want.EventCount, ShouldEqual, len(events))
			So(want.IsFinal, ShouldBeTrue)
			So(want.StadiumName, ShouldEqual, "Classic")
		})

		Convey("Then a state matches itself", func() {
			So(Compare(want, want.Clone()), ShouldBeEmpty)
		})

		Convey("Then score and counter drift is reported", func() {
			got := want.Clone()
			got.Score.Red += 5
			for _, p := range got.Roster(model.TeamBlue) {
				p.SavesMade++
				break
			}
			diffs := Compare(want, got)
			So(len(diffs), ShouldEqual, 2)
			So(diffs[0], ShouldStartWith, "score:")
		})

		Convey("Then a missing state is a single difference", func() {
			So(Compare(want, nil), ShouldResemble, []string{"no state"})
		})
	})
}

func TestTopScorers(t *testing.T) {
	Convey("Given two folded matches", t, func() {
		r := live.NewReducer()
		goal := func(team model.Team, name string) model.Event {
			return model.Event{Type: model.KindGoal, FromTeam: team, FromName: name}
		}
		first := r.Step(r.Step(nil, goal(model.TeamRed, "Bruno")), goal(model.TeamBlue, "Dana"))
		second := r.Step(r.Step(nil, goal(model.TeamRed, "Bruno")), goal(model.TeamRed, "Alice"))

		Convey("Then goals are summed across matches", func() {
			top := TopScorers([]*live.MatchState{first, second}, 10)
			So(top[0], ShouldResemble, Scorer{Name: "Bruno", Team: model.TeamRed, Goals: 2})
			So(top[1].Name, ShouldEqual, "Alice")
			So(top[2].Name, ShouldEqual, "Dana")
		})

		Convey("Then the list is cut to n", func() {
			So(TopScorers([]*live.MatchState{first, second}, 1), ShouldHaveLength, 1)
		})
	})
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	Convey("Given a running service", t, func() {
		svc := service.New(
			service.WithStadiums(stadium.NewProvider(model.Stadium{
				Name: "Classic",
				Goalposts: map[model.Team]model.Goalpost{
					model.TeamRed:  {Mid: model.Point{X: -370}},
					model.TeamBlue: {Mid: model.Point{X: 370}},
				},
			})),
			service.WithTickInterval(time.Millisecond),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		config := &Config{
			BaseURL:   srv.URL,
			Stream:    "replay",
			Stadium:   "Classic",
			Matches:   2,
			Kicks:     40,
			BatchSize: 7,
			Workers:   2,
			Seed:      1,
			Timeout:   5 * time.Second,
			Settle:    10 * time.Second,
			Verbose:   true,
		}

		Convey("Then every replayed match verifies", func() {
			config.OutputFile = filepath.Join(t.TempDir(), "out", "matches.json")
			var out bytes.Buffer
			So(run(ctx, config, &out), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Red Offense")
			So(svc.Sessions(), ShouldBeEmpty)
			_, err := os.Stat(config.OutputFile)
			So(err, ShouldBeNil)
		})

		Convey("Then an unreachable service fails the health check", func() {
			config.BaseURL = "http://127.0.0.1:1"
			config.Timeout = 500 * time.Millisecond
			err := run(ctx, config, &bytes.Buffer{})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestCLI(t *testing.T) {
	Convey("Given a log file path", t, func() {
		path := filepath.Join(t.TempDir(), "replay.log")
		logs, err := SetupLogging(path, false)
		So(err, ShouldBeNil)
		defer func() {
			_ = logger.InitWithWriter(os.Stdout)
			_ = logger.SetLevelString("error")
		}()

		Convey("Then log lines reach the file", func() {
			logger.Get().Info(context.Background(), "replay probe")
			So(logs.Close(), ShouldBeNil)
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "replay probe")
		})
	})

	Convey("Given a missing log directory", t, func() {
		_, err := SetupLogging(filepath.Join(t.TempDir(), "nope", "replay.log"), false)
		So(err, ShouldNotBeNil)
	})

	Convey("Help lists the flags of the set", t, func() {
		fs := flag.NewFlagSet("replay", flag.ContinueOnError)
		fs.Int("matches", 5, "Number of matches to generate")
		var out bytes.Buffer
		fs.SetOutput(&out)
		ShowHelp(fs)
		So(out.String(), ShouldContainSubstring, "KickHub Replay Tool")
		So(out.String(), ShouldContainSubstring, "-matches")
	})
}
