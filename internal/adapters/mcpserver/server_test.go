package mcpserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/okian/kickhub/internal/adapters/mcpserver"
	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/adapters/stadium"
	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func text(res *mcp.CallToolResult) string {
	So(len(res.Content), ShouldEqual, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	So(ok, ShouldBeTrue)
	return tc.Text
}

func TestTools(t *testing.T) {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
	ctx := context.Background()

	Convey("Given tools over a service with an archive", t, func() {
		store := repository.NewMemoryStore()
		So(store.SaveKicks(ctx, []model.Record{
			{Key: "-k1", Event: model.Event{Type: model.KindPass, FromTeam: model.TeamRed, FromName: "alice", ToTeam: model.TeamRed, ToName: "bob", MatchID: "m1", Stadium: "Classic"}},
			{Key: "-k2", Event: model.Event{Type: model.KindGoal, FromTeam: model.TeamRed, FromName: "bob", MatchID: "m1", Stadium: "Classic"}},
		}), ShouldBeNil)
		So(store.SaveMessage(ctx, "room", "c1", fmt.Sprintf(repository.MatchIDMessage, "m1")), ShouldBeNil)

		svc := service.New(service.WithStore(store), service.WithStadiums(stadium.NewProvider(model.Stadium{Name: "Classic"})))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop(ctx) })
		tools := mcpserver.NewTools(svc)

		Convey("Then the server registers without panicking", func() {
			So(mcpserver.NewServer(svc, "test"), ShouldNotBeNil)
		})

		Convey("When players are compared", func() {
			res, _, err := tools.ComparePlayers(ctx, nil, mcpserver.CompareArgs{
				Players:    []string{"alice", "bob"},
				Stadium:    "Classic",
				Comparison: "All-Time",
			})

			Convey("Then both summaries are returned", func() {
				So(err, ShouldBeNil)
				So(res.IsError, ShouldBeFalse)
				var view service.View
				So(json.Unmarshal([]byte(text(res)), &view), ShouldBeNil)
				So(len(view.Players), ShouldEqual, 2)
				So(view.Players[1].Summary.Goals, ShouldEqual, 1)
				So(view.Kicks, ShouldBeEmpty)
			})
		})

		Convey("When a mode label is unknown", func() {
			res, _, err := tools.ComparePlayers(ctx, nil, mcpserver.CompareArgs{
				Players: []string{"alice"},
				Stadium: "Classic",
				Game:    "Sometimes",
			})

			Convey("Then a tool error is returned", func() {
				So(err, ShouldBeNil)
				So(res.IsError, ShouldBeTrue)
				So(text(res), ShouldContainSubstring, "Sometimes")
			})
		})

		Convey("When no players are given", func() {
			res, _, _ := tools.ComparePlayers(ctx, nil, mcpserver.CompareArgs{Stadium: "Classic"})

			Convey("Then a tool error is returned", func() {
				So(res.IsError, ShouldBeTrue)
			})
		})

		Convey("When a match is looked up", func() {
			found, _, _ := tools.FindStream(ctx, nil, mcpserver.FindStreamArgs{Stream: "room", MatchID: "m1"})
			missing, _, _ := tools.FindStream(ctx, nil, mcpserver.FindStreamArgs{Stream: "room", MatchID: "m2"})

			Convey("Then known matches resolve and unknown ones are tool errors", func() {
				So(found.IsError, ShouldBeFalse)
				So(text(found), ShouldContainSubstring, `"streamId": "c1"`)
				So(missing.IsError, ShouldBeTrue)
			})
		})

		Convey("When a live session is inspected", func() {
			view, err := svc.StartSession(ctx, service.SessionRequest{Stream: "room", StreamID: "c1"})
			So(err, ShouldBeNil)
			res, _, _ := tools.LiveSessionTables(ctx, nil, mcpserver.SessionArgs{SessionID: view.ID})
			list, _, _ := tools.LiveSessions(ctx, nil, mcpserver.ChoicesArgs{})
			unknown, _, _ := tools.LiveSessionTables(ctx, nil, mcpserver.SessionArgs{SessionID: "nope"})

			Convey("Then its tables and summary are returned", func() {
				So(res.IsError, ShouldBeFalse)
				So(text(res), ShouldContainSubstring, "Red Offense")
				So(text(list), ShouldContainSubstring, view.ID)
				So(unknown.IsError, ShouldBeTrue)
			})
		})

		Convey("When the choices are listed", func() {
			res, _, _ := tools.Choices(ctx, nil, mcpserver.ChoicesArgs{})

			Convey("Then players from the archive are included", func() {
				So(res.IsError, ShouldBeFalse)
				So(text(res), ShouldContainSubstring, "alice")
			})
		})
	})
}
