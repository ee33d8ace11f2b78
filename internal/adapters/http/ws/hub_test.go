package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/kickhub/internal/adapters/http/ws"
	"github.com/okian/kickhub/internal/adapters/transport"
	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func readMessage(conn *websocket.Conn) (ws.Message, error) {
	var m ws.Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}

func TestHub(t *testing.T) {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
	ctx := context.Background()

	Convey("Given a hub over a running session", t, func() {
		log := transport.NewMemoryLog()
		svc := service.New(service.WithLog(log), service.WithTickInterval(time.Millisecond))
		So(svc.Start(ctx), ShouldBeNil)

		hubCtx, cancel := context.WithCancel(ctx)
		hub := ws.NewHub(svc)
		go hub.Run(hubCtx)

		mux := http.NewServeMux()
		ws.Register(ctx, mux, hub)
		srv := httptest.NewServer(mux)
		Reset(func() {
			srv.Close()
			cancel()
			svc.Stop(ctx)
		})

		view, err := svc.StartSession(ctx, service.SessionRequest{Stream: "room", StreamID: "c1"})
		So(err, ShouldBeNil)
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live/sessions/" + view.ID + "/ws"

		Convey("When a client connects", func() {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			first, err := readMessage(conn)

			Convey("Then it receives the current snapshot first", func() {
				So(err, ShouldBeNil)
				So(first.Type, ShouldEqual, "snapshot")
				So(first.Session, ShouldEqual, view.ID)
				So(first.State.EventCount, ShouldEqual, 0)
				So(first.Problem, ShouldEqual, service.ProblemNoStadium)
				So(len(first.Tables), ShouldEqual, 6)
			})

			Convey("Then every folded event is pushed", func() {
				So(err, ShouldBeNil)
				_, err = log.Append(ctx, "room", "c1", model.Event{Type: model.KindStart, Stadium: "Classic"})
				So(err, ShouldBeNil)
				_, err = log.Append(ctx, "room", "c1", model.Event{Type: model.KindGoal, FromTeam: model.TeamBlue, FromName: "b", ScoreBlue: model.Int(1)})
				So(err, ShouldBeNil)

				var last ws.Message
				for last.State == nil || last.State.EventCount < 2 {
					last, err = readMessage(conn)
					if err != nil {
						break
					}
				}
				So(err, ShouldBeNil)
				So(last.State.EventCount, ShouldEqual, 2)
				So(last.State.Score.Blue, ShouldEqual, 1)
			})
		})

		Convey("When a client asks for an unknown session", func() {
			bad := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live/sessions/nope/ws"
			_, resp, err := websocket.DefaultDialer.Dial(bad, nil)

			Convey("Then the upgrade is refused", func() {
				So(err, ShouldNotBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
