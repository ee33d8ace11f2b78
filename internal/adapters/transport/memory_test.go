package transport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/kickhub/internal/adapters/transport"
	"github.com/okian/kickhub/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type collector struct{ records []model.Record }

func (c *collector) listen(r model.Record) { c.records = append(c.records, r) }

func (c *collector) types() []model.Kind {
	out := make([]model.Kind, len(c.records))
	for i, r := range c.records {
		out[i] = r.Event.Type
	}
	return out
}

func TestMemoryLog(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory log with a recorded match", t, func() {
		log := transport.NewMemoryLog()
		id, err := log.Create(ctx, "room")
		So(err, ShouldBeNil)
		_, err = log.Append(ctx, "room", id, model.Event{Type: model.KindStart})
		So(err, ShouldBeNil)
		_, err = log.Append(ctx, "room", id, model.Event{Type: model.KindPass})
		So(err, ShouldBeNil)

		Convey("When a listener subscribes", func() {
			var c collector
			sub, err := log.Subscribe(ctx, "room", id, c.listen)
			So(err, ShouldBeNil)

			Convey("Then existing records are replayed in key order", func() {
				So(c.types(), ShouldResemble, []model.Kind{model.KindStart, model.KindPass})
				So(c.records[0].Key < c.records[1].Key, ShouldBeTrue)
			})

			Convey("And new appends are delivered", func() {
				_, err := log.Append(ctx, "room", id, model.Event{Type: model.KindGoal})
				So(err, ShouldBeNil)
				So(c.types(), ShouldResemble, []model.Kind{model.KindStart, model.KindPass, model.KindGoal})
			})

			Convey("And after detaching nothing more arrives", func() {
				sub.Detach()
				sub.Detach()
				_, _ = log.Append(ctx, "room", id, model.Event{Type: model.KindGoal})
				So(len(c.records), ShouldEqual, 2)
				So(len(log.Records("room", id)), ShouldEqual, 3)
			})
		})

		Convey("When a newer match is created", func() {
			newer, err := log.Create(ctx, "room")
			So(err, ShouldBeNil)

			Convey("Then it is the latest child", func() {
				latest, err := log.Latest(ctx, "room")
				So(err, ShouldBeNil)
				So(latest, ShouldEqual, newer)
			})
		})

		Convey("When an unknown stream is asked for its latest child", func() {
			_, err := log.Latest(ctx, "empty")

			Convey("Then ErrNoStreams is returned", func() {
				So(errors.Is(err, transport.ErrNoStreams), ShouldBeTrue)
			})
		})

		Convey("When names would break a topic path", func() {
			_, err := log.Append(ctx, "room/x", id, model.Event{})
			_, err2 := log.Subscribe(ctx, "room", "", func(model.Record) {})

			Convey("Then they are rejected", func() {
				So(errors.Is(err, transport.ErrInvalidName), ShouldBeTrue)
				So(errors.Is(err2, transport.ErrInvalidName), ShouldBeTrue)
			})
		})

		Convey("When the log is closed", func() {
			So(log.Close(), ShouldBeNil)
			_, err := log.Append(ctx, "room", id, model.Event{})

			Convey("Then it rejects further use", func() {
				So(errors.Is(err, transport.ErrClosed), ShouldBeTrue)
			})
		})
	})

	Convey("Given keys generated in sequence", t, func() {
		a, b := transport.NewKey(), transport.NewKey()

		Convey("Then they sort in creation order", func() {
			So(a < b, ShouldBeTrue)
		})
	})
}
