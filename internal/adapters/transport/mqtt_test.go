package transport_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/okian/kickhub/internal/adapters/transport"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	topic   string
	payload []byte
}

func (m message) Duplicate() bool   { return false }
func (m message) Qos() byte         { return 1 }
func (m message) Retained() bool    { return false }
func (m message) Topic() string     { return m.topic }
func (m message) MessageID() uint16 { return 1 }
func (m message) Payload() []byte   { return m.payload }
func (m message) Ack()              {}

// loopback routes publishes straight to subscribers, like a local broker.
type loopback struct {
	mu           sync.Mutex
	handlers     map[string]mqtt.MessageHandler
	published    []string
	publishErr   error
	disconnected bool
}

func newLoopback() *loopback { return &loopback{handlers: map[string]mqtt.MessageHandler{}} }

func (b *loopback) IsConnected() bool { return !b.disconnected }
func (b *loopback) Disconnect(uint)   { b.disconnected = true }

func (b *loopback) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	if b.publishErr != nil {
		b.mu.Unlock()
		return doneToken{err: b.publishErr}
	}
	b.published = append(b.published, topic)
	h := b.handlers[topic]
	b.mu.Unlock()
	if h != nil {
		h(nil, message{topic: topic, payload: payload.([]byte)})
	}
	return doneToken{}
}

func (b *loopback) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = cb
	return doneToken{}
}

func (b *loopback) Unsubscribe(topics ...string) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		delete(b.handlers, t)
	}
	return doneToken{}
}

// deliver injects a raw payload as a broker redelivery would.
func (b *loopback) deliver(topic string, payload []byte) {
	b.mu.Lock()
	h := b.handlers[topic]
	b.mu.Unlock()
	if h != nil {
		h(nil, message{topic: topic, payload: payload})
	}
}

func TestMQTTLog(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given an MQTT log over a loopback broker", t, func() {
		broker := newLoopback()
		log := transport.NewMQTTLog(broker, transport.WithTopicPrefix("/hax/"), transport.WithWaitTimeout(time.Second))

		Convey("Then topics are built under the prefix", func() {
			So(log.Topic("room", "m1"), ShouldEqual, "hax/room/m1")
		})

		Convey("When a listener subscribes and records are appended", func() {
			var c collector
			sub, err := log.Subscribe(ctx, "room", "m1", c.listen)
			So(err, ShouldBeNil)

			key, err := log.Append(ctx, "room", "m1", model.Event{Type: model.KindGoal, FromName: "a", ScoreRed: model.Int(1)})
			So(err, ShouldBeNil)

			Convey("Then the record arrives with its key and event", func() {
				So(len(c.records), ShouldEqual, 1)
				So(c.records[0].Key, ShouldEqual, key)
				So(c.records[0].Event.FromName, ShouldEqual, "a")
				So(model.IntValue(c.records[0].Event.ScoreRed), ShouldEqual, 1)
			})

			Convey("And undecodable payloads are dropped", func() {
				broker.deliver("hax/room/m1", []byte("{not json"))
				broker.deliver("hax/room/m1", []byte(`{"event":{"type":"pass"}}`))
				So(len(c.records), ShouldEqual, 1)
			})

			Convey("And after detaching the topic is unsubscribed", func() {
				sub.Detach()
				sub.Detach()
				_, _ = log.Append(ctx, "room", "m1", model.Event{Type: model.KindPass})
				So(len(c.records), ShouldEqual, 1)
			})
		})

		Convey("When the broker rejects a publish", func() {
			broker.publishErr = errors.New("not authorized")
			_, err := log.Append(ctx, "room", "m1", model.Event{})

			Convey("Then the error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "not authorized")
			})
		})

		Convey("When the latest child is requested", func() {
			_, err := log.Latest(ctx, "room")

			Convey("Then it is unsupported", func() {
				So(errors.Is(err, transport.ErrLatestUnsupported), ShouldBeTrue)
			})
		})

		Convey("When the log is closed", func() {
			So(log.Close(), ShouldBeNil)
			So(log.Close(), ShouldBeNil)
			_, err := log.Append(ctx, "room", "m1", model.Event{})

			Convey("Then the client is disconnected and use is rejected", func() {
				So(broker.disconnected, ShouldBeTrue)
				So(errors.Is(err, transport.ErrClosed), ShouldBeTrue)
			})
		})
	})
}
