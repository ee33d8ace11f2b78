package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
	"github.com/okian/kickhub/pkg/metrics"
)

// MQTT quality of service levels.
const (
	QoSAtMostOnce  byte = 0
	QoSAtLeastOnce byte = 1
)

const (
	defaultTopicPrefix = "live"
	defaultWaitTimeout = 10 * time.Second
	disconnectQuiesce  = 250
)

// Client is the part of mqtt.Client the log uses.
type Client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTConfig configures DialMQTT.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// MQTTLog carries records over an MQTT broker, one topic per child:
// <prefix>/<stream>/<streamID>. Payloads are JSON records published at QoS 1,
// so redeliveries are possible and consumers dedupe by key.
type MQTTLog struct {
	client  Client
	prefix  string
	timeout time.Duration
	logger  logger.Logger

	mu     sync.Mutex
	closed bool
}

// MQTTOption configures an MQTTLog.
type MQTTOption func(*MQTTLog)

// WithTopicPrefix sets the topic root.
func WithTopicPrefix(prefix string) MQTTOption {
	return func(l *MQTTLog) {
		if prefix = strings.Trim(prefix, "/"); prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithWaitTimeout bounds how long broker acknowledgements are awaited.
func WithWaitTimeout(d time.Duration) MQTTOption {
	return func(l *MQTTLog) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithMQTTLogger sets the logger.
func WithMQTTLogger(lg logger.Logger) MQTTOption {
	return func(l *MQTTLog) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// DialMQTT connects to the broker and returns a log over it.
func DialMQTT(ctx context.Context, cfg MQTTConfig, opts ...MQTTOption) (*MQTTLog, error) {
	lg := logger.Get().Named("mqtt")

	o := mqtt.NewClientOptions()
	o.AddBroker(cfg.Broker)
	o.SetClientID(cfg.ClientID)
	o.SetUsername(cfg.Username)
	o.SetPassword(cfg.Password)
	o.SetAutoReconnect(true)
	o.SetMaxReconnectInterval(10 * time.Second)
	o.SetKeepAlive(60 * time.Second)
	o.SetPingTimeout(10 * time.Second)
	o.SetCleanSession(false)
	o.SetOrderMatters(true)
	o.SetOnConnectHandler(func(mqtt.Client) {
		lg.Info(ctx, "connected to broker", logger.String("broker", cfg.Broker))
	})
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		metrics.RecordErrorByComponent("mqtt", "connection_lost")
		lg.Warn(ctx, "connection lost", logger.Error(err))
	})

	client := mqtt.NewClient(o)
	token := client.Connect()
	if !token.WaitTimeout(defaultWaitTimeout) {
		return nil, fmt.Errorf("connect %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}

	return NewMQTTLog(client, append([]MQTTOption{WithMQTTLogger(lg)}, opts...)...), nil
}

// NewMQTTLog wraps a connected client.
func NewMQTTLog(client Client, opts ...MQTTOption) *MQTTLog {
	l := &MQTTLog{
		client:  client,
		prefix:  defaultTopicPrefix,
		timeout: defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("mqtt")
	}
	return l
}

// Topic returns the topic of stream/streamID.
func (l *MQTTLog) Topic(stream, streamID string) string {
	return l.prefix + "/" + stream + "/" + streamID
}

func (l *MQTTLog) wait(t mqtt.Token, op string) error {
	if !t.WaitTimeout(l.timeout) {
		return fmt.Errorf("%s: timed out after %s", op, l.timeout)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (l *MQTTLog) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Subscribe attaches l to the child's topic. The broker replays only what a
// persistent session retained, so late subscribers may miss early records.
func (l *MQTTLog) Subscribe(ctx context.Context, stream, streamID string, listener Listener) (Subscription, error) {
	if l.isClosed() {
		return nil, ErrClosed
	}
	if err := validName("stream", stream); err != nil {
		return nil, err
	}
	if err := validName("stream id", streamID); err != nil {
		return nil, err
	}

	topic := l.Topic(stream, streamID)
	sub := &mqttSubscription{log: l, topic: topic}
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if sub.detached() {
			return
		}
		var r model.Record
		if err := json.Unmarshal(msg.Payload(), &r); err != nil || r.Key == "" {
			metrics.RecordErrorByComponent("mqtt", "decode")
			l.logger.Warn(ctx, "dropping undecodable record", logger.String("topic", msg.Topic()), logger.Error(err))
			return
		}
		metrics.RecordEventReceived("mqtt")
		listener(r)
	}
	if err := l.wait(l.client.Subscribe(topic, QoSAtLeastOnce, handler), "subscribe "+topic); err != nil {
		metrics.RecordErrorByComponent("mqtt", "subscribe")
		return nil, err
	}
	l.logger.Info(ctx, "subscribed", logger.String("topic", topic))
	return sub, nil
}

// Latest is not available over MQTT: topics cannot be enumerated.
func (l *MQTTLog) Latest(_ context.Context, stream string) (string, error) {
	return "", fmt.Errorf("%w: mqtt stream %s", ErrLatestUnsupported, stream)
}

// Append publishes e under a new key.
func (l *MQTTLog) Append(_ context.Context, stream, streamID string, e model.Event) (string, error) { //nolint:gocritic // events are values on the wire
	if l.isClosed() {
		return "", ErrClosed
	}
	if err := validName("stream", stream); err != nil {
		return "", err
	}
	if err := validName("stream id", streamID); err != nil {
		return "", err
	}

	r := model.Record{Key: NewKey(), Event: e}
	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	topic := l.Topic(stream, streamID)
	if err := l.wait(l.client.Publish(topic, QoSAtLeastOnce, false, payload), "publish "+topic); err != nil {
		metrics.RecordErrorByComponent("mqtt", "publish")
		return "", err
	}
	return r.Key, nil
}

// Close disconnects from the broker.
func (l *MQTTLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.client.IsConnected() {
		l.client.Disconnect(disconnectQuiesce)
	}
	return nil
}

type mqttSubscription struct {
	log   *MQTTLog
	topic string

	mu   sync.Mutex
	done bool
}

func (s *mqttSubscription) detached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *mqttSubscription) Detach() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.mu.Unlock()

	if s.log.isClosed() {
		return
	}
	if err := s.log.wait(s.log.client.Unsubscribe(s.topic), "unsubscribe "+s.topic); err != nil {
		s.log.logger.Warn(context.Background(), "unsubscribe failed", logger.Error(err))
	}
}
