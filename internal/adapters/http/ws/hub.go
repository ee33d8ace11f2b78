// Package ws pushes live session snapshots to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/types"
	"github.com/okian/kickhub/pkg/logger"
	"github.com/okian/kickhub/pkg/metrics"
)

const (
	writeWait      = 5 * time.Second
	sendBuffer     = 64
	broadcastQueue = 256
)

// Sessions is what the hub needs from the live session manager.
type Sessions interface {
	Session(id string) (service.SessionView, error)
	WatchSession(id string, fn func(*live.MatchState)) (func(), error)
	RenderTables(state *live.MatchState) []types.Table
}

// Message is one push to a client.
type Message struct {
	Type    string           `json:"type"`
	Session string           `json:"session"`
	Problem string           `json:"problem,omitempty"`
	State   *live.MatchState `json:"state"`
	Tables  []types.Table    `json:"tables"`
}

// Client is one websocket connection following one session.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session string
}

type watch struct {
	cancel  func()
	clients int
}

type broadcast struct {
	session string
	data    []byte
}

// Hub fans session snapshots out to connected clients. Each session is
// watched once, while at least one client follows it.
type Hub struct {
	deps     Sessions
	upgrader websocket.Upgrader
	logger   logger.Logger

	clients    map[*Client]struct{}
	watches    map[string]*watch
	broadcast  chan broadcast
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	once       sync.Once
}

// Option configures a Hub.
type Option func(*Hub)

// WithCheckOrigin sets the upgrade origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		if fn != nil {
			h.upgrader.CheckOrigin = fn
		}
	}
}

// NewHub creates a hub over deps. Call Run before serving connections.
func NewHub(deps Sessions, opts ...Option) *Hub {
	h := &Hub{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:     logger.Get().Named("ws"),
		clients:    make(map[*Client]struct{}),
		watches:    make(map[string]*watch),
		broadcast:  make(chan broadcast, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.add(ctx, c)
		case c := <-h.unregister:
			h.remove(c)
		case b := <-h.broadcast:
			for c := range h.clients {
				if c.session != b.session {
					continue
				}
				select {
				case c.send <- b.data:
				default:
					// Slow client.
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) add(ctx context.Context, c *Client) {
	w, ok := h.watches[c.session]
	if !ok {
		session := c.session
		cancel, err := h.deps.WatchSession(session, func(s *live.MatchState) { h.publish(session, s) })
		if err != nil {
			h.logger.Warn(ctx, "session vanished before watch", logger.String("session", session), logger.Error(err))
			close(c.send)
			return
		}
		w = &watch{cancel: cancel}
		h.watches[session] = w
	}
	w.clients++
	h.clients[c] = struct{}{}
	h.logger.Debug(ctx, "client registered", logger.String("session", c.session), logger.Int("clients", len(h.clients)))
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if w := h.watches[c.session]; w != nil {
		w.clients--
		if w.clients == 0 {
			w.cancel()
			delete(h.watches, c.session)
		}
	}
}

func (h *Hub) shutdown() {
	h.once.Do(func() {
		for c := range h.clients {
			close(c.send)
		}
		for _, w := range h.watches {
			w.cancel()
		}
		h.clients = make(map[*Client]struct{})
		h.watches = make(map[string]*watch)
		close(h.done)
	})
}

// publish runs on the session's worker goroutine and must not block it.
func (h *Hub) publish(session string, s *live.MatchState) {
	data, err := h.encode(session, "snapshot", "", s)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- broadcast{session: session, data: data}:
	case <-h.done:
	default:
		metrics.RecordErrorByComponent("ws", "broadcast_dropped")
	}
}

func (h *Hub) encode(session, kind, problem string, s *live.MatchState) ([]byte, error) {
	data, err := json.Marshal(Message{
		Type:    kind,
		Session: session,
		Problem: problem,
		State:   s,
		Tables:  h.deps.RenderTables(s),
	})
	if err != nil {
		h.logger.Error(context.Background(), "failed to marshal message", logger.Error(err))
		metrics.RecordErrorByComponent("ws", "marshal")
	}
	return data, err
}

// ServeHTTP upgrades GET /live/sessions/{id}/ws and follows that session.
// The first message carries the current snapshot.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, err := h.deps.Session(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), session: id}
	if first, err := h.encode(id, "snapshot", view.Problem, view.State); err == nil {
		c.send <- first
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump discards client input and unregisters on close.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Register mounts the hub on mux.
func Register(_ context.Context, mux *http.ServeMux, h *Hub) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /live/sessions/{id}/ws", h)
}
