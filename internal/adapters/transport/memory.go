package transport

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/metrics"
)

// MemoryLog keeps every stream in process. Listeners are invoked while the
// child is locked and must not call back into the log.
type MemoryLog struct {
	mu      sync.Mutex
	streams map[string]map[string]*child
	closed  bool
}

type child struct {
	mu        sync.Mutex
	created   string
	records   []model.Record
	listeners map[int]Listener
	nextID    int
}

// NewMemoryLog creates an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{streams: make(map[string]map[string]*child)}
}

func (m *MemoryLog) child(stream, streamID string) (*child, error) {
	if err := validName("stream", stream); err != nil {
		return nil, err
	}
	if err := validName("stream id", streamID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	children, ok := m.streams[stream]
	if !ok {
		children = make(map[string]*child)
		m.streams[stream] = children
	}
	c, ok := children[streamID]
	if !ok {
		c = &child{created: NewKey(), listeners: make(map[int]Listener)}
		children[streamID] = c
	}
	return c, nil
}

// Create starts a new child of stream under a fresh time-ordered id.
func (m *MemoryLog) Create(_ context.Context, stream string) (string, error) {
	id := NewKey()
	if _, err := m.child(stream, id); err != nil {
		return "", err
	}
	return id, nil
}

// Subscribe replays the child's records to l, then delivers new appends.
func (m *MemoryLog) Subscribe(_ context.Context, stream, streamID string, l Listener) (Subscription, error) {
	c, err := m.child(stream, streamID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		metrics.RecordEventReceived("memory")
		l(r)
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return &memorySubscription{c: c, id: id}, nil
}

// Latest returns the child created last.
func (m *MemoryLog) Latest(_ context.Context, stream string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	children := m.streams[stream]
	if len(children) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoStreams, stream)
	}
	ids := make([]string, 0, len(children))
	for id := range children {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return children[ids[i]].created < children[ids[j]].created })
	return ids[len(ids)-1], nil
}

// Append stores e under a new key and fans it out to listeners.
func (m *MemoryLog) Append(_ context.Context, stream, streamID string, e model.Event) (string, error) { //nolint:gocritic // events are values on the wire
	c, err := m.child(stream, streamID)
	if err != nil {
		return "", err
	}

	r := model.Record{Key: NewKey(), Event: e}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	for _, l := range c.listeners {
		metrics.RecordEventReceived("memory")
		l(r)
	}
	return r.Key, nil
}

// Records returns a copy of a child's records.
func (m *MemoryLog) Records(stream, streamID string) []model.Record {
	m.mu.Lock()
	c, ok := m.streams[stream][streamID]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Close rejects further use. Existing subscriptions stop receiving.
func (m *MemoryLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for _, children := range m.streams {
		for _, c := range children {
			c.mu.Lock()
			c.listeners = make(map[int]Listener)
			c.mu.Unlock()
		}
	}
	return nil
}

type memorySubscription struct {
	c    *child
	id   int
	once sync.Once
}

func (s *memorySubscription) Detach() {
	s.once.Do(func() {
		s.c.mu.Lock()
		delete(s.c.listeners, s.id)
		s.c.mu.Unlock()
	})
}
