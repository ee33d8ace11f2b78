// Package queue holds the live records a session has received but not yet
// folded into its match state.
//
// The queue is unbounded: a live match is finite and every record must be
// folded, so nothing is ever dropped for lack of room. Transport callbacks
// push, the session worker pops one record per tick.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/metrics"
)

// Record represents the payload type flowing through the queue.
type Record = model.Record

// Queue is a FIFO of live records.
type Queue interface {
	// Push appends r. It fails only once the queue is closed.
	Push(ctx context.Context, r Record) error

	// Pop removes the oldest record without blocking.
	Pop() (Record, bool)

	Len() int

	// Close rejects further pushes. Records already queued can still be popped.
	Close() error
}

// FIFO implements Queue over a growable ring buffer.
type FIFO struct {
	name string

	mu     sync.Mutex
	buf    []Record
	head   int
	size   int
	closed bool
}

const minCapacity = 64

// NewFIFO creates an empty queue. name labels its size metric.
func NewFIFO(name string) *FIFO {
	q := &FIFO{name: name, buf: make([]Record, minCapacity)}
	metrics.UpdateQueueSize(name, 0)
	return q
}

// Push appends r to the tail.
func (q *FIFO) Push(_ context.Context, r Record) error { //nolint:gocritic // records are values on the wire
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return fmt.Errorf("push %s: %w", r.Key, ErrClosed)
	}
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = r
	q.size++
	metrics.UpdateQueueSize(q.name, q.size)
	return nil
}

// Pop removes the head record.
func (q *FIFO) Pop() (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return Record{}, false
	}
	r := q.buf[q.head]
	q.buf[q.head] = Record{}
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	metrics.UpdateQueueSize(q.name, q.size)
	return r, true
}

// Len returns the number of queued records.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Close marks the queue closed and drops its size series.
func (q *FIFO) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	metrics.DeleteQueueSize(q.name)
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *FIFO) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// grow doubles the buffer, unrolling the ring so head lands at zero.
func (q *FIFO) grow() {
	next := make([]Record, len(q.buf)*2)
	n := copy(next, q.buf[q.head:])
	copy(next[n:], q.buf[:q.head])
	q.buf = next
	q.head = 0
}
