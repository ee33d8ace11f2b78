// Package transport delivers live match records from the append-only log
// that scorekeepers write to.
//
// A log is organised as streams (a room name) with children (one per match,
// the stream id), each holding key-ordered records. Delivery is at least once:
// consumers dedupe by record key.
package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/kickhub/internal/domain/model"
)

// Listener receives records in key order.
type Listener func(model.Record)

// Subscription is an attached listener.
type Subscription interface {
	// Detach stops delivery. It is safe to call more than once.
	Detach()
}

// Log is the live append log.
type Log interface {
	// Subscribe attaches l to stream/streamID. Records already in the child
	// are delivered before new ones when the log can replay them.
	Subscribe(ctx context.Context, stream, streamID string, l Listener) (Subscription, error)

	// Latest returns the most recently created child of stream.
	Latest(ctx context.Context, stream string) (string, error)

	// Append writes e to stream/streamID and returns its key.
	Append(ctx context.Context, stream, streamID string, e model.Event) (string, error)

	Close() error
}

// NewKey returns a time-ordered key. Keys created later sort after earlier ones.
func NewKey() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// validName rejects names that would break a topic path.
func validName(kind, name string) error {
	if name == "" || strings.ContainsAny(name, "/#+") {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, name)
	}
	return nil
}
