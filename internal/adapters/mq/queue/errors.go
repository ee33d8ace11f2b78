package queue

import "errors"

// ErrClosed is returned when pushing onto a closed queue.
var ErrClosed = errors.New("queue closed")
