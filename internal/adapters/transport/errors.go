package transport

import "errors"

var (
	// ErrClosed is returned by a log that has been closed.
	ErrClosed = errors.New("transport closed")
	// ErrLatestUnsupported is returned by logs that cannot enumerate a stream's children.
	ErrLatestUnsupported = errors.New("latest child lookup not supported")
	// ErrNoStreams is returned by Latest when a stream has no children yet.
	ErrNoStreams = errors.New("stream has no children")
	// ErrInvalidName is returned for empty or topic-unsafe stream names.
	ErrInvalidName = errors.New("invalid stream name")
)
