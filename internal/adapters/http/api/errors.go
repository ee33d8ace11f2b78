package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/kickhub/internal/adapters/repository"
	"github.com/okian/kickhub/internal/adapters/transport"
	service "github.com/okian/kickhub/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error is an API failure tagged with the operation that produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// status maps an error to its HTTP status and response code.
func status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, service.ErrNoStream),
		errors.Is(err, transport.ErrInvalidName),
		errors.Is(err, repository.ErrInvalidKick):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrUnknownStadium),
		errors.Is(err, service.ErrPlayerIndex):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrComparisonNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, transport.ErrNoStreams):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, transport.ErrLatestUnsupported):
		return http.StatusNotImplemented, "not_implemented"
	case errors.Is(err, service.ErrStopped),
		errors.Is(err, transport.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
