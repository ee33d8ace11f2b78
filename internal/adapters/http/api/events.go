package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/kickhub/internal/domain/model"
)

// EventsHandler appends match events to a live stream.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type appendResponse struct {
	Keys []string `json:"keys"`
}

// HandlePostEvents handles POST /live/{stream}/{streamID}/events. The body is
// one event or an array of events, appended in order.
func (h *EventsHandler) HandlePostEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_events"
	events, err := readEvents(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	stream, streamID := r.PathValue("stream"), r.PathValue("streamID")
	keys := make([]string, 0, len(events))
	for i := range events {
		key, err := h.deps.AppendEvent(r.Context(), stream, streamID, events[i])
		if err != nil {
			writeError(w, Wrap(op, err))
			return
		}
		keys = append(keys, key)
	}
	writeJSON(w, http.StatusAccepted, appendResponse{Keys: keys})
}

func readEvents(r io.Reader) ([]model.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if body[0] != '[' {
		var e model.Event
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, err
		}
		return []model.Event{e}, nil
	}
	var events []model.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, err
	}
	return events, nil
}
