package api

import (
	"net/http"
)

// MatchesHandler resolves archived matches to live stream children.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type streamResponse struct {
	Stream   string `json:"stream"`
	StreamID string `json:"streamId"`
	MatchID  string `json:"matchId"`
}

// HandleFindStream handles GET /matches/{matchID}/stream?stream=NAME.
func (h *MatchesHandler) HandleFindStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.find_stream"
	stream := r.URL.Query().Get("stream")
	matchID := r.PathValue("matchID")
	if stream == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	id, err := h.deps.FindStream(r.Context(), stream, matchID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, streamResponse{Stream: stream, StreamID: id, MatchID: matchID})
}
