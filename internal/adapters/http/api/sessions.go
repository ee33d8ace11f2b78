package api

import (
	"net/http"

	service "github.com/okian/kickhub/internal/app"
)

// SessionsHandler handles live session requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleStart handles POST /live/sessions. A session that cannot start
// answers with the problem a live view would show.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	var req service.SessionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.StartSession(r.Context(), req)
	if err != nil {
		code, name := status(err)
		writeJSON(w, code, errorResponse{Code: name, Message: Wrap(op, err).Error(), Problem: service.ProblemFor(err)})
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// HandleList handles GET /live/sessions.
func (h *SessionsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Sessions())
}

// HandleGet handles GET /live/sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap("api.get_session", err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleTables handles GET /live/sessions/{id}/tables.
func (h *SessionsHandler) HandleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.deps.SessionTables(r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap("api.session_tables", err))
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// HandleStop handles DELETE /live/sessions/{id}.
func (h *SessionsHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.StopSession(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, Wrap("api.stop_session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
