package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/kickhub/internal/app"
)

// ComparisonsHandler handles player comparison requests.
type ComparisonsHandler struct {
	deps Dependencies
}

// NewComparisonsHandler creates a new comparisons handler.
func NewComparisonsHandler(deps Dependencies) *ComparisonsHandler {
	return &ComparisonsHandler{deps: deps}
}

type playerRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /comparisons.
func (h *ComparisonsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_comparison"
	var req service.ComparisonRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.CreateComparison(r.Context(), req)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// HandleGet handles GET /comparisons/{id}.
func (h *ComparisonsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.ComparisonView(r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap("api.get_comparison", err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandlePatch handles PATCH /comparisons/{id}.
func (h *ComparisonsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_comparison"
	var p service.ComparisonPatch
	if err := decode(w, r, &p); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.UpdateComparison(r.PathValue("id"), p)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleDelete handles DELETE /comparisons/{id}.
func (h *ComparisonsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteComparison(r.PathValue("id")); err != nil {
		writeError(w, Wrap("api.delete_comparison", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddPlayer handles POST /comparisons/{id}/players.
func (h *ComparisonsHandler) HandleAddPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_player"
	var req playerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing name")))
		return
	}
	v, err := h.deps.AddComparisonPlayer(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleRemovePlayer handles DELETE /comparisons/{id}/players/{index}.
func (h *ComparisonsHandler) HandleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_player"
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.RemoveComparisonPlayer(r.PathValue("id"), index)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}
