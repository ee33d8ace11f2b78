package api

import "net/http"

// ChoicesHandler lists what a comparison can be configured with.
type ChoicesHandler struct {
	deps Dependencies
}

// NewChoicesHandler creates a new choices handler.
func NewChoicesHandler(deps Dependencies) *ChoicesHandler {
	return &ChoicesHandler{deps: deps}
}

// HandleChoices handles GET /choices.
func (h *ChoicesHandler) HandleChoices(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Choices(r.Context())
	if err != nil {
		writeError(w, Wrap("api.choices", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}
