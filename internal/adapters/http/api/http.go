// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	StartSession(ctx context.Context, req service.SessionRequest) (service.SessionView, error)
	Session(id string) (service.SessionView, error)
	Sessions() []service.SessionView
	SessionTables(id string) ([]types.Table, error)
	StopSession(ctx context.Context, id string) error

	AppendEvent(ctx context.Context, stream, streamID string, e model.Event) (string, error)
	FindStream(ctx context.Context, stream, matchID string) (string, error)

	CreateComparison(ctx context.Context, req service.ComparisonRequest) (service.View, error)
	ComparisonView(id string) (service.View, error)
	UpdateComparison(id string, p service.ComparisonPatch) (service.View, error)
	AddComparisonPlayer(ctx context.Context, id, name string) (service.View, error)
	RemoveComparisonPlayer(id string, index int) (service.View, error)
	DeleteComparison(id string) error

	Choices(ctx context.Context) (service.Choices, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	opsHandler        *OpsHandler
	sessionsHandler   *SessionsHandler
	eventsHandler     *EventsHandler
	matchesHandler    *MatchesHandler
	comparisonHandler *ComparisonsHandler
	choicesHandler    *ChoicesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		opsHandler:        NewOpsHandler(deps),
		sessionsHandler:   NewSessionsHandler(deps),
		eventsHandler:     NewEventsHandler(deps),
		matchesHandler:    NewMatchesHandler(deps),
		comparisonHandler: NewComparisonsHandler(deps),
		choicesHandler:    NewChoicesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. The second column is the
// endpoint label used in the request metrics.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	routes := []struct {
		pattern  string
		endpoint string
		handler  http.HandlerFunc
	}{
		{"GET /healthz", "healthz", s.opsHandler.HandleHealth},
		{"GET /stats", "stats", s.opsHandler.HandleStats},

		{"GET /live/sessions", "sessions", s.sessionsHandler.HandleList},
		{"POST /live/sessions", "sessions", s.sessionsHandler.HandleStart},
		{"GET /live/sessions/{id}", "session", s.sessionsHandler.HandleGet},
		{"DELETE /live/sessions/{id}", "session", s.sessionsHandler.HandleStop},
		{"GET /live/sessions/{id}/tables", "session_tables", s.sessionsHandler.HandleTables},
		{"POST /live/{stream}/{streamID}/events", "events", s.eventsHandler.HandlePostEvents},

		{"GET /matches/{matchID}/stream", "matches", s.matchesHandler.HandleFindStream},

		{"POST /comparisons", "comparisons", s.comparisonHandler.HandleCreate},
		{"GET /comparisons/{id}", "comparison", s.comparisonHandler.HandleGet},
		{"PATCH /comparisons/{id}", "comparison", s.comparisonHandler.HandlePatch},
		{"DELETE /comparisons/{id}", "comparison", s.comparisonHandler.HandleDelete},
		{"POST /comparisons/{id}/players", "comparison_players", s.comparisonHandler.HandleAddPlayer},
		{"DELETE /comparisons/{id}/players/{index}", "comparison_players", s.comparisonHandler.HandleRemovePlayer},

		{"GET /choices", "choices", s.choicesHandler.HandleChoices},
	}
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, instrument(rt.endpoint, rt.handler))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Problem string `json:"problem,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err with the status its kind maps to.
func writeError(w http.ResponseWriter, err error) {
	code, name := status(err)
	writeJSON(w, code, errorResponse{Code: name, Message: err.Error()})
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
