// Package mcpserver exposes live sessions and player comparisons as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	service "github.com/okian/kickhub/internal/app"
	"github.com/okian/kickhub/internal/domain/analytics"
	"github.com/okian/kickhub/internal/domain/filter"
	"github.com/okian/kickhub/internal/domain/types"
	"github.com/okian/kickhub/pkg/logger"
)

// Service is what the tools call.
type Service interface {
	Session(id string) (service.SessionView, error)
	Sessions() []service.SessionView
	SessionTables(id string) ([]types.Table, error)
	Compare(ctx context.Context, req service.ComparisonRequest) (service.View, error)
	FindStream(ctx context.Context, stream, matchID string) (string, error)
	Choices(ctx context.Context) (service.Choices, error)
}

// SessionArgs selects a live session.
type SessionArgs struct {
	SessionID string `json:"session_id" jsonschema:"Live session id (required)"`
}

// CompareArgs configures a one-off comparison.
type CompareArgs struct {
	Players    []string `json:"players" jsonschema:"Player names to compare (required)"`
	Stadium    string   `json:"stadium" jsonschema:"Stadium name; kicks from other stadiums are dropped (required)"`
	Comparison string   `json:"comparison,omitempty" jsonschema:"Comparison mode label, e.g. All-Time or Common Matches"`
	Game       string   `json:"game,omitempty" jsonschema:"Game mode label, e.g. Entire Match or While Winning"`
	Stats      string   `json:"stats,omitempty" jsonschema:"Stats mode label"`
	Kick       string   `json:"kick,omitempty" jsonschema:"Kick mode label"`
}

// FindStreamArgs resolves a match to a live stream child.
type FindStreamArgs struct {
	Stream  string `json:"stream" jsonschema:"Live stream name (required)"`
	MatchID string `json:"match_id" jsonschema:"Archived match id (required)"`
}

// ChoicesArgs takes no parameters.
type ChoicesArgs struct{}

// Tools binds the MCP tool handlers to a service.
type Tools struct {
	svc    Service
	logger logger.Logger
}

// NewTools creates the tool handlers.
func NewTools(svc Service) *Tools {
	return &Tools{svc: svc, logger: logger.Get().Named("mcp")}
}

// NewServer registers every tool on a new MCP server.
func NewServer(svc Service, version string) *mcp.Server {
	t := NewTools(svc)
	server := mcp.NewServer(&mcp.Implementation{Name: "kickhub", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "live_sessions",
		Description: "List running live sessions with their stream and current score",
	}, t.LiveSessions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "live_session_tables",
		Description: "Offense, defense and time of possession tables of a live session",
	}, t.LiveSessionTables)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_players",
		Description: "Summaries and stat cards for archived players under the given modes",
	}, t.ComparePlayers)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_stream",
		Description: "Find the live stream child that announced an archived match",
	}, t.FindStream)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "comparison_choices",
		Description: "Stadiums, archived players and mode labels a comparison accepts",
	}, t.Choices)
	return server
}

// Handler serves server over streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

type sessionSummary struct {
	ID       string `json:"id"`
	Stream   string `json:"stream"`
	StreamID string `json:"streamId"`
	Events   int    `json:"events"`
	Red      int    `json:"red"`
	Blue     int    `json:"blue"`
	Final    bool   `json:"final"`
	Problem  string `json:"problem,omitempty"`
}

// LiveSessions lists running sessions.
func (t *Tools) LiveSessions(_ context.Context, _ *mcp.CallToolRequest, _ ChoicesArgs) (*mcp.CallToolResult, any, error) {
	views := t.svc.Sessions()
	out := make([]sessionSummary, 0, len(views))
	for _, v := range views {
		s := sessionSummary{ID: v.ID, Stream: v.Stream, StreamID: v.StreamID, Problem: v.Problem}
		if v.State != nil {
			s.Events = v.State.EventCount
			s.Red, s.Blue = v.State.Score.Red, v.State.Score.Blue
			s.Final = v.State.IsFinal
		}
		out = append(out, s)
	}
	return toolJSON(out)
}

// LiveSessionTables returns the live tables of one session.
func (t *Tools) LiveSessionTables(_ context.Context, _ *mcp.CallToolRequest, args SessionArgs) (*mcp.CallToolResult, any, error) {
	if args.SessionID == "" {
		return toolError(errors.New("session_id is required")), nil, nil
	}
	view, err := t.svc.Session(args.SessionID)
	if err != nil {
		return toolError(err), nil, nil
	}
	tables, err := t.svc.SessionTables(args.SessionID)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(map[string]any{
		"problem": view.Problem,
		"tables":  tables,
	})
}

// ComparePlayers computes a comparison without keeping it.
func (t *Tools) ComparePlayers(ctx context.Context, _ *mcp.CallToolRequest, args CompareArgs) (*mcp.CallToolResult, any, error) {
	if len(args.Players) == 0 {
		return toolError(errors.New("players is required")), nil, nil
	}
	req := service.ComparisonRequest{Stadium: args.Stadium, Players: args.Players}
	var err error
	if req.Comparison, err = optional(args.Comparison, filter.ParseComparisonMode); err != nil {
		return toolError(err), nil, nil
	}
	if req.Game, err = optional(args.Game, filter.ParseGameMode); err != nil {
		return toolError(err), nil, nil
	}
	if req.Stats, err = optional(args.Stats, analytics.ParseStatsMode); err != nil {
		return toolError(err), nil, nil
	}
	if req.Kick, err = optional(args.Kick, filter.ParseKickMode); err != nil {
		return toolError(err), nil, nil
	}

	view, err := t.svc.Compare(ctx, req)
	if err != nil {
		t.logger.Warn(ctx, "compare_players failed", logger.Error(err))
		return toolError(err), nil, nil
	}
	// Drop display geometry.
	view.Kicks = nil
	return toolJSON(view)
}

// FindStream resolves a match id to its stream child.
func (t *Tools) FindStream(ctx context.Context, _ *mcp.CallToolRequest, args FindStreamArgs) (*mcp.CallToolResult, any, error) {
	if args.Stream == "" || args.MatchID == "" {
		return toolError(errors.New("stream and match_id are required")), nil, nil
	}
	id, err := t.svc.FindStream(ctx, args.Stream, args.MatchID)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(map[string]string{"stream": args.Stream, "streamId": id, "matchId": args.MatchID})
}

// Choices lists what compare_players accepts.
func (t *Tools) Choices(ctx context.Context, _ *mcp.CallToolRequest, _ ChoicesArgs) (*mcp.CallToolResult, any, error) {
	c, err := t.svc.Choices(ctx)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(c)
}

func optional[M any](label string, parse func(string) (M, error)) (*M, error) {
	if label == "" {
		return nil, nil
	}
	m, err := parse(label)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
