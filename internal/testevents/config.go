package testevents

import (
	"time"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/domain/model"
)

// Config holds configuration for a replay run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Stream     string        // Live stream the matches are posted to
	Stadium    string        // Stadium named by each match's start event
	Matches    int           // Number of matches to generate
	Kicks      int           // Kicks per match before the final whistle
	ScoreLimit int           // Goals that end a match early
	BatchSize  int           // Events per POST
	Workers    int           // Matches posted concurrently
	Seed       uint64        // Generator seed; the same seed replays the same matches
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for a session to fold every event
	OutputFile string        // Output file for generated matches
	LogFile    string        // Log file for test output
	Verbose    bool          // Print every session's tables
}

// Match is one generated match and the live stream child it is posted to.
type Match struct {
	Stream   string        `json:"stream"`
	StreamID string        `json:"streamId"`
	MatchID  string        `json:"matchId"`
	Events   []model.Event `json:"events"`
}

// SessionView mirrors the live session JSON the service answers with.
type SessionView struct {
	ID       string           `json:"id"`
	Stream   string           `json:"stream"`
	StreamID string           `json:"streamId"`
	Problem  string           `json:"problem,omitempty"`
	State    *live.MatchState `json:"state"`
}

// Stats holds test statistics.
type Stats struct {
	MatchesGenerated int
	EventsGenerated  int
	EventsPosted     int
	BatchesFailed    int
	SessionsVerified int
	Mismatches       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
