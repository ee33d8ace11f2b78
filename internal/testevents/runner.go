package testevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/kickhub/internal/domain/live"
	"github.com/okian/kickhub/internal/report"
	"github.com/okian/kickhub/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run generates matches, posts them to the service, follows each one with a
// live session and checks the folded state against a local fold.
func Run(ctx context.Context, config *Config) error {
	return run(ctx, config, os.Stdout)
}

func run(ctx context.Context, config *Config, out io.Writer) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting kickhub replay",
		logger.String("baseURL", config.BaseURL),
		logger.String("stream", config.Stream),
		logger.Int("matches", config.Matches),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	client := NewHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate matches
	matches := generateMatches(ctx, config, stats)

	// Step 3: Post events
	if err := postMatches(ctx, config, client, matches, stats); err != nil {
		return fmt.Errorf("event posting failed: %w", err)
	}

	// Step 4: Follow and verify every match
	states := make([]*live.MatchState, 0, len(matches))
	var errs []error
	for _, m := range matches {
		state, err := followMatch(ctx, config, client, m, stats, out)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		states = append(states, state)
	}
	displayTopScorers(states, len(redRoster)+len(blueRoster))

	// Step 5: Save matches to file
	if config.OutputFile != "" {
		if err := saveMatchesToFile(ctx, config.OutputFile, matches); err != nil {
			logger.Get().Warn(ctx, "failed to save matches to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}
	logger.Get().Info(ctx, "replay completed successfully")
	return nil
}

// followMatch starts a session on m's stream child, waits until every event
// is folded and verifies the result. The session is stopped afterwards.
func followMatch(ctx context.Context, config *Config, client *HTTPClient, m Match, stats *Stats, out io.Writer) (*live.MatchState, error) {
	view, err := client.StartSession(ctx, m.Stream, m.StreamID)
	if err != nil {
		return nil, fmt.Errorf("start session for %s: %w", m.StreamID, err)
	}
	defer func() {
		if err := client.StopSession(context.WithoutCancel(ctx), view.ID); err != nil {
			logger.Get().Warn(ctx, "failed to stop session", logger.String("session", view.ID), logger.Error(err))
		}
	}()

	waitCtx, cancel := context.WithTimeout(ctx, config.Settle)
	defer cancel()
	view, err = client.WaitForEvents(waitCtx, view.ID, len(m.Events))
	if err != nil {
		return nil, err
	}
	if err := verifyMatch(m, view, stats); err != nil {
		return nil, err
	}

	id, err := client.FindStream(ctx, m.Stream, m.MatchID)
	if err != nil {
		return nil, fmt.Errorf("find stream of match %s: %w", m.MatchID, err)
	}
	if id != m.StreamID {
		return nil, fmt.Errorf("match %s resolved to %s, posted to %s", m.MatchID, id, m.StreamID)
	}

	if config.Verbose {
		tables, err := client.SessionTables(ctx, view.ID)
		if err != nil {
			return nil, fmt.Errorf("tables of %s: %w", view.ID, err)
		}
		fmt.Fprintf(out, "== %s/%s (match %s) ==\n", m.Stream, m.StreamID, m.MatchID)
		if err := report.Tables(out, tables); err != nil {
			return nil, err
		}
	}
	return view.State, nil
}

// saveMatchesToFile writes the generated matches as JSON.
func saveMatchesToFile(ctx context.Context, filename string, matches []Match) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(matches); err != nil {
		return fmt.Errorf("failed to write matches: %w", err)
	}

	logger.Get().Info(ctx, "matches saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final replay statistics.
func displayFinalStats(stats *Stats) {
	var verifiedRate, eventsPerSecond float64

	if stats.MatchesGenerated > 0 {
		verifiedRate = float64(stats.SessionsVerified) / float64(stats.MatchesGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsPosted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("matchesGenerated", stats.MatchesGenerated),
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsPosted", stats.EventsPosted),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("sessionsVerified", stats.SessionsVerified),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("verifiedRate", verifiedRate),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
