package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/kickhub/internal/testevents"
)

// Default configuration constants.
const (
	defaultMatches     = 5
	defaultKicks       = 200
	defaultScoreLimit  = 3
	defaultBatchSize   = 50
	defaultTimeout     = 30 * time.Second
	defaultSettle      = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		stream     = flag.String("stream", "replay", "Live stream to post to")
		stadium    = flag.String("stadium", "Classic", "Stadium named by each start event")
		matches    = flag.Int("matches", defaultMatches, "Number of matches to generate")
		kicks      = flag.Int("kicks", defaultKicks, "Kicks per match before the final whistle")
		scoreLimit = flag.Int("score-limit", defaultScoreLimit, "Goals that end a match early")
		batch      = flag.Int("batch", defaultBatchSize, "Events per POST")
		workers    = flag.Int("workers", runtime.NumCPU(), "Matches posted concurrently")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", defaultSettle, "How long a session may take to fold a match")
		outputFile = flag.String("output", "", "Output file for generated matches")
		logFile    = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Print every session's tables")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp(flag.CommandLine)
		return
	}

	logs, err := testevents.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logs.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testevents.Config{
		BaseURL:    *baseURL,
		Stream:     *stream,
		Stadium:    *stadium,
		Matches:    *matches,
		Kicks:      *kicks,
		ScoreLimit: *scoreLimit,
		BatchSize:  max(*batch, 1),
		Workers:    max(*workers, 1),
		Seed:       *seed,
		Timeout:    *timeout,
		Settle:     *settle,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := testevents.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Replay failed: " + err.Error() + "\n")
		cancel()
		_ = logs.Close()
		os.Exit(1) //nolint:gocritic // deferred calls already ran
	}
}
