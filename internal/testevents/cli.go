package testevents

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/kickhub/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging points the kickhub logger at stdout and logFile together.
// An empty logFile gets a timestamped name. Verbose runs log at debug.
// The returned file must be closed once the run ends.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "replay_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, err
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage for the replay tool followed by the flags of fs.
func ShowHelp(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprint(out, `KickHub Replay Tool

Generates synthetic matches, posts them to a running kickhub service, follows
each one with a live session and checks the folded state against a local fold.

Usage:
  go run ./cmd/test-events [options]

Options:
`)
	fs.PrintDefaults()
	fmt.Fprint(out, `
Examples:
  # Replay the same matches twice
  go run ./cmd/test-events -seed 42 -matches 20 -output matches.json
`)
}
