package simulate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/isles/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initializes the global logger. Output goes to stdout and,
// when logFile is set, to that file as well. It returns a closer for the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var (
		out    io.Writer = os.Stdout
		closer           = func() error { return nil }
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file.Close
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return nil, err
		}
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closer, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Isles Scroll Simulator
======================

Replays synthetic scroll traces through the timeline synchronizer and checks
that every segment is revealed and darkened exactly once per visit.

Usage:
  go run ./cmd/scroll-sim [options]

Options:
  -mode string
        local runs in-process, remote dials a server (default "local")
  -url string
        WebSocket URL for remote mode (default "ws://localhost:9080/ws")
  -dataset string
        Dataset YAML file (default: embedded sample year)
  -pattern string
        sweep, pingpong, jitter or jump (default "sweep")
  -samples int
        Number of scroll samples (default 600)
  -extent float
        Scrollable extent in pixels (default 6000)
  -seed int
        Seed for random patterns (default 1)
  -window float
        Active fraction of each segment (default 1)
  -lookahead int
        Backward look-ahead in segments (default 0)
  -skip string
        pair or traverse (default "pair")
  -timeout duration
        Remote handshake and settle timeout (default 10s)
  -output string
        Write the JSON report to this file
  -log string
        Also write logs to this file
  -verbose
        Log every transition
  -help
        Show this help message

Examples:
  # Forward sweep in-process
  go run ./cmd/scroll-sim

  # Random jumps with transient transitions for skipped segments
  go run ./cmd/scroll-sim -pattern jump -skip traverse -samples 200

  # Against a running server
  go run ./cmd/scroll-sim -mode remote -pattern pingpong
`)
}
