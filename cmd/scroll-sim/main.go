package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/isles/internal/simulate"
)

// Default configuration constants.
const (
	defaultSamples     = 600
	defaultExtent      = 6000
	defaultStep        = 50
	defaultTimeout     = 10 * time.Second
	defaultRunDeadline = 2 * time.Minute
)

func main() {
	var (
		mode       = flag.String("mode", simulate.ModeLocal, "local runs in-process, remote dials a server")
		url        = flag.String("url", "ws://localhost:9080/ws", "WebSocket URL for remote mode")
		datasetPth = flag.String("dataset", "", "Dataset YAML file (default: embedded sample year)")
		pattern    = flag.String("pattern", simulate.PatternSweep, "sweep, pingpong, jitter or jump")
		samples    = flag.Int("samples", defaultSamples, "Number of scroll samples")
		extent     = flag.Float64("extent", defaultExtent, "Scrollable extent in pixels")
		step       = flag.Float64("step", defaultStep, "Vertical distance between islands")
		seed       = flag.Int64("seed", 1, "Seed for random patterns")
		window     = flag.Float64("window", 1, "Active fraction of each segment")
		lookAhead  = flag.Int("lookahead", 0, "Backward look-ahead in segments")
		skip       = flag.String("skip", "pair", "pair or traverse")
		timeout    = flag.Duration("timeout", defaultTimeout, "Remote handshake and settle timeout")
		outputFile = flag.String("output", "", "Write the JSON report to this file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Log every transition")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Setup logging
	closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunDeadline)
	defer cancel()

	config := &simulate.Config{
		Mode:         *mode,
		URL:          *url,
		DatasetPath:  *datasetPth,
		Step:         *step,
		Pattern:      *pattern,
		Samples:      *samples,
		Extent:       *extent,
		Seed:         *seed,
		ActiveWindow: *window,
		LookAhead:    *lookAhead,
		SkipPolicy:   *skip,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	if _, err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
