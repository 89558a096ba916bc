package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/okian/isles/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a simulation and returns its report. A report with
// violations is returned together with an error.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	start := time.Now()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	report := &Report{Mode: cfg.Mode, Pattern: cfg.Pattern, Samples: cfg.Samples}

	logger.Get().Info(ctx, "starting scroll simulation",
		logger.String("mode", cfg.Mode),
		logger.String("pattern", cfg.Pattern),
		logger.Int("samples", cfg.Samples),
		logger.Float64("extent", cfg.Extent),
		logger.String("skipPolicy", cfg.SkipPolicy),
		logger.Float64("activeWindow", cfg.ActiveWindow),
		logger.Int("lookAhead", cfg.LookAhead))

	// Step 1: generate the trace
	trace, err := Trace(cfg.Pattern, cfg.Samples, cfg.Extent, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("trace generation failed: %w", err)
	}

	// Step 2: drive the core
	switch cfg.Mode {
	case ModeLocal, "":
		err = runLocal(ctx, cfg, trace, report)
	case ModeRemote:
		err = runRemote(ctx, cfg, trace, report)
	default:
		err = fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}

	// Step 3: verify
	verify(cfg, trace, report)
	report.Duration = time.Since(start)

	// Step 4: save the report
	if cfg.OutputFile != "" {
		if err := saveReport(cfg.OutputFile, report); err != nil {
			logger.Get().Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	displayReport(ctx, report)
	if !report.OK() {
		return report, fmt.Errorf("%d violations", len(report.Violations))
	}
	return report, nil
}

// verify adds trace-level checks on top of the ones the tally makes while
// transitions arrive.
func verify(cfg *Config, trace []float64, r *Report) {
	if r.MaxActive > 1 {
		r.Violations = append(r.Violations, fmt.Sprintf("%d segments active at once", r.MaxActive))
	}
	balance := r.Enters - r.Exits
	if balance < 0 || balance > 1 {
		r.Violations = append(r.Violations, fmt.Sprintf("enters %d and exits %d do not balance", r.Enters, r.Exits))
	}
	if (balance == 1) != (r.Final != nil) {
		r.Violations = append(r.Violations, "final active segment disagrees with enter/exit balance")
	}
	if cfg.Pattern != PatternSweep || !denseEnough(trace, r.Segments, cfg.Extent*cfg.ActiveWindow) {
		return
	}
	// A monotonic sweep that visits every segment enters each exactly once.
	for i := 0; i < r.Segments; i++ {
		if n := r.EntersBySeg[i]; n != 1 {
			r.Violations = append(r.Violations, fmt.Sprintf("segment %d entered %d times during sweep", i, n))
		}
	}
}

// denseEnough reports whether consecutive samples never jump over a whole
// active span, span being the active part of the extent.
func denseEnough(trace []float64, segments int, span float64) bool {
	if segments == 0 || span <= 0 {
		return false
	}
	width := span / float64(segments)
	for i := 1; i < len(trace); i++ {
		d := trace[i] - trace[i-1]
		if d < 0 {
			d = -d
		}
		if d >= width {
			return false
		}
	}
	return true
}

func saveReport(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, filePermission)
}

func displayReport(ctx context.Context, r *Report) {
	idx := make([]int, 0, len(r.EntersBySeg))
	for k := range r.EntersBySeg {
		idx = append(idx, k)
	}
	sort.Ints(idx)
	fields := []logger.Field{
		logger.String("mode", r.Mode),
		logger.String("pattern", r.Pattern),
		logger.Int("segments", r.Segments),
		logger.Int("samples", r.Samples),
		logger.Int("enters", r.Enters),
		logger.Int("exits", r.Exits),
		logger.Int("cues", r.Cues),
		logger.Int("maxActive", r.MaxActive),
		logger.Int("violations", len(r.Violations)),
		logger.Duration("duration", r.Duration),
		logger.Any("visited", idx),
	}
	if r.OK() {
		logger.Get().Info(ctx, "simulation passed", fields...)
		return
	}
	logger.Get().Error(ctx, "simulation found violations", fields...)
	for _, v := range r.Violations {
		logger.Get().Error(ctx, "violation", logger.String("detail", v))
	}
}
