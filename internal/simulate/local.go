package simulate

import (
	"context"
	"fmt"

	"github.com/okian/isles/internal/app"
	"github.com/okian/isles/internal/domain/dataset"
	"github.com/okian/isles/internal/domain/island"
	"github.com/okian/isles/internal/domain/scene"
	"github.com/okian/isles/pkg/logger"
)

// runLocal drives an in-process experience with the trace.
func runLocal(ctx context.Context, cfg *Config, trace []float64, report *Report) error {
	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	world, err := app.NewWorld(ds, cfg.Step, island.NewShaper())
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}
	policy, err := scene.ParseSkipPolicy(cfg.SkipPolicy)
	if err != nil {
		return err
	}
	report.Segments = world.Timeline.Len()

	tally := NewTally(traceLogger(ctx, cfg))
	exp := app.NewExperience(world, tally,
		app.WithoutAssetBarrier(),
		app.WithActiveWindow(cfg.ActiveWindow),
		app.WithBackwardLookAhead(cfg.LookAhead),
		app.WithSkipPolicy(policy),
		app.WithSpring(0, 0, 0),
	)
	exp.Start(ctx)
	if !exp.Ready() {
		return fmt.Errorf("experience did not become ready")
	}

	for _, off := range trace {
		if err := ctx.Err(); err != nil {
			return err
		}
		cycle, _ := exp.ApplySample(ctx, off, cfg.Extent)
		if cycle.Skipped > 0 && cfg.Verbose {
			logger.Get().Debug(ctx, "segments skipped", logger.Int("skipped", cycle.Skipped))
		}
		exp.Tick(ctx, 0)
	}
	tally.Fill(report)
	if report.Extra == nil {
		report.Extra = map[string]any{}
	}
	report.Extra["samplesApplied"] = exp.Snapshot().Samples
	return nil
}

func traceLogger(ctx context.Context, cfg *Config) func(string) {
	if !cfg.Verbose {
		return nil
	}
	return func(msg string) { logger.Get().Info(ctx, msg) }
}
