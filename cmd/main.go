package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/isles/internal/adapters/http/api"
	"github.com/okian/isles/internal/adapters/http/site"
	"github.com/okian/isles/internal/adapters/http/swagger"
	"github.com/okian/isles/internal/adapters/ws"
	app "github.com/okian/isles/internal/app"
	"github.com/okian/isles/internal/config"
	"github.com/okian/isles/internal/domain/dataset"
	"github.com/okian/isles/internal/domain/island"
	"github.com/okian/isles/pkg/logger"
	"github.com/okian/isles/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Bootstrap logger; replaced once the configured format is known.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	registerRuntimeCollectors(metrics.GetRegistry())

	svc, err := buildService(cfg, loggerInstance)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		return
	}
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, loggerInstance),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Int("segments", len(svc.Segments())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildService loads the dataset and maps configuration onto service options.
func buildService(cfg *config.Config, l logger.Logger) (*app.Service, error) {
	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	world, err := app.NewWorld(ds, cfg.SegmentStep, island.NewShaper())
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(l),
		app.WithWorld(world),
		app.WithQueueSize(cfg.QueueSize),
		app.WithTickInterval(cfg.TickInterval()),
		app.WithExperienceOptions(
			app.WithActiveWindow(cfg.ActiveWindow),
			app.WithBackwardLookAhead(cfg.BackwardLookAhead),
			app.WithSkipPolicy(cfg.Policy()),
			app.WithCue(cfg.CueOnEnter),
			app.WithCameraOffset(cfg.CameraOffset()),
			app.WithSpring(cfg.TickRateHz, cfg.CameraSpringFrequency, cfg.CameraSpringDamping),
		),
	), nil
}

// newMux registers the API, the WebSocket route, the OpenAPI document and
// the browser console.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, l logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	wsHandler := ws.NewHandler(svc, ws.WithReadLimit(cfg.WSReadLimit), ws.WithLogger(l))
	api.NewServer(svc, svc, wsHandler).Register(ctx, mux)
	return mux
}

// registerRuntimeCollectors adds Go runtime and process collectors to reg.
// Collectors already present are left alone.
func registerRuntimeCollectors(reg prometheus.Registerer) {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				logger.Get().Warn(context.Background(), "collector not registered", logger.Error(err))
			}
		}
	}
}
