package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"DisruptionMonitor/internal/adapter/web"
	"DisruptionMonitor/internal/calendar"
	"DisruptionMonitor/internal/config"
	"DisruptionMonitor/internal/domain"
	"DisruptionMonitor/internal/infrastructure/fetch"
	"DisruptionMonitor/internal/logging"
	"DisruptionMonitor/internal/observability"
	"DisruptionMonitor/internal/usecase"
)

// parseWorkers bounds concurrent HTML parsing across all coordinators.
const parseWorkers = 2

// Application wires configuration to coordinators, the calendar projector,
// and the HTTP surface.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *usecase.Registry
	projector *calendar.Projector
	server    *web.Server
	executor  *usecase.PoolExecutor
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()
	executor := usecase.NewPoolExecutor(parseWorkers)

	fetcher := fetch.NewPageFetcher(nil, cfg.Source.URL)
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:  fetcher,
		Executor: executor,
		Clock:    clock,
		Metrics:  metrics,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	registry := usecase.NewRegistry()
	for _, loc := range cfg.Locations {
		coordinator := usecase.NewRefreshCoordinator(
			pipeline,
			domain.Location{Town: loc.Town, PostalCode: loc.PostalCode},
			usecase.CoordinatorConfig{
				Interval:       config.ResolveUpdateInterval(loc.UpdateIntervalMinutes, cfg.Defaults.UpdateIntervalMinutes),
				KeepSolvedDays: config.ResolveDaysToKeepSolved(loc.DaysToKeepSolved, cfg.Defaults.DaysToKeepSolved),
			},
			clock,
			metrics,
			baseLogger.With("component", "coordinator", "postal_code", loc.PostalCode),
		)
		registry.Register(coordinator)
	}

	projector := calendar.NewProjector(registry, clock, baseLogger.With("component", "calendar"))
	server := web.NewServer(cfg.Server.Addr, registry, projector, clock, baseLogger.With("component", "web"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		registry:  registry,
		projector: projector,
		server:    server,
		executor:  executor,
	}
}

// Run starts every coordinator (failing fast when a location cannot
// complete its first refresh) and serves HTTP until the context ends.
func (a *Application) Run(ctx context.Context) error {
	for _, coordinator := range a.registry.All() {
		if err := coordinator.Start(ctx); err != nil {
			return fmt.Errorf("activate location: %w", err)
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		a.stop()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	a.stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

func (a *Application) stop() {
	for _, coordinator := range a.registry.All() {
		coordinator.Stop()
	}
	a.executor.Close()
}
