package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"DisruptionMonitor/internal/domain"
	"DisruptionMonitor/internal/observability"
	"DisruptionMonitor/internal/ports"
)

// CoordinatorConfig is the effective, already-resolved configuration for one
// coordinator instance.
type CoordinatorConfig struct {
	Interval       time.Duration
	KeepSolvedDays int
}

// RefreshCoordinator owns the cached aggregate for exactly one monitored
// location. It refreshes on a timer and on demand, never runs two fetches
// at once, and keeps serving the previous good result when a refresh fails.
type RefreshCoordinator struct {
	source  ports.DisruptionSource
	loc     domain.Location
	cfg     CoordinatorConfig
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	fetching atomic.Bool
	ready    atomic.Bool

	mu     sync.RWMutex
	latest *domain.FetchResult

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRefreshCoordinator builds a coordinator; Start must be called before it
// serves fresh data.
func NewRefreshCoordinator(source ports.DisruptionSource, loc domain.Location, cfg CoordinatorConfig, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *RefreshCoordinator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshCoordinator{
		source:  source,
		loc:     loc,
		cfg:     cfg,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

// Location returns the town / postal code this coordinator monitors.
func (c *RefreshCoordinator) Location() domain.Location { return c.loc }

// Ready reports whether at least one refresh has succeeded.
func (c *RefreshCoordinator) Ready() bool { return c.ready.Load() }

// Start performs the first refresh synchronously and then begins the timer
// loop. A first-refresh failure is a setup failure and is returned to the
// caller; later failures are absorbed.
func (c *RefreshCoordinator) Start(ctx context.Context) error {
	if err := c.RequestRefresh(ctx); err != nil {
		return fmt.Errorf("initial refresh for %s: %w", c.loc.PostalCode, err)
	}
	go c.run(ctx)
	return nil
}

// Stop halts the timer loop. An in-flight fetch is abandoned to its own
// completion; no second Stop is needed or harmful.
func (c *RefreshCoordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *RefreshCoordinator) run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			c.ScheduledRefresh(ctx)
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		}
	}
}

// ScheduledRefresh is the timer entry point: failures are logged and
// absorbed, the previous cached value stays authoritative.
func (c *RefreshCoordinator) ScheduledRefresh(ctx context.Context) {
	if err := c.RequestRefresh(ctx); err != nil {
		c.logger.Warn("scheduled refresh failed, keeping previous result",
			"postal_code", c.loc.PostalCode, "error", err)
	}
}

// RequestRefresh runs one fetch unless a fetch is already in flight, in
// which case the trigger is dropped, not queued.
func (c *RefreshCoordinator) RequestRefresh(ctx context.Context) error {
	if !c.fetching.CompareAndSwap(false, true) {
		if c.metrics != nil {
			c.metrics.DroppedTriggers.Inc()
		}
		c.logger.Debug("refresh already in flight, dropping trigger",
			"postal_code", c.loc.PostalCode)
		return nil
	}
	defer c.fetching.Store(false)

	result, err := c.source.Fetch(ctx, c.loc, c.cfg.KeepSolvedDays)
	if err != nil {
		c.observe(err)
		return err
	}

	c.mu.Lock()
	c.latest = &result
	c.mu.Unlock()
	c.ready.Store(true)
	c.observe(nil)

	c.logger.Info("refreshed disruptions",
		"postal_code", c.loc.PostalCode,
		"current", len(result.Current.Entries),
		"planned", len(result.Planned.Entries),
		"solved", len(result.Solved.Entries))
	return nil
}

// CurrentResult returns the last successful snapshot, or a zero-value
// aggregate for this location when none has ever succeeded. The returned
// value is immutable; callers may read it concurrently.
func (c *RefreshCoordinator) CurrentResult() domain.FetchResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return domain.FetchResult{Location: c.loc}
	}
	return *c.latest
}

func (c *RefreshCoordinator) observe(err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "unexpected_error"
		if fe, ok := AsFetchError(err); ok && fe.Kind == FetchErrorNetwork {
			outcome = "network_error"
		}
	}
	c.metrics.RefreshTotal.WithLabelValues(c.loc.PostalCode, outcome).Inc()
}
