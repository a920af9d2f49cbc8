package api

import (
	"context"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"

	"pulseboard/internal/analytics"
	"pulseboard/internal/config"
	"pulseboard/internal/metrics"
	"pulseboard/internal/ratelimit"
	"pulseboard/internal/repository/sqlite"
	"pulseboard/internal/tracking"
	"pulseboard/internal/validation"
)

// Runtime is the core wired against the configured database. Close releases
// the database.
type Runtime struct {
	API      API
	Registry *prometheus.Registry

	repo sqlite.Repository
}

// Open builds the repository, rate limiter, engine and aggregator described
// by cfg and exposes them through an API. Metrics are registered on a
// registry owned by the runtime.
func Open(ctx context.Context, cfg *config.Config, clock quartz.Clock, logger slog.Logger) (*Runtime, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, xerrors.Errorf("resolve timezone %q: %w", cfg.Analytics.Timezone, err)
	}

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	limiter := ratelimit.New(clock, repo, logger, m, ratelimit.Options{
		Window: cfg.Tracking.RateLimitWindow,
		Limit:  cfg.Tracking.RateLimitMaxActions,
	})
	engine := tracking.New(repo, limiter, clock, logger, m, tracking.Options{
		MinimumStopDuration: cfg.Tracking.MinimumStopDuration,
	})
	aggregator := analytics.New(repo, clock, logger, m, analytics.Options{
		Location:         loc,
		WorkdayStartHour: cfg.Analytics.WorkdayStartHour,
	})
	validator := validation.NewTimerValidatorWith(validation.NewValidatorWithConfig(cfg))

	logger.Debug(ctx, "core wired",
		slog.F("database", cfg.GetDatabasePath()),
		slog.F("timezone", loc.String()),
		slog.F("minimum_stop", cfg.Tracking.MinimumStopDuration),
		slog.F("rate_limit", cfg.Tracking.RateLimitMaxActions),
		slog.F("rate_window", cfg.Tracking.RateLimitWindow))

	return &Runtime{
		API:      New(engine, aggregator, validator),
		Registry: registry,
		repo:     repo,
	}, nil
}

// Close closes the underlying repository
func (r *Runtime) Close() error {
	return r.repo.Close()
}
