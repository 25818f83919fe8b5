package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"github.com/redis/go-redis/v9"

	"telemetry-dashboard/app/src/core"
	"telemetry-dashboard/app/src/database"
	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra"
	"telemetry-dashboard/app/src/render"
	"telemetry-dashboard/app/src/sources"
)

func provideConfig() (infra.Config, error) {
	return infra.LoadConfig()
}

func provideLogger(out io.Writer, cfg infra.Config) *infra.Logger {
	return infra.NewLoggerWithOptions(out, cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
}

func provideHTTPClient(cfg infra.Config) *http.Client {
	return sources.NewHTTPClient(cfg.RequestTimeout)
}

// provideDatabase opens the pool only when a feed reads from Postgres.
func provideDatabase(ctx context.Context, cfg infra.Config, logger *infra.Logger) (*sql.DB, func(), error) {
	if !cfg.UsesDatabase() {
		return nil, func() {}, nil
	}

	if database.ShouldCheckDatabase(cfg) {
		if err := database.WaitForDatabase(ctx, cfg, logger); err != nil {
			logger.Printf(ctx, "database connectivity check failed: %v", err)
		} else {
			logger.Println(ctx, "database connectivity check succeeded")
		}
	} else {
		logger.Println(ctx, "database connectivity check skipped (no DSN or host/port configured)")
	}

	return database.Setup(ctx, cfg, logger)
}

// provideRedis opens a client only for the redis sample source.
func provideRedis(ctx context.Context, cfg infra.Config, logger *infra.Logger) (*redis.Client, func()) {
	if cfg.SampleSource != infra.SourceRedis {
		return nil, func() {}
	}
	client := sources.NewRedisClient(cfg)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Printf(ctx, "failed to close redis client: %v", err)
		}
	}
}

func provideSampleSource(cfg infra.Config, db *sql.DB, rdb *redis.Client, client *http.Client, logger *infra.Logger) (domain.SampleSource, error) {
	switch cfg.SampleSource {
	case infra.SourceMock:
		return core.NewGenerator(core.GeneratorConfig{BatchSize: cfg.MockBatchSize}, logger), nil
	case infra.SourceHTTP:
		return sources.NewSamplesClient(cfg.SamplesBaseURL, cfg.SamplesPath, client)
	case infra.SourcePostgres:
		return database.NewSampleRepository(db, cfg.SampleLimit)
	case infra.SourceRedis:
		return sources.NewRedisSampleSource(rdb, cfg.RedisKey, cfg.SampleLimit)
	default:
		return nil, fmt.Errorf("unknown sample source %q", cfg.SampleSource)
	}
}

// provideSnapshotSource returns a nil source when the scalar feed is disabled.
func provideSnapshotSource(cfg infra.Config, db *sql.DB, client *http.Client) (domain.SnapshotSource, error) {
	switch cfg.SnapshotSource {
	case infra.SourceDisabled:
		return nil, nil
	case infra.SourceHTTP:
		return sources.NewMetricsClient(cfg.MetricsBaseURL, cfg.MetricsPath, client)
	case infra.SourcePostgres:
		return database.NewSnapshotRepository(db)
	default:
		return nil, fmt.Errorf("unknown snapshot source %q", cfg.SnapshotSource)
	}
}

func provideDashboardConfig(cfg infra.Config) core.DashboardConfig {
	return core.DashboardConfig{
		SamplesCadence:  cfg.SamplesPollInterval,
		SnapshotCadence: cfg.SnapshotPollInterval,
		StaleAfter:      cfg.StaleAfter,
		RequestTimeout:  cfg.RequestTimeout,
		ColorDimension:  domain.Dimension(cfg.ColorDimension),
		Labels: domain.AxisLabels{
			X: cfg.AxisLabelX,
			Y: cfg.AxisLabelY,
			Z: cfg.AxisLabelZ,
		},
	}
}

func provideDashboard(cfg core.DashboardConfig, samples domain.SampleSource, snapshots domain.SnapshotSource, logger *infra.Logger) (*core.Dashboard, error) {
	return core.NewDashboard(cfg, samples, snapshots, logger)
}

func provideRenderer(cfg infra.Config) (*render.Renderer, error) {
	return render.NewRenderer(cfg.PlotWidth, cfg.PlotHeight)
}
