package infra

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"telemetry-dashboard/app/src/infra/utils"
	sharederrors "telemetry-dashboard/app/src/shared/errors"
)

// Sample source kinds.
const (
	SourceMock     = "mock"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"
	SourceDisabled = "disabled"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"telemetry-dashboard"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort    string `env:"GRPC_PORT" envDefault:"50051"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"2112"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	SampleSource        string        `env:"SAMPLE_SOURCE" envDefault:"mock"`
	SamplesBaseURL      string        `env:"SAMPLES_BASE_URL"`
	SamplesPath         string        `env:"SAMPLES_PATH" envDefault:"/samples"`
	SamplesPollInterval time.Duration `env:"SAMPLES_POLL_INTERVAL" envDefault:"2s"`
	SampleLimit         int           `env:"SAMPLE_LIMIT" envDefault:"100"`
	MockBatchSize       int           `env:"MOCK_BATCH_SIZE" envDefault:"50"`

	SnapshotSource       string        `env:"SNAPSHOT_SOURCE" envDefault:"disabled"`
	MetricsBaseURL       string        `env:"METRICS_BASE_URL"`
	MetricsPath          string        `env:"METRICS_PATH" envDefault:"/metrics"`
	SnapshotPollInterval time.Duration `env:"SNAPSHOT_POLL_INTERVAL" envDefault:"1s"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	StaleAfter     time.Duration `env:"STALE_AFTER" envDefault:"0s"`

	ColorDimension int    `env:"COLOR_DIMENSION" envDefault:"1"`
	AxisLabelX     string `env:"AXIS_LABEL_X" envDefault:"Latitude (m)"`
	AxisLabelY     string `env:"AXIS_LABEL_Y" envDefault:"Longitude (m)"`
	AxisLabelZ     string `env:"AXIS_LABEL_Z" envDefault:"Throughput (MBps)"`
	PlotWidth      int    `env:"PLOT_WIDTH" envDefault:"160"`
	PlotHeight     int    `env:"PLOT_HEIGHT" envDefault:"128"`

	DatabaseDSN      string `env:"DB_DSN"`
	DatabaseHost     string `env:"DB_HOST"`
	DatabasePort     string `env:"DB_PORT"`
	DatabaseUser     string `env:"DB_USER"`
	DatabasePassword string `env:"DB_PASSWORD"`
	DatabaseName     string `env:"DB_NAME"`
	MigrationsDir    string `env:"MIGRATIONS_DIR" envDefault:"app/resources/db/migrations"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisKey      string `env:"REDIS_KEY" envDefault:"telemetry:samples"`

	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// LoadConfig parses the process environment into a Config and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SampleSource = strings.ToLower(strings.TrimSpace(cfg.SampleSource))
	cfg.SnapshotSource = strings.ToLower(strings.TrimSpace(cfg.SnapshotSource))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.SampleSource {
	case SourceMock, SourceHTTP, SourcePostgres, SourceRedis:
	default:
		return fmt.Errorf("%w: unknown SAMPLE_SOURCE %q", sharederrors.ErrInvalidConfig, c.SampleSource)
	}
	switch c.SnapshotSource {
	case SourceHTTP, SourcePostgres, SourceDisabled:
	default:
		return fmt.Errorf("%w: unknown SNAPSHOT_SOURCE %q", sharederrors.ErrInvalidConfig, c.SnapshotSource)
	}
	if c.SampleSource == SourceHTTP && c.SamplesBaseURL == "" {
		return fmt.Errorf("%w: SAMPLES_BASE_URL is required for the http sample source", sharederrors.ErrInvalidConfig)
	}
	if c.SnapshotSource == SourceHTTP && c.MetricsBaseURL == "" {
		return fmt.Errorf("%w: METRICS_BASE_URL is required for the http snapshot source", sharederrors.ErrInvalidConfig)
	}
	if c.SnapshotSource == SourceHTTP && c.pointsAtSelf(c.MetricsBaseURL) {
		return fmt.Errorf("%w: METRICS_BASE_URL %s is this dashboard's own HTTP_PORT", sharederrors.ErrInvalidConfig, c.MetricsBaseURL)
	}
	if c.SampleSource == SourceHTTP && c.pointsAtSelf(c.SamplesBaseURL) {
		return fmt.Errorf("%w: SAMPLES_BASE_URL %s is this dashboard's own HTTP_PORT", sharederrors.ErrInvalidConfig, c.SamplesBaseURL)
	}
	if c.SamplesPollInterval <= 0 || c.SnapshotPollInterval <= 0 {
		return fmt.Errorf("%w: poll intervals must be positive", sharederrors.ErrInvalidConfig)
	}
	if c.ColorDimension < 1 || c.ColorDimension > 3 {
		return fmt.Errorf("%w: COLOR_DIMENSION must be 1, 2 or 3", sharederrors.ErrInvalidConfig)
	}
	return nil
}

// pointsAtSelf reports whether raw targets a loopback host on HTTP_PORT. The
// dashboard router serves neither /metrics nor samples, so such a feed could
// only ever fail.
func (c Config) pointsAtSelf(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	if port != c.HTTPPort {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// UsesDatabase reports whether any feed reads from Postgres.
func (c Config) UsesDatabase() bool {
	return c.SampleSource == SourcePostgres || c.SnapshotSource == SourcePostgres
}

func LogConfig(ctx context.Context, logger *Logger, cfg Config) {
	logger.Printf(ctx, "SERVICE_NAME=%s", cfg.ServiceName)
	logger.Printf(ctx, "HTTP_PORT=%s", cfg.HTTPPort)
	logger.Printf(ctx, "GRPC_PORT=%s", cfg.GRPCPort)
	logger.Printf(ctx, "METRICS_PORT=%s", utils.EmptyFallback(cfg.MetricsPort, "(disabled)"))
	logger.Printf(ctx, "LOG_LEVEL=%s LOG_FORMAT=%s", cfg.LogLevel, cfg.LogFormat)
	logger.Printf(ctx, "SAMPLE_SOURCE=%s", cfg.SampleSource)
	logger.Printf(ctx, "SAMPLES_BASE_URL=%s", utils.EmptyFallback(cfg.SamplesBaseURL, "(not set)"))
	logger.Printf(ctx, "SAMPLES_PATH=%s", cfg.SamplesPath)
	logger.Printf(ctx, "SAMPLES_POLL_INTERVAL=%s", cfg.SamplesPollInterval)
	logger.Printf(ctx, "SAMPLE_LIMIT=%d", cfg.SampleLimit)
	logger.Printf(ctx, "SNAPSHOT_SOURCE=%s", cfg.SnapshotSource)
	logger.Printf(ctx, "METRICS_BASE_URL=%s", utils.EmptyFallback(cfg.MetricsBaseURL, "(not set)"))
	logger.Printf(ctx, "METRICS_PATH=%s", cfg.MetricsPath)
	logger.Printf(ctx, "SNAPSHOT_POLL_INTERVAL=%s", cfg.SnapshotPollInterval)
	logger.Printf(ctx, "REQUEST_TIMEOUT=%s", cfg.RequestTimeout)
	if cfg.StaleAfter > 0 {
		logger.Printf(ctx, "STALE_AFTER=%s", cfg.StaleAfter)
	} else {
		logger.Println(ctx, "STALE_AFTER not set (3x cadence)")
	}
	logger.Printf(ctx, "COLOR_DIMENSION=%d", cfg.ColorDimension)
	if cfg.DatabaseDSN != "" {
		logger.Printf(ctx, "DB_DSN set (length %d)", len(cfg.DatabaseDSN))
	} else {
		logger.Println(ctx, "DB_DSN not provided")
	}
	logger.Printf(ctx, "DB_HOST=%s", utils.EmptyFallback(cfg.DatabaseHost, "(not set)"))
	logger.Printf(ctx, "DB_PORT=%s", utils.EmptyFallback(cfg.DatabasePort, "(not set)"))
	logger.Printf(ctx, "DB_USER=%s", utils.EmptyFallback(cfg.DatabaseUser, "(not set)"))
	if cfg.DatabasePassword != "" {
		logger.Println(ctx, "DB_PASSWORD set (redacted)")
	} else {
		logger.Println(ctx, "DB_PASSWORD not provided")
	}
	logger.Printf(ctx, "DB_NAME=%s", utils.EmptyFallback(cfg.DatabaseName, "(not set)"))
	logger.Printf(ctx, "MIGRATIONS_DIR=%s", cfg.MigrationsDir)
	logger.Printf(ctx, "REDIS_ADDR=%s REDIS_DB=%d REDIS_KEY=%s", cfg.RedisAddr, cfg.RedisDB, cfg.RedisKey)
	if cfg.RedisPassword != "" {
		logger.Println(ctx, "REDIS_PASSWORD set (redacted)")
	}
	logger.Printf(ctx, "OTEL_ENABLED=%t OTEL_ENDPOINT=%s", cfg.OTelEnabled, utils.EmptyFallback(cfg.OTelEndpoint, "(not set)"))
}
