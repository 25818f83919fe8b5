package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"telemetry-dashboard/app/src/infra"
)

// Config holds the connection settings of the Postgres pool.
type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	PingTimeout  time.Duration
}

// Connect opens a pooled handle and pings it before returning.
func Connect(cfg *Config) (*sql.DB, error) {
	if cfg == nil {
		return nil, errors.New("db: config is required")
	}
	if cfg.DSN == "" {
		return nil, errors.New("db: DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: open connection: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 5
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(time.Hour)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return db, nil
}

// ShouldCheckDatabase reports whether enough settings exist to probe the database.
func ShouldCheckDatabase(cfg infra.Config) bool {
	return cfg.DatabaseDSN != "" || cfg.DatabaseHost != ""
}

// WaitForDatabase dials the configured host until it accepts TCP connections,
// giving up after a few attempts or when ctx is done.
func WaitForDatabase(ctx context.Context, cfg infra.Config, logger *infra.Logger) error {
	address, err := databaseAddress(cfg)
	if err != nil {
		return err
	}
	if address == "" {
		return nil
	}

	dialer := &net.Dialer{Timeout: 3 * time.Second}

	const maxAttempts = 5
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		logger.Printf(ctx, "database check attempt %d/%d failed: %v", attempt, maxAttempts, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return fmt.Errorf("database not reachable at %s", address)
}

func databaseAddress(cfg infra.Config) (string, error) {
	host, port := cfg.DatabaseHost, cfg.DatabasePort

	if (host == "" || port == "") && cfg.DatabaseDSN != "" {
		parsed, err := url.Parse(cfg.DatabaseDSN)
		if err != nil {
			return "", fmt.Errorf("invalid DB_DSN: %w", err)
		}
		if host == "" {
			host = parsed.Hostname()
		}
		if port == "" {
			port = parsed.Port()
		}
	}

	if host == "" {
		return "", nil
	}
	if port == "" {
		port = "5432"
	}
	return net.JoinHostPort(host, port), nil
}

// Setup connects to Postgres and applies pending migrations. The returned
// cleanup closes the pool.
func Setup(ctx context.Context, cfg infra.Config, logger *infra.Logger) (*sql.DB, func(), error) {
	dsn, err := BuildDatabaseDSN(cfg)
	if err != nil {
		return nil, nil, err
	}

	if parsed, parseErr := url.Parse(dsn); parseErr == nil {
		logger.Printf(ctx, "connecting to DSN host=%s db=%s user=%s",
			parsed.Hostname(), strings.TrimPrefix(parsed.Path, "/"), parsed.User.Username())
	}

	db, err := Connect(&Config{DSN: dsn, PingTimeout: cfg.RequestTimeout})
	if err != nil {
		return nil, nil, err
	}

	if err := ApplyMigrations(ctx, db, ResolveMigrationsDir(cfg), logger); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Printf(ctx, "failed to close database: %v", err)
		}
	}
	return db, cleanup, nil
}

// BuildDatabaseDSN returns DB_DSN or assembles one from the discrete DB_* settings.
func BuildDatabaseDSN(cfg infra.Config) (string, error) {
	if cfg.DatabaseDSN != "" {
		return cfg.DatabaseDSN, nil
	}

	if cfg.DatabaseHost == "" {
		return "", errors.New("database host is required when DSN is not provided")
	}
	if cfg.DatabaseUser == "" {
		return "", errors.New("database user is required when DSN is not provided")
	}
	if cfg.DatabaseName == "" {
		return "", errors.New("database name is required when DSN is not provided")
	}

	port := cfg.DatabasePort
	if port == "" {
		port = "5432"
	}

	connectionURL := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(cfg.DatabaseHost, port),
		Path:     "/" + cfg.DatabaseName,
		User:     url.UserPassword(cfg.DatabaseUser, cfg.DatabasePassword),
		RawQuery: url.Values{"sslmode": []string{"disable"}}.Encode(),
	}
	return connectionURL.String(), nil
}
