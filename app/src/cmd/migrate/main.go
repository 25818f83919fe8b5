package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telemetry-dashboard/app/src/database"
	"telemetry-dashboard/app/src/infra"
	_ "telemetry-dashboard/app/src/infra/utils/autoload"
)

func main() {
	cfg, logger := initEnvironment()

	migrationsDir := flag.String("dir", database.ResolveMigrationsDir(cfg), "directory with SQL migration files")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkDatabaseConnection(ctx, cfg, logger)
	runMigrations(ctx, cfg, logger, *migrationsDir)
}

// initEnvironment loads the configuration and the logger.
func initEnvironment() (infra.Config, *infra.Logger) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLoggerWithOptions(os.Stdout, "migrate", cfg.LogLevel, cfg.LogFormat)
	return cfg, logger
}

func checkDatabaseConnection(ctx context.Context, cfg infra.Config, logger *infra.Logger) {
	if !database.ShouldCheckDatabase(cfg) {
		return
	}
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := database.WaitForDatabase(waitCtx, cfg, logger); err != nil {
		logger.Fatalf(ctx, "database connectivity check failed: %v", err)
	}
}

// runMigrations opens the pool and applies every migration file in order.
func runMigrations(ctx context.Context, cfg infra.Config, logger *infra.Logger, migrationsDir string) {
	dsn, err := database.BuildDatabaseDSN(cfg)
	if err != nil {
		logger.Fatalf(ctx, "failed to build database DSN: %v", err)
	}

	db, err := database.Connect(&database.Config{DSN: dsn, PingTimeout: cfg.RequestTimeout})
	if err != nil {
		logger.Fatalf(ctx, "connect: %v", err)
	}
	defer db.Close()

	if err := database.ApplyMigrations(ctx, db, migrationsDir, logger); err != nil {
		logger.Fatalf(ctx, "migrate: %v", err)
	}
	logger.Printf(ctx, "migrations from %s applied", migrationsDir)
}
