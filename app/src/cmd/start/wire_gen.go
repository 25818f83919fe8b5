//go:build !wireinject

package main

import (
	"context"
	"io"
)

func initApplication(ctx context.Context, out io.Writer) (*application, func(), error) {
	cfg, err := provideConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := provideLogger(out, cfg)
	client := provideHTTPClient(cfg)

	db, cleanupDB, err := provideDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	rdb, cleanupRedis := provideRedis(ctx, cfg, logger)
	cleanup := func() {
		cleanupRedis()
		cleanupDB()
	}

	samples, err := provideSampleSource(cfg, db, rdb, client, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	snapshots, err := provideSnapshotSource(cfg, db, client)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	dashboard, err := provideDashboard(provideDashboardConfig(cfg), samples, snapshots, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	renderer, err := provideRenderer(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return newApplication(cfg, logger, dashboard, renderer), cleanup, nil
}
