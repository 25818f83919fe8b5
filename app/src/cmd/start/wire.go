//go:build wireinject

package main

import (
	"context"
	"io"

	"github.com/google/wire"
)

func initApplication(ctx context.Context, out io.Writer) (*application, func(), error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideHTTPClient,
		provideDatabase,
		provideRedis,
		provideSampleSource,
		provideSnapshotSource,
		provideDashboardConfig,
		provideDashboard,
		provideRenderer,
		newApplication,
	)
	return nil, nil, nil
}
