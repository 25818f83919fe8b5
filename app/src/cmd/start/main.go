package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"google.golang.org/grpc"

	grpcapi "telemetry-dashboard/app/src/api/grpc"
	httpapi "telemetry-dashboard/app/src/api/http"
	"telemetry-dashboard/app/src/infra"
	_ "telemetry-dashboard/app/src/infra/utils/autoload"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup, so failures return here instead of exiting.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initApplication(ctx, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to initialise application: %w", err)
	}
	defer cleanup()

	cfg := app.Config
	logger := app.Logger

	infra.LogConfig(ctx, logger, cfg)
	infra.StartMetricsServer(cfg.MetricsPort, logger)

	shutdownTracing, err := infra.SetupTracing(ctx, cfg)
	if err != nil {
		logger.Printf(ctx, "tracing disabled: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Printf(ctx, "tracing shutdown error: %v", err)
		}
	}()

	dashboard := app.Dashboard
	dashboard.Start(ctx)

	httpServer := newHTTPServer(ctx, cfg.HTTPPort, httpapi.NewServer(dashboard, app.Renderer, logger))
	httpListener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		dashboard.Stop()
		return fmt.Errorf("failed to listen on HTTP port %s: %w", cfg.HTTPPort, err)
	}

	grpcServer := grpcapi.NewServer(dashboard, logger)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		_ = httpListener.Close()
		dashboard.Stop()
		return fmt.Errorf("failed to listen on gRPC port %s: %w", cfg.GRPCPort, err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf(ctx, "HTTP server shutdown error: %v", err)
		}
		grpcServer.GracefulStop()
	}()

	serverErrs := make(chan error, 2)
	servers := conc.NewWaitGroup()

	servers.Go(func() {
		grpcServer.WatchHealth(ctx, healthInterval(cfg))
	})
	servers.Go(func() {
		logger.Printf(ctx, "HTTP server listening on %s", httpListener.Addr())
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrs <- fmt.Errorf("http server: %w", err)
		}
	})
	servers.Go(func() {
		logger.Printf(ctx, "gRPC server listening on %s", grpcListener.Addr())
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serverErrs <- fmt.Errorf("grpc server: %w", err)
		}
	})

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serverErrs:
	}

	stop()
	dashboard.Stop()
	servers.Wait()

	if serveErr != nil {
		logger.Printf(ctx, "server error: %v", serveErr)
	}
	logger.Println(ctx, "server stopped")
	return serveErr
}

// healthInterval is the shortest cadence among the running feeds, so a stale
// feed is reported within one of its own ticks.
func healthInterval(cfg infra.Config) time.Duration {
	interval := cfg.SamplesPollInterval
	if cfg.SnapshotSource != infra.SourceDisabled && cfg.SnapshotPollInterval > 0 && cfg.SnapshotPollInterval < interval {
		interval = cfg.SnapshotPollInterval
	}
	return interval
}

// newHTTPServer leaves WriteTimeout unset so the scene stream can stay open.
// Request contexts derive from ctx, which ends open streams on shutdown.
func newHTTPServer(ctx context.Context, port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           handler,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
