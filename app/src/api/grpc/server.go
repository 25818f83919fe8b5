package grpcapi

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra"
)

// ServicePrefix prefixes each feed name to form its health service name.
const ServicePrefix = "dashboard."

// Server exposes the standard gRPC health protocol, with one service per feed
// plus the overall "" service, so orchestrators can probe feed staleness.
type Server struct {
	grpc    *grpc.Server
	health  *health.Server
	service domain.DashboardService
	logger  *infra.Logger
}

// NewServer constructs the gRPC server and registers health and reflection.
func NewServer(service domain.DashboardService, logger *infra.Logger) *Server {
	interceptors := []grpc.UnaryServerInterceptor{
		loggingInterceptor(logger),
		infra.GRPCUnaryInterceptor(),
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	s := &Server{grpc: server, health: healthServer, service: service, logger: logger}
	s.SyncHealth()
	return s
}

// GRPC returns the underlying server.
func (s *Server) GRPC() *grpc.Server { return s.grpc }

func (s *Server) Serve(lis net.Listener) error { return s.grpc.Serve(lis) }

// GracefulStop marks every service NOT_SERVING and drains in-flight RPCs.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// SyncHealth copies feed staleness into the health registry.
func (s *Server) SyncHealth() {
	status := s.service.Status()
	s.health.SetServingStatus("", servingStatus(status.Healthy()))
	for _, feed := range status.Feeds {
		s.health.SetServingStatus(ServicePrefix+feed.Name, servingStatus(!feed.Stale))
	}
}

// WatchHealth resyncs health every interval until ctx is done.
func (s *Server) WatchHealth(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncHealth()
		}
	}
}

func servingStatus(ok bool) healthpb.HealthCheckResponse_ServingStatus {
	if ok {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

func loggingInterceptor(logger *infra.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		if err != nil {
			logger.Printf(ctx, "gRPC %s failed in %s: %v", info.FullMethod, duration, err)
		} else {
			logger.Debugf(ctx, "gRPC %s completed in %s", info.FullMethod, duration)
		}
		return resp, err
	}
}
