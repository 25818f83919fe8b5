package infra

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// HTTP metrics
	HttpRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	})
	HttpRequestErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_request_errors_total",
		Help: "Total number of HTTP request errors",
	})
	ProcessingDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_processing_duration_seconds",
		Help:    "Duration of request processing in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// gRPC metrics
	GrpcRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grpc_requests_total",
		Help: "Total number of unary gRPC requests by method",
	}, []string{"method"})
	GrpcRequestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grpc_request_errors_total",
		Help: "Total number of unary gRPC requests that returned a non-OK code",
	}, []string{"method", "code"})

	// Poll metrics
	PollsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_polls_total",
		Help: "Total number of completed polls by feed and result",
	}, []string{"feed", "result"})
	PollSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_poll_skipped_total",
		Help: "Ticks skipped because the previous poll of the feed was still in flight",
	}, []string{"feed"})
	PollDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_poll_duration_seconds",
		Help:    "Duration of a single poll in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})
	LastSuccessTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dashboard_last_success_timestamp_seconds",
		Help: "Unix time of the last successful poll per feed",
	}, []string{"feed"})
	ActivePollers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_active_pollers",
		Help: "Number of running poll loops",
	})

	// Scene metrics
	BatchSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_batch_size",
		Help: "Number of samples in the last projected batch",
	})
	ScenePublishTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_scene_publish_total",
		Help: "Total number of published scenes",
	})
	SceneVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_scene_version",
		Help: "Version of the currently published scene",
	})

	registerOnce      sync.Once
	metricsServerOnce sync.Once
)

func init() {
	InitMetrics()
}

// InitMetrics registers all Prometheus collectors used by the application.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HttpRequestsTotal,
			HttpRequestErrorsTotal,
			ProcessingDurationSeconds,
			GrpcRequestsTotal,
			GrpcRequestErrorsTotal,
			PollsTotal,
			PollSkippedTotal,
			PollDurationSeconds,
			LastSuccessTimestamp,
			ActivePollers,
			BatchSize,
			ScenePublishTotal,
			SceneVersion,
		)
	})
}

// Handler returns an HTTP handler that exposes the registered Prometheus metrics.
func Handler() http.Handler {
	InitMetrics()
	return promhttp.Handler()
}

// StartMetricsServer exposes Prometheus metrics on :port/metrics. An empty port disables it.
func StartMetricsServer(port string, logger *Logger) {
	InitMetrics()
	if port == "" {
		return
	}
	metricsServerOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil {
				if logger != nil {
					logger.Printf(context.Background(), "metrics server error: %v", err)
				}
			}
		}()
	})
}

// HTTPMiddleware instruments HTTP handlers with request/latency metrics.
func HTTPMiddleware(pathResolver func(*http.Request) string) func(http.Handler) http.Handler {
	InitMetrics()
	if pathResolver == nil {
		pathResolver = func(r *http.Request) string {
			if r == nil {
				return "unknown"
			}
			return r.URL.Path
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r == nil {
				HttpRequestErrorsTotal.Inc()
				http.Error(w, "invalid request", http.StatusBadRequest)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			defer func() {
				duration := time.Since(start)
				ProcessingDurationSeconds.WithLabelValues(pathResolver(r)).Observe(duration.Seconds())
				HttpRequestsTotal.Inc()

				if recorder.Status() >= http.StatusBadRequest {
					HttpRequestErrorsTotal.Inc()
				}
			}()

			next.ServeHTTP(recorder, r)
		})
	}
}

// GRPCUnaryInterceptor instruments gRPC unary handlers. Requests are counted
// apart from HTTP so health probes do not inflate http_requests_total.
func GRPCUnaryInterceptor() grpc.UnaryServerInterceptor {
	InitMetrics()
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()

		defer func() {
			duration := time.Since(start)
			ProcessingDurationSeconds.WithLabelValues(info.FullMethod).Observe(duration.Seconds())
			GrpcRequestsTotal.WithLabelValues(info.FullMethod).Inc()

			if code := status.Code(err); code != codes.OK {
				GrpcRequestErrorsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
			}
		}()

		return handler(ctx, req)
	}
}

// RecordPoll tracks a completed poll. result is "success" or an error kind.
func RecordPoll(feed, result string, duration time.Duration) {
	InitMetrics()
	if duration < 0 {
		duration = 0
	}
	PollsTotal.WithLabelValues(feed, result).Inc()
	PollDurationSeconds.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordPollSuccess stamps the last-success gauge of a feed.
func RecordPollSuccess(feed string, at time.Time) {
	InitMetrics()
	LastSuccessTimestamp.WithLabelValues(feed).Set(float64(at.UnixNano()) / 1e9)
}

// IncSkippedTick counts a tick dropped because the previous poll was unresolved.
func IncSkippedTick(feed string) {
	InitMetrics()
	PollSkippedTotal.WithLabelValues(feed).Inc()
}

// RecordScenePublish tracks a newly published scene.
func RecordScenePublish(version uint64, points int) {
	InitMetrics()
	ScenePublishTotal.Inc()
	SceneVersion.Set(float64(version))
	BatchSize.Set(float64(points))
}

// PollerStarted increments the active poller gauge.
func PollerStarted() {
	InitMetrics()
	ActivePollers.Inc()
}

// PollerFinished decrements the active poller gauge.
func PollerFinished() {
	InitMetrics()
	ActivePollers.Dec()
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Status() int {
	return r.status
}

// Flush lets streaming handlers (SSE) flush through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
