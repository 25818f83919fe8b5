package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"telemetry-dashboard/app/src/domain"
	"telemetry-dashboard/app/src/infra"
	"telemetry-dashboard/app/src/shared/constants"
)

// Server exposes the HTTP transport for the dashboard.
type Server struct {
	handler http.Handler
}

// NewServer constructs the router. The render target is a browser app served
// from another origin, so GET responses allow any origin.
func NewServer(service domain.DashboardService, renderer PlotRenderer, logger *infra.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(correlationMiddleware)
	router.Use(allowAnyOrigin)
	router.Use(infra.HTTPMiddleware(func(r *http.Request) string {
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				return pattern
			}
		}
		return r.URL.Path
	}))

	registerRoutes(router, &handler{
		service:   service,
		renderer:  renderer,
		logger:    logger,
		heartbeat: streamHeartbeat,
	})

	return &Server{handler: router}
}

// Router returns the configured HTTP handler for reuse in tests or external HTTP servers.
func (s *Server) Router() http.Handler {
	return s.handler
}

// ServeHTTP allows Server to satisfy the http.Handler interface directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// correlationMiddleware propagates X-Correlation-ID, generating one when absent.
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(constants.CorrelationHeader))
		if id == "" {
			id = constants.GenerateUUID()
		}
		w.Header().Set(constants.CorrelationHeader, id)
		next.ServeHTTP(w, r.WithContext(infra.WithCorrelationID(r.Context(), id)))
	})
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}
