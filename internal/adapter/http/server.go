// Package http exposes the calculator API alongside health, readiness and
// metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
)

// Calculator is the application surface the API serves.
type Calculator interface {
	sharedobs.ReadinessChecker
	Calculate(ctx context.Context, form domain.SiteForm) (domain.CalculationResult, error)
	Rainfall(postalCode string) (float64, bool, error)
	Products() (domain.Catalog, error)
	Reload(ctx context.Context) (*domain.ReferenceData, error)
}

// Options tunes the API limiter.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server exposes the calculator API plus /healthz, /readyz and /metrics.
type Server struct {
	httpServer *http.Server
	calc       Calculator
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with the API mounted under /api/v1.
func NewServer(addr string, calc Calculator, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		calc:    calc,
		logger:  logger,
		metrics: metrics,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(calc))
	r.Handle("/metrics", promhttp.Handler())

	limiter := newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, clockwork.NewRealClock(), logger, metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(limiter.middleware)
		r.Use(s.logRequests)

		r.Post("/calculations", s.handleCalculate)
		r.Get("/rainfall/{postalCode}", s.handleRainfall)
		r.Get("/products", s.handleProducts)
		r.Post("/reference/reload", s.handleReload)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.DebugContext(r.Context(), "api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
