package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
	"github.com/couchcryptid/city-explorer-service/internal/observability"
)

// Explorer serves locations and their cached categories.
type Explorer interface {
	sharedobs.ReadinessChecker
	Location(ctx context.Context, query string) (domain.Location, error)
	Weather(ctx context.Context, loc domain.Location) ([]domain.Weather, error)
	Events(ctx context.Context, loc domain.Location) ([]domain.Event, error)
	Movies(ctx context.Context, loc domain.Location) ([]domain.Movie, error)
	Reviews(ctx context.Context, loc domain.Location) ([]domain.BusinessReview, error)
	Explore(ctx context.Context, query string, categories []string) (domain.Exploration, error)
}

// Server exposes the explorer API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer     *http.Server
	explorer       Explorer
	logger         *slog.Logger
	metrics        *observability.Metrics
	requestTimeout time.Duration
}

// NewServer creates an HTTP server with the category routes, /explore,
// /healthz, /readyz, and /metrics.
func NewServer(addr string, explorer Explorer, requestTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		explorer:       explorer,
		logger:         logger,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.withRequestID(withCORS(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	mux.Handle("GET /location", s.route("location", s.handleLocation))
	mux.Handle("GET /weather", s.route(domain.CategoryWeather, s.handleWeather))
	mux.Handle("GET /events", s.route(domain.CategoryEvents, s.handleEvents))
	mux.Handle("GET /movies", s.route(domain.CategoryMovies, s.handleMovies))
	mux.Handle("GET /yelp", s.route(domain.CategoryYelp, s.handleYelp))
	mux.Handle("GET /explore", s.route("explore", s.handleExplore))

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(explorer))
	mux.Handle("GET /metrics", promhttp.Handler())

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
