// Package api provides the HTTP API server and handlers for CineWave.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cinewave/cinewave/internal/http/response"
	"github.com/cinewave/cinewave/internal/metadata/tmdb"
	"github.com/cinewave/cinewave/internal/ratelimit"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	RPS         float64 // Inbound requests per second per client; 0 disables limiting
	Burst       int
	Images      tmdb.Images // Builds poster, backdrop and profile URLs; defaults to the public CDN
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	health     HealthTargets
	sseHandler http.Handler
	router     *chi.Mux
	api        huma.API
	limiter    *ratelimit.KeyedRateLimiter
	urls       imageURLs
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, health HealthTargets, sseHandler http.Handler, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		services:   services,
		health:     health,
		sseHandler: sseHandler,
		router:     chi.NewRouter(),
		urls:       imageURLs{images: opts.Images},
		logger:     logger,
	}
	if opts.Images == (tmdb.Images{}) {
		s.urls.images = tmdb.NewImages(tmdb.DefaultImageBaseURL)
	}
	if opts.RPS > 0 {
		s.limiter = ratelimit.New(opts.RPS, max(opts.Burst, 1))
	}

	s.setupMiddleware(opts)
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the operation registry, used to export the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases the inbound rate limiter.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// setupAPI creates the operation registry on top of the router.
func (s *Server) setupAPI() {
	config := huma.DefaultConfig("CineWave API", Version)
	config.Info.Description = "Movie and TV discovery session: identity, favorites, theme, search and catalog."
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	RegisterErrorHandler()
	s.api = humachi.New(s.router, config)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerFavoritesRoutes()
	s.registerThemeRoutes()
	s.registerSearchRoutes()
	s.registerCatalogRoutes()

	// The event stream is a long-lived response written outside the
	// operation framework.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}

// NewHTTPServer wraps handler in an http.Server with the given timeouts.
func NewHTTPServer(addr string, handler http.Handler, read, write, idle time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       read,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       idle,
	}
}
