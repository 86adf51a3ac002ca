// Package api provides the HTTP API server and handlers for the Wordbook
// platform.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wordbookapp/wordbook-server/internal/identity"
	"github.com/wordbookapp/wordbook-server/internal/ratelimit"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// Options configures the API server.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin, for development.
	AllowedOrigins []string
	// RateLimiter limits requests per client IP. Nil disables limiting.
	RateLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services *Services
	verifier *identity.Verifier
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, services *Services, verifier *identity.Verifier, logger *slog.Logger, opts Options) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.RateLimiter != nil {
		router.Use(RateLimitMiddleware(opts.RateLimiter, logger))
	}

	humaConfig := huma.DefaultConfig("Wordbook API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:    store,
		services: services,
		verifier: verifier,
		router:   router,
		api:      api,
		logger:   logger,
	}

	s.registerHealthRoutes()
	s.registerWordBookRoutes()
	s.registerCardRoutes()
	s.registerTagRoutes()
	s.registerSocialRoutes()
	s.registerQuizRoutes()
	s.registerProfileRoutes()
	s.registerAdminRoutes()

	// Raw image serving sits outside the OpenAPI surface.
	s.router.Get("/api/cards/{id}/image", s.handleCardImage)
	s.router.Get("/api/users/{id}/avatar", s.handleUserAvatar)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
