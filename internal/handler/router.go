package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/secondbrain/secondbrain/internal/metrics"
	"github.com/secondbrain/secondbrain/internal/middleware"
)

// RouterConfig holds everything the HTTP surface is assembled from.
type RouterConfig struct {
	Logger         *slog.Logger
	Gate           middleware.Authenticator
	Metrics        metrics.Recorder
	IsDevelopment  bool
	AllowedOrigins []string
	MaxBodySize    int64

	Health   *HealthHandler
	Stats    *MetricsHandler
	Auth     *AuthHandler
	Notes    *NoteHandler
	Links    *LinkHandler
	Tasks    *TaskHandler
	Overview *OverviewHandler
	Search   *SearchHandler
}

// NewRouter builds the chi router. Everything except health, metrics,
// register and login sits behind the identity gate.
func NewRouter(cfg RouterConfig) *chi.Mux {
	h := New()
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Stats != nil {
		r.Get("/metrics", cfg.Stats.Metrics)
	}

	gate := middleware.Auth(middleware.AuthConfig{
		Logger:  cfg.Logger,
		Gate:    cfg.Gate,
		Metrics: cfg.Metrics,
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.Auth.Register)
		r.Post("/signup", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.With(gate).Get("/me", cfg.Auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(gate)

		r.Route("/notes", cfg.Notes.Routes)
		r.Route("/links", cfg.Links.Routes)
		r.Route("/tasks", cfg.Tasks.Routes)

		r.Get("/overview", cfg.Overview.Overview)
		r.Get("/main", cfg.Overview.Overview)
		r.Get("/search", cfg.Search.Search)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
