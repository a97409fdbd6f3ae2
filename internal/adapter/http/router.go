package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/simplebank/internal/adapter/http/handler"
	"github.com/iho/simplebank/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	UserHandler           *handler.UserHandler
	AccountHandler        *handler.AccountHandler
	TransferHandler       *handler.TransferHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	TokenVerifier middleware.TokenVerifier
	RateLimiter   *middleware.RateLimiter
	HTTPMetrics   *middleware.HTTPMetrics
	Gatherer      prometheus.Gatherer
	Logger        zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	authenticated := middleware.AuthMiddleware(cfg.TokenVerifier)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Users
		r.Route("/users", func(r chi.Router) {
			r.Post("/", cfg.UserHandler.Create)
			r.Post("/login", cfg.UserHandler.Login)
			r.With(authenticated).Get("/{id}", cfg.UserHandler.Get)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Post("/balance", cfg.AccountHandler.AddBalance)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.AccountHandler.ListEntries)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.ReconcileAccount)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", cfg.TransferHandler.Create)
		})
	})

	return r
}
