package handler

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/anuj-jha-1/Expense-Tracker/internal/metrics"
	"github.com/anuj-jha-1/Expense-Tracker/internal/middleware"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// RouterConfig wires services and middleware settings into the HTTP API.
type RouterConfig struct {
	Logger      *slog.Logger
	Ledger      *service.LedgerService
	Auth        *service.AuthService
	Health      map[string]HealthChecker
	Metrics     metrics.Snapshotter
	RateLimit   middleware.RateLimitConfig
	CORS        middleware.CORSConfig
	Development bool
	MaxBodySize int64
	// AuthMinDuration pads failed authentications.
	AuthMinDuration time.Duration
}

// NewRouter builds the HTTP handler for the ledger API.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	h := New()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.Development))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.Development}))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	health := NewHealthHandler(cfg.Health)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", NewMetricsHandler(cfg.Metrics).Metrics)

	rateLimitCfg := cfg.RateLimit
	rateLimitCfg.Logger = cfg.Logger

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:      cfg.Logger,
		Resolver:    cfg.Auth,
		MinDuration: cfg.AuthMinDuration,
	})

	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	txnHandler := NewTransactionHandler(cfg.Ledger, cfg.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", NewCategoryHandler(cfg.Ledger).List)

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/register", authHandler.Register)
			r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Get("/", txnHandler.List)
			r.Post("/", txnHandler.Create)
			r.Get("/summary", txnHandler.Summary)
			r.Get("/stats", txnHandler.Stats)
			r.Get("/{id}", txnHandler.Get)
			r.Put("/{id}", txnHandler.Update)
			r.Delete("/{id}", txnHandler.Delete)
		})
	})

	return r
}
