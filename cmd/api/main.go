// Package main is the entrypoint for the ledger API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/anuj-jha-1/Expense-Tracker/internal/auth"
	"github.com/anuj-jha-1/Expense-Tracker/internal/bootstrap"
	"github.com/anuj-jha-1/Expense-Tracker/internal/config"
	"github.com/anuj-jha-1/Expense-Tracker/internal/events"
	"github.com/anuj-jha-1/Expense-Tracker/internal/handler"
	"github.com/anuj-jha-1/Expense-Tracker/internal/metrics"
	"github.com/anuj-jha-1/Expense-Tracker/internal/middleware"
	"github.com/anuj-jha-1/Expense-Tracker/internal/server"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// authMinDuration pads failed token checks so valid and invalid tokens take similar time.
const authMinDuration = 50 * time.Millisecond

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cfg)

	var (
		store     bootstrap.Store
		cacheConn bootstrap.SessionStore
		publisher events.Publisher
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := bootstrap.OpenStore(gctx, cfg, logger)
		store = s
		return err
	})
	g.Go(func() error {
		c, err := bootstrap.OpenCache(gctx, cfg, logger)
		cacheConn = c
		return err
	})
	g.Go(func() error {
		p, err := bootstrap.OpenPublisher(gctx, cfg, logger)
		publisher = p
		return err
	})
	if err := g.Wait(); err != nil {
		closeAll(store, cacheConn, publisher)
		return err
	}

	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	ledgerService := service.NewLedgerService(store, publisher, recorder, logger)
	authService := service.NewAuthService(store, cacheConn, tokens, recorder, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Logger: logger,
		Ledger: ledgerService,
		Auth:   authService,
		Health: map[string]handler.HealthChecker{
			"store": store,
			"cache": cacheConn,
		},
		Metrics: recorder,
		RateLimit: middleware.RateLimitConfig{
			Limiter:   cacheConn,
			Enabled:   cfg.RateLimitEnabled,
			UserRPM:   cfg.RateLimitUserRPM,
			UserBurst: cfg.RateLimitUserBurst,
			IPRPS:     cfg.RateLimitAuthRPS,
			IPBurst:   cfg.RateLimitAuthBurst,
		},
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		},
		Development:     cfg.IsDevelopment(),
		MaxBodySize:     cfg.MaxRequestBodySize,
		AuthMinDuration: authMinDuration,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Closed in reverse order: publisher, cache, store.
	srv.OnShutdown("store", func(context.Context) error {
		store.Close()
		return nil
	})
	srv.OnShutdown("cache", func(context.Context) error {
		return cacheConn.Close()
	})
	srv.OnShutdown("events", func(context.Context) error {
		return publisher.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreBackend,
	)

	return srv.Run(ctx)
}

// closeAll releases whatever opened before a startup failure.
func closeAll(store bootstrap.Store, c bootstrap.SessionStore, p events.Publisher) {
	if store != nil {
		store.Close()
	}
	if c != nil {
		_ = c.Close()
	}
	if p != nil {
		_ = p.Close()
	}
}
