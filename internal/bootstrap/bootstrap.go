// Package bootstrap opens the infrastructure a binary needs from its Config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/anuj-jha-1/Expense-Tracker/internal/cache"
	"github.com/anuj-jha-1/Expense-Tracker/internal/config"
	"github.com/anuj-jha-1/Expense-Tracker/internal/events"
	"github.com/anuj-jha-1/Expense-Tracker/internal/middleware"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository/memory"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository/sqlite"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// Store is what the services need from a storage backend.
type Store interface {
	service.TransactionStore
	service.UserStore
	Ping(ctx context.Context) error
	Close()
}

// SessionStore is a session cache that also rate limits.
type SessionStore interface {
	service.SessionCache
	middleware.Limiter
	Ping(ctx context.Context) error
	Close() error
}

// NewLogger builds the process logger and installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// ParseLogLevel converts a level name to slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Migrate applies (or, with down, rolls back one step of) the schema for the configured backend.
func Migrate(cfg *config.Config, down bool) error {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		return repository.Migrate(cfg.DatabaseURL, down)
	case config.BackendSQLite:
		return sqlite.Migrate(cfg.SQLitePath, down)
	case config.BackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// OpenStore connects to the configured backend, retrying until
// cfg.StartupRetryTimeout elapses. Migrations are applied first.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	var repo *repository.Repository
	err := retry(ctx, cfg.StartupRetryTimeout, logger, "postgres", cfg.DatabaseURL, func() error {
		if err := repository.Migrate(cfg.DatabaseURL, false); err != nil {
			return err
		}
		r, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		repo = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres at %s: %s", RedactURL(cfg.DatabaseURL), SanitizeError(err, cfg.DatabaseURL))
	}
	return repo, nil
}

// OpenCache connects to Redis, or returns an in-process cache when REDIS_URL is empty.
func OpenCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (SessionStore, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-process cache")
		return cache.NewLocal(), nil
	}

	var c *cache.Cache
	err := retry(ctx, cfg.StartupRetryTimeout, logger, "redis", cfg.RedisURL, func() error {
		cc, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		c = cc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis at %s: %s", RedactURL(cfg.RedisURL), SanitizeError(err, cfg.RedisURL))
	}
	return c, nil
}

// OpenPublisher connects to RabbitMQ, or returns a no-op publisher when AMQP_URL is empty.
func OpenPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, domain events are disabled")
		return events.NewNoop(), nil
	}

	var p *events.AMQPPublisher
	err := retry(ctx, cfg.StartupRetryTimeout, logger, "amqp", cfg.AMQPURL, func() error {
		pp, err := events.NewAMQPPublisher(events.AMQPConfig{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
			Queue:    cfg.AMQPQueue,
		})
		if err != nil {
			return err
		}
		p = pp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect amqp at %s: %s", RedactURL(cfg.AMQPURL), SanitizeError(err, cfg.AMQPURL))
	}
	return p, nil
}

// retry runs op with exponential backoff until it succeeds, ctx ends or
// maxElapsed passes. secret is scrubbed from logged errors.
func retry(ctx context.Context, maxElapsed time.Duration, logger *slog.Logger, name, secret string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxElapsed

	notify := func(err error, wait time.Duration) {
		logger.Warn("dependency_unavailable",
			"dependency", name,
			"error", SanitizeError(err, secret),
			"retry_in", wait.String(),
		)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return err
	}
	logger.Info("dependency_connected", "dependency", name)
	return nil
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// RedactURL strips the password from a connection URL.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// SanitizeError renders err with every secret replaced by its redacted form.
func SanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := RedactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
