package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anuj-jha-1/Expense-Tracker/internal/auth"
	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// TokenResolver turns a bearer token into an identity.
// Implemented by service.AuthService.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.Identity, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver TokenResolver
	// MinDuration pads failed attempts to a constant time. Zero disables padding.
	MinDuration time.Duration
}

// Auth returns a middleware that requires a valid bearer token and injects
// the resolved identity into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			fail := func(reason string) {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(ctx)),
				)
				if elapsed := time.Since(start); elapsed < cfg.MinDuration {
					time.Sleep(cfg.MinDuration - elapsed)
				}
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing bearer token")
			}

			token := BearerToken(r)
			if token == "" {
				fail("missing_token")
				return
			}

			identity, err := cfg.Resolver.ResolveToken(ctx, token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					fail("invalid_token")
					return
				}
				cfg.Logger.Error("token resolution failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(ctx)),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", identity.UserID),
				slog.String("request_id", GetRequestID(ctx)),
			)

			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(ctx, identity)))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
