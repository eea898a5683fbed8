package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anuj-jha-1/Expense-Tracker/internal/auth"
	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

type stubResolver struct {
	identity *model.Identity
	err      error
	got      string
}

func (s *stubResolver) ResolveToken(_ context.Context, token string) (*model.Identity, error) {
	s.got = token
	return s.identity, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		resolver   *stubResolver
		wantStatus int
		wantUser   string
	}{
		{
			name:       "valid token",
			header:     "Bearer good-token",
			resolver:   &stubResolver{identity: &model.Identity{UserID: "user-1"}},
			wantStatus: http.StatusOK,
			wantUser:   "user-1",
		},
		{
			name:       "scheme is case insensitive",
			header:     "bearer good-token",
			resolver:   &stubResolver{identity: &model.Identity{UserID: "user-1"}},
			wantStatus: http.StatusOK,
			wantUser:   "user-1",
		},
		{
			name:       "missing header",
			header:     "",
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			resolver:   &stubResolver{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			header:     "Bearer bad-token",
			resolver:   &stubResolver{err: service.ErrUnauthenticated},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "resolver failure",
			header:     "Bearer good-token",
			resolver:   &stubResolver{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser string
			handler := Auth(AuthConfig{Logger: discardLogger(), Resolver: tt.resolver})(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotUser = auth.UserIDFromContext(r.Context())
					w.WriteHeader(http.StatusOK)
				}),
			)

			req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
			if tt.wantStatus == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"code":"UNAUTHORIZED"`) {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestAuth_DoesNotLogToken(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	resolver := &stubResolver{err: service.ErrUnauthenticated}
	handler := Auth(AuthConfig{Logger: logger, Resolver: resolver})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer secret-token-value")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if resolver.got != "secret-token-value" {
		t.Errorf("resolver got %q", resolver.got)
	}
	if strings.Contains(buf.String(), "secret-token-value") {
		t.Error("token leaked into logs")
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"BEARER abc", "abc"},
		{"Bearer", ""},
		{"Token abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		if got := BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
