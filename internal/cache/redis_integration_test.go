//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/testutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	url := testutil.RequireEnv(t, "REDIS_URL")
	ctx := context.Background()

	c, err := New(ctx, url)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return c
}

func TestCache_Sessions(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.RevokeToken(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}
	if revoked, err := c.IsTokenRevoked(ctx, "jti-1"); err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}

	if _, err := c.GetIdentity(ctx, "user-1"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := c.SetIdentity(ctx, &model.Identity{UserID: "user-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("SetIdentity failed: %v", err)
	}
	got, err := c.GetIdentity(ctx, "user-1")
	if err != nil || got.Email != "a@example.com" {
		t.Fatalf("GetIdentity = %+v, %v", got, err)
	}
}

func TestCache_UserRateLimit(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := c.CheckUserRateLimit(ctx, "user-1", 60, 2)
		if err != nil || !res.Allowed {
			t.Fatalf("request %d should be allowed: %+v %v", i, res, err)
		}
	}
	res, err := c.CheckUserRateLimit(ctx, "user-1", 60, 2)
	if err != nil {
		t.Fatalf("CheckUserRateLimit failed: %v", err)
	}
	if res.Allowed {
		t.Error("third request should be denied")
	}
}
