package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLocal() (*Local, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLocal()
	l.now = clock.now
	return l, clock
}

func TestLocal_RevokeToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, clock := newTestLocal()

	if err := l.RevokeToken(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}

	if revoked, _ := l.IsTokenRevoked(ctx, "jti-1"); !revoked {
		t.Error("token should be revoked")
	}
	if revoked, _ := l.IsTokenRevoked(ctx, "jti-2"); revoked {
		t.Error("other token should not be revoked")
	}

	clock.advance(time.Minute)
	if revoked, _ := l.IsTokenRevoked(ctx, "jti-1"); revoked {
		t.Error("revocation should lapse with the token")
	}
}

func TestLocal_RevokeExpiredTokenIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := newTestLocal()

	_ = l.RevokeToken(ctx, "jti-1", 0)
	if revoked, _ := l.IsTokenRevoked(ctx, "jti-1"); revoked {
		t.Error("zero ttl should store nothing")
	}
}

func TestLocal_Identity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, clock := newTestLocal()

	if _, err := l.GetIdentity(ctx, "user-1"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	in := &model.Identity{UserID: "user-1", Email: "a@example.com"}
	_ = l.SetIdentity(ctx, in)
	in.Email = "mutated@example.com"

	got, err := l.GetIdentity(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetIdentity failed: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("cached identity should be a copy, got %q", got.Email)
	}

	clock.advance(IdentityTTL)
	if _, err := l.GetIdentity(ctx, "user-1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expiry after TTL, got %v", err)
	}
}

func TestLocal_UserRateLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, clock := newTestLocal()

	// 60/min refills one token per second.
	for i := 0; i < 3; i++ {
		res, err := l.CheckUserRateLimit(ctx, "user-1", 60, 3)
		if err != nil || !res.Allowed {
			t.Fatalf("request %d should be allowed: %+v %v", i, res, err)
		}
	}

	res, _ := l.CheckUserRateLimit(ctx, "user-1", 60, 3)
	if res.Allowed {
		t.Fatal("burst exhausted, request should be denied")
	}
	if res.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", res.RetryAfter)
	}

	// Other users have their own bucket.
	if res, _ := l.CheckUserRateLimit(ctx, "user-2", 60, 3); !res.Allowed {
		t.Error("user-2 should not share user-1's bucket")
	}

	clock.advance(time.Second)
	if res, _ := l.CheckUserRateLimit(ctx, "user-1", 60, 3); !res.Allowed {
		t.Error("one token should have refilled")
	}
}

func TestLocal_IPRateLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := newTestLocal()

	if res, _ := l.CheckIPRateLimit(ctx, "10.0.0.1", 1, 1); !res.Allowed {
		t.Fatal("first request should be allowed")
	}
	if res, _ := l.CheckIPRateLimit(ctx, "10.0.0.1", 1, 1); res.Allowed {
		t.Error("second request should be denied")
	}
}

func TestLocal_ZeroRateDisablesLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := newTestLocal()

	for i := 0; i < 10; i++ {
		if res, _ := l.CheckUserRateLimit(ctx, "user-1", 0, 1); !res.Allowed {
			t.Fatal("zero rate should not limit")
		}
	}
}
