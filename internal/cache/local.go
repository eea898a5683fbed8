package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

// sweepEvery bounds how many writes happen between expiry sweeps.
const sweepEvery = 256

type bucket struct {
	tokens  float64
	last    time.Time
	expires time.Time
}

type identityEntry struct {
	id      model.Identity
	expires time.Time
}

// Local is a single-process Cache used when no Redis URL is configured.
// It implements the same session and rate limit methods as Cache.
type Local struct {
	mu         sync.Mutex
	now        func() time.Time
	revoked    map[string]time.Time
	identities map[string]identityEntry
	buckets    map[string]*bucket
	writes     int
}

// NewLocal returns an empty Local cache.
func NewLocal() *Local {
	return &Local{
		now:        time.Now,
		revoked:    make(map[string]time.Time),
		identities: make(map[string]identityEntry),
		buckets:    make(map[string]*bucket),
	}
}

// Ping always succeeds.
func (l *Local) Ping(context.Context) error { return nil }

// Close is a no-op.
func (l *Local) Close() error { return nil }

// RevokeToken denylists jti until ttl elapses.
func (l *Local) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.revoked[jti] = l.now().Add(ttl)
	l.wrote()
	return nil
}

// IsTokenRevoked reports whether jti is on the denylist.
func (l *Local) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if !l.now().Before(exp) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}

// GetIdentity returns the cached identity for userID or ErrCacheMiss.
func (l *Local) GetIdentity(_ context.Context, userID string) (*model.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.identities[userID]
	if !ok || !l.now().Before(e.expires) {
		delete(l.identities, userID)
		return nil, ErrCacheMiss
	}
	id := e.id
	return &id, nil
}

// SetIdentity caches id for IdentityTTL.
func (l *Local) SetIdentity(_ context.Context, id *model.Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.identities[id.UserID] = identityEntry{id: *id, expires: l.now().Add(IdentityTTL)}
	l.wrote()
	return nil
}

// CheckUserRateLimit consumes one token from userID's bucket.
func (l *Local) CheckUserRateLimit(_ context.Context, userID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute == 0 {
		return allowAll(burst), nil
	}
	return l.take(rateLimitUserPrefix+userID, float64(ratePerMinute)/60.0, burst, rateLimitUserTTL), nil
}

// CheckIPRateLimit consumes one token from the bucket for ip.
func (l *Local) CheckIPRateLimit(_ context.Context, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	if ratePerSecond == 0 {
		return allowAll(burst), nil
	}
	return l.take(rateLimitIPPrefix+hashIP(ip), float64(ratePerSecond), burst, rateLimitIPTTL), nil
}

// take mirrors tokenBucketScript.
func (l *Local) take(key string, rate float64, burst int, ttl time.Duration) *RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.expires) {
		b = &bucket{tokens: float64(burst), last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens = math.Min(float64(burst), b.tokens+elapsed*rate)
	b.last = now
	b.expires = now.Add(ttl)

	res := &RateLimitResult{ResetAt: now.Add(time.Duration(float64(time.Second) / rate))}
	if b.tokens >= 1 {
		b.tokens--
		res.Allowed = true
	} else {
		res.RetryAfter = time.Duration(math.Ceil((1-b.tokens)/rate)) * time.Second
	}
	res.Remaining = int64(math.Floor(b.tokens))

	l.wrote()
	return res
}

// wrote must be called with l.mu held.
func (l *Local) wrote() {
	l.writes++
	if l.writes%sweepEvery != 0 {
		return
	}

	now := l.now()
	for k, exp := range l.revoked {
		if !now.Before(exp) {
			delete(l.revoked, k)
		}
	}
	for k, e := range l.identities {
		if !now.Before(e.expires) {
			delete(l.identities, k)
		}
	}
	for k, b := range l.buckets {
		if !now.Before(b.expires) {
			delete(l.buckets, k)
		}
	}
}
