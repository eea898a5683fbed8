package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

const (
	// revokedTokenPrefix is the Redis key prefix for the JWT denylist.
	revokedTokenPrefix = "auth:revoked:"
	// identityPrefix is the Redis key prefix for resolved identities.
	identityPrefix = "auth:identity:"
	// IdentityTTL is how long a resolved identity is trusted without a store lookup.
	IdentityTTL = 5 * time.Minute
)

// RevokeToken denylists a token ID until ttl elapses.
// A non-positive ttl means the token has already expired and nothing is stored.
func (c *Cache) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedTokenPrefix+jti, 1, ttl).Err()
}

// IsTokenRevoked reports whether jti is on the denylist.
func (c *Cache) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// GetIdentity returns the cached identity for userID or ErrCacheMiss.
func (c *Cache) GetIdentity(ctx context.Context, userID string) (*model.Identity, error) {
	data, err := c.client.Get(ctx, identityPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}

	var id model.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		// Corrupted entry, treat as miss.
		return nil, ErrCacheMiss
	}
	return &id, nil
}

// SetIdentity caches id for IdentityTTL.
func (c *Cache) SetIdentity(ctx context.Context, id *model.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	return c.client.Set(ctx, identityPrefix+id.UserID, data, IdentityTTL).Err()
}
