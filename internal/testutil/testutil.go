package testutil

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates every table from the embedded PostgreSQL migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := migrations.FS.ReadDir(migrations.PostgresDir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var ups, downs []string
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups = append(ups, e.Name())
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs = append(downs, e.Name())
		}
	}
	sort.Strings(ups)
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))

	for _, name := range append(downs, ups...) {
		sql, err := migrations.FS.ReadFile(path.Join(migrations.PostgresDir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		ID:           UniqueID("user"),
		Email:        strings.ToLower(UniqueID("user")) + "@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestTransaction creates an expense owned by ownerID with sensible defaults.
func NewTestTransaction(t testing.TB, ownerID string) *model.Transaction {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Transaction{
		ID:          ulid.Make().String(),
		OwnerID:     ownerID,
		Type:        model.TypeExpense,
		Category:    "Food",
		Date:        model.DateOf(now),
		Description: "Groceries",
		Amount:      decimal.RequireFromString("42.50"),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestIncome creates an income transaction owned by ownerID.
func NewTestIncome(t testing.TB, ownerID, category, amount string) *model.Transaction {
	t.Helper()
	txn := NewTestTransaction(t, ownerID)
	txn.Type = model.TypeIncome
	txn.Category = category
	txn.Description = category + " payment"
	txn.Amount = decimal.RequireFromString(amount)
	return txn
}

// NewTestExpense creates an expense transaction owned by ownerID.
func NewTestExpense(t testing.TB, ownerID, category, amount string) *model.Transaction {
	t.Helper()
	txn := NewTestTransaction(t, ownerID)
	txn.Category = category
	txn.Description = category + " purchase"
	txn.Amount = decimal.RequireFromString(amount)
	return txn
}

var idSeq atomic.Uint64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), idSeq.Add(1))
}
