package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuj-jha-1/Expense-Tracker/internal/cache"
	"github.com/anuj-jha-1/Expense-Tracker/internal/config"
	"github.com/anuj-jha-1/Expense-Tracker/internal/events"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository/memory"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"postgres://user:secret@db:5432/ledger", "postgres://user@db:5432/ledger"},
		{"redis://:secret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"amqp://guest@mq:5672/", "amqp://guest@mq:5672/"},
		{"::not a url", "[redacted]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactURL(tt.in), tt.in)
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://user:secret@db:5432/ledger"
	err := errors.New("dial " + dsn + " failed: password=hunter2 rejected")

	got := SanitizeError(err, dsn)
	assert.NotContains(t, got, "secret")
	assert.NotContains(t, got, "hunter2")
	assert.Contains(t, got, "postgres://user@db:5432/ledger")
	assert.Empty(t, SanitizeError(nil, dsn))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestOpenStore_Backends(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	store, err := OpenStore(ctx, &config.Config{StoreBackend: config.BackendMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)

	path := t.TempDir() + "/ledger.db"
	store, err = OpenStore(ctx, &config.Config{StoreBackend: config.BackendSQLite, SQLitePath: path}, logger)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, store)
	require.NoError(t, store.Ping(ctx))
	store.Close()

	_, err = OpenStore(ctx, &config.Config{StoreBackend: "mongo"}, logger)
	assert.Error(t, err)
}

func TestOpenCacheAndPublisher_Defaults(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}

	c, err := OpenCache(ctx, cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &cache.Local{}, c)

	p, err := OpenPublisher(ctx, cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, events.Noop{}, p)
}

func TestOpenCache_GivesUpAfterTimeout(t *testing.T) {
	cfg := &config.Config{
		RedisURL:            "redis://:secret@127.0.0.1:1/0",
		StartupRetryTimeout: 300 * time.Millisecond,
	}

	_, err := OpenCache(context.Background(), cfg, discardLogger())
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "secret"), err.Error())
}
