package service

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

	"github.com/anuj-jha-1/Expense-Tracker/internal/auth"
	"github.com/anuj-jha-1/Expense-Tracker/internal/cache"
	"github.com/anuj-jha-1/Expense-Tracker/internal/metrics"
	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	svc      *AuthService
	store    *memory.Store
	sessions *cache.Local
	tokens   *auth.TokenManager
	metrics  *metrics.InMemoryRecorder
}

func newAuth(t *testing.T) authFixture {
	t.Helper()
	f := authFixture{
		store:    memory.New(),
		sessions: cache.NewLocal(),
		tokens:   auth.NewTokenManager(testSecret, time.Hour),
		metrics:  metrics.NewInMemory(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewAuthService(f.store, f.sessions, f.tokens, f.metrics, logger)
	f.svc.SetHashParams(auth.Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8})
	return f
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "  Alice@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.NotEmpty(t, reg.Token)
	assert.NotEqual(t, "s3cret-pass", reg.User.PasswordHash)
	assert.True(t, reg.ExpiresAt.After(time.Now()))

	login, err := f.svc.Login(ctx, "ALICE@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	assert.Equal(t, uint64(1), f.metrics.Snapshot().UsersRegistered)
}

func TestAuth_RegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"missing email", "", "password1", ErrMissingField},
		{"bad email", "not-an-email", "password1", ErrInvalidEmail},
		{"display name", "Alice <a@example.com>", "password1", ErrInvalidEmail},
		{"missing password", "a@example.com", "", ErrMissingField},
		{"short password", "a@example.com", "short", ErrWeakPassword},
		{"huge password", "a@example.com", strings.Repeat("x", MaxPasswordLength+1), ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuth(t)
			_, err := f.svc.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "A@EXAMPLE.COM", "password2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuth_LoginFailures(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, uint64(3), f.metrics.Snapshot().AuthFailures)
}

func TestAuth_ResolveToken(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	id, err := f.svc.ResolveToken(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, &model.Identity{UserID: reg.User.ID, Email: "a@example.com"}, id)

	cached, err := f.sessions.GetIdentity(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, id, cached)

	_, err = f.svc.ResolveToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuth_ResolveTokenForDeletedUser(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	// Signed correctly but the account never existed.
	token, _, err := f.tokens.Issue("ghost", "ghost@example.com")
	require.NoError(t, err)

	_, err = f.svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuth_Logout(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	other, err := f.svc.Login(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, reg.Token))

	_, err = f.svc.ResolveToken(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Other sessions stay valid.
	_, err = f.svc.ResolveToken(ctx, other.Token)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.Logout(ctx, "garbage"), ErrUnauthenticated)
}

type failingSessions struct{ *cache.Local }

func (failingSessions) IsTokenRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestAuth_RevocationCheckFailsOpen(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()
	f.svc.sessions = failingSessions{cache.NewLocal()}

	reg, err := f.svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	_, err = f.svc.ResolveToken(ctx, reg.Token)
	assert.NoError(t, err)
}

func TestAuth_MeAndLookup(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	me, err := f.svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", me.Email)

	_, err = f.svc.Me(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.LookupUser(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	res, err := f.svc.IssueToken(ctx, "A@example.com")
	require.NoError(t, err)
	id, err := f.svc.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)
}
