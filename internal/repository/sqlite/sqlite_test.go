package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuj-jha-1/Expense-Tracker/internal/query"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository/storetest"
	"github.com/anuj-jha-1/Expense-Tracker/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store { return openTestStore(t) })
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	s.Close()

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestStore_DataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	u := testutil.NewTestUser(t)
	require.NoError(t, s.CreateUser(ctx, u))
	txn := testutil.NewTestExpense(t, u.ID, "Food", "0.10")
	require.NoError(t, s.CreateTransaction(ctx, txn))
	s.Close()

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	list, err := s.ListTransactions(ctx, u.ID, query.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "0.10", list[0].Amount.StringFixed(2))
}

func TestStore_ForeignKeyEnforced(t *testing.T) {
	s := openTestStore(t)

	txn := testutil.NewTestTransaction(t, "no-such-user")
	assert.Error(t, s.CreateTransaction(context.Background(), txn))
}

func TestMigrate_DownThenUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	require.NoError(t, Migrate(path, false))
	require.NoError(t, Migrate(path, true))
	require.NoError(t, Migrate(path, false))
}
