// Package storetest holds a behavioural suite run against every store backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/query"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository"
	"github.com/anuj-jha-1/Expense-Tracker/internal/testutil"
)

// Store is the union of the user and transaction store contracts.
type Store interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	CreateTransaction(ctx context.Context, t *model.Transaction) error
	GetTransaction(ctx context.Context, ownerID, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, filter query.Filter) ([]*model.Transaction, error)
	UpdateTransaction(ctx context.Context, t *model.Transaction, expectedVersion *int64) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) error
}

// Run executes the suite. newStore must return an empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("create and get", func(t *testing.T) { testCreateGet(t, newStore(t)) })
	t.Run("owner scoping", func(t *testing.T) { testOwnerScoping(t, newStore(t)) })
	t.Run("list order and filters", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("version conflict", func(t *testing.T) { testVersionConflict(t, newStore(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newStore(t)) })
}

func mustUser(t *testing.T, s Store) *model.User {
	t.Helper()
	u := testutil.NewTestUser(t)
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	got, err = s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := testutil.NewTestUser(t)
	dup.Email = u.Email
	assert.ErrorIs(t, s.CreateUser(ctx, dup), repository.ErrEmailExists)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func testCreateGet(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s)

	txn := testutil.NewTestExpense(t, u.ID, "Bills", "1234.56")
	txn.Date = model.NewDate(2024, time.February, 29)
	require.NoError(t, s.CreateTransaction(ctx, txn))

	got, err := s.GetTransaction(ctx, u.ID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, u.ID, got.OwnerID)
	assert.Equal(t, model.TypeExpense, got.Type)
	assert.Equal(t, "Bills", got.Category)
	assert.Equal(t, "2024-02-29", got.Date.String())
	assert.Equal(t, txn.Description, got.Description)
	assert.Equal(t, "1234.56", got.Amount.StringFixed(2))
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, txn.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", txn.CreatedAt, got.CreatedAt)

	_, err = s.GetTransaction(ctx, u.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
}

func testOwnerScoping(t *testing.T, s Store) {
	ctx := context.Background()
	alice := mustUser(t, s)
	bob := mustUser(t, s)

	txn := testutil.NewTestTransaction(t, alice.ID)
	require.NoError(t, s.CreateTransaction(ctx, txn))

	_, err := s.GetTransaction(ctx, bob.ID, txn.ID)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)

	hijack := txn.Clone()
	hijack.OwnerID = bob.ID
	hijack.Amount = decimal.RequireFromString("1.00")
	_, err = s.UpdateTransaction(ctx, hijack, nil)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)

	assert.ErrorIs(t, s.DeleteTransaction(ctx, bob.ID, txn.ID), repository.ErrTransactionNotFound)

	bobs, err := s.ListTransactions(ctx, bob.ID, query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, bobs)

	got, err := s.GetTransaction(ctx, alice.ID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "42.50", got.Amount.StringFixed(2))
	assert.Equal(t, int64(1), got.Version)
}

func testList(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s)
	other := mustUser(t, s)

	base := time.Now().UTC().Truncate(time.Second)
	seed := []*model.Transaction{
		testutil.NewTestExpense(t, u.ID, "Food", "10.00"),
		testutil.NewTestIncome(t, u.ID, "Salary", "2000.00"),
		testutil.NewTestExpense(t, u.ID, "Other", "5.00"),
		testutil.NewTestIncome(t, u.ID, "Other", "7.00"),
		testutil.NewTestExpense(t, u.ID, "Bills", "80.00"),
	}
	for i, txn := range seed {
		txn.CreatedAt = base.Add(time.Duration(i) * time.Second)
		txn.UpdatedAt = txn.CreatedAt
		require.NoError(t, s.CreateTransaction(ctx, txn))
	}
	require.NoError(t, s.CreateTransaction(ctx, testutil.NewTestTransaction(t, other.ID)))

	income := model.TypeIncome
	expense := model.TypeExpense
	tests := []struct {
		name   string
		filter query.Filter
		want   []int
	}{
		{"all", query.Filter{}, []int{0, 1, 2, 3, 4}},
		{"income", query.Filter{Type: &income}, []int{1, 3}},
		{"expense", query.Filter{Type: &expense}, []int{0, 2, 4}},
		{"category", query.Filter{Categories: []string{"Other"}}, []int{2, 3}},
		{"type and category", query.Filter{Type: &income, Categories: []string{"Other"}}, []int{3}},
		{"any of categories", query.Filter{Categories: []string{"Bills", "Food"}}, []int{0, 4}},
		{"no match", query.Filter{Type: &income, Categories: []string{"Food"}}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTransactions(ctx, u.ID, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)

			want := make([]string, len(tt.want))
			for i, idx := range tt.want {
				want[i] = seed[idx].ID
			}
			gotIDs := make([]string, len(got))
			for i, txn := range got {
				gotIDs[i] = txn.ID
			}
			assert.Equal(t, want, gotIDs)
		})
	}
}

func testUpdate(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s)

	txn := testutil.NewTestTransaction(t, u.ID)
	require.NoError(t, s.CreateTransaction(ctx, txn))

	repl := txn.Clone()
	repl.Type = model.TypeIncome
	repl.Category = "Freelance"
	repl.Date = model.NewDate(2023, time.December, 31)
	repl.Description = "Invoice 42"
	repl.Amount = decimal.RequireFromString("999.99")
	repl.CreatedAt = time.Now().Add(24 * time.Hour)
	repl.UpdatedAt = txn.UpdatedAt.Add(time.Minute)

	updated, err := s.UpdateTransaction(ctx, repl, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, model.TypeIncome, updated.Type)
	assert.Equal(t, "Freelance", updated.Category)
	assert.Equal(t, "2023-12-31", updated.Date.String())
	assert.Equal(t, "999.99", updated.Amount.StringFixed(2))
	assert.True(t, txn.CreatedAt.Equal(updated.CreatedAt), "created_at must not change")
	assert.Equal(t, u.ID, updated.OwnerID)

	got, err := s.GetTransaction(ctx, u.ID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Invoice 42", got.Description)
	assert.Equal(t, int64(2), got.Version)

	missing := testutil.NewTestTransaction(t, u.ID)
	_, err = s.UpdateTransaction(ctx, missing, nil)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
}

func testVersionConflict(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s)

	txn := testutil.NewTestTransaction(t, u.ID)
	require.NoError(t, s.CreateTransaction(ctx, txn))

	v1 := int64(1)
	first := txn.Clone()
	first.Description = "first writer"
	_, err := s.UpdateTransaction(ctx, first, &v1)
	require.NoError(t, err)

	second := txn.Clone()
	second.Description = "stale writer"
	_, err = s.UpdateTransaction(ctx, second, &v1)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	got, err := s.GetTransaction(ctx, u.ID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "first writer", got.Description)
	assert.Equal(t, int64(2), got.Version)

	missing := testutil.NewTestTransaction(t, u.ID)
	_, err = s.UpdateTransaction(ctx, missing, &v1)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
}

func testDelete(t *testing.T, s Store) {
	ctx := context.Background()
	u := mustUser(t, s)

	keep := testutil.NewTestTransaction(t, u.ID)
	drop := testutil.NewTestTransaction(t, u.ID)
	require.NoError(t, s.CreateTransaction(ctx, keep))
	require.NoError(t, s.CreateTransaction(ctx, drop))

	require.NoError(t, s.DeleteTransaction(ctx, u.ID, drop.ID))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, u.ID, drop.ID), repository.ErrTransactionNotFound)

	_, err := s.GetTransaction(ctx, u.ID, drop.ID)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)

	left, err := s.ListTransactions(ctx, u.ID, query.Filter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep.ID, left[0].ID)
}
