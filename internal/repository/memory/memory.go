// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/query"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository"
)

// Store keeps users and transactions in memory. Transactions are kept in
// insertion order, which is the storage order seen by List.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*model.User
	byEmail map[string]string
	txns    []*model.Transaction
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// CreateUser stores a user; emails are unique case-insensitively.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return repository.ErrEmailExists
	}
	u := *user
	s.users[u.ID] = &u
	s.byEmail[key] = u.ID
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

// GetUserByEmail returns a copy of the user with the given email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *s.users[id]
	return &c, nil
}

// CreateTransaction appends a copy of t.
func (s *Store) CreateTransaction(_ context.Context, t *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txns = append(s.txns, t.Clone())
	return nil
}

// GetTransaction returns a copy of the owner's transaction.
func (s *Store) GetTransaction(_ context.Context, ownerID, id string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(ownerID, id)
	if i < 0 {
		return nil, repository.ErrTransactionNotFound
	}
	return s.txns[i].Clone(), nil
}

// ListTransactions returns copies of the owner's matching transactions in insertion order.
func (s *Store) ListTransactions(_ context.Context, ownerID string, filter query.Filter) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*model.Transaction, 0)
	for _, t := range s.txns {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}

	out := filter.Apply(owned)
	for i, t := range out {
		out[i] = t.Clone()
	}
	return out, nil
}

// UpdateTransaction replaces the mutable fields of the stored record.
func (s *Store) UpdateTransaction(_ context.Context, t *model.Transaction, expectedVersion *int64) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t.OwnerID, t.ID)
	if i < 0 {
		return nil, repository.ErrTransactionNotFound
	}

	cur := s.txns[i]
	if expectedVersion != nil && *expectedVersion != cur.Version {
		return nil, repository.ErrVersionConflict
	}

	next := cur.Clone()
	next.Type = t.Type
	next.Category = t.Category
	next.Date = t.Date
	next.Description = t.Description
	next.Amount = t.Amount
	next.UpdatedAt = t.UpdatedAt
	next.Version = cur.Version + 1
	s.txns[i] = next

	return next.Clone(), nil
}

// DeleteTransaction removes the owner's transaction.
func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ownerID, id)
	if i < 0 {
		return repository.ErrTransactionNotFound
	}
	s.txns = append(s.txns[:i], s.txns[i+1:]...)
	return nil
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(ownerID, id string) int {
	for i, t := range s.txns {
		if t.ID == id && t.OwnerID == ownerID {
			return i
		}
	}
	return -1
}
