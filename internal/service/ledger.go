package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/anuj-jha-1/Expense-Tracker/internal/events"
	"github.com/anuj-jha-1/Expense-Tracker/internal/metrics"
	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/query"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository"
	"github.com/anuj-jha-1/Expense-Tracker/internal/stats"
	"github.com/anuj-jha-1/Expense-Tracker/internal/taxonomy"
)

// TransactionStore persists transactions scoped to an owner.
// Implemented by repository.Repository, sqlite.Store and memory.Store.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *model.Transaction) error
	GetTransaction(ctx context.Context, ownerID, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, filter query.Filter) ([]*model.Transaction, error)
	UpdateTransaction(ctx context.Context, t *model.Transaction, expectedVersion *int64) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) error
}

// LedgerService owns transaction validation, persistence and aggregation.
type LedgerService struct {
	store     TransactionStore
	taxonomy  *taxonomy.Taxonomy
	publisher events.Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewLedgerService creates a new LedgerService. Nil collaborators get no-op defaults.
func NewLedgerService(store TransactionStore, publisher events.Publisher, recorder metrics.Recorder, logger *slog.Logger) *LedgerService {
	if publisher == nil {
		publisher = events.NewNoop()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:     store,
		taxonomy:  taxonomy.Default(),
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Categories returns the allowed categories per type.
func (s *LedgerService) Categories() map[model.TransactionType][]string {
	return s.taxonomy.All()
}

// Create validates in and stores a new transaction for owner.
func (s *LedgerService) Create(ctx context.Context, owner string, in TransactionInput) (*model.Transaction, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}

	v, err := s.validate(in)
	if err != nil {
		s.metrics.IncValidationFailed()
		return nil, err
	}

	now := s.now()
	t := &model.Transaction{
		ID:          ulid.Make().String(),
		OwnerID:     owner,
		Type:        v.typ,
		Category:    v.category,
		Date:        v.date,
		Description: v.description,
		Amount:      v.amount,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.metrics.IncTransactionCreated()
	s.logger.InfoContext(ctx, "transaction_created",
		"transaction_id", t.ID,
		"owner_id", owner,
		"type", t.Type,
	)
	s.publish(ctx, events.NewTransactionEvent(events.TransactionCreated, t, now))

	return t, nil
}

// Get returns one of owner's transactions.
func (s *LedgerService) Get(ctx context.Context, owner, id string) (*model.Transaction, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}

	t, err := s.store.GetTransaction(ctx, owner, id)
	if err != nil {
		return nil, mapStoreError(err, "get transaction")
	}
	return t, nil
}

// List returns owner's transactions matching filter, ordered by order.
// The result is never nil.
func (s *LedgerService) List(ctx context.Context, owner string, filter query.Filter, order query.Order) ([]*model.Transaction, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	if order == "" {
		order = query.DefaultOrder
	}

	txns, err := s.store.ListTransactions(ctx, owner, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txns == nil {
		txns = []*model.Transaction{}
	}

	query.Sort(txns, order)
	return txns, nil
}

// Update replaces every mutable field of an existing transaction.
// When in.Version is set, the update only applies to that version.
func (s *LedgerService) Update(ctx context.Context, owner, id string, in TransactionInput) (*model.Transaction, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}

	v, err := s.validate(in)
	if err != nil {
		s.metrics.IncValidationFailed()
		return nil, err
	}

	now := s.now()
	updated, err := s.store.UpdateTransaction(ctx, &model.Transaction{
		ID:          id,
		OwnerID:     owner,
		Type:        v.typ,
		Category:    v.category,
		Date:        v.date,
		Description: v.description,
		Amount:      v.amount,
		UpdatedAt:   now,
	}, in.Version)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.metrics.IncVersionConflict()
		}
		return nil, mapStoreError(err, "update transaction")
	}

	s.metrics.IncTransactionUpdated()
	s.logger.InfoContext(ctx, "transaction_updated",
		"transaction_id", id,
		"owner_id", owner,
		"version", updated.Version,
	)
	s.publish(ctx, events.NewTransactionEvent(events.TransactionUpdated, updated, now))

	return updated, nil
}

// Delete removes one of owner's transactions.
func (s *LedgerService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}

	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		return mapStoreError(err, "delete transaction")
	}

	s.metrics.IncTransactionDeleted()
	s.logger.InfoContext(ctx, "transaction_deleted",
		"transaction_id", id,
		"owner_id", owner,
	)
	s.publish(ctx, events.NewDeletedEvent(owner, id, s.now()))

	return nil
}

// Summary returns owner's income, expense and net totals.
func (s *LedgerService) Summary(ctx context.Context, owner string) (model.Summary, error) {
	if owner == "" {
		return model.Summary{}, ErrUnauthenticated
	}

	txns, err := s.store.ListTransactions(ctx, owner, query.Filter{})
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	start := time.Now()
	summary := stats.Summarize(txns)
	s.metrics.ObserveAggregationDuration(time.Since(start))

	return summary, nil
}

// Stats returns owner's per-category breakdowns.
func (s *LedgerService) Stats(ctx context.Context, owner string) (model.Stats, error) {
	if owner == "" {
		return model.Stats{}, ErrUnauthenticated
	}

	txns, err := s.store.ListTransactions(ctx, owner, query.Filter{})
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	start := time.Now()
	result := stats.Compute(txns)
	s.metrics.ObserveAggregationDuration(time.Since(start))

	return result, nil
}

// publish delivers e without failing the caller.
func (s *LedgerService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.metrics.IncEventPublished(metrics.StatusDropped)
		s.logger.WarnContext(ctx, "event_publish_failed",
			"event_type", e.Type,
			"event_id", e.ID,
			"error", err,
		)
		return
	}
	s.metrics.IncEventPublished(metrics.StatusSuccess)
}

func mapStoreError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrTransactionNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrConflict
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
