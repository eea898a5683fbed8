package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/query"
)

// transactionColumns is the select list matched by scanTransaction.
const transactionColumns = `id, owner_id, type, category, date, description, amount::text, version, created_at, updated_at`

// CreateTransaction inserts a new transaction.
func (r *Repository) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, owner_id, type, category, date, description, amount, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.OwnerID,
		string(t.Type),
		t.Category,
		t.Date.Time(),
		t.Description,
		t.Amount.String(),
		t.Version,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a transaction owned by ownerID.
func (r *Repository) GetTransaction(ctx context.Context, ownerID, id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND owner_id = $2
	`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// ListTransactions returns the owner's transactions matching filter, in creation order.
func (r *Repository) ListTransactions(ctx context.Context, ownerID string, filter query.Filter) ([]*model.Transaction, error) {
	q := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	argIndex := 2

	if filter.Type != nil {
		q += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, string(*filter.Type))
		argIndex++
	}

	if len(filter.Categories) > 0 {
		q += fmt.Sprintf(" AND category = ANY($%d)", argIndex)
		args = append(args, pq.Array(filter.Categories))
	}

	q += " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]*model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

// UpdateTransaction replaces the mutable fields of t and bumps its version.
// When expectedVersion is set, the write only happens if it matches the stored version.
func (r *Repository) UpdateTransaction(ctx context.Context, t *model.Transaction, expectedVersion *int64) (*model.Transaction, error) {
	query := `
		UPDATE transactions
		SET type = $3, category = $4, date = $5, description = $6, amount = $7::numeric,
		    version = version + 1, updated_at = $8
		WHERE id = $1 AND owner_id = $2 AND ($9::bigint IS NULL OR version = $9)
		RETURNING ` + transactionColumns

	updated, err := scanTransaction(r.pool.QueryRow(ctx, query,
		t.ID,
		t.OwnerID,
		string(t.Type),
		t.Category,
		t.Date.Time(),
		t.Description,
		t.Amount.String(),
		t.UpdatedAt,
		expectedVersion,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if expectedVersion == nil {
		return nil, ErrTransactionNotFound
	}

	exists, err := r.transactionExists(ctx, t.OwnerID, t.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrVersionConflict
	}
	return nil, ErrTransactionNotFound
}

// DeleteTransaction removes a transaction owned by ownerID.
func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *Repository) transactionExists(ctx context.Context, ownerID, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1 AND owner_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}
	return exists, nil
}

// scanTransaction scans a row selected with transactionColumns.
func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var (
		t      model.Transaction
		typ    string
		date   time.Time
		amount string
	)

	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&typ,
		&t.Category,
		&date,
		&t.Description,
		&amount,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Type = model.TransactionType(typ)
	t.Date = model.DateOf(date)
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}

	return &t, nil
}
