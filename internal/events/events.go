// Package events publishes ledger domain events to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

// Type names a domain event. It doubles as the AMQP routing key.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
)

// Event is the envelope sent for every ledger mutation.
type Event struct {
	ID          string              `json:"id"`
	Type        Type                `json:"type"`
	OccurredAt  time.Time           `json:"occurred_at"`
	OwnerID     string              `json:"owner_id"`
	Transaction *TransactionPayload `json:"transaction"`
}

// TransactionPayload is the event view of a transaction.
// Deleted events carry only the ID.
type TransactionPayload struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Version     int64  `json:"version,omitempty"`
}

// NewTransactionEvent builds an event for t.
func NewTransactionEvent(typ Type, t *model.Transaction, at time.Time) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       typ,
		OccurredAt: at.UTC(),
		OwnerID:    t.OwnerID,
		Transaction: &TransactionPayload{
			ID:          t.ID,
			Type:        string(t.Type),
			Category:    t.Category,
			Date:        t.Date.String(),
			Description: t.Description,
			Amount:      t.Amount.StringFixed(2),
			Version:     t.Version,
		},
	}
}

// NewDeletedEvent builds a deletion event.
func NewDeletedEvent(ownerID, id string, at time.Time) Event {
	return Event{
		ID:          ulid.Make().String(),
		Type:        TransactionDeleted,
		OccurredAt:  at.UTC(),
		OwnerID:     ownerID,
		Transaction: &TransactionPayload{ID: id},
	}
}

// Marshal encodes the event as JSON.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

// NewNoop returns a Publisher that drops events.
func NewNoop() Publisher { return Noop{} }

// Publish does nothing.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
