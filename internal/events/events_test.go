package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

func TestNewTransactionEvent_Payload(t *testing.T) {
	t.Parallel()

	txn := &model.Transaction{
		ID:          "01HXYZ",
		OwnerID:     "user-1",
		Type:        model.TypeExpense,
		Category:    "Food",
		Date:        model.NewDate(2024, time.June, 1),
		Description: "Lunch",
		Amount:      decimal.RequireFromString("12.5"),
		Version:     3,
	}
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	e := NewTransactionEvent(TransactionUpdated, txn, at)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, time.UTC, e.OccurredAt.Location())

	body, err := e.Marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "transaction.updated", decoded["type"])
	assert.Equal(t, "user-1", decoded["owner_id"])

	payload := decoded["transaction"].(map[string]any)
	assert.Equal(t, "12.50", payload["amount"])
	assert.Equal(t, "2024-06-01", payload["date"])
	assert.Equal(t, float64(3), payload["version"])
}

func TestNewDeletedEvent_OnlyID(t *testing.T) {
	t.Parallel()

	e := NewDeletedEvent("user-1", "txn-1", time.Now())
	body, err := e.Marshal()
	require.NoError(t, err)

	var decoded struct {
		Transaction map[string]any `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, map[string]any{"id": "txn-1"}, decoded.Transaction)
}

func TestNoop(t *testing.T) {
	t.Parallel()

	p := NewNoop()
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
