//go:build integration

package events

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/testutil"
)

func TestAMQPPublisher_Publish(t *testing.T) {
	url := testutil.RequireEnv(t, "AMQP_URL")

	p, err := NewAMQPPublisher(AMQPConfig{
		URL:      url,
		Exchange: "ledger.events.test",
		Queue:    testutil.UniqueID("ledger-test"),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Close()

	txn := &model.Transaction{
		ID:       "txn-1",
		OwnerID:  "user-1",
		Type:     model.TypeIncome,
		Category: "Salary",
		Date:     model.NewDate(2024, time.January, 31),
		Amount:   decimal.RequireFromString("100"),
	}
	if err := p.Publish(context.Background(), NewTransactionEvent(TransactionCreated, txn, time.Now())); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
