package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

func sample() []*model.Transaction {
	return []*model.Transaction{
		{ID: "1", Type: model.TypeExpense, Category: "Food", Date: model.NewDate(2024, time.March, 3)},
		{ID: "2", Type: model.TypeIncome, Category: "Salary", Date: model.NewDate(2024, time.March, 1)},
		{ID: "3", Type: model.TypeExpense, Category: "Bills", Date: model.NewDate(2024, time.March, 1)},
		{ID: "4", Type: model.TypeIncome, Category: "Other", Date: model.NewDate(2024, time.March, 5)},
		{ID: "5", Type: model.TypeExpense, Category: "Other", Date: model.NewDate(2024, time.March, 3)},
	}
}

func ids(txns []*model.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}

func typePtr(t model.TransactionType) *model.TransactionType {
	return &t
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"income only", Filter{Type: typePtr(model.TypeIncome)}, []string{"2", "4"}},
		{"expense only", Filter{Type: typePtr(model.TypeExpense)}, []string{"1", "3", "5"}},
		{"category only", Filter{Categories: []string{"Other"}}, []string{"4", "5"}},
		{"type and category", Filter{Type: typePtr(model.TypeExpense), Categories: []string{"Other"}}, []string{"5"}},
		{"several categories", Filter{Categories: []string{"Food", "Salary"}}, []string{"1", "2"}},
		{"no match", Filter{Type: typePtr(model.TypeIncome), Categories: []string{"Food"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := sample()
			got := tt.filter.Apply(in)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(in), "input must not be modified")
		})
	}
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	f, err := ParseFilter("", nil)
	require.NoError(t, err)
	assert.Nil(t, f.Type)
	assert.Empty(t, f.Categories)

	f, err = ParseFilter("income", []string{"Salary", "Business, Other", ""})
	require.NoError(t, err)
	require.NotNil(t, f.Type)
	assert.Equal(t, model.TypeIncome, *f.Type)
	assert.Equal(t, []string{"Salary", "Business", "Other"}, f.Categories)

	_, err = ParseFilter("transfer", nil)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderDateDesc, o)

	for _, valid := range []string{"date_desc", "date_asc", "created"} {
		o, err := ParseOrder(valid)
		require.NoError(t, err)
		assert.Equal(t, Order(valid), o)
	}

	_, err = ParseOrder("amount")
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order Order
		want  []string
	}{
		{OrderDateDesc, []string{"4", "1", "5", "2", "3"}},
		{OrderDateAsc, []string{"2", "3", "1", "5", "4"}},
		{OrderCreated, []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			t.Parallel()

			txns := sample()
			Sort(txns, tt.order)
			assert.Equal(t, tt.want, ids(txns))
		})
	}
}
