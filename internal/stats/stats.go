// Package stats derives ledger totals and per-category breakdowns.
// All functions are pure and recompute from the transactions given.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

// percentPlaces is the rounding precision for category percentages.
const percentPlaces = 2

var hundred = decimal.NewFromInt(100)

// Summarize totals income and expenses. Unknown types are ignored.
func Summarize(txns []*model.Transaction) model.Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	count := 0

	for _, t := range txns {
		switch t.Type {
		case model.TypeIncome:
			income = income.Add(t.Amount)
		case model.TypeExpense:
			expenses = expenses.Add(t.Amount)
		default:
			continue
		}
		count++
	}

	return model.Summary{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetIncome:        income.Sub(expenses),
		TransactionCount: count,
	}
}

// Breakdown groups transactions of typ by category.
//
// Each percentage is rounded half-up to two places independently, so the
// entries may sum to slightly more or less than 100. The result is ordered by
// total descending, then category name ascending, and is never nil.
func Breakdown(txns []*model.Transaction, typ model.TransactionType) []model.CategoryStat {
	type group struct {
		total decimal.Decimal
		count int
	}

	groups := make(map[string]*group)
	typeTotal := decimal.Zero

	for _, t := range txns {
		if t.Type != typ {
			continue
		}
		g, ok := groups[t.Category]
		if !ok {
			g = &group{total: decimal.Zero}
			groups[t.Category] = g
		}
		g.total = g.total.Add(t.Amount)
		g.count++
		typeTotal = typeTotal.Add(t.Amount)
	}

	out := make([]model.CategoryStat, 0, len(groups))
	if !typeTotal.IsPositive() {
		return out
	}

	for category, g := range groups {
		out = append(out, model.CategoryStat{
			Category:   category,
			Total:      g.total,
			Percentage: Percentage(g.total, typeTotal),
			Count:      g.count,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})

	return out
}

// Percentage returns part/whole*100 rounded half-up to two places.
// A non-positive whole yields zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	q, r := part.Mul(hundred).QuoRem(whole, percentPlaces)
	// Exact half-up: r is in [0, whole*0.01) when part is non-negative.
	unit := decimal.New(1, -percentPlaces)
	if r.Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(whole.Mul(unit)) {
		q = q.Add(unit)
	}
	return q
}

// Compute builds the breakdown for both transaction types.
func Compute(txns []*model.Transaction) model.Stats {
	return model.Stats{
		ExpenseByCategory: Breakdown(txns, model.TypeExpense),
		IncomeByCategory:  Breakdown(txns, model.TypeIncome),
	}
}
