package model

import "github.com/shopspring/decimal"

// Summary holds ledger totals derived from a set of transactions.
type Summary struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	NetIncome        decimal.Decimal `json:"net_income"`
	TransactionCount int             `json:"transaction_count"`
}

// CategoryStat is one category's share of its type's total.
type CategoryStat struct {
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// Stats holds the per-category breakdown for both transaction types.
type Stats struct {
	ExpenseByCategory []CategoryStat `json:"expense_by_category"`
	IncomeByCategory  []CategoryStat `json:"income_by_category"`
}
