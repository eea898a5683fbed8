package dto

import (
	"time"

	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/money"
)

// TransactionRequest is the body of create and update requests.
// Update replaces every field; Version is optional and enables optimistic locking.
type TransactionRequest struct {
	Type        string `json:"type"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	Version     *int64 `json:"version,omitempty"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SummaryResponse is the body of GET /api/transactions/summary.
type SummaryResponse struct {
	TotalIncome      string `json:"total_income"`
	TotalExpenses    string `json:"total_expenses"`
	NetIncome        string `json:"net_income"`
	TransactionCount int    `json:"transaction_count"`
}

// CategoryStatResponse is one row of a category breakdown.
type CategoryStatResponse struct {
	Category   string `json:"category"`
	Total      string `json:"total"`
	Percentage string `json:"percentage"`
	Count      int    `json:"count"`
}

// StatsResponse is the body of GET /api/transactions/stats.
type StatsResponse struct {
	ExpenseByCategory []CategoryStatResponse `json:"expense_by_category"`
	IncomeByCategory  []CategoryStatResponse `json:"income_by_category"`
}

// CategoriesResponse lists the allowed categories per type.
type CategoriesResponse struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

// ToTransactionResponse converts a Transaction model to its DTO.
func ToTransactionResponse(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Date:        t.Date.String(),
		Category:    t.Category,
		Description: t.Description,
		Amount:      money.Format(t.Amount),
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTransactionList converts transactions in order. The result is never nil.
func ToTransactionList(txns []*model.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = ToTransactionResponse(t)
	}
	return out
}

// ToSummaryResponse converts a Summary model to its DTO.
func ToSummaryResponse(s model.Summary) SummaryResponse {
	return SummaryResponse{
		TotalIncome:      money.Format(s.TotalIncome),
		TotalExpenses:    money.Format(s.TotalExpenses),
		NetIncome:        money.Format(s.NetIncome),
		TransactionCount: s.TransactionCount,
	}
}

// ToStatsResponse converts a Stats model to its DTO.
func ToStatsResponse(s model.Stats) StatsResponse {
	return StatsResponse{
		ExpenseByCategory: toCategoryStats(s.ExpenseByCategory),
		IncomeByCategory:  toCategoryStats(s.IncomeByCategory),
	}
}

func toCategoryStats(in []model.CategoryStat) []CategoryStatResponse {
	out := make([]CategoryStatResponse, len(in))
	for i, c := range in {
		out[i] = CategoryStatResponse{
			Category:   c.Category,
			Total:      money.Format(c.Total),
			Percentage: c.Percentage.StringFixed(2),
			Count:      c.Count,
		}
	}
	return out
}
