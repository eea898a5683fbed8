package handler

import (
	"net/http"

	"github.com/anuj-jha-1/Expense-Tracker/internal/handler/dto"
	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
)

// CategoryLister exposes the category taxonomy.
type CategoryLister interface {
	Categories() map[model.TransactionType][]string
}

// CategoryHandler serves the category lists clients build forms from.
type CategoryHandler struct {
	lister CategoryLister
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(lister CategoryLister) *CategoryHandler {
	return &CategoryHandler{lister: lister}
}

// List handles GET /api/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.lister.Categories()
	writeJSON(w, http.StatusOK, dto.CategoriesResponse{
		Expense: all[model.TypeExpense],
		Income:  all[model.TypeIncome],
	})
}
