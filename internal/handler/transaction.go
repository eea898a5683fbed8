package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anuj-jha-1/Expense-Tracker/internal/auth"
	"github.com/anuj-jha-1/Expense-Tracker/internal/handler/dto"
	"github.com/anuj-jha-1/Expense-Tracker/internal/query"
	"github.com/anuj-jha-1/Expense-Tracker/internal/service"
)

// TransactionHandler handles HTTP requests for the ledger.
type TransactionHandler struct {
	svc    *service.LedgerService
	logger *slog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc *service.LedgerService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		svc:    svc,
		logger: logger,
	}
}

func toInput(req dto.TransactionRequest) service.TransactionInput {
	return service.TransactionInput{
		Type:        req.Type,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      string(req.Amount),
		Version:     req.Version,
	}
}

// List handles GET /api/transactions?type=&category=&order=.
// category may repeat or be comma separated.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	filter, err := query.ParseFilter(params.Get("type"), params["category"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	order, err := query.ParseOrder(params.Get("order"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	txns, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()), filter, order)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionList(txns))
}

// Create handles POST /api/transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), toInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToTransactionResponse(txn))
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.svc.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(txn))
}

// Update handles PUT /api/transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.svc.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), toInput(req))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(txn))
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/transactions/summary.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSummaryResponse(summary))
}

// Stats handles GET /api/transactions/stats.
func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStatsResponse(st))
}
