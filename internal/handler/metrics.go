package handler

import (
	"fmt"
	"net/http"

	"github.com/anuj-jha-1/Expense-Tracker/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "ledger_transactions_created_total %d\n", snap.TransactionsCreated)
	writeMetric(w, "ledger_transactions_updated_total %d\n", snap.TransactionsUpdated)
	writeMetric(w, "ledger_transactions_deleted_total %d\n", snap.TransactionsDeleted)
	writeMetric(w, "ledger_validation_failures_total %d\n", snap.ValidationFailures)
	writeMetric(w, "ledger_version_conflicts_total %d\n", snap.VersionConflicts)

	writeMetric(w, "ledger_aggregation_duration_seconds_count %d\n", snap.AggregationDurationCount)
	writeMetric(w, "ledger_aggregation_duration_seconds_sum %.6f\n", float64(snap.AggregationDurationTotalNs)/1e9)

	writeMetric(w, "ledger_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "ledger_auth_failures_total %d\n", snap.AuthFailures)

	writeMetric(w, "ledger_events_published_total{status=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "ledger_events_published_total{status=\"dropped\"} %d\n", snap.EventsDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
