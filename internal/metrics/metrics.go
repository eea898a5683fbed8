// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Event publish outcomes.
const (
	StatusSuccess = "success"
	StatusDropped = "dropped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Ledger mutations
	IncTransactionCreated()
	IncTransactionUpdated()
	IncTransactionDeleted()
	IncValidationFailed()
	IncVersionConflict()

	// Aggregation
	ObserveAggregationDuration(duration time.Duration)

	// Auth
	IncUserRegistered()
	IncAuthFailed()

	// Domain events
	IncEventPublished(status string) // status: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
