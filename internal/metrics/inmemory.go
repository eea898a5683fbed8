package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TransactionsCreated        uint64
	TransactionsUpdated        uint64
	TransactionsDeleted        uint64
	ValidationFailures         uint64
	VersionConflicts           uint64
	AggregationDurationCount   uint64
	AggregationDurationTotalNs int64
	UsersRegistered            uint64
	AuthFailures               uint64
	EventsPublished            uint64
	EventsDropped              uint64
}

// InMemoryRecorder keeps counters in memory. It backs the /metrics endpoint
// and is used by tests to assert on instrumentation.
type InMemoryRecorder struct {
	transactionsCreated        atomic.Uint64
	transactionsUpdated        atomic.Uint64
	transactionsDeleted        atomic.Uint64
	validationFailures         atomic.Uint64
	versionConflicts           atomic.Uint64
	aggregationDurationCount   atomic.Uint64
	aggregationDurationTotalNs atomic.Int64
	usersRegistered            atomic.Uint64
	authFailures               atomic.Uint64
	eventsPublished            atomic.Uint64
	eventsDropped              atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TransactionsCreated:        m.transactionsCreated.Load(),
		TransactionsUpdated:        m.transactionsUpdated.Load(),
		TransactionsDeleted:        m.transactionsDeleted.Load(),
		ValidationFailures:         m.validationFailures.Load(),
		VersionConflicts:           m.versionConflicts.Load(),
		AggregationDurationCount:   m.aggregationDurationCount.Load(),
		AggregationDurationTotalNs: m.aggregationDurationTotalNs.Load(),
		UsersRegistered:            m.usersRegistered.Load(),
		AuthFailures:               m.authFailures.Load(),
		EventsPublished:            m.eventsPublished.Load(),
		EventsDropped:              m.eventsDropped.Load(),
	}
}

// IncTransactionCreated increments the created counter.
func (m *InMemoryRecorder) IncTransactionCreated() { m.transactionsCreated.Add(1) }

// IncTransactionUpdated increments the updated counter.
func (m *InMemoryRecorder) IncTransactionUpdated() { m.transactionsUpdated.Add(1) }

// IncTransactionDeleted increments the deleted counter.
func (m *InMemoryRecorder) IncTransactionDeleted() { m.transactionsDeleted.Add(1) }

// IncValidationFailed counts rejected ledger mutations.
func (m *InMemoryRecorder) IncValidationFailed() { m.validationFailures.Add(1) }

// IncVersionConflict counts stale updates.
func (m *InMemoryRecorder) IncVersionConflict() { m.versionConflicts.Add(1) }

// ObserveAggregationDuration records time spent computing summaries and stats.
func (m *InMemoryRecorder) ObserveAggregationDuration(duration time.Duration) {
	m.aggregationDurationCount.Add(1)
	m.aggregationDurationTotalNs.Add(duration.Nanoseconds())
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() { m.usersRegistered.Add(1) }

// IncAuthFailed counts rejected logins and tokens.
func (m *InMemoryRecorder) IncAuthFailed() { m.authFailures.Add(1) }

// IncEventPublished counts domain event publish attempts by outcome.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == StatusSuccess {
		m.eventsPublished.Add(1)
		return
	}
	m.eventsDropped.Add(1)
}
