package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTransactionCreated()                     {}
func (n *NoopRecorder) IncTransactionUpdated()                     {}
func (n *NoopRecorder) IncTransactionDeleted()                     {}
func (n *NoopRecorder) IncValidationFailed()                       {}
func (n *NoopRecorder) IncVersionConflict()                        {}
func (n *NoopRecorder) ObserveAggregationDuration(_ time.Duration) {}
func (n *NoopRecorder) IncUserRegistered()                         {}
func (n *NoopRecorder) IncAuthFailed()                             {}
func (n *NoopRecorder) IncEventPublished(_ string)                 {}
