package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncEntityCreated is a no-op.
func (n *NoopRecorder) IncEntityCreated(kind string) {}

// IncEntityUpdated is a no-op.
func (n *NoopRecorder) IncEntityUpdated(kind string) {}

// IncEntityDeleted is a no-op.
func (n *NoopRecorder) IncEntityDeleted(kind string) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(reason string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(success bool) {}

// ObserveOverviewDuration is a no-op.
func (n *NoopRecorder) ObserveOverviewDuration(duration time.Duration) {}

// ObserveSearchDuration is a no-op.
func (n *NoopRecorder) ObserveSearchDuration(duration time.Duration) {}
