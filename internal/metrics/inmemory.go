package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	EntitiesCreated map[string]uint64
	EntitiesUpdated map[string]uint64
	EntitiesDeleted map[string]uint64
	AuthFailures    map[string]uint64

	Registrations uint64
	LoginSuccess  uint64
	LoginFailure  uint64

	OverviewDurationCount   uint64
	OverviewDurationTotalNs int64
	SearchDurationCount     uint64
	SearchDurationTotalNs   int64
}

// labelled is a fixed set of counters keyed by label. Unknown labels are dropped.
type labelled map[string]*atomic.Uint64

func newLabelled(labels []string) labelled {
	l := make(labelled, len(labels))
	for _, label := range labels {
		l[label] = new(atomic.Uint64)
	}
	return l
}

func (l labelled) inc(label string) {
	if c, ok := l[label]; ok {
		c.Add(1)
	}
}

func (l labelled) snapshot() map[string]uint64 {
	out := make(map[string]uint64, len(l))
	for label, c := range l {
		out[label] = c.Load()
	}
	return out
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	created      labelled
	updated      labelled
	deleted      labelled
	authFailures labelled

	registrations atomic.Uint64
	loginSuccess  atomic.Uint64
	loginFailure  atomic.Uint64

	overviewCount   atomic.Uint64
	overviewTotalNs atomic.Int64
	searchCount     atomic.Uint64
	searchTotalNs   atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		created:      newLabelled(Kinds),
		updated:      newLabelled(Kinds),
		deleted:      newLabelled(Kinds),
		authFailures: newLabelled(Reasons),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		EntitiesCreated:         m.created.snapshot(),
		EntitiesUpdated:         m.updated.snapshot(),
		EntitiesDeleted:         m.deleted.snapshot(),
		AuthFailures:            m.authFailures.snapshot(),
		Registrations:           m.registrations.Load(),
		LoginSuccess:            m.loginSuccess.Load(),
		LoginFailure:            m.loginFailure.Load(),
		OverviewDurationCount:   m.overviewCount.Load(),
		OverviewDurationTotalNs: m.overviewTotalNs.Load(),
		SearchDurationCount:     m.searchCount.Load(),
		SearchDurationTotalNs:   m.searchTotalNs.Load(),
	}
}

// IncEntityCreated increments the created counter for kind.
func (m *InMemoryRecorder) IncEntityCreated(kind string) {
	m.created.inc(kind)
}

// IncEntityUpdated increments the updated counter for kind.
func (m *InMemoryRecorder) IncEntityUpdated(kind string) {
	m.updated.inc(kind)
}

// IncEntityDeleted increments the deleted counter for kind.
func (m *InMemoryRecorder) IncEntityDeleted(kind string) {
	m.deleted.inc(kind)
}

// IncAuthFailure increments the rejection counter for reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.authFailures.inc(reason)
}

// IncRegistration increments the registration counter.
func (m *InMemoryRecorder) IncRegistration() {
	m.registrations.Add(1)
}

// IncLogin increments the login counter for the outcome.
func (m *InMemoryRecorder) IncLogin(success bool) {
	if success {
		m.loginSuccess.Add(1)
		return
	}
	m.loginFailure.Add(1)
}

// ObserveOverviewDuration records overview assembly time.
func (m *InMemoryRecorder) ObserveOverviewDuration(duration time.Duration) {
	m.overviewCount.Add(1)
	m.overviewTotalNs.Add(duration.Nanoseconds())
}

// ObserveSearchDuration records search time.
func (m *InMemoryRecorder) ObserveSearchDuration(duration time.Duration) {
	m.searchCount.Add(1)
	m.searchTotalNs.Add(duration.Nanoseconds())
}
