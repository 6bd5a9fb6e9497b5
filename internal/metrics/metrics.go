// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Entity kinds used as metric labels.
const (
	KindNote = "note"
	KindLink = "link"
	KindTask = "task"
)

// Kinds lists every entity kind label.
var Kinds = []string{KindNote, KindLink, KindTask}

// Authentication failure reasons used as metric labels.
const (
	ReasonMissingToken       = "missing_token"
	ReasonMalformedHeader    = "malformed_header"
	ReasonInvalidToken       = "invalid_token"
	ReasonUnknownIdentity    = "unknown_identity"
	ReasonInvalidCredentials = "invalid_credentials"
)

// Reasons lists every authentication failure label.
var Reasons = []string{
	ReasonMissingToken,
	ReasonMalformedHeader,
	ReasonInvalidToken,
	ReasonUnknownIdentity,
	ReasonInvalidCredentials,
}

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Entity lifecycle metrics, labelled by kind
	IncEntityCreated(kind string)
	IncEntityUpdated(kind string)
	IncEntityDeleted(kind string)

	// Authentication metrics
	IncAuthFailure(reason string)
	IncRegistration()
	IncLogin(success bool)

	// Read path metrics
	ObserveOverviewDuration(duration time.Duration)
	ObserveSearchDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
