package handler

import (
	"fmt"
	"net/http"

	"github.com/secondbrain/secondbrain/internal/metrics"
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

	for _, kind := range metrics.Kinds {
		writeMetric(w, "secondbrain_entities_created_total{kind=%q} %d\n", kind, snap.EntitiesCreated[kind])
		writeMetric(w, "secondbrain_entities_updated_total{kind=%q} %d\n", kind, snap.EntitiesUpdated[kind])
		writeMetric(w, "secondbrain_entities_deleted_total{kind=%q} %d\n", kind, snap.EntitiesDeleted[kind])
	}

	for _, reason := range metrics.Reasons {
		writeMetric(w, "secondbrain_auth_failures_total{reason=%q} %d\n", reason, snap.AuthFailures[reason])
	}

	writeMetric(w, "secondbrain_registrations_total %d\n", snap.Registrations)
	writeMetric(w, "secondbrain_logins_total{status=\"success\"} %d\n", snap.LoginSuccess)
	writeMetric(w, "secondbrain_logins_total{status=\"failure\"} %d\n", snap.LoginFailure)

	writeMetric(w, "secondbrain_overview_duration_seconds_count %d\n", snap.OverviewDurationCount)
	writeMetric(w, "secondbrain_overview_duration_seconds_sum %.6f\n", float64(snap.OverviewDurationTotalNs)/1e9)
	writeMetric(w, "secondbrain_search_duration_seconds_count %d\n", snap.SearchDurationCount)
	writeMetric(w, "secondbrain_search_duration_seconds_sum %.6f\n", float64(snap.SearchDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
