package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Session end reasons ---
	for _, reason := range []string{"stopped", "upstream-exit", "shutdown"} {
		SessionsEndedTotal.WithLabelValues(reason)
	}

	// --- Boundary resolution triggers ---
	for _, trigger := range []string{"pattern", "size-cap", "timeout"} {
		BoundaryResolutionsTotal.WithLabelValues(trigger)
	}

	// --- Snapshot statuses ---
	for _, status := range []string{"success", "error"} {
		SnapshotsTotal.WithLabelValues(status)
	}

	// --- Database storage files ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "insert_event", "list_events", "prune_events"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
