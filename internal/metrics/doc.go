// Package metrics provides Prometheus instrumentation for the rtsp-bridge
// application.
//
// This package defines and exposes various metrics that can be scraped by
// Prometheus to monitor the health, performance, and behavior of the bridge.
// All metrics are prefixed with "rtsp_bridge_" to avoid naming collisions
// with other applications.
//
// # Metric Categories
//
// The metrics are organized into the following categories:
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Session Metrics
//
// Track decoder session lifecycle:
//   - SessionsActive: Gauge of sessions currently tracked by the registry
//   - SessionsStartedTotal: Counter of sessions started
//   - SessionsEndedTotal: Counter of sessions ended by reason
//     (stopped, upstream-exit, shutdown)
//   - SpawnFailuresTotal: Counter of decoder processes that failed to start
//
// ## Boundary Metrics
//
// Monitor initialization boundary detection:
//   - BoundaryResolutionsTotal: Counter of resolutions by trigger
//     (pattern, size-cap, timeout)
//   - InitBlockBytes: Histogram of resolved initialization block sizes
//
// ## Relay Metrics
//
// Track media fan-out to client queues:
//   - ClientsAttached: Gauge of attached client queues across all sessions
//   - ClientAttachesTotal: Counter of client attachments
//   - RelayedChunksTotal: Counter of media chunks relayed
//   - RelayedBytesTotal: Counter of media bytes relayed
//   - QueueOverflowsTotal: Counter of queues closed for exceeding their
//     backlog limit
//
// ## WebSocket Metrics
//
// Track streaming connections:
//   - WSConnectionsTotal: Counter of accepted WebSocket stream connections
//
// ## Snapshot Metrics
//
// Monitor still-frame captures:
//   - SnapshotsTotal: Counter by status (success/error)
//   - SnapshotDuration: Histogram of capture duration
//   - SnapshotsInFlight: Gauge of captures in progress
//
// ## Database Metrics
//
// Monitor the session history store:
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBSizeBytes: Gauge of database file sizes (main, WAL, SHM)
//
// ## Application Info
//
// Expose build information:
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on your
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Recording Metrics
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	import "rtsp-bridge/internal/metrics"
//
//	// Increment a counter
//	metrics.SessionsStartedTotal.Inc()
//
//	// Observe a histogram value
//	metrics.InitBlockBytes.Observe(float64(len(init)))
//
//	// Increment a labeled counter
//	metrics.SessionsEndedTotal.WithLabelValues("upstream-exit").Inc()
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers
// statistics from a [StatsProvider] and updates the corresponding gauges.
// The session registry implements [StatsProvider], so gauge values always
// reflect its authoritative counts rather than increments scattered across
// the codebase:
//
//	collector := metrics.NewCollector(registry, dbPath, 15*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// The collector automatically updates:
//   - Active session and attached client gauges
//   - Database file sizes
//
// # Prometheus Queries
//
// Example PromQL queries for common use cases:
//
// Relay throughput:
//
//	rate(rtsp_bridge_relayed_bytes_total[5m])
//
// Sessions ending because the camera dropped the connection:
//
//	rate(rtsp_bridge_sessions_ended_total{reason="upstream-exit"}[1h])
//
// Share of boundary resolutions that degraded to a fallback trigger:
//
//	1 - (rate(rtsp_bridge_boundary_resolutions_total{trigger="pattern"}[1h]) /
//	     sum(rate(rtsp_bridge_boundary_resolutions_total[1h])))
//
// P95 snapshot latency:
//
//	histogram_quantile(0.95, sum(rate(rtsp_bridge_snapshot_duration_seconds_bucket[5m])) by (le))
//
// Slow consumers being disconnected:
//
//	rate(rtsp_bridge_queue_overflows_total[1h])
package metrics
