package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rtsp_bridge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtsp_bridge_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Session metrics
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtsp_bridge_sessions_active",
			Help: "Number of decoder sessions currently tracked by the registry",
		},
	)

	SessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_sessions_started_total",
			Help: "Total number of decoder sessions started",
		},
	)

	SessionsEndedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_sessions_ended_total",
			Help: "Total number of decoder sessions ended",
		},
		[]string{"reason"}, // "stopped", "upstream-exit", "shutdown"
	)

	SpawnFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_spawn_failures_total",
			Help: "Total number of decoder processes that failed to start",
		},
	)
)

// Boundary detection metrics
var (
	BoundaryResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_boundary_resolutions_total",
			Help: "Total number of initialization boundary resolutions",
		},
		[]string{"trigger"}, // "pattern", "size-cap", "timeout"
	)

	InitBlockBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rtsp_bridge_init_block_bytes",
			Help:    "Size of resolved initialization blocks in bytes",
			Buckets: []float64{1024, 4096, 16384, 65536, 262144, 1048576, 2097152, 4194304},
		},
	)
)

// Relay and client queue metrics
var (
	ClientsAttached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtsp_bridge_clients_attached",
			Help: "Number of client queues currently attached across all sessions",
		},
	)

	ClientAttachesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_client_attaches_total",
			Help: "Total number of client attachments",
		},
	)

	RelayedChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_relayed_chunks_total",
			Help: "Total number of media chunks relayed to client queues",
		},
	)

	RelayedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_relayed_bytes_total",
			Help: "Total number of media bytes relayed to client queues",
		},
	)

	QueueOverflowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_queue_overflows_total",
			Help: "Total number of client queues closed for exceeding their backlog limit",
		},
	)
)

// WebSocket metrics
var (
	WSConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_ws_connections_total",
			Help: "Total number of WebSocket stream connections accepted",
		},
	)
)

// Snapshot metrics
var (
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_snapshots_total",
			Help: "Total number of still-frame snapshot captures",
		},
		[]string{"status"},
	)

	SnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rtsp_bridge_snapshot_duration_seconds",
			Help:    "Snapshot capture duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SnapshotsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtsp_bridge_snapshots_in_flight",
			Help: "Number of snapshot captures currently in progress",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtsp_bridge_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rtsp_bridge_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtsp_bridge_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rtsp_bridge_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rtsp_bridge_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
