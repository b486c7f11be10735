// Package main provides the entry point for the RTSP Bridge service.
//
// RTSP Bridge turns pull-based RTSP camera feeds into push-based
// fragmented-MP4 streams that any number of WebSocket clients can
// watch. An external FFmpeg process does the remuxing; the bridge owns
// its lifecycle, splits its output into an initialization block and
// live ranges, and fans the bytes out to every attached client.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Memory Configuration: Sets GOMEMLIMIT from environment or cgroup limits
//  2. Configuration Loading: Reads environment variables and the optional config file
//  3. Decoder Check: Resolves the FFmpeg and FFprobe binaries
//  4. History Journal: Opens the SQLite event journal (if the directory allows)
//  5. Session Registry: Builds the registry that owns all decoder sessions
//  6. HTTP Server Setup: Configures routes, middleware, and starts the server
//  7. Graceful Shutdown: Handles SIGINT/SIGTERM, stops all components cleanly
//
// # Background Services
//
// Several goroutines run throughout the application lifecycle:
//
//   - Idle Reaper: Stops sessions that have had no clients for IDLE_TIMEOUT
//   - History Pruner: Deletes journal rows older than HISTORY_RETENTION
//   - Metrics Collector: Updates Prometheus gauges every minute
//
// # HTTP Servers
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Session control plane under /api/streams
//     - WebSocket data plane under /ws/{id}
//     - On-demand JPEG snapshots
//     - History journal queries
//     - Health, readiness, and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Environment Variables
//
// Configuration is primarily through environment variables, with an
// optional YAML file (CONFIG_FILE) underneath them:
//
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - FFMPEG_PATH: Decoder binary (default: ffmpeg, resolved via PATH)
//   - FFPROBE_PATH: Probe binary (default: ffprobe)
//   - FFMPEG_EXTRA_ARGS: Extra arguments spliced into the remux command
//   - BOUNDARY_MARKERS: Init-block end markers (default: moof,mfra)
//   - BOUNDARY_MAX_INIT_BYTES: Init-block size cap (default: 2 MiB)
//   - BOUNDARY_TIMEOUT: Init-block wall-clock cap (default: 5s)
//   - CLIENT_BACKLOG_MAX: Per-client queue ceiling (default: 16 MiB)
//   - IDLE_TIMEOUT: Reap sessions with no clients after this long (default: disabled)
//   - DATABASE_DIR: Directory for the SQLite history journal (default: /database)
//   - HISTORY_RETENTION: Journal retention window (default: 168h)
//   - SNAPSHOT_TIMEOUT: Frame-grab deadline (default: 15s)
//   - SNAPSHOT_QUALITY: JPEG quality 1-100 (default: 80)
//   - SNAPSHOT_WORKERS: Concurrent frame grabs (auto-sized if unset)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - LOG_HEALTH_CHECKS: Log health endpoint hits (default: true)
//   - GOMEMLIMIT: Memory limit (auto-detected from cgroups if not set)
//
// # Graceful Shutdown
//
// The application handles SIGINT and SIGTERM signals gracefully:
//
//  1. Mark the service draining (readiness goes 503)
//  2. Stop the metrics collector
//  3. Close the registry: terminate decoders, close client queues
//  4. Shutdown metrics server (if running)
//  5. Shutdown main HTTP server (30s timeout)
//  6. Close the history journal
//
// Data-plane connections end on their own when their queues close, so
// the server shutdown does not wait on watching clients.
//
// # Build Requirements
//
// The application requires CGO for SQLite, and FFmpeg at runtime:
//
//   - SQLite: history journal storage
//   - FFmpeg/FFprobe: RTSP remuxing, stream probing, frame grabs
//
// # Related Packages
//
//   - [rtsp-bridge/internal/session]: registry, sessions, client queues
//   - [rtsp-bridge/internal/decoder]: FFmpeg process supervision
//   - [rtsp-bridge/internal/boundary]: init-block detection
//   - [rtsp-bridge/internal/handlers]: HTTP and WebSocket handlers
//   - [rtsp-bridge/internal/history]: SQLite event journal
//   - [rtsp-bridge/internal/snapshot]: JPEG frame grabs
//   - [rtsp-bridge/internal/startup]: configuration and initialization
package main
