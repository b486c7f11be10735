// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides
// consistent logging throughout the application lifecycle.
//
// # Configuration
//
// Configuration is loaded by [LoadConfig] in three layers, later layers
// winning: built-in defaults, an optional YAML file named by CONFIG_FILE,
// and environment variables. The following environment variables are
// supported:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - FFMPEG_PATH: FFmpeg binary for decoder sessions and snapshots (default: ffmpeg)
//   - FFPROBE_PATH: ffprobe binary for source probing (default: ffprobe)
//   - FFMPEG_EXTRA_ARGS: Extra whitespace-separated FFmpeg input arguments
//   - BOUNDARY_MARKERS: Comma-separated boundary marker strings, or "none"
//     for size-cap/timeout detection only (default: moof,mfra)
//   - BOUNDARY_MAX_INIT_BYTES: Size cap promoting the buffered prefix to an
//     initialization block (default: 2097152)
//   - BOUNDARY_TIMEOUT: Detection deadline as Go duration (default: 5s)
//   - CLIENT_BACKLOG_MAX: Per-client undelivered byte ceiling (default: 16777216)
//   - IDLE_TIMEOUT: Stop sessions with no clients after this long; 0 disables
//     (default: 0)
//   - DATABASE_DIR: Path to the history database directory (default: /database)
//   - HISTORY_RETENTION: Prune journal rows older than this; 0 disables
//     (default: 168h)
//   - SNAPSHOT_TIMEOUT: Per-capture FFmpeg deadline (default: 15s)
//   - SNAPSHOT_QUALITY: Snapshot JPEG quality 1-100 (default: 80)
//   - SNAPSHOT_WORKERS: Override for the snapshot worker pool size
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT: Container memory limit for automatic GOMEMLIMIT configuration
//   - GOMEMLIMIT: Direct override for Go's memory limit
//
// # Directory Setup
//
// The database directory is created and write-tested; when it is not
// writable the history journal is disabled rather than failing startup,
// since the relay itself needs no disk.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogDecoderInit]: FFmpeg toolchain availability
//   - [LogHistoryInit]: History store initialization timing
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
//   - [LogMemoryConfig]: Memory limit configuration
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	// Initialize components...
//	startup.LogDecoderInit(config.FFmpegPath, config.FFprobePath)
//	startup.LogHistoryInit(config.HistoryEnabled, historyInitDuration)
//
//	// Start server...
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
//
//	// On shutdown...
//	startup.LogShutdownInitiated("SIGTERM")
//	// ... cleanup ...
//	startup.LogShutdownComplete()
package startup
