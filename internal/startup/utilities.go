package startup

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"

	"rtsp-bridge/internal/logging"
)

// MemoryConfig describes how the Go soft memory limit was derived.
type MemoryConfig struct {
	Configured     bool
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// memoryLimitRatio leaves headroom under the container limit for the
// FFmpeg children, whose memory the Go runtime cannot see.
const memoryLimitRatio = 0.85

// ConfigureMemoryLimit derives a Go soft memory limit from the
// environment. MEMORY_LIMIT (container limit in bytes) sets GOMEMLIMIT
// to a fraction of itself; an explicit GOMEMLIMIT is honored as the
// runtime applied it; with neither, the runtime default stands.
func ConfigureMemoryLimit() MemoryConfig {
	if raw := os.Getenv("MEMORY_LIMIT"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			logging.Warn("Invalid MEMORY_LIMIT %q, leaving memory limit unset", raw)
			return MemoryConfig{}
		}
		goLimit := int64(float64(limit) * memoryLimitRatio)
		debug.SetMemoryLimit(goLimit)
		return MemoryConfig{
			Configured:     true,
			Source:         "MEMORY_LIMIT",
			ContainerLimit: limit,
			GoMemLimit:     goLimit,
			Ratio:          memoryLimitRatio,
		}
	}

	if os.Getenv("GOMEMLIMIT") != "" {
		// The runtime already applied it; a negative input reads the
		// effective value without changing it.
		return MemoryConfig{
			Configured: true,
			Source:     "GOMEMLIMIT",
			GoMemLimit: debug.SetMemoryLimit(-1),
		}
	}

	return MemoryConfig{}
}

// LogMemoryConfig logs the memory limit decision
func LogMemoryConfig(mc MemoryConfig) {
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	if !mc.Configured {
		logging.Info("  No memory limit configured")
		logging.Info("  (set MEMORY_LIMIT to the container limit in bytes to enable)")
		logging.Info("")
		return
	}

	switch mc.Source {
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %s", formatBytesStartup(mc.ContainerLimit))
		logging.Info("  GOMEMLIMIT:      %s (%.0f%% of container limit)",
			formatBytesStartup(mc.GoMemLimit), mc.Ratio*100)
	case "GOMEMLIMIT":
		logging.Info("  GOMEMLIMIT:      %s (from environment)", formatBytesStartup(mc.GoMemLimit))
	}
	logging.Info("")
}

// formatBytesStartup renders a byte count in binary units
func formatBytesStartup(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
