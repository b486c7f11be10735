package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"rtsp-bridge/internal/boundary"
	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/session"
	"rtsp-bridge/internal/snapshot"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool

	FFmpegPath      string
	FFprobePath     string
	FFmpegExtraArgs []string

	BoundaryMarkers      []string
	BoundaryMaxInitBytes int
	BoundaryTimeout      time.Duration

	ClientBacklogMax int
	IdleTimeout      time.Duration

	DatabaseDir      string
	HistoryRetention time.Duration

	SnapshotTimeout time.Duration
	SnapshotQuality int

	// Derived paths
	DatabasePath string

	// Feature flags based on directory availability
	HistoryEnabled bool
}

func defaultConfig() *Config {
	return &Config{
		Port:                 "8080",
		MetricsPort:          "9090",
		MetricsEnabled:       true,
		LogHealthChecks:      true,
		FFmpegPath:           "ffmpeg",
		FFprobePath:          "ffprobe",
		BoundaryMarkers:      []string{"moof", "mfra"},
		BoundaryMaxInitBytes: boundary.DefaultMaxInitBytes,
		BoundaryTimeout:      boundary.DefaultTimeout,
		ClientBacklogMax:     session.DefaultClientBacklogMax,
		IdleTimeout:          0,
		DatabaseDir:          "/database",
		HistoryRetention:     7 * 24 * time.Hour,
		SnapshotTimeout:      snapshot.DefaultTimeout,
		SnapshotQuality:      snapshot.DefaultQuality,
	}
}

// fileConfig mirrors the YAML layout accepted via CONFIG_FILE.
// Durations are strings in Go syntax ("5s", "1h30m"); zero values mean
// "not set" and keep the current value.
type fileConfig struct {
	Server struct {
		Port            string `yaml:"port"`
		MetricsPort     string `yaml:"metrics_port"`
		MetricsEnabled  *bool  `yaml:"metrics_enabled"`
		LogHealthChecks *bool  `yaml:"log_health_checks"`
	} `yaml:"server"`
	Decoder struct {
		FFmpegPath  string   `yaml:"ffmpeg_path"`
		FFprobePath string   `yaml:"ffprobe_path"`
		ExtraArgs   []string `yaml:"extra_args"`
	} `yaml:"decoder"`
	Boundary struct {
		Markers      []string `yaml:"markers"`
		MaxInitBytes int      `yaml:"max_init_bytes"`
		Timeout      string   `yaml:"timeout"`
	} `yaml:"boundary"`
	Relay struct {
		ClientBacklogMax int    `yaml:"client_backlog_max"`
		IdleTimeout      string `yaml:"idle_timeout"`
	} `yaml:"relay"`
	History struct {
		DatabaseDir string `yaml:"database_dir"`
		Retention   string `yaml:"retention"`
	} `yaml:"history"`
	Snapshot struct {
		Timeout string `yaml:"timeout"`
		Quality int    `yaml:"quality"`
	} `yaml:"snapshot"`
}

// applyFile overlays settings from a YAML file onto c. File values are
// explicit operator intent, so parse failures are errors, not warnings.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Server.Port != "" {
		c.Port = fc.Server.Port
	}
	if fc.Server.MetricsPort != "" {
		c.MetricsPort = fc.Server.MetricsPort
	}
	if fc.Server.MetricsEnabled != nil {
		c.MetricsEnabled = *fc.Server.MetricsEnabled
	}
	if fc.Server.LogHealthChecks != nil {
		c.LogHealthChecks = *fc.Server.LogHealthChecks
	}
	if fc.Decoder.FFmpegPath != "" {
		c.FFmpegPath = fc.Decoder.FFmpegPath
	}
	if fc.Decoder.FFprobePath != "" {
		c.FFprobePath = fc.Decoder.FFprobePath
	}
	if len(fc.Decoder.ExtraArgs) > 0 {
		c.FFmpegExtraArgs = fc.Decoder.ExtraArgs
	}
	if len(fc.Boundary.Markers) > 0 {
		c.BoundaryMarkers = fc.Boundary.Markers
	}
	if fc.Boundary.MaxInitBytes > 0 {
		c.BoundaryMaxInitBytes = fc.Boundary.MaxInitBytes
	}
	if fc.Boundary.Timeout != "" {
		d, err := time.ParseDuration(fc.Boundary.Timeout)
		if err != nil {
			return fmt.Errorf("invalid boundary.timeout %q: %w", fc.Boundary.Timeout, err)
		}
		c.BoundaryTimeout = d
	}
	if fc.Relay.ClientBacklogMax > 0 {
		c.ClientBacklogMax = fc.Relay.ClientBacklogMax
	}
	if fc.Relay.IdleTimeout != "" {
		d, err := time.ParseDuration(fc.Relay.IdleTimeout)
		if err != nil {
			return fmt.Errorf("invalid relay.idle_timeout %q: %w", fc.Relay.IdleTimeout, err)
		}
		c.IdleTimeout = d
	}
	if fc.History.DatabaseDir != "" {
		c.DatabaseDir = fc.History.DatabaseDir
	}
	if fc.History.Retention != "" {
		d, err := time.ParseDuration(fc.History.Retention)
		if err != nil {
			return fmt.Errorf("invalid history.retention %q: %w", fc.History.Retention, err)
		}
		c.HistoryRetention = d
	}
	if fc.Snapshot.Timeout != "" {
		d, err := time.ParseDuration(fc.Snapshot.Timeout)
		if err != nil {
			return fmt.Errorf("invalid snapshot.timeout %q: %w", fc.Snapshot.Timeout, err)
		}
		c.SnapshotTimeout = d
	}
	if fc.Snapshot.Quality > 0 {
		c.SnapshotQuality = fc.Snapshot.Quality
	}

	return nil
}

// applyEnv overlays environment variables onto c. The environment wins
// over both defaults and the config file.
func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.MetricsPort = getEnv("METRICS_PORT", c.MetricsPort)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", c.LogHealthChecks)
	c.FFmpegPath = getEnv("FFMPEG_PATH", c.FFmpegPath)
	c.FFprobePath = getEnv("FFPROBE_PATH", c.FFprobePath)
	c.FFmpegExtraArgs = getEnvArgs("FFMPEG_EXTRA_ARGS", c.FFmpegExtraArgs)
	c.BoundaryMarkers = getEnvList("BOUNDARY_MARKERS", c.BoundaryMarkers)
	c.BoundaryMaxInitBytes = getEnvInt("BOUNDARY_MAX_INIT_BYTES", c.BoundaryMaxInitBytes)
	c.BoundaryTimeout = getEnvDuration("BOUNDARY_TIMEOUT", c.BoundaryTimeout)
	c.ClientBacklogMax = getEnvInt("CLIENT_BACKLOG_MAX", c.ClientBacklogMax)
	c.IdleTimeout = getEnvDuration("IDLE_TIMEOUT", c.IdleTimeout)
	c.DatabaseDir = getEnv("DATABASE_DIR", c.DatabaseDir)
	c.HistoryRetention = getEnvDuration("HISTORY_RETENTION", c.HistoryRetention)
	c.SnapshotTimeout = getEnvDuration("SNAPSHOT_TIMEOUT", c.SnapshotTimeout)
	c.SnapshotQuality = getEnvInt("SNAPSHOT_QUALITY", c.SnapshotQuality)
}

// LoadConfig loads and validates configuration from the optional
// CONFIG_FILE and the environment
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	LogMemoryConfig(ConfigureMemoryLimit())

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		logging.Info("  Config file:             %s", path)
	}

	config.applyEnv()

	logging.Info("  PORT:                    %s", config.Port)
	logging.Info("  METRICS_PORT:            %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:         %v", config.MetricsEnabled)
	logging.Info("  FFMPEG_PATH:             %s", config.FFmpegPath)
	logging.Info("  FFPROBE_PATH:            %s", config.FFprobePath)
	if len(config.FFmpegExtraArgs) > 0 {
		logging.Info("  FFMPEG_EXTRA_ARGS:       %s", strings.Join(config.FFmpegExtraArgs, " "))
	}
	logging.Info("  BOUNDARY_MARKERS:        %s", markersString(config.BoundaryMarkers))
	logging.Info("  BOUNDARY_MAX_INIT_BYTES: %d", config.BoundaryMaxInitBytes)
	logging.Info("  BOUNDARY_TIMEOUT:        %s", config.BoundaryTimeout)
	logging.Info("  CLIENT_BACKLOG_MAX:      %d", config.ClientBacklogMax)
	logging.Info("  IDLE_TIMEOUT:            %s", durationOrDisabled(config.IdleTimeout))
	logging.Info("  DATABASE_DIR:            %s", config.DatabaseDir)
	logging.Info("  HISTORY_RETENTION:       %s", durationOrDisabled(config.HistoryRetention))
	logging.Info("  SNAPSHOT_TIMEOUT:        %s", config.SnapshotTimeout)
	logging.Info("  SNAPSHOT_QUALITY:        %d", config.SnapshotQuality)
	logging.Info("  LOG_HEALTH_CHECKS:       %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:               %s", logging.GetLevel())

	if config.BoundaryMaxInitBytes <= 0 {
		logging.Warn("  Invalid BOUNDARY_MAX_INIT_BYTES, using default: %d", boundary.DefaultMaxInitBytes)
		config.BoundaryMaxInitBytes = boundary.DefaultMaxInitBytes
	}
	if config.BoundaryTimeout < 0 {
		logging.Warn("  Invalid BOUNDARY_TIMEOUT, using default: %s", boundary.DefaultTimeout)
		config.BoundaryTimeout = boundary.DefaultTimeout
	}
	if config.SnapshotQuality < 1 || config.SnapshotQuality > 100 {
		logging.Warn("  Invalid SNAPSHOT_QUALITY, using default: %d", snapshot.DefaultQuality)
		config.SnapshotQuality = snapshot.DefaultQuality
	}
	if config.ClientBacklogMax <= 0 {
		logging.Warn("  CLIENT_BACKLOG_MAX disabled; slow clients can hold unbounded memory")
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	databaseDir, err := filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	config.DatabaseDir = databaseDir
	config.DatabasePath = filepath.Join(databaseDir, "history.db")
	logging.Info("  Database directory (absolute): %s", databaseDir)

	// The journal is auxiliary to the relay: an unwritable directory
	// disables history instead of refusing to start.
	config.HistoryEnabled = setupOptionalDir(databaseDir, "history database")

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Relay:    ENABLED (required)")
	logging.Info("    History:  %s", enabledString(config.HistoryEnabled))
	logging.Info("    Metrics:  %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func markersString(markers []string) string {
	if len(markers) == 0 {
		return "none (size cap and timeout only)"
	}
	return strings.Join(markers, ",")
}

func durationOrDisabled(d time.Duration) string {
	if d <= 0 {
		return "disabled"
	}
	return d.String()
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	testFile := filepath.Join(path, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("    failed to remove test file %s: %v", testFile, err)
		// Still return true since write succeeded
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDecoderInit logs decoder setup and checks the FFmpeg toolchain
func LogDecoderInit(ffmpegPath, ffprobePath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DECODER SETUP")
	logging.Info("------------------------------------------------------------")

	if err := checkFFmpeg(ffmpegPath); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Stream sessions will fail to start until FFmpeg is available")
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}

	if path, err := exec.LookPath(ffprobePath); err != nil {
		logging.Warn("  ffprobe not found; source probing unavailable")
	} else {
		logging.Debug("  ffprobe path: %s", path)
	}
}

// LogHistoryInit logs history store initialization
func LogHistoryInit(enabled bool, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HISTORY JOURNAL")
	logging.Info("------------------------------------------------------------")

	if !enabled {
		logging.Warn("  History disabled (database directory not writable)")
		logging.Warn("  Session lifecycle will not be recorded")
		return
	}
	logging.Info("  [OK] History store initialized in %v", duration)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., a catch-all)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		// Sort group keys
		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		// Print routes by group
		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Get first segment
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	// Special handling for API routes
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s/api/streams", config.Port)
	logging.Info("    Data plane:    ws://0.0.0.0:%s/ws/{session}", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    API:           http://localhost:%s/api/streams", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  ________________     ____       _     __
   / __ \/_  __/ ___/ __ \   / __ )_____(_)___/ /___ _ ___
  / /_/ / / /  \__ \/ /_/ /  / __  / ___/ / __  / __ '/ _ \
 / _, _/ / /  ___/ / ____/  / /_/ / /  / / /_/ / /_/ /  __/
/_/ |_| /_/  /____/_/      /_____/_/  /_/\__,_/\__, /\___/
                                              /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkFFmpeg(binary string) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", binary)
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "-version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvList parses a comma-separated list. The literal "none" yields
// an empty list, which for BOUNDARY_MARKERS means size-cap/timeout
// detection only.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if strings.EqualFold(strings.TrimSpace(value), "none") {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvArgs parses a whitespace-separated argument list.
func getEnvArgs(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if fields := strings.Fields(value); len(fields) > 0 {
		return fields
	}
	return defaultValue
}
