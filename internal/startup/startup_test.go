package startup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	// Check that all fields are populated
	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	// Verify that runtime values are correct
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		want         int
		setEnv       bool
	}{
		{name: "unset returns default", defaultValue: 42, want: 42},
		{name: "valid value", envValue: "1048576", defaultValue: 42, want: 1048576, setEnv: true},
		{name: "negative value accepted", envValue: "-1", defaultValue: 42, want: -1, setEnv: true},
		{name: "garbage returns default", envValue: "two", defaultValue: 42, want: 42, setEnv: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv("TEST_INT_VAR", tt.envValue)
			}
			if got := getEnvInt("TEST_INT_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvInt = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
		setEnv       bool
	}{
		{name: "unset returns default", defaultValue: 5 * time.Second, want: 5 * time.Second},
		{name: "valid duration", envValue: "250ms", defaultValue: 5 * time.Second, want: 250 * time.Millisecond, setEnv: true},
		{name: "compound duration", envValue: "1h30m", defaultValue: 5 * time.Second, want: 90 * time.Minute, setEnv: true},
		{name: "bare number rejected", envValue: "30", defaultValue: 5 * time.Second, want: 5 * time.Second, setEnv: true},
		{name: "garbage returns default", envValue: "soon", defaultValue: 5 * time.Second, want: 5 * time.Second, setEnv: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv("TEST_DURATION_VAR", tt.envValue)
			}
			if got := getEnvDuration("TEST_DURATION_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvDuration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	def := []string{"moof", "mfra"}

	tests := []struct {
		name     string
		envValue string
		want     []string
		setEnv   bool
	}{
		{name: "unset returns default", want: def},
		{name: "single value", envValue: "styp", want: []string{"styp"}, setEnv: true},
		{name: "comma separated", envValue: "moof,styp", want: []string{"moof", "styp"}, setEnv: true},
		{name: "spaces trimmed", envValue: " moof , styp ", want: []string{"moof", "styp"}, setEnv: true},
		{name: "none yields empty list", envValue: "none", want: nil, setEnv: true},
		{name: "NONE uppercase too", envValue: "NONE", want: nil, setEnv: true},
		{name: "only commas returns default", envValue: ",,,", want: def, setEnv: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv("TEST_LIST_VAR", tt.envValue)
			}
			got := getEnvList("TEST_LIST_VAR", def)
			if len(got) != len(tt.want) {
				t.Fatalf("getEnvList = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("getEnvList[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGetEnvArgs(t *testing.T) {
	t.Setenv("TEST_ARGS_VAR", "-analyzeduration 1000000  -probesize 500000")
	got := getEnvArgs("TEST_ARGS_VAR", nil)
	want := []string{"-analyzeduration", "1000000", "-probesize", "500000"}
	if len(got) != len(want) {
		t.Fatalf("getEnvArgs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("getEnvArgs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want 9090", cfg.MetricsPort)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled should default to true")
	}
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Errorf("toolchain defaults = %q/%q, want ffmpeg/ffprobe", cfg.FFmpegPath, cfg.FFprobePath)
	}
	if len(cfg.BoundaryMarkers) != 2 || cfg.BoundaryMarkers[0] != "moof" || cfg.BoundaryMarkers[1] != "mfra" {
		t.Errorf("BoundaryMarkers = %v, want [moof mfra]", cfg.BoundaryMarkers)
	}
	if cfg.BoundaryMaxInitBytes != 2<<20 {
		t.Errorf("BoundaryMaxInitBytes = %d, want %d", cfg.BoundaryMaxInitBytes, 2<<20)
	}
	if cfg.BoundaryTimeout != 5*time.Second {
		t.Errorf("BoundaryTimeout = %v, want 5s", cfg.BoundaryTimeout)
	}
	if cfg.ClientBacklogMax != 16<<20 {
		t.Errorf("ClientBacklogMax = %d, want %d", cfg.ClientBacklogMax, 16<<20)
	}
	if cfg.IdleTimeout != 0 {
		t.Errorf("IdleTimeout = %v, want 0 (disabled)", cfg.IdleTimeout)
	}
	if cfg.HistoryRetention != 7*24*time.Hour {
		t.Errorf("HistoryRetention = %v, want 168h", cfg.HistoryRetention)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("BOUNDARY_MARKERS", "styp")
	t.Setenv("BOUNDARY_MAX_INIT_BYTES", "65536")
	t.Setenv("BOUNDARY_TIMEOUT", "2s")
	t.Setenv("CLIENT_BACKLOG_MAX", "1048576")
	t.Setenv("IDLE_TIMEOUT", "5m")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := defaultConfig()
	cfg.applyEnv()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q, want override", cfg.FFmpegPath)
	}
	if len(cfg.BoundaryMarkers) != 1 || cfg.BoundaryMarkers[0] != "styp" {
		t.Errorf("BoundaryMarkers = %v, want [styp]", cfg.BoundaryMarkers)
	}
	if cfg.BoundaryMaxInitBytes != 65536 {
		t.Errorf("BoundaryMaxInitBytes = %d, want 65536", cfg.BoundaryMaxInitBytes)
	}
	if cfg.BoundaryTimeout != 2*time.Second {
		t.Errorf("BoundaryTimeout = %v, want 2s", cfg.BoundaryTimeout)
	}
	if cfg.ClientBacklogMax != 1<<20 {
		t.Errorf("ClientBacklogMax = %d, want 1048576", cfg.ClientBacklogMax)
	}
	if cfg.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %v, want 5m", cfg.IdleTimeout)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled should be overridden to false")
	}
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "8888"
  metrics_enabled: false
decoder:
  ffmpeg_path: /usr/local/bin/ffmpeg
  extra_args:
    - "-analyzeduration"
    - "1000000"
boundary:
  markers: [moof, styp]
  max_init_bytes: 131072
  timeout: 3s
relay:
  client_backlog_max: 2097152
  idle_timeout: 10m
history:
  database_dir: /data/bridge
  retention: 48h
snapshot:
  timeout: 5s
  quality: 70
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	if err := cfg.applyFile(path); err != nil {
		t.Fatalf("applyFile: %v", err)
	}

	if cfg.Port != "8888" {
		t.Errorf("Port = %q, want 8888", cfg.Port)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled should be false from file")
	}
	if cfg.FFmpegPath != "/usr/local/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q, want file override", cfg.FFmpegPath)
	}
	if len(cfg.FFmpegExtraArgs) != 2 || cfg.FFmpegExtraArgs[0] != "-analyzeduration" {
		t.Errorf("FFmpegExtraArgs = %v, want file args", cfg.FFmpegExtraArgs)
	}
	if len(cfg.BoundaryMarkers) != 2 || cfg.BoundaryMarkers[1] != "styp" {
		t.Errorf("BoundaryMarkers = %v, want [moof styp]", cfg.BoundaryMarkers)
	}
	if cfg.BoundaryMaxInitBytes != 131072 {
		t.Errorf("BoundaryMaxInitBytes = %d, want 131072", cfg.BoundaryMaxInitBytes)
	}
	if cfg.BoundaryTimeout != 3*time.Second {
		t.Errorf("BoundaryTimeout = %v, want 3s", cfg.BoundaryTimeout)
	}
	if cfg.ClientBacklogMax != 2<<20 {
		t.Errorf("ClientBacklogMax = %d, want 2097152", cfg.ClientBacklogMax)
	}
	if cfg.IdleTimeout != 10*time.Minute {
		t.Errorf("IdleTimeout = %v, want 10m", cfg.IdleTimeout)
	}
	if cfg.DatabaseDir != "/data/bridge" {
		t.Errorf("DatabaseDir = %q, want /data/bridge", cfg.DatabaseDir)
	}
	if cfg.HistoryRetention != 48*time.Hour {
		t.Errorf("HistoryRetention = %v, want 48h", cfg.HistoryRetention)
	}
	if cfg.SnapshotTimeout != 5*time.Second {
		t.Errorf("SnapshotTimeout = %v, want 5s", cfg.SnapshotTimeout)
	}
	if cfg.SnapshotQuality != 70 {
		t.Errorf("SnapshotQuality = %d, want 70", cfg.SnapshotQuality)
	}

	// Untouched fields keep their defaults.
	if cfg.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want untouched default", cfg.MetricsPort)
	}
}

func TestApplyFileMissing(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.applyFile("/nonexistent/config.yaml"); err == nil {
		t.Error("applyFile on a missing file should return an error")
	}
}

func TestApplyFileInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("boundary:\n  timeout: soonish\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	err := cfg.applyFile(path)
	if err == nil {
		t.Fatal("applyFile should reject an unparseable duration")
	}
	if !strings.Contains(err.Error(), "boundary.timeout") {
		t.Errorf("error %q should name the offending field", err)
	}
}

func TestEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"7070\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "6060")

	cfg := defaultConfig()
	if err := cfg.applyFile(path); err != nil {
		t.Fatalf("applyFile: %v", err)
	}
	cfg.applyEnv()

	if cfg.Port != "6060" {
		t.Errorf("Port = %q, want env override 6060", cfg.Port)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_DIR", filepath.Join(dir, "db"))
	t.Setenv("PORT", "8081")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if !cfg.HistoryEnabled {
		t.Error("HistoryEnabled should be true for a writable directory")
	}
	if !strings.HasSuffix(cfg.DatabasePath, "history.db") {
		t.Errorf("DatabasePath = %q, want .../history.db", cfg.DatabasePath)
	}
	if !filepath.IsAbs(cfg.DatabaseDir) {
		t.Errorf("DatabaseDir = %q, want absolute", cfg.DatabaseDir)
	}
	if _, err := os.Stat(cfg.DatabaseDir); err != nil {
		t.Errorf("database directory should exist after LoadConfig: %v", err)
	}
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_DIR", dir)
	t.Setenv("BOUNDARY_MAX_INIT_BYTES", "-5")
	t.Setenv("SNAPSHOT_QUALITY", "400")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BoundaryMaxInitBytes != 2<<20 {
		t.Errorf("BoundaryMaxInitBytes = %d, want default after invalid value", cfg.BoundaryMaxInitBytes)
	}
	if cfg.SnapshotQuality != 80 {
		t.Errorf("SnapshotQuality = %d, want default after out-of-range value", cfg.SnapshotQuality)
	}
}

func TestMarkersString(t *testing.T) {
	if got := markersString([]string{"moof", "mfra"}); got != "moof,mfra" {
		t.Errorf("markersString = %q, want moof,mfra", got)
	}
	if got := markersString(nil); !strings.Contains(got, "none") {
		t.Errorf("markersString(nil) = %q, want a none marker note", got)
	}
}

func TestDurationOrDisabled(t *testing.T) {
	if got := durationOrDisabled(0); got != "disabled" {
		t.Errorf("durationOrDisabled(0) = %q, want disabled", got)
	}
	if got := durationOrDisabled(5 * time.Minute); got != "5m0s" {
		t.Errorf("durationOrDisabled(5m) = %q, want 5m0s", got)
	}
}

func TestRouteInfo(t *testing.T) {
	route := RouteInfo{
		Method: "GET",
		Path:   "/api/test",
		Name:   "TestRoute",
	}

	if route.Method != "GET" {
		t.Errorf("Expected Method=GET, got %s", route.Method)
	}
	if route.Path != "/api/test" {
		t.Errorf("Expected Path=/api/test, got %s", route.Path)
	}
	if route.Name != "TestRoute" {
		t.Errorf("Expected Name=TestRoute, got %s", route.Name)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/streams", "api/streams"},
		{"/api/streams/{id}", "api/streams"},
		{"/api/history", "api/history"},
		{"/ws/{id}", "ws"},
		{"/health", "health"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
