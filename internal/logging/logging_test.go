package logging

import (
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		debugEnv string
		levelEnv string
		expected LogLevel
	}{
		{
			name:     "Debug via LOG_LEVEL",
			levelEnv: "debug",
			expected: LevelDebug,
		},
		{
			name:     "Info via LOG_LEVEL",
			levelEnv: "info",
			expected: LevelInfo,
		},
		{
			name:     "Warn via LOG_LEVEL",
			levelEnv: "warn",
			expected: LevelWarn,
		},
		{
			name:     "Error via LOG_LEVEL",
			levelEnv: "error",
			expected: LevelError,
		},
		{
			name:     "Case insensitive",
			levelEnv: "DEBUG",
			expected: LevelDebug,
		},
		{
			name:     "Warning alias",
			levelEnv: "warning",
			expected: LevelWarn,
		},
		{
			name:     "DEBUG variable wins over LOG_LEVEL",
			debugEnv: "1",
			levelEnv: "error",
			expected: LevelDebug,
		},
		{
			name:     "DEBUG true",
			debugEnv: "true",
			expected: LevelDebug,
		},
		{
			name:     "DEBUG off falls through to default",
			debugEnv: "off",
			expected: LevelInfo,
		},
		{
			name:     "Unset defaults to info",
			expected: LevelInfo,
		},
		{
			name:     "Garbage defaults to info",
			levelEnv: "loud",
			expected: LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLevel(tt.debugEnv, tt.levelEnv)
			if got != tt.expected {
				t.Errorf("parseLevel(%q, %q) = %v, want %v", tt.debugEnv, tt.levelEnv, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	// Verify log level ordering
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestIsDebugEnabled(t *testing.T) {
	// IsDebugEnabled must agree with GetLevel
	if IsDebugEnabled() != (GetLevel() <= LevelDebug) {
		t.Error("IsDebugEnabled disagrees with GetLevel")
	}
}

// TestLoggingFunctions tests that logging functions don't panic
func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{
			name: "Debug doesn't panic",
			fn:   func() { Debug("test message") },
		},
		{
			name: "Info doesn't panic",
			fn:   func() { Info("test message") },
		},
		{
			name: "Warn doesn't panic",
			fn:   func() { Warn("test message") },
		},
		{
			name: "Error doesn't panic",
			fn:   func() { Error("test message") },
		},
		{
			name: "Debug with args doesn't panic",
			fn:   func() { Debug("test %s %d", "message", 123) },
		},
		{
			name: "Printf doesn't panic",
			fn:   func() { Printf("test %s %d", "message", 123) },
		},
		{
			name: "Println doesn't panic",
			fn:   func() { Println("test", "message", 123) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Function panicked: %v", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
