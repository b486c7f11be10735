package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rtsp-bridge/internal/decoder"
)

// Default timeout for a probe attempt. An unreachable RTSP source
// otherwise leaves ffprobe hanging on the TCP handshake.
const defaultTimeout = 15 * time.Second

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	source := os.Args[2]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	cfg := decoderConfig()

	switch command {
	case "check":
		if !checkSource(ctx, cfg, source) {
			os.Exit(1)
		}
	case "args":
		fmt.Print(commandLines(cfg, source))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage()
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for
// display, replacing anything outside [a-zA-Z0-9_-] with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("RTSP Bridge Source Probe")
	fmt.Println("")
	fmt.Println("Usage: probe <command> <rtsp-url>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  check  - Probe the source and report its video stream")
	fmt.Println("  args   - Print the decoder command lines for the source")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Println("  FFMPEG_PATH       - FFmpeg binary (default: ffmpeg)")
	fmt.Println("  FFPROBE_PATH      - ffprobe binary (default: ffprobe)")
	fmt.Println("  FFMPEG_EXTRA_ARGS - Extra remux arguments, whitespace-separated")
}

// decoderConfig reads the same binary overrides the bridge itself
// uses, so a passing probe means the bridge would run the identical
// invocation.
func decoderConfig() decoder.Config {
	cfg := decoder.Config{
		BinaryPath: os.Getenv("FFMPEG_PATH"),
		ProbePath:  os.Getenv("FFPROBE_PATH"),
	}
	if extra := os.Getenv("FFMPEG_EXTRA_ARGS"); extra != "" {
		cfg.ExtraArgs = strings.Fields(extra)
	}
	return cfg
}

func checkSource(ctx context.Context, cfg decoder.Config, source string) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cmd := decoder.ProbeCommand(cfg, source)
	probe := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)

	var stdout, stderr bytes.Buffer
	probe.Stdout = &stdout
	probe.Stderr = &stderr

	if err := probe.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: probe failed: %v\n", err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			fmt.Fprintf(os.Stderr, "No response within %s; check the address and network path\n", defaultTimeout)
		}
		return false
	}

	report, err := formatReport(stdout.Bytes())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unexpected probe output: %v\n", err)
		return false
	}

	fmt.Println("Source is reachable.")
	fmt.Print(report)
	return true
}

// formatReport turns ffprobe's JSON into the lines check prints.
func formatReport(raw []byte) (string, error) {
	var parsed struct {
		Streams []struct {
			CodecName    string `json:"codec_name"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Streams) == 0 {
		return "", errors.New("no video stream in probe output")
	}

	s := parsed.Streams[0]
	var b strings.Builder
	fmt.Fprintf(&b, "  Codec:      %s\n", s.CodecName)
	fmt.Fprintf(&b, "  Resolution: %dx%d\n", s.Width, s.Height)
	fmt.Fprintf(&b, "  Frame rate: %s\n", s.AvgFrameRate)
	return b.String(), nil
}

// commandLines renders the probe and remux invocations the bridge
// would run for the source.
func commandLines(cfg decoder.Config, source string) string {
	probe := decoder.ProbeCommand(cfg, source)
	remux := decoder.RemuxCommand(cfg, source)

	var b strings.Builder
	fmt.Fprintf(&b, "Probe:\n  %s %s\n", probe.Binary, strings.Join(probe.Args, " "))
	fmt.Fprintf(&b, "Remux:\n  %s %s\n", remux.Binary, strings.Join(remux.Args, " "))
	return b.String()
}
