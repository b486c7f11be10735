package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"time"

	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/metrics"
	"rtsp-bridge/internal/workers"

	_ "image/png"

	"github.com/disintegration/imaging"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultTimeout   = 15 * time.Second
	DefaultQuality   = 80
	defaultBinary    = "ffmpeg"
	defaultWorkerCap = 8
)

// Config tunes the snapshot service.
type Config struct {
	// BinaryPath locates the FFmpeg binary. Empty means "ffmpeg" on PATH.
	BinaryPath string
	// Timeout bounds a single capture, camera connect included.
	Timeout time.Duration
	// MaxWorkers caps concurrent captures. Zero sizes the pool from
	// the available CPUs.
	MaxWorkers int
	// Quality is the JPEG encode quality (1-100).
	Quality int
}

// Service captures still frames from RTSP sources. Each capture runs
// its own short-lived FFmpeg process, independent of any streaming
// session for the same camera.
type Service struct {
	cfg Config
	sem chan struct{}
}

// New creates a snapshot service, applying defaults for zero fields.
func New(cfg Config) *Service {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = defaultBinary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = workers.ForMixed(defaultWorkerCap)
	}
	if cfg.Quality <= 0 {
		cfg.Quality = DefaultQuality
	}
	return &Service{
		cfg: cfg,
		sem: make(chan struct{}, cfg.MaxWorkers),
	}
}

// captureArgs builds the FFmpeg argument list for a one-frame grab.
func captureArgs(source string) []string {
	return []string{
		"-rtsp_transport", "tcp",
		"-i", source,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}

// Capture grabs one frame from source and returns it encoded as JPEG.
// A positive width scales the frame down to that width, preserving
// aspect ratio; zero keeps the native size. Captures queue when all
// workers are busy.
func (s *Service) Capture(ctx context.Context, source string, width int) ([]byte, error) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	metrics.SnapshotsInFlight.Inc()
	defer metrics.SnapshotsInFlight.Dec()

	start := time.Now()
	data, err := s.capture(ctx, source, width)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SnapshotsTotal.WithLabelValues(status).Inc()
	metrics.SnapshotDuration.Observe(time.Since(start).Seconds())

	return data, err
}

func (s *Service) capture(ctx context.Context, source string, width int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cfg.BinaryPath, captureArgs(source)...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", source)
	}

	logging.Debug("Snapshot frame size: %d bytes from %s", stdout.Len(), source)

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}

	if width > 0 && width < img.Bounds().Dx() {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.cfg.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return buf.Bytes(), nil
}
