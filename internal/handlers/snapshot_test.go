package handlers

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rtsp-bridge/internal/session"
	"rtsp-bridge/internal/snapshot"
	"rtsp-bridge/internal/startup"
)

// writeTestFrame writes a small PNG for the fake capture binary to
// emit.
func writeTestFrame(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test frame: %v", err)
	}
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write test frame: %v", err)
	}
	return path
}

// newSnapshotHandlers pairs a long-lived fake decoder with a separate
// fake capture binary.
func newSnapshotHandlers(t *testing.T, captureScript string) (*Handlers, string) {
	t.Helper()

	cfg := session.DefaultConfig()
	cfg.Decoder.BinaryPath = writeFakeDecoder(t, "sleep 60")
	registry := session.NewRegistry(cfg, nil)
	t.Cleanup(registry.Close)

	snapshots := snapshot.New(snapshot.Config{
		BinaryPath: writeFakeDecoder(t, captureScript),
		Timeout:    5 * time.Second,
	})
	h := New(registry, nil, snapshots, &startup.Config{})

	id, err := registry.Start("rtsp://cam.local/main")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return h, id
}

func TestGetSnapshot(t *testing.T) {
	frame := writeTestFrame(t)
	h, id := newSnapshotHandlers(t, "cat "+frame)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/streams/"+id+"/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", got)
	}

	img, err := jpeg.Decode(w.Body)
	if err != nil {
		t.Fatalf("response is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Errorf("image = %dx%d, want 4x2", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestGetSnapshotWidth(t *testing.T) {
	frame := writeTestFrame(t)
	h, id := newSnapshotHandlers(t, "cat "+frame)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/streams/"+id+"/snapshot?width=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	img, err := jpeg.Decode(w.Body)
	if err != nil {
		t.Fatalf("response is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("width = %d, want 2", img.Bounds().Dx())
	}
}

func TestGetSnapshotInvalidWidthIgnored(t *testing.T) {
	frame := writeTestFrame(t)
	h, id := newSnapshotHandlers(t, "cat "+frame)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/streams/"+id+"/snapshot?width=bogus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	img, err := jpeg.Decode(w.Body)
	if err != nil {
		t.Fatalf("response is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("width = %d, want the full 4", img.Bounds().Dx())
	}
}

func TestGetSnapshotUnknownSession(t *testing.T) {
	h, _ := newSnapshotHandlers(t, "exit 0")
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/streams/sess-unknown/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetSnapshotCaptureFailure(t *testing.T) {
	h, id := newSnapshotHandlers(t, `echo "Connection refused" 1>&2; exit 1`)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/streams/"+id+"/snapshot", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}
