package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rtsp-bridge/internal/logging"
)

// GetSnapshot captures a single still frame from the session's source
// and returns it as JPEG. An optional width query parameter downscales
// the image; invalid values are ignored and upscaling never happens.
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status, ok := h.registry.Status(id)
	if !ok {
		writeJSONError(w, "session not found", http.StatusNotFound)
		return
	}

	width := 0
	if parsed, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && parsed > 0 {
		width = parsed
	}

	img, err := h.snapshots.Capture(r.Context(), status.SourceAddress, width)
	if err != nil {
		logging.Error("snapshot for session %s failed: %v", id, err)
		writeJSONError(w, "snapshot failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(img); err != nil {
		logging.Error("failed to write snapshot response: %v", err)
	}
}
