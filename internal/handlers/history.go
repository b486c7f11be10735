package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rtsp-bridge/internal/history"
	"rtsp-bridge/internal/logging"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// HistoryResponse wraps journal events for the JSON surface.
type HistoryResponse struct {
	Events []history.Event `json:"events"`
	Count  int             `json:"count"`
}

// GetHistory returns the most recent session lifecycle events, newest
// first. Responds 503 when the journal is disabled.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeJSONError(w, "history journal disabled", http.StatusServiceUnavailable)
		return
	}

	limit := defaultHistoryLimit
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 {
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	events, err := h.journal.RecentEvents(r.Context(), limit)
	if err != nil {
		logging.Error("failed to read history: %v", err)
		writeJSONError(w, "failed to read history", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []history.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, HistoryResponse{
		Events: events,
		Count:  len(events),
	})
}

// GetStreamHistory returns the full journal for one session, oldest
// first, whether or not the session is still running. A session the
// journal never saw yields an empty list.
func (h *Handlers) GetStreamHistory(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeJSONError(w, "history journal disabled", http.StatusServiceUnavailable)
		return
	}

	id := mux.Vars(r)["id"]

	events, err := h.journal.SessionEvents(r.Context(), id)
	if err != nil {
		logging.Error("failed to read history for session %s: %v", id, err)
		writeJSONError(w, "failed to read history", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []history.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, HistoryResponse{
		Events: events,
		Count:  len(events),
	})
}
