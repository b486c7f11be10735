package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/session"
)

// StartStreamRequest is the body of POST /api/streams.
type StartStreamRequest struct {
	SourceAddress string `json:"source_address"`
}

// StartStreamResponse identifies the session created for the source.
type StartStreamResponse struct {
	SessionID string `json:"session_id"`
}

// ListStreamsResponse wraps the session list for the JSON surface.
type ListStreamsResponse struct {
	Streams []session.Status `json:"streams"`
	Count   int              `json:"count"`
}

// StartStream launches a decoder session for the requested source and
// returns its identifier. The response is sent once the subprocess is
// running; a failed spawn is the upstream's failure, not ours.
func (h *Handlers) StartStream(w http.ResponseWriter, r *http.Request) {
	var req StartStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.SourceAddress = strings.TrimSpace(req.SourceAddress)
	if req.SourceAddress == "" {
		writeJSONError(w, "source_address is required", http.StatusBadRequest)
		return
	}

	id, err := h.registry.Start(req.SourceAddress)
	if err != nil {
		if errors.Is(err, session.ErrRegistryClosed) {
			writeJSONError(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		logging.Error("failed to start session for %s: %v", req.SourceAddress, err)
		writeJSONError(w, "failed to start decoder: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, StartStreamResponse{SessionID: id})
}

// StopStream stops the identified session. Stopping an unknown id
// succeeds: the caller wanted the session gone and it is.
func (h *Handlers) StopStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.registry.Stop(id)
	w.WriteHeader(http.StatusNoContent)
}

// ListStreams returns a status record for every session, oldest first.
func (h *Handlers) ListStreams(w http.ResponseWriter, _ *http.Request) {
	list := h.registry.List()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ListStreamsResponse{
		Streams: list,
		Count:   len(list),
	})
}

// GetStream returns the status record for one session.
func (h *Handlers) GetStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status, ok := h.registry.Status(id)
	if !ok {
		writeJSONError(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, status)
}
