package handlers

import (
	"net/http"
	"runtime"
	"time"

	"rtsp-bridge/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusDraining = "draining"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Relay summary
	ActiveSessions  int  `json:"activeSessions"`
	AttachedClients int  `json:"attachedClients"`
	HistoryEnabled  bool `json:"historyEnabled"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// MarkDraining flips readiness off. Call it when shutdown begins so
// load balancers stop routing new clients while sessions drain.
func (h *Handlers) MarkDraining() {
	h.draining.Store(true)
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := h.registry.GetStats()

	response := HealthResponse{
		Ready:           !h.draining.Load(),
		Version:         startup.Version,
		Uptime:          time.Since(h.startedAt).Round(time.Second).String(),
		ActiveSessions:  stats.ActiveSessions,
		AttachedClients: stats.AttachedClients,
		HistoryEnabled:  h.journal != nil,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	switch {
	case !response.Ready:
		response.Status = statusDraining
	case h.journalWanted && h.journal == nil:
		// The journal was asked for but never opened; the relay still
		// works, the audit trail does not.
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only once shutdown has begun
	if !response.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only while the service accepts new work
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !h.draining.Load() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": statusDraining,
		})
	}
}
