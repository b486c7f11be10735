package handlers

import (
	"sync"
	"sync/atomic"
	"time"

	"rtsp-bridge/internal/history"
	"rtsp-bridge/internal/session"
	"rtsp-bridge/internal/snapshot"
	"rtsp-bridge/internal/startup"
)

type Handlers struct {
	registry  *session.Registry
	journal   *history.Store
	snapshots *snapshot.Service
	startedAt time.Time

	// journalWanted records whether the operator enabled the history
	// journal; a nil journal despite that marks the service degraded.
	journalWanted bool

	draining atomic.Bool

	// peers tracks live data-plane attachments by (session, client
	// host) so a flapping client cannot stack duplicate connections
	// while its previous one is still draining.
	peerMu sync.Mutex
	peers  map[peerKey]struct{}
}

type peerKey struct {
	session string
	client  string
}

// New wires the endpoint set to its dependencies. The journal may be
// nil when history is disabled or failed to open; the affected
// endpoints degrade instead of the whole service.
func New(registry *session.Registry, journal *history.Store, snapshots *snapshot.Service, config *startup.Config) *Handlers {
	return &Handlers{
		registry:      registry,
		journal:       journal,
		snapshots:     snapshots,
		startedAt:     time.Now(),
		journalWanted: config.HistoryEnabled,
		peers:         make(map[peerKey]struct{}),
	}
}
