package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/metrics"
)

// Registry is the process-wide session table. Construct one at startup
// and Close it on shutdown; nothing in this package holds global
// state, so tests run independent registries side by side.
type Registry struct {
	cfg    Config
	events EventSink
	spawn  spawnFunc

	mu       sync.Mutex
	sessions map[string]*Session
	counter  uint64
	closed   bool
}

// NewRegistry returns an empty registry. A nil events sink is valid
// and discards lifecycle events.
func NewRegistry(cfg Config, events EventSink) *Registry {
	if events == nil {
		events = noopEvents{}
	}
	return &Registry{
		cfg:      cfg,
		events:   events,
		spawn:    defaultSpawn,
		sessions: make(map[string]*Session),
	}
}

// nextID derives a fresh identifier. The counter half guarantees an id
// is never reused within this registry's lifetime, even inside one
// timestamp second. Caller holds r.mu.
func (r *Registry) nextID() string {
	r.counter++
	return fmt.Sprintf("sess-%d-%04d", time.Now().Unix(), r.counter)
}

// Start creates a session for source under a fresh id and launches its
// decoder. It returns once the subprocess is running. A failed launch
// returns the *decoder.SpawnError and leaves no session behind.
func (r *Registry) Start(source string) (string, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrRegistryClosed
	}
	id := r.nextID()
	s := newSession(id, source, r.cfg, r.events, r.spawn, r.remove)
	r.sessions[id] = s
	r.mu.Unlock()

	if err := r.launch(s); err != nil {
		return "", err
	}
	return id, nil
}

// StartWithID launches a session under a caller-chosen id. Starting an
// id the registry already tracks succeeds without spawning a second
// decoder.
func (r *Registry) StartWithID(id, source string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRegistryClosed
	}
	if _, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return nil
	}
	s := newSession(id, source, r.cfg, r.events, r.spawn, r.remove)
	r.sessions[id] = s
	r.mu.Unlock()

	return r.launch(s)
}

func (r *Registry) launch(s *Session) error {
	if err := s.start(); err != nil {
		r.removeID(s.id)
		logging.Error("session %s: decoder spawn failed: %v", s.id, err)
		metrics.SpawnFailuresTotal.Inc()
		return err
	}
	return nil
}

// remove is each session's end-of-life callback. It runs after the
// session has closed its client queues.
func (r *Registry) remove(s *Session) {
	r.removeID(s.id)
}

func (r *Registry) removeID(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Stop terminates the identified session. Unknown ids are a no-op,
// not an error.
func (r *Registry) Stop(id string) {
	r.mu.Lock()
	s := r.sessions[id]
	r.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// Attach registers a new client queue with the identified session.
// Rejections are typed: ErrSessionNotFound for an unknown id,
// ErrNotActive for a session that cannot take clients.
func (r *Registry) Attach(id string) (*Queue, error) {
	r.mu.Lock()
	s := r.sessions[id]
	r.mu.Unlock()
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return s.Attach()
}

// Detach removes a queue from the identified session. Unknown ids and
// already-detached queues are no-ops.
func (r *Registry) Detach(id string, q *Queue) {
	r.mu.Lock()
	s := r.sessions[id]
	r.mu.Unlock()
	if s != nil {
		s.Detach(q)
	}
}

// Status reports a snapshot of the identified session.
func (r *Registry) Status(id string) (Status, bool) {
	r.mu.Lock()
	s := r.sessions[id]
	r.mu.Unlock()
	if s == nil {
		return Status{}, false
	}
	return s.Status(), true
}

// List snapshots every tracked session, oldest first.
func (r *Registry) List() []Status {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make([]Status, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Status())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of tracked sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ClientCount returns the number of attached client queues across all
// sessions.
func (r *Registry) ClientCount() int {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	total := 0
	for _, s := range sessions {
		total += s.ClientCount()
	}
	return total
}

// GetStats reports registry-wide totals for the metrics collector.
func (r *Registry) GetStats() metrics.Stats {
	return metrics.Stats{
		ActiveSessions:  r.Count(),
		AttachedClients: r.ClientCount(),
	}
}

// ReapIdle stops every session that has run without clients for longer
// than maxIdle and returns the ids it stopped. A non-positive maxIdle
// disables reaping.
func (r *Registry) ReapIdle(maxIdle time.Duration) []string {
	if maxIdle <= 0 {
		return nil
	}
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	now := time.Now()
	var reaped []string
	for _, s := range sessions {
		if s.idleFor(now) <= maxIdle {
			continue
		}
		logging.Info("session %s: no clients for over %v, reaping", s.id, maxIdle)
		s.Stop()
		reaped = append(reaped, s.id)
	}
	return reaped
}

// Close stops every session and rejects subsequent starts. Safe to
// call more than once; one session failing to die never blocks the
// rest.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.teardown(ReasonShutdown, 0)
	}
	if len(sessions) > 0 {
		logging.Info("session registry closed, %d session(s) stopped", len(sessions))
	}
}
