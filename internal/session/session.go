package session

import (
	"fmt"
	"sync"
	"time"

	"rtsp-bridge/internal/boundary"
	"rtsp-bridge/internal/decoder"
	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/metrics"
)

// State is a session's lifecycle phase.
type State int

const (
	// StateStarting covers the spawn window; clients cannot attach yet.
	StateStarting State = iota
	// StateActive means the decoder is running and clients may attach.
	StateActive
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Stop reasons recorded in logs, metrics and the history journal.
const (
	ReasonStopped      = "stopped"
	ReasonUpstreamExit = "upstream-exit"
	ReasonShutdown     = "shutdown"
)

// Config carries the tunables shared by every session a registry
// creates.
type Config struct {
	// Decoder configures the FFmpeg invocation.
	Decoder decoder.Config
	// Boundary tunes initialization-block detection.
	Boundary boundary.Config
	// ClientBacklogMax closes any client queue whose undelivered
	// backlog exceeds this many bytes. Zero or negative means
	// unbounded.
	ClientBacklogMax int
}

// DefaultConfig returns the defaults used when the operator overrides
// nothing.
func DefaultConfig() Config {
	return Config{
		Boundary:         boundary.DefaultConfig(),
		ClientBacklogMax: DefaultClientBacklogMax,
	}
}

// Status is a point-in-time snapshot of one session, shaped for the
// control-plane JSON surface.
type Status struct {
	ID            string    `json:"id"`
	SourceAddress string    `json:"source_address"`
	State         string    `json:"state"`
	Active        bool      `json:"active"`
	ClientCount   int       `json:"client_count"`
	Resolved      bool      `json:"boundary_resolved"`
	Trigger       string    `json:"boundary_trigger,omitempty"`
	InitBytes     int       `json:"init_bytes"`
	PendingBytes  int       `json:"pending_bytes,omitempty"`
	RelayedChunks int64     `json:"relayed_chunks"`
	RelayedBytes  int64     `json:"relayed_bytes"`
	StartedAt     time.Time `json:"started_at"`
	PID           int       `json:"pid,omitempty"`
	CPUPercent    float64   `json:"cpu_percent,omitempty"`
	MemoryBytes   uint64    `json:"memory_bytes,omitempty"`
}

// process is the decoder handle surface the session drives, narrowed
// so tests can substitute a fake subprocess.
type process interface {
	Terminate()
	PID() int
}

type spawnFunc func(cmd decoder.Command, tag string, sink decoder.Sink) (process, error)

func defaultSpawn(cmd decoder.Command, tag string, sink decoder.Sink) (process, error) {
	p, err := decoder.Spawn(cmd, tag, sink)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Session owns one decoder subprocess, the initialization block its
// output resolves to, and the set of attached client queues. All state
// mutation happens under one mutex; the decoder reader goroutine, the
// boundary deadline timer, and control-plane callers serialize there,
// which is what makes the one-shot resolution commit race-free.
type Session struct {
	id     string
	source string
	cfg    Config
	events EventSink
	spawn  spawnFunc
	onEnd  func(*Session)

	mu            sync.Mutex
	state         State
	detector      *boundary.Detector
	deadline      *time.Timer
	resolved      bool
	initBlock     []byte
	trigger       boundary.Trigger
	clients       []*Queue
	proc          process
	startedAt     time.Time
	idleSince     time.Time
	relayedChunks int64
	relayedBytes  int64
}

func newSession(id, source string, cfg Config, events EventSink, spawn spawnFunc, onEnd func(*Session)) *Session {
	if events == nil {
		events = noopEvents{}
	}
	return &Session{
		id:       id,
		source:   source,
		cfg:      cfg,
		events:   events,
		spawn:    spawn,
		onEnd:    onEnd,
		state:    StateStarting,
		detector: boundary.NewDetector(cfg.Boundary),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Source returns the upstream source address.
func (s *Session) Source() string {
	return s.source
}

// start launches the decoder. A nil return means the subprocess is
// running and the session is active; otherwise the *decoder.SpawnError
// is returned and the session is terminally stopped. The lock is held
// across the spawn so no decoder callback can observe the session
// half-started.
func (s *Session) start() error {
	s.mu.Lock()
	proc, err := s.spawn(decoder.RemuxCommand(s.cfg.Decoder, s.source), s.id, decoderSink{s})
	if err != nil {
		s.state = StateStopped
		s.mu.Unlock()
		return err
	}
	s.proc = proc
	s.state = StateActive
	s.startedAt = time.Now()
	s.idleSince = s.startedAt
	if d := s.cfg.Boundary.Timeout; d > 0 {
		s.deadline = time.AfterFunc(d, s.expireBoundary)
	}
	pid := proc.PID()
	s.mu.Unlock()

	logging.Info("session %s: decoder started for %s (pid %d)", s.id, s.source, pid)
	metrics.SessionsStartedTotal.Inc()
	s.events.SessionStarted(s.id, s.source)
	return nil
}

// handleChunk is the decoder sink: pre-resolution chunks feed the
// detector, post-resolution chunks fan out to every attached queue.
func (s *Session) handleChunk(data []byte) {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}

	if !s.resolved {
		res, ok := s.detector.Feed(data)
		if !ok {
			s.mu.Unlock()
			return
		}
		dropped := s.commitLocked(res)
		s.mu.Unlock()
		s.announceResolution(res)
		s.announceDropped(dropped)
		return
	}

	s.relayedChunks++
	s.relayedBytes += int64(len(data))
	dropped := s.pushAllLocked(data)
	s.mu.Unlock()

	metrics.RelayedChunksTotal.Inc()
	metrics.RelayedBytesTotal.Add(float64(len(data)))
	s.announceDropped(dropped)
}

// expireBoundary runs when the detection deadline fires. A data-driven
// trigger that already resolved wins; the timer is then a no-op.
func (s *Session) expireBoundary() {
	s.mu.Lock()
	if s.state == StateStopped || s.resolved {
		s.mu.Unlock()
		return
	}
	res, ok := s.detector.Expire()
	if !ok {
		s.mu.Unlock()
		return
	}
	dropped := s.commitLocked(res)
	s.mu.Unlock()
	s.announceResolution(res)
	s.announceDropped(dropped)
}

// commitLocked installs the resolved initialization block and replays
// it to every queue attached during the pre-resolution window. Caller
// holds s.mu. The detector hands its buffer over wholesale, so the
// pre-boundary accumulation is freed the moment this commits.
func (s *Session) commitLocked(res boundary.Resolution) []*Queue {
	s.resolved = true
	s.initBlock = res.Init
	s.trigger = res.Trigger
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	if len(res.Init) == 0 {
		return nil
	}
	return s.pushAllLocked(res.Init)
}

// pushAllLocked relays data to every attached queue in attachment
// order, removing queues that can no longer take it. Caller holds
// s.mu; the removed queues are returned for accounting outside the
// lock.
func (s *Session) pushAllLocked(data []byte) []*Queue {
	var dropped []*Queue
	for _, q := range s.clients {
		if !q.push(data) {
			dropped = append(dropped, q)
		}
	}
	for _, q := range dropped {
		s.removeClientLocked(q)
	}
	return dropped
}

func (s *Session) removeClientLocked(q *Queue) bool {
	for i, c := range s.clients {
		if c == q {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			if len(s.clients) == 0 {
				s.idleSince = time.Now()
			}
			return true
		}
	}
	return false
}

func (s *Session) announceResolution(res boundary.Resolution) {
	if res.Trigger.Degraded() {
		logging.Warn("session %s: initialization block promoted by %s with %d bytes and no marker seen",
			s.id, res.Trigger, len(res.Init))
	} else {
		logging.Info("session %s: initialization block resolved (%d bytes)", s.id, len(res.Init))
	}
	metrics.BoundaryResolutionsTotal.WithLabelValues(res.Trigger.String()).Inc()
	metrics.InitBlockBytes.Observe(float64(len(res.Init)))
	s.events.BoundaryResolved(s.id, res.Trigger.String(), len(res.Init))
}

func (s *Session) announceDropped(dropped []*Queue) {
	if len(dropped) == 0 {
		return
	}
	logging.Warn("session %s: closed %d client queue(s) over the backlog limit", s.id, len(dropped))
	metrics.QueueOverflowsTotal.Add(float64(len(dropped)))
}

// handleExit is the decoder sink's exit notification, the single
// source of truth for the subprocess being gone. It fires on normal
// exit, crash, and kill alike.
func (s *Session) handleExit(code int, err error) {
	if s.teardown(ReasonUpstreamExit, code) {
		if err != nil {
			logging.Warn("session %s: decoder exited: %v", s.id, err)
		}
	} else {
		logging.Debug("session %s: decoder reaped after stop (exit code %d)", s.id, code)
	}
}

// Stop terminates the session: the decoder is killed without grace,
// every client queue closes, and the registry drops the entry.
// Idempotent; repeated calls observe the same stopped end state.
func (s *Session) Stop() {
	s.teardown(ReasonStopped, 0)
}

// teardown performs the single transition to stopped. Queues are
// closed before the registry removal runs, so a session is never
// invisible while a client queue is still open.
func (s *Session) teardown(reason string, exitCode int) bool {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return false
	}
	s.state = StateStopped
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	clients := s.clients
	s.clients = nil
	proc := s.proc
	s.mu.Unlock()

	if proc != nil {
		proc.Terminate()
	}
	for _, q := range clients {
		q.close(false)
	}

	logging.Info("session %s: stopped (%s)", s.id, reason)
	metrics.SessionsEndedTotal.WithLabelValues(reason).Inc()
	s.events.SessionStopped(s.id, reason, exitCode)
	if s.onEnd != nil {
		s.onEnd(s)
	}
	return true
}

// Attach registers a new client queue. When the initialization block
// is already resolved it is enqueued before Attach returns, so the
// queue's first range is always the block, never a bare live range.
func (s *Session) Attach() (*Queue, error) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	q := newQueue(s.cfg.ClientBacklogMax)
	if s.resolved && len(s.initBlock) > 0 {
		q.push(s.initBlock)
	}
	s.clients = append(s.clients, q)
	s.idleSince = time.Time{}
	n := len(s.clients)
	s.mu.Unlock()

	logging.Debug("session %s: client attached (%d now)", s.id, n)
	metrics.ClientAttachesTotal.Inc()
	return q, nil
}

// Detach removes q from the session and closes it, discarding any
// undelivered backlog. Unknown and already-detached queues are a
// no-op.
func (s *Session) Detach(q *Queue) {
	if q == nil {
		return
	}
	s.mu.Lock()
	removed := s.removeClientLocked(q)
	n := len(s.clients)
	s.mu.Unlock()

	q.close(true)
	if removed {
		logging.Debug("session %s: client detached (%d left)", s.id, n)
	}
}

// ClientCount returns the number of attached queues. It updates
// promptly on attach and detach so an external idle policy can poll
// it.
func (s *Session) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Active reports whether the session currently accepts clients.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateActive
}

// idleFor reports how long the session has run with no attached
// client, measured at now. Sessions with clients, stopped sessions,
// and sessions not yet started report zero.
func (s *Session) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || len(s.clients) > 0 || s.idleSince.IsZero() {
		return 0
	}
	return now.Sub(s.idleSince)
}

// Status snapshots the session without side effects. Decoder process
// stats are sampled best-effort and omitted when unavailable.
func (s *Session) Status() Status {
	s.mu.Lock()
	st := Status{
		ID:            s.id,
		SourceAddress: s.source,
		State:         s.state.String(),
		Active:        s.state == StateActive,
		ClientCount:   len(s.clients),
		Resolved:      s.resolved,
		InitBytes:     len(s.initBlock),
		PendingBytes:  s.detector.Buffered(),
		RelayedChunks: s.relayedChunks,
		RelayedBytes:  s.relayedBytes,
		StartedAt:     s.startedAt,
	}
	if s.resolved {
		st.Trigger = s.trigger.String()
	}
	var pid int
	if s.state == StateActive && s.proc != nil {
		pid = s.proc.PID()
	}
	s.mu.Unlock()

	if pid > 0 {
		st.PID = pid
		st.CPUPercent, st.MemoryBytes = processStats(pid)
	}
	return st
}

// decoderSink adapts the session to the decoder callback surface
// without exporting the handlers.
type decoderSink struct{ s *Session }

func (d decoderSink) Chunk(data []byte)          { d.s.handleChunk(data) }
func (d decoderSink) Exited(code int, err error) { d.s.handleExit(code, err) }
