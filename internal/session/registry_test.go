package session

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"rtsp-bridge/internal/decoder"
)

// spawnRecorder fakes the decoder launch and keeps each session's sink
// so tests can drive subprocess output and exit through the same
// callbacks the real reader uses.
type spawnRecorder struct {
	mu    sync.Mutex
	err   error
	sinks map[string]decoder.Sink
	procs map[string]*fakeProcess
	tags  []string
}

func (r *spawnRecorder) spawn(_ decoder.Command, tag string, sink decoder.Sink) (process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.sinks == nil {
		r.sinks = make(map[string]decoder.Sink)
		r.procs = make(map[string]*fakeProcess)
	}
	p := &fakeProcess{pid: 1000 + len(r.tags)}
	r.sinks[tag] = sink
	r.procs[tag] = p
	r.tags = append(r.tags, tag)
	return p, nil
}

func (r *spawnRecorder) sink(t *testing.T, id string) decoder.Sink {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sinks[id]
	if !ok {
		t.Fatalf("no spawn recorded for session %s", id)
	}
	return s
}

func (r *spawnRecorder) proc(t *testing.T, id string) *fakeProcess {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.procs[id]
	if !ok {
		t.Fatalf("no spawn recorded for session %s", id)
	}
	return p
}

func (r *spawnRecorder) spawnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tags)
}

func newTestRegistry(t *testing.T, cfg Config, events EventSink) (*Registry, *spawnRecorder) {
	t.Helper()

	r := NewRegistry(cfg, events)
	rec := &spawnRecorder{}
	r.spawn = rec.spawn
	t.Cleanup(r.Close)
	return r, rec
}

func TestRegistryStartAssignsUniqueIDs(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, err := r.Start("rtsp://cam.local/stream")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if !strings.HasPrefix(id, "sess-") {
			t.Errorf("id = %q, want sess- prefix", id)
		}
		if seen[id] {
			t.Errorf("id %q assigned twice", id)
		}
		seen[id] = true
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
}

func TestRegistryStartSpawnFailure(t *testing.T) {
	r, rec := newTestRegistry(t, markerConfig(), nil)
	rec.err = &decoder.SpawnError{Binary: "ffmpeg", Err: errors.New("executable file not found")}

	_, err := r.Start("rtsp://cam.local/stream")

	var se *decoder.SpawnError
	if !errors.As(err, &se) {
		t.Fatalf("Start() error = %v, want *decoder.SpawnError", err)
	}
	// A failed launch leaves no half-started session behind.
	if r.Count() != 0 {
		t.Errorf("Count() = %d after failed start, want 0", r.Count())
	}
	if got := r.List(); len(got) != 0 {
		t.Errorf("List() = %v after failed start, want empty", got)
	}
}

func TestRegistryStartWithID(t *testing.T) {
	r, rec := newTestRegistry(t, markerConfig(), nil)

	if err := r.StartWithID("cam-lobby", "rtsp://cam.local/lobby"); err != nil {
		t.Fatalf("StartWithID() error = %v", err)
	}
	st, ok := r.Status("cam-lobby")
	if !ok {
		t.Fatal("Status() not found for caller-chosen id")
	}
	if st.SourceAddress != "rtsp://cam.local/lobby" {
		t.Errorf("SourceAddress = %q", st.SourceAddress)
	}

	// Same id again: success, no second decoder.
	if err := r.StartWithID("cam-lobby", "rtsp://cam.local/lobby"); err != nil {
		t.Fatalf("repeat StartWithID() error = %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if rec.spawnCount() != 1 {
		t.Errorf("spawns = %d, want 1", rec.spawnCount())
	}
}

func TestRegistryStartAfterClose(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)
	r.Close()

	if _, err := r.Start("rtsp://cam.local/stream"); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("Start() error = %v, want ErrRegistryClosed", err)
	}
	if err := r.StartWithID("x", "rtsp://cam.local/stream"); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("StartWithID() error = %v, want ErrRegistryClosed", err)
	}
}

func TestRegistryStopRemovesSession(t *testing.T) {
	r, rec := newTestRegistry(t, markerConfig(), nil)

	id, err := r.Start("rtsp://cam.local/stream")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	r.Stop(id)

	if r.Count() != 0 {
		t.Errorf("Count() = %d after stop, want 0", r.Count())
	}
	if _, ok := r.Status(id); ok {
		t.Error("Status() still finds a stopped session")
	}
	if rec.proc(t, id).terminations() != 1 {
		t.Errorf("terminations = %d, want 1", rec.proc(t, id).terminations())
	}

	// Unknown ids are a no-op.
	r.Stop("never-existed")
	r.Stop(id)
}

func TestRegistryAttachUnknownSession(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)

	if _, err := r.Attach("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Attach() error = %v, want ErrSessionNotFound", err)
	}
	// Detach against an unknown id must not panic.
	r.Detach("nope", nil)
}

func TestRegistryClientCounts(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)

	id, err := r.Start("rtsp://cam.local/stream")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	q1, err := r.Attach(id)
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if _, err := r.Attach(id); err != nil {
		t.Fatalf("second Attach() error = %v", err)
	}

	if r.ClientCount() != 2 {
		t.Errorf("ClientCount() = %d, want 2", r.ClientCount())
	}
	stats := r.GetStats()
	if stats.ActiveSessions != 1 || stats.AttachedClients != 2 {
		t.Errorf("GetStats() = %+v, want 1 session and 2 clients", stats)
	}

	r.Detach(id, q1)
	if r.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d after detach, want 1", r.ClientCount())
	}
}

func TestRegistryListOldestFirst(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)

	for _, id := range []string{"cam-a", "cam-b", "cam-c"} {
		if err := r.StartWithID(id, "rtsp://cam.local/"+id); err != nil {
			t.Fatalf("StartWithID(%s) error = %v", id, err)
		}
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("List() returned %d sessions, want 3", len(list))
	}
	for i, want := range []string{"cam-a", "cam-b", "cam-c"} {
		if list[i].ID != want {
			t.Errorf("List()[%d].ID = %q, want %q", i, list[i].ID, want)
		}
	}
}

func TestRegistryListEmptyNotNil(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)

	list := r.List()
	if list == nil {
		t.Fatal("List() = nil, want empty slice")
	}
	if len(list) != 0 {
		t.Errorf("List() = %v, want empty", list)
	}
}

func TestRegistryRelayThroughDecoderSink(t *testing.T) {
	r, rec := newTestRegistry(t, markerConfig(), nil)

	id, err := r.Start("rtsp://cam.local/stream")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	sink := rec.sink(t, id)

	sink.Chunk([]byte("ftypmoof"))

	q, err := r.Attach(id)
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	sink.Chunk([]byte("live-1"))

	if got := nextOrFail(t, q); !bytes.Equal(got, []byte("ftypmoof")) {
		t.Errorf("first range = %q, want the init block", got)
	}
	if got := nextOrFail(t, q); !bytes.Equal(got, []byte("live-1")) {
		t.Errorf("second range = %q, want %q", got, "live-1")
	}

	st, _ := r.Status(id)
	if !st.Resolved || st.Trigger != "pattern" {
		t.Errorf("Status() resolved = %v trigger = %q", st.Resolved, st.Trigger)
	}
}

func TestRegistryUpstreamExitRemovesSession(t *testing.T) {
	rec := &eventRecorder{}
	r, spawns := newTestRegistry(t, markerConfig(), rec)

	id, err := r.Start("rtsp://cam.local/stream")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	q, err := r.Attach(id)
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	spawns.sink(t, id).Exited(1, errors.New("connection reset"))

	if r.Count() != 0 {
		t.Errorf("Count() = %d after upstream exit, want 0", r.Count())
	}
	if !q.Closed() {
		t.Error("client queue still open after upstream exit")
	}
	events := rec.all()
	if len(events) == 0 || events[len(events)-1] != "stopped "+id+" upstream-exit 1" {
		t.Errorf("events = %v, want trailing upstream-exit", events)
	}
}

func TestRegistryReapIdle(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)

	idleID, err := r.Start("rtsp://cam.local/idle")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	watchedID, err := r.Start("rtsp://cam.local/watched")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := r.Attach(watchedID); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	reaped := r.ReapIdle(time.Millisecond)
	if len(reaped) != 1 || reaped[0] != idleID {
		t.Fatalf("ReapIdle() = %v, want [%s]", reaped, idleID)
	}
	if _, ok := r.Status(idleID); ok {
		t.Error("idle session still tracked after reap")
	}
	if _, ok := r.Status(watchedID); !ok {
		t.Error("watched session reaped")
	}
}

func TestRegistryReapIdleDisabled(t *testing.T) {
	r, _ := newTestRegistry(t, markerConfig(), nil)

	if _, err := r.Start("rtsp://cam.local/stream"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if reaped := r.ReapIdle(0); reaped != nil {
		t.Errorf("ReapIdle(0) = %v, want nil", reaped)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistryCloseStopsEverything(t *testing.T) {
	rec := &eventRecorder{}
	r, spawns := newTestRegistry(t, markerConfig(), rec)

	id1, err := r.Start("rtsp://cam.local/one")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	id2, err := r.Start("rtsp://cam.local/two")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	q, err := r.Attach(id1)
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	r.Close()
	r.Close() // idempotent

	if r.Count() != 0 {
		t.Errorf("Count() = %d after close, want 0", r.Count())
	}
	if !q.Closed() {
		t.Error("client queue still open after close")
	}
	for _, id := range []string{id1, id2} {
		if spawns.proc(t, id).terminations() != 1 {
			t.Errorf("session %s terminations = %d, want 1", id, spawns.proc(t, id).terminations())
		}
	}

	shutdowns := 0
	for _, e := range rec.all() {
		if strings.Contains(e, " shutdown ") {
			shutdowns++
		}
	}
	if shutdowns != 2 {
		t.Errorf("shutdown events = %d, want 2", shutdowns)
	}
}
