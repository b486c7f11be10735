package history

import "fmt"

// The Store doubles as the registry's event sink: lifecycle callbacks
// arrive from inside session code paths, get queued, and are written by
// the background goroutine.

// SessionStarted records a decoder launch.
func (s *Store) SessionStarted(id, source string) {
	s.record(Event{
		SessionID: id,
		Source:    source,
		Event:     EventStarted,
	})
}

// BoundaryResolved records an initialization boundary commit.
func (s *Store) BoundaryResolved(id, trigger string, initBytes int) {
	s.record(Event{
		SessionID: id,
		Event:     EventResolved,
		Detail:    fmt.Sprintf("trigger=%s init_bytes=%d", trigger, initBytes),
	})
}

// SessionStopped records a session teardown.
func (s *Store) SessionStopped(id, reason string, exitCode int) {
	s.record(Event{
		SessionID: id,
		Event:     EventStopped,
		Detail:    fmt.Sprintf("reason=%s exit_code=%d", reason, exitCode),
	})
}
