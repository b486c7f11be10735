package session

// EventSink observes session lifecycle transitions, typically to
// journal them for operators. Implementations are called outside the
// session lock but on hot-path-adjacent goroutines, so they should
// return quickly and must never call back into the registry.
type EventSink interface {
	// SessionStarted fires once the decoder subprocess is running.
	SessionStarted(id, source string)
	// BoundaryResolved fires when the initialization block commits,
	// with the winning trigger name and the block size in bytes.
	BoundaryResolved(id, trigger string, initBytes int)
	// SessionStopped fires exactly once per session, with the reason
	// and, for upstream exits, the subprocess exit code.
	SessionStopped(id, reason string, exitCode int)
}

type noopEvents struct{}

func (noopEvents) SessionStarted(string, string)        {}
func (noopEvents) BoundaryResolved(string, string, int) {}
func (noopEvents) SessionStopped(string, string, int)   {}
