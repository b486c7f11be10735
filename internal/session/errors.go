package session

import "errors"

var (
	// ErrSessionNotFound rejects an attach or lookup naming an id the
	// registry does not track.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotActive rejects an attach against a session that is still
	// starting or already stopped.
	ErrNotActive = errors.New("session not active")

	// ErrQueueClosed is returned by Queue.Next once the queue is
	// closed and drained. It is the consumer's end-of-stream signal.
	ErrQueueClosed = errors.New("client queue closed")

	// ErrRegistryClosed rejects starts after the registry has begun
	// shutdown.
	ErrRegistryClosed = errors.New("registry closed")
)
