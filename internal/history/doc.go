// Package history keeps an append-only journal of session lifecycle
// events (started, resolved, stopped) in a SQLite database.
//
// The journal exists for operators: it answers "what happened to the
// camera feed overnight" without grepping logs. Sessions are never
// reconstructed from it.
//
// The Store implements the session registry's event sink. Sink calls
// arrive from inside session code paths, so they only enqueue; a single
// background goroutine performs the actual inserts.
package history
