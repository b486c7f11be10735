// Package handlers provides the HTTP and WebSocket endpoints of the
// bridge.
//
// It includes handlers for:
//   - Starting, stopping, listing and inspecting decoder sessions
//   - The WebSocket data plane that relays session byte ranges
//   - One-shot JPEG snapshots of a session's source
//   - The session history journal
//   - Health checks, readiness and version info
package handlers
