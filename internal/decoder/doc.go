// Package decoder launches and supervises the external FFmpeg process
// that pulls an RTSP source and remuxes it to fragmented MP4 on stdout.
//
// One Process wraps one subprocess. Output chunks are delivered to a
// Sink in production order from a single reader goroutine; no buffering
// or reframing happens at this layer. The subprocess's stderr is
// forwarded line by line to the debug log. Exit is reported exactly
// once, whether the process ended normally, crashed, or was killed via
// Terminate.
//
// FFmpeg is required at runtime and is resolved through PATH unless
// Config.BinaryPath points at it explicitly.
package decoder
