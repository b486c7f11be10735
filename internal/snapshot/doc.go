// Package snapshot captures still frames from RTSP sources.
//
// Each capture runs a short-lived FFmpeg process that connects to the
// camera, grabs a single frame, and writes it to stdout as PNG. The
// service decodes the frame, optionally downscales it to a requested
// width (never upscaling), and re-encodes it as JPEG for delivery.
//
// Captures are independent of streaming sessions: a snapshot opens its
// own connection to the camera, so it works for sources nobody is
// currently watching and never perturbs a live relay.
//
// Concurrent captures are capped by a worker pool sized from the
// available CPUs (SNAPSHOT_WORKERS overrides the computed count).
// Excess requests queue until a worker frees up or their context
// expires, so a burst of snapshot requests cannot fork an unbounded
// number of FFmpeg processes.
package snapshot
