// Package boundary resolves the initialization block inside a decoder's
// output stream.
//
// Fragmented MP4 produced by FFmpeg opens with initialization data
// (ftyp and moov boxes) that every decoder needs before it can make
// sense of any media fragment. The decoder subprocess gives no framing
// hints, so the Detector accumulates output until one of three
// triggers fires, first wins:
//
//   - Pattern: a structural marker (by default "moof" or "mfra")
//     appears anywhere in the accumulated bytes.
//   - Size cap: the accumulated bytes reach a configured ceiling.
//   - Timeout: a deadline expires before either of the above.
//
// Whichever fires first promotes the entire accumulated buffer,
// including the whole triggering chunk, to the initialization block.
// Size-cap and timeout resolutions are degraded (no marker was seen)
// but deliberate: an unrecognized stream still flows, trusting the
// first live bytes to be self-describing.
//
// The Detector owns no goroutines or timers. The session that owns it
// serializes every call, including the timeout, under its own lock.
package boundary
