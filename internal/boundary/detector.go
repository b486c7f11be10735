package boundary

import (
	"bytes"
	"time"
)

// Defaults tuned for fragmented MP4 out of FFmpeg: the first moof (or
// mfra) box marks the end of the initialization data, and a healthy
// camera produces it well inside five seconds.
const (
	DefaultMaxInitBytes = 2 << 20
	DefaultTimeout      = 5 * time.Second
)

// DefaultMarkers returns the marker set for fragmented MP4 output.
// A fresh slice is returned each call so callers may modify it.
func DefaultMarkers() [][]byte {
	return [][]byte{[]byte("moof"), []byte("mfra")}
}

// Trigger identifies which of the three resolution triggers committed
// the initialization block.
type Trigger int

const (
	// TriggerNone means the block has not been resolved yet.
	TriggerNone Trigger = iota
	// TriggerPattern means a structural marker was found.
	TriggerPattern
	// TriggerSize means the accumulated bytes reached the ceiling.
	TriggerSize
	// TriggerTimeout means the deadline expired first.
	TriggerTimeout
)

// String returns the trigger name used in logs, metrics and the
// session history journal.
func (t Trigger) String() string {
	switch t {
	case TriggerPattern:
		return "pattern"
	case TriggerSize:
		return "size-cap"
	case TriggerTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Degraded reports whether the block was promoted without a marker
// match. Playback may still work if the stream is self-describing.
func (t Trigger) Degraded() bool {
	return t == TriggerSize || t == TriggerTimeout
}

// Config tunes the three resolution triggers. Markers drive the
// pattern trigger, MaxInitBytes the size trigger, and Timeout the
// deadline. A zero or negative MaxInitBytes disables the size trigger;
// a zero or negative Timeout means the owner never arms the deadline.
type Config struct {
	Markers      [][]byte
	MaxInitBytes int
	Timeout      time.Duration
}

// DefaultConfig returns the fragmented-MP4 defaults.
func DefaultConfig() Config {
	return Config{
		Markers:      DefaultMarkers(),
		MaxInitBytes: DefaultMaxInitBytes,
		Timeout:      DefaultTimeout,
	}
}

// Resolution is the committed initialization block plus the trigger
// that produced it. Init may be empty when the deadline fired before
// any bytes arrived.
type Resolution struct {
	Init    []byte
	Trigger Trigger
}

// Detector accumulates decoder output until one trigger fires. It is a
// passive state machine: it owns no goroutines or timers, and callers
// must serialize access. The owning session drives it under its own
// lock, the timeout path included, so a deadline firing while a chunk
// is being fed can never double-resolve.
type Detector struct {
	cfg       Config
	maxMarker int
	buf       []byte
	resolved  bool
}

// NewDetector returns a detector in the unresolved state.
func NewDetector(cfg Config) *Detector {
	d := &Detector{cfg: cfg}
	for _, m := range cfg.Markers {
		if len(m) > d.maxMarker {
			d.maxMarker = len(m)
		}
	}
	return d
}

// Feed appends chunk to the pre-resolution buffer and reports whether
// it resolved the initialization block. On resolution Init is the
// entire accumulated buffer, the whole triggering chunk included; the
// size cap does not truncate. Feed returns false with a zero
// Resolution once resolved; post-resolution chunks are live media
// and must bypass the detector.
func (d *Detector) Feed(chunk []byte) (Resolution, bool) {
	if d.resolved {
		return Resolution{}, false
	}

	// Only the suffix a new marker occurrence could span needs
	// scanning; everything earlier was scanned on a previous feed.
	scanFrom := 0
	if overlap := d.maxMarker - 1; overlap > 0 && len(d.buf) > overlap {
		scanFrom = len(d.buf) - overlap
	}
	d.buf = append(d.buf, chunk...)

	if d.containsMarker(d.buf[scanFrom:]) {
		return d.commit(TriggerPattern), true
	}
	if d.cfg.MaxInitBytes > 0 && len(d.buf) >= d.cfg.MaxInitBytes {
		return d.commit(TriggerSize), true
	}
	return Resolution{}, false
}

// Expire resolves with whatever has accumulated, possibly nothing.
// It reports false if a data-driven trigger already won, making a
// late-firing timer a no-op.
func (d *Detector) Expire() (Resolution, bool) {
	if d.resolved {
		return Resolution{}, false
	}
	return d.commit(TriggerTimeout), true
}

// Resolved reports whether the initialization block has been committed.
func (d *Detector) Resolved() bool {
	return d.resolved
}

// Buffered returns the number of pre-resolution bytes currently held.
// It is zero once resolved; ownership of the bytes moves to the
// Resolution.
func (d *Detector) Buffered() int {
	return len(d.buf)
}

func (d *Detector) containsMarker(window []byte) bool {
	for _, m := range d.cfg.Markers {
		if len(m) > 0 && bytes.Contains(window, m) {
			return true
		}
	}
	return false
}

func (d *Detector) commit(t Trigger) Resolution {
	d.resolved = true
	init := d.buf
	d.buf = nil
	return Resolution{Init: init, Trigger: t}
}
