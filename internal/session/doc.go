/*
Package session manages the lifecycle of RTSP relay sessions: one
decoder subprocess per source, boundary detection over its output, and
fan-out of the resulting byte stream to any number of attached clients.

# Overview

A Session owns one FFmpeg remux process. Its output is opaque bytes
until the boundary detector resolves the initialization block (the
ftyp/moov data a Media Source Extensions decoder needs before anything
else). Pre-resolution bytes accumulate inside the detector and reach no
client; once resolved, the block is replayed to every attached queue
and every later chunk fans out in attachment order. A client attaching
after resolution receives the block immediately, so late joiners always
decode from a self-contained prefix.

The Registry is the process-wide table of sessions. It is an explicit
object, not a package global: construct one in main, pass it to the
HTTP layer, Close it on shutdown. Tests build as many as they like.

# Lifecycle

	starting --> active --> stopped

A session is starting only while the decoder spawns. Spawn failure
moves it straight to stopped and surfaces a *decoder.SpawnError to the
Start caller. From active it stops for exactly one of three reasons:
an explicit Stop ("stopped"), the subprocess dying on its own
("upstream-exit"), or registry shutdown ("shutdown"). Teardown is
one-shot: the decoder is killed, every client queue closes, and only
then is the session removed from the registry, so no client queue ever
outlives its session's visibility.

# Client queues

Attach hands back a *Queue, an unbounded ordered byte sink. The relay
path never blocks on a slow consumer and never drops a range for one;
instead a queue whose undelivered backlog exceeds ClientBacklogMax is
closed and detached, cutting that consumer off with its delivered
prefix intact. Consumers drain with Next until ErrQueueClosed.

# Concurrency

All session state is guarded by a single mutex, the Go rendition of the
event-loop model this design calls for: the decoder's reader goroutine,
the boundary deadline timer, and control-plane callers all serialize
through it. The initialization block can therefore commit exactly once
no matter which trigger fires first, and a chunk fanning out can never
interleave with an attach half-way through enqueueing the block.

Queue.Next is the only blocking operation, and it blocks only its own
consumer; everything else returns promptly.

# Usage

	reg := session.NewRegistry(session.DefaultConfig(), journal)
	defer reg.Close()

	id, err := reg.Start("rtsp://camera.local/stream1")
	if err != nil {
		var spawnErr *decoder.SpawnError
		if errors.As(err, &spawnErr) {
			log.Fatalf("decoder unavailable: %v", err)
		}
	}

	q, err := reg.Attach(id)
	if err != nil {
		// ErrSessionNotFound or ErrNotActive
	}
	defer reg.Detach(id, q)

	for {
		data, err := q.Next(ctx)
		if err != nil {
			break
		}
		// forward data to the client transport
	}
*/
package session
