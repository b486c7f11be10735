package session

import (
	"context"
	"sync"
)

// DefaultClientBacklogMax is the undelivered-backlog ceiling applied
// to client queues when the config does not say otherwise.
const DefaultClientBacklogMax = 16 << 20

// Queue is the ordered byte sink for one attached consumer. The
// session pushes the initialization block (at most once) followed by
// live ranges in production order; the consumer drains them with Next.
//
// The queue is unbounded so the relay path never blocks and never
// drops: a consumer either receives an exact prefix of the stream or
// is cut off entirely when its backlog exceeds the configured ceiling.
type Queue struct {
	mu         sync.Mutex
	ranges     [][]byte
	backlog    int
	maxBacklog int
	closed     bool
	overflowed bool

	// wake holds at most one token; push and close deposit it, Next
	// consumes it. Next re-checks state after every wakeup, so a
	// coalesced token never loses data.
	wake chan struct{}
}

func newQueue(maxBacklog int) *Queue {
	return &Queue{
		maxBacklog: maxBacklog,
		wake:       make(chan struct{}, 1),
	}
}

// push appends one range. It reports false when the queue cannot take
// it: either it was closed already, or this push drove the backlog
// over the ceiling and the queue closed itself. The caller detaches
// the consumer in both cases.
func (q *Queue) push(r []byte) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.maxBacklog > 0 && q.backlog+len(r) > q.maxBacklog {
		q.closed = true
		q.overflowed = true
		q.ranges = nil
		q.backlog = 0
		q.mu.Unlock()
		q.wakeUp()
		return false
	}
	q.ranges = append(q.ranges, r)
	q.backlog += len(r)
	q.mu.Unlock()
	q.wakeUp()
	return true
}

// close stops the queue. With discard set the undelivered backlog is
// dropped (the consumer is gone); otherwise Next drains what is
// pending before reporting ErrQueueClosed.
func (q *Queue) close(discard bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	if discard {
		q.ranges = nil
		q.backlog = 0
	}
	q.mu.Unlock()
	q.wakeUp()
}

func (q *Queue) wakeUp() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Next blocks until a range is available and returns it. After the
// queue closes it drains any remaining ranges, then returns
// ErrQueueClosed. A canceled context returns ctx.Err().
func (q *Queue) Next(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.ranges) > 0 {
			r := q.ranges[0]
			q.ranges[0] = nil
			q.ranges = q.ranges[1:]
			q.backlog -= len(r)
			q.mu.Unlock()
			return r, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, ErrQueueClosed
		}

		select {
		case <-q.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Backlog returns the undelivered byte count.
func (q *Queue) Backlog() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.backlog
}

// Closed reports whether the queue has been closed. Pending ranges
// may still be drained with Next unless the close discarded them.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Overflowed reports whether the queue was closed for exceeding its
// backlog ceiling.
func (q *Queue) Overflowed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.overflowed
}
