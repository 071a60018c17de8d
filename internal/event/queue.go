package event

import "sync"

// DefaultQueueSize is the capacity of a window's private ring.
const DefaultQueueSize = 256

// Queue is a window's private bounded FIFO for events the window queues to
// itself (repaint requests, deferred resizes, border repaints).
type Queue struct {
	mu    sync.Mutex
	items []Event
	head  int
	count int
}

// NewQueue creates a queue holding up to size events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{items: make([]Event, size)}
}

// Push appends ev and reports false when the queue is full.
func (q *Queue) Push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == len(q.items) {
		return false
	}
	q.items[(q.head+q.count)%len(q.items)] = ev
	q.count++
	return true
}

// Take removes up to limit events in FIFO order. Events pushed while the
// caller processes the result wait for the next call, so a window that keeps
// re-queueing work cannot monopolize its pump.
func (q *Queue) Take(limit int) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.count
	if limit > 0 && n > limit {
		n = limit
	}
	if n == 0 {
		return nil
	}
	out := make([]Event, n)
	for i := range out {
		out[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.head = (q.head + n) % len(q.items)
	q.count -= n
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Reset empties the queue.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.head, q.count = 0, 0
	q.mu.Unlock()
}
