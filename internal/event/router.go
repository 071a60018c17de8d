package event

import (
	"context"
	"errors"
	"sync"

	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/task"
)

// ErrNoTarget is returned when publishing an event without a destination.
var ErrNoTarget = errors.New("event has no target window")

// DefaultRingSize is the shared ring capacity.
const DefaultRingSize = 8192

// Router is the shared event ring. Entries live in one fixed pool of size
// slots; each window owns a FIFO of pool indices in publish order, so a
// window that stops consuming only holds the entries addressed to it. The
// ring is full only when every pool entry is live.
type Router struct {
	mu      sync.Mutex
	entries []Event
	free    []int
	queues  [][]int
}

// NewRouter creates a ring of size entries for a registry of slots windows.
func NewRouter(size, slots int) *Router {
	if size <= 0 {
		size = DefaultRingSize
	}
	free := make([]int, size)
	for i := range free {
		free[i] = size - 1 - i
	}
	return &Router{
		entries: make([]Event, size),
		free:    free,
		queues:  make([][]int, slots),
	}
}

// TryPublish appends ev without waiting. It returns false when the ring is
// full. Events without a valid target have no consumer and are discarded.
func (r *Router) TryPublish(ev Event) bool {
	if !ev.Target.Valid() {
		return true
	}
	slot := ev.Target.Slot()
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot >= len(r.queues) {
		return true
	}
	n := len(r.free)
	if n == 0 {
		return false
	}
	idx := r.free[n-1]
	r.free = r.free[:n-1]
	r.entries[idx] = ev
	r.queues[slot] = append(r.queues[slot], idx)
	return true
}

// Publish appends ev, yielding until the ring has room. Events are never
// dropped; the only way out without publishing is ctx ending.
func (r *Router) Publish(ctx context.Context, ev Event) error {
	if !ev.Target.Valid() {
		return ErrNoTarget
	}
	for !r.TryPublish(ev) {
		if err := task.Yield(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Take consumes up to limit events for id in publish order (limit <= 0
// means all of them). Entries left by a previous occupant of id's slot are
// discarded on the way.
func (r *Router) Take(id platform.WindowID, limit int) []Event {
	slot := id.Slot()
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot >= len(r.queues) {
		return nil
	}
	q := r.queues[slot]
	var out []Event
	n := 0
	for ; n < len(q); n++ {
		if limit > 0 && len(out) == limit {
			break
		}
		ev := r.entries[q[n]]
		r.release(q[n])
		if ev.Target != id {
			continue
		}
		out = append(out, ev)
	}
	r.queues[slot] = q[:copy(q, q[n:])]
	return out
}

func (r *Router) release(idx int) {
	r.entries[idx] = Event{}
	r.free = append(r.free, idx)
}

// Pending returns how many events wait for slot.
func (r *Router) Pending(slot int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot >= len(r.queues) {
		return 0
	}
	return len(r.queues[slot])
}

// Flush discards everything queued for slot. It is used when a slot is
// freed or reused.
func (r *Router) Flush(slot int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot >= len(r.queues) {
		return 0
	}
	q := r.queues[slot]
	for _, idx := range q {
		r.release(idx)
	}
	r.queues[slot] = q[:0]
	return len(q)
}

// Len returns the number of unconsumed entries.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries) - len(r.free)
}

// Cap returns the ring capacity.
func (r *Router) Cap() int { return len(r.entries) }
