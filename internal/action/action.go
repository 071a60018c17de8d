// Package action serializes structural window mutations into the compositor
// task. Any task may enqueue; only the compositor drains.
package action

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/task"
)

// DefaultQueueSize is the ring capacity.
const DefaultQueueSize = 4096

// Kind is the structural operation requested.
type Kind int

const (
	Show Kind = iota + 1
	Hide
	Resize
	Select
	Destroy
	Minimize
	Maximize
	Restore
)

func (k Kind) String() string {
	switch k {
	case Show:
		return "show"
	case Hide:
		return "hide"
	case Resize:
		return "resize"
	case Select:
		return "select"
	case Destroy:
		return "destroy"
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	case Restore:
		return "restore"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Request is one queued mutation.
type Request struct {
	Target platform.WindowID
	Kind   Kind
	// Rect carries the new geometry for Resize.
	Rect platform.Rect
	// ClearState drops the minimized and maximized state once a Resize
	// has been applied.
	ClearState bool
}

// Handle is the completion flag of an enqueued request.
type Handle struct {
	req  Request
	done atomic.Bool
	err  error
}

// Request returns what was asked for.
func (h *Handle) Request() Request { return h.req }

// Done reports whether the compositor has executed the request.
func (h *Handle) Done() bool { return h.done.Load() }

// Err returns the execution result once Done is true.
func (h *Handle) Err() error {
	if !h.done.Load() {
		return nil
	}
	return h.err
}

// Wait yields until the request completes or ctx ends. A caller that gives
// up early does not retract the request; it still runs.
func (h *Handle) Wait(ctx context.Context) error {
	for !h.done.Load() {
		if err := task.Yield(ctx); err != nil {
			return err
		}
	}
	return h.err
}

func (h *Handle) complete(err error) {
	h.err = err
	h.done.Store(true)
}

// Queue is a bounded FIFO of requests.
type Queue struct {
	mu    sync.Mutex
	ring  []*Handle
	head  int
	count int
}

// NewQueue creates a queue with room for size pending requests.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ring: make([]*Handle, size)}
}

// TryEnqueue appends req, returning nil when the queue is full.
func (q *Queue) TryEnqueue(req Request) *Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == len(q.ring) {
		return nil
	}
	h := &Handle{req: req}
	q.ring[(q.head+q.count)%len(q.ring)] = h
	q.count++
	return h
}

// Enqueue appends req, yielding while the queue is full.
func (q *Queue) Enqueue(ctx context.Context, req Request) (*Handle, error) {
	for {
		if h := q.TryEnqueue(req); h != nil {
			return h, nil
		}
		if err := task.Yield(ctx); err != nil {
			return nil, err
		}
	}
}

func (q *Queue) pop() *Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return nil
	}
	h := q.ring[q.head]
	q.ring[q.head] = nil
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	return h
}

// Drain executes every pending request in FIFO order, including requests
// enqueued by exec itself, and flips each completion flag. It returns how
// many requests ran.
func (q *Queue) Drain(exec func(Request) error) int {
	n := 0
	for h := q.pop(); h != nil; h = q.pop() {
		h.complete(exec(h.req))
		n++
	}
	return n
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
