// Package damage accumulates dirty rectangles for a surface.
//
// The set is bounded: once more than Cap disjoint rectangles are pending it
// collapses into a single "everything" state, so a pathological redraw
// pattern costs one full redraw instead of an unbounded list.
package damage

import (
	"sync"

	"github.com/1broseidon/framewm/internal/platform"
)

const (
	// DefaultCap is the number of rectangles kept before giving up.
	DefaultCap = 100
	// DefaultMargin is how close two rectangles may be and still merge.
	DefaultMargin = 2
)

// Set is the result of Consume.
type Set struct {
	Rects []platform.Rect
	All   bool
}

// Empty reports whether nothing needs redrawing.
func (s Set) Empty() bool {
	return !s.All && len(s.Rects) == 0
}

// Tracker is safe for concurrent use: the owning task adds damage while the
// compositor consumes it.
type Tracker struct {
	mu     sync.Mutex
	rects  []platform.Rect
	all    bool
	cap    int
	margin int
}

// NewTracker creates a tracker holding at most capacity rectangles that
// merges rectangles within margin pixels of each other.
func NewTracker(capacity, margin int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if margin < 0 {
		margin = 0
	}
	return &Tracker{
		rects:  make([]platform.Rect, 0, capacity),
		cap:    capacity,
		margin: margin,
	}
}

// Add records r as dirty.
func (t *Tracker) Add(r platform.Rect) {
	if r.Empty() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.all {
		return
	}
	grown := r.Inset(-t.margin)
	for i, e := range t.rects {
		if e.ContainsRect(r) {
			return
		}
		if e.Overlaps(grown) {
			t.rects[i] = e.Union(r)
			return
		}
	}
	if len(t.rects) >= t.cap {
		t.all = true
		t.rects = t.rects[:0]
		return
	}
	t.rects = append(t.rects, r)
}

// InvalidateAll marks the whole surface dirty.
func (t *Tracker) InvalidateAll() {
	t.mu.Lock()
	t.all = true
	t.rects = t.rects[:0]
	t.mu.Unlock()
}

// Pending reports whether anything is waiting to be consumed.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.all || len(t.rects) > 0
}

// Len returns the number of pending rectangles (0 in the everything state).
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rects)
}

// All reports whether the tracker is in the everything state.
func (t *Tracker) All() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.all
}

// Rects returns a copy of the pending rectangles.
func (t *Tracker) Rects() []platform.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]platform.Rect(nil), t.rects...)
}

// Consume returns the pending damage clipped to bounds and clears it. In the
// everything state the result is the whole of bounds.
func (t *Tracker) Consume(bounds platform.Rect) Set {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out Set
	if t.all {
		out.All = true
		if !bounds.Empty() {
			out.Rects = []platform.Rect{bounds}
		}
	} else {
		for _, r := range t.rects {
			if c := r.Intersect(bounds); !c.Empty() {
				out.Rects = append(out.Rects, c)
			}
		}
	}
	t.all = false
	t.rects = t.rects[:0]
	return out
}
