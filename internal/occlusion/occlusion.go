// Package occlusion keeps the per-pixel ownership map used to decide how a
// window is composited.
package occlusion

import (
	"sync"

	"github.com/1broseidon/framewm/internal/platform"
)

// Visibility classifies a window after a rebuild.
type Visibility int

const (
	// NotMapped windows took no part in the last rebuild.
	NotMapped Visibility = iota
	// Foremost windows own every on-screen pixel of their rectangle.
	Foremost
	// Partial windows own some but not all of their pixels.
	Partial
	// Obscured windows own no pixel at all.
	Obscured
)

func (v Visibility) String() string {
	switch v {
	case Foremost:
		return "foremost"
	case Partial:
		return "partial"
	case Obscured:
		return "obscured"
	default:
		return "not-mapped"
	}
}

// Layer is one visible window handed to Rebuild.
type Layer struct {
	Slot int
	Rect platform.Rect
}

// Map stores one owner per screen pixel. Owners are registry slots; the map
// stores slot+1 so the zero value means "none".
type Map struct {
	mu     sync.RWMutex
	width  int
	height int
	owners []uint16
	status map[int]Visibility
	owned  map[int]int
}

// New creates an empty map for a width x height screen.
func New(width, height int) *Map {
	return &Map{
		width:  width,
		height: height,
		owners: make([]uint16, width*height),
		status: make(map[int]Visibility),
		owned:  make(map[int]int),
	}
}

// Bounds returns the screen rectangle the map covers.
func (m *Map) Bounds() platform.Rect {
	return platform.Rect{Width: m.width, Height: m.height}
}

// Rebuild recomputes ownership wholesale. layers are in draw order, back to
// front; they are claimed front to back so a claimed pixel is never
// reassigned.
func (m *Map) Rebuild(layers []Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.owners)
	clear(m.status)
	clear(m.owned)

	screen := m.Bounds()
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		tag := uint16(l.Slot + 1)
		r := l.Rect.Intersect(screen)

		claimed, taken := 0, 0
		for y := r.Y; y < r.Bottom(); y++ {
			row := m.owners[y*m.width+r.X : y*m.width+r.Right()]
			for x, owner := range row {
				if owner == 0 {
					row[x] = tag
					claimed++
				} else if owner != tag {
					taken++
				}
			}
		}

		m.owned[l.Slot] += claimed
		switch {
		case m.owned[l.Slot] == 0:
			m.status[l.Slot] = Obscured
		case taken == 0 && m.status[l.Slot] != Partial:
			m.status[l.Slot] = Foremost
		default:
			m.status[l.Slot] = Partial
		}
	}
}

// Owner returns the slot owning (x, y).
func (m *Map) Owner(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	o := m.owners[y*m.width+x]
	if o == 0 {
		return 0, false
	}
	return int(o) - 1, true
}

// Owns reports whether slot owns (x, y).
func (m *Map) Owns(slot, x, y int) bool {
	o, ok := m.Owner(x, y)
	return ok && o == slot
}

// Status returns the classification of slot from the last rebuild.
func (m *Map) Status(slot int) Visibility {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status[slot]
}

// Owned returns how many pixels slot claimed in the last rebuild.
func (m *Map) Owned(slot int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owned[slot]
}

// OwnedRuns calls fn for every maximal horizontal run of pixels inside r that
// slot owns. It holds the read lock for the duration of the scan.
func (m *Map) OwnedRuns(slot int, r platform.Rect, fn func(x, y, n int)) {
	m.runs(uint16(slot+1), r, fn)
}

// FreeRuns calls fn for every run of pixels inside r that no window owns.
func (m *Map) FreeRuns(r platform.Rect, fn func(x, y, n int)) {
	m.runs(0, r, fn)
}

func (m *Map) runs(tag uint16, r platform.Rect, fn func(x, y, n int)) {
	r = r.Intersect(m.Bounds())
	if r.Empty() {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for y := r.Y; y < r.Bottom(); y++ {
		row := m.owners[y*m.width : (y+1)*m.width]
		start := -1
		for x := r.X; x < r.Right(); x++ {
			if row[x] == tag {
				if start < 0 {
					start = x
				}
				continue
			}
			if start >= 0 {
				fn(start, y, x-start)
				start = -1
			}
		}
		if start >= 0 {
			fn(start, y, r.Right()-start)
		}
	}
}
