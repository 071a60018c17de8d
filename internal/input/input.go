// Package input turns raw device input into the state the compositor reads
// each tick: the pointer position, buffered clicks and raw key codes.
package input

import (
	"fmt"
	"sync"

	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/platform"
)

// DefaultClickQueueSize bounds the clicks buffered between ticks.
const DefaultClickQueueSize = 256

// ClickKind classifies a buffered pointer button transition.
type ClickKind int

const (
	Left ClickKind = iota
	LeftDrag
	LeftRelease
	Right
	RightRelease
)

func (k ClickKind) String() string {
	switch k {
	case Left:
		return "left"
	case LeftDrag:
		return "left-drag"
	case LeftRelease:
		return "left-release"
	case Right:
		return "right"
	case RightRelease:
		return "right-release"
	default:
		return fmt.Sprintf("click(%d)", int(k))
	}
}

// Click is a button transition at a screen position.
type Click struct {
	Kind ClickKind
	X, Y int
}

// Snapshot is the pointer state handed to one compositor tick.
type Snapshot struct {
	X, Y   int
	DX, DY int
	Moved  bool
	Left   bool
	Right  bool
	Clicks []Click
}

// State implements platform.InputSink. Backends call it from their own
// goroutines; the compositor drains it once per tick.
type State struct {
	mu       sync.Mutex
	width    int
	height   int
	x, y     int
	dx, dy   int
	moved    bool
	left     bool
	right    bool
	clicks   []Click
	capacity int
	dropped  int
	keys     *event.KeyRing
	alt      bool
}

var _ platform.InputSink = (*State)(nil)

// NewState creates input state for a width x height screen with the pointer
// at the centre.
func NewState(width, height, clickCap, keyCap int) *State {
	if clickCap <= 0 {
		clickCap = DefaultClickQueueSize
	}
	return &State{
		width:    width,
		height:   height,
		x:        width / 2,
		y:        height / 2,
		capacity: clickCap,
		clicks:   make([]Click, 0, clickCap),
		keys:     event.NewKeyRing(keyCap),
	}
}

// PointerMoved applies a relative motion.
func (s *State) PointerMoved(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(s.x+dx, s.y+dy)
}

// PointerAt applies an absolute position.
func (s *State) PointerAt(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(x, y)
}

func (s *State) moveTo(x, y int) {
	x = min(max(x, 0), s.width-1)
	y = min(max(y, 0), s.height-1)
	if x == s.x && y == s.y {
		return
	}
	s.dx += x - s.x
	s.dy += y - s.y
	s.x, s.y = x, y
	s.moved = true
	if s.left {
		s.push(Click{Kind: LeftDrag, X: x, Y: y})
	}
}

// Button records a press or release.
func (s *State) Button(b platform.Button, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch b {
	case platform.ButtonLeft:
		if down == s.left {
			return
		}
		s.left = down
		if down {
			s.push(Click{Kind: Left, X: s.x, Y: s.y})
		} else {
			s.push(Click{Kind: LeftRelease, X: s.x, Y: s.y})
		}
	case platform.ButtonRight:
		if down == s.right {
			return
		}
		s.right = down
		if down {
			s.push(Click{Kind: Right, X: s.x, Y: s.y})
		} else {
			s.push(Click{Kind: RightRelease, X: s.x, Y: s.y})
		}
	}
}

// push queues c. Consecutive drags collapse into the latest one; a full
// queue drops further drags first so presses and releases stay paired.
func (s *State) push(c Click) {
	if c.Kind == LeftDrag && len(s.clicks) > 0 && s.clicks[len(s.clicks)-1].Kind == LeftDrag {
		s.clicks[len(s.clicks)-1] = c
		return
	}
	if len(s.clicks) >= s.capacity {
		if c.Kind == LeftDrag {
			s.dropped++
			return
		}
		// Make room by discarding the oldest drag, if any.
		for i, old := range s.clicks {
			if old.Kind == LeftDrag {
				s.clicks = append(s.clicks[:i], s.clicks[i+1:]...)
				break
			}
		}
		if len(s.clicks) >= s.capacity {
			s.dropped++
			return
		}
	}
	s.clicks = append(s.clicks, c)
}

// Key buffers a raw scan code and tracks the Alt modifier.
func (s *State) Key(code byte) {
	s.mu.Lock()
	switch code {
	case KeyAlt:
		s.alt = true
	case KeyAlt | event.ReleaseBit:
		s.alt = false
	}
	s.mu.Unlock()
	s.keys.Push(code)
}

// Alt reports whether Alt is held.
func (s *State) Alt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alt
}

// Position returns the pointer position.
func (s *State) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// Keys removes and returns the buffered scan codes.
func (s *State) Keys() []byte {
	return s.keys.Take()
}

// Dropped returns how many clicks were discarded on overflow.
func (s *State) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Take returns the state accumulated since the previous call and resets the
// motion and click buffers.
func (s *State) Take() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		X: s.x, Y: s.y,
		DX: s.dx, DY: s.dy,
		Moved: s.moved,
		Left:  s.left,
		Right: s.right,
	}
	if len(s.clicks) > 0 {
		snap.Clicks = append([]Click(nil), s.clicks...)
		s.clicks = s.clicks[:0]
	}
	s.dx, s.dy, s.moved = 0, 0, false
	return snap
}
