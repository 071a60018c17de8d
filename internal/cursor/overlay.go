package cursor

import (
	"sync"

	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/screen"
)

// Edges selects which sides of a frame follow the pointer while resizing.
type Edges uint8

const (
	EdgeLeft Edges = 1 << iota
	EdgeTop
	EdgeRight
	EdgeBottom
)

// FrameThickness is the width of the rubber-band frame.
const FrameThickness = 2

type resizeState struct {
	base   platform.Rect
	edges  Edges
	dx, dy int
	minW   int
	minH   int
}

// Overlay is the pointer layer. It is driven by the compositor task only.
type Overlay struct {
	mu      sync.Mutex
	scr     *screen.Screen
	cur     *Descriptor
	x, y    int
	ready   bool
	drawn   []platform.Rect
	resize  *resizeState
	scratch []uint32
}

// NewOverlay creates an overlay for scr showing the default arrow at the
// screen centre. Nothing is drawn until SetReady.
func NewOverlay(scr *screen.Screen) *Overlay {
	return &Overlay{
		scr:     scr,
		cur:     Builtin(Default),
		x:       scr.Width() / 2,
		y:       scr.Height() / 2,
		scratch: make([]uint32, max(scr.Width(), 1)),
	}
}

// SetReady allows drawing and draws the cursor for the first time.
func (o *Overlay) SetReady() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ready {
		return
	}
	o.ready = true
	o.draw()
}

// Ready reports whether the overlay draws.
func (o *Overlay) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready
}

// Position returns the hot spot position.
func (o *Overlay) Position() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.x, o.y
}

// Descriptor returns the active cursor.
func (o *Overlay) Descriptor() *Descriptor {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cur
}

// Footprint returns the screen area the overlay currently occupies.
func (o *Overlay) Footprint() platform.Rect {
	o.mu.Lock()
	defer o.mu.Unlock()
	var r platform.Rect
	for _, d := range o.drawn {
		r = r.Union(d)
	}
	return r
}

// Set switches to descriptor d.
func (o *Overlay) Set(d *Descriptor) {
	if d == nil {
		d = Builtin(Default)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur == d {
		return
	}
	o.undraw(nil)
	o.cur = d
	o.draw()
}

// Move places the hot spot at (x, y), clamped to the screen.
func (o *Overlay) Move(x, y int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	x = min(max(x, 0), o.scr.Width()-1)
	y = min(max(y, 0), o.scr.Height()-1)
	if x == o.x && y == o.y {
		return
	}
	o.x, o.y = x, y

	if o.resize != nil || !o.cur.Solid() {
		o.undraw(nil)
	} else {
		next := o.cur.Footprint(x, y)
		o.undraw(&next)
	}
	o.draw()
}

// Redraw paints the cursor again in place, e.g. after composited output
// overwrote it.
func (o *Overlay) Redraw() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.undraw(nil)
	o.draw()
}

// Erase removes the cursor from the device.
func (o *Overlay) Erase() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.undraw(nil)
}

// BeginResize replaces the pointer with a rubber-band frame starting at
// frame. Accumulated motion moves the given edges; the frame never shrinks
// below minW x minH.
func (o *Overlay) BeginResize(frame platform.Rect, edges Edges, minW, minH int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.undraw(nil)
	o.resize = &resizeState{base: frame, edges: edges, minW: minW, minH: minH}
	o.draw()
}

// Accumulate adds relative pointer motion to the rubber band.
func (o *Overlay) Accumulate(dx, dy int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resize == nil {
		return
	}
	o.undraw(nil)
	o.resize.dx += dx
	o.resize.dy += dy
	o.draw()
}

// Resizing reports whether the rubber band is active.
func (o *Overlay) Resizing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resize != nil
}

// Frame returns the current rubber-band rectangle.
func (o *Overlay) Frame() platform.Rect {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resize == nil {
		return platform.Rect{}
	}
	return o.resize.frame()
}

// EndResize removes the rubber band and returns its final rectangle.
func (o *Overlay) EndResize() platform.Rect {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resize == nil {
		return platform.Rect{}
	}
	r := o.resize.frame()
	o.undraw(nil)
	o.resize = nil
	o.draw()
	return r
}

func (s *resizeState) frame() platform.Rect {
	r := s.base
	if s.edges&EdgeLeft != 0 {
		w := max(r.Width-s.dx, s.minW)
		r.X = r.Right() - w
		r.Width = w
	}
	if s.edges&EdgeRight != 0 {
		r.Width = max(r.Width+s.dx, s.minW)
	}
	if s.edges&EdgeTop != 0 {
		h := max(r.Height-s.dy, s.minH)
		r.Y = r.Bottom() - h
		r.Height = h
	}
	if s.edges&EdgeBottom != 0 {
		r.Height = max(r.Height+s.dy, s.minH)
	}
	return r
}

// undraw restores the drawn footprint from the shadow. When keep is set only
// the parts not covered by keep are restored; the caller redraws keep.
func (o *Overlay) undraw(keep *platform.Rect) {
	for _, r := range o.drawn {
		if keep == nil {
			o.scr.Restore(r)
			continue
		}
		for _, part := range r.Subtract(*keep) {
			o.scr.Restore(part)
		}
	}
	o.drawn = o.drawn[:0]
}

func (o *Overlay) draw() {
	if !o.ready {
		return
	}
	if o.resize != nil {
		o.drawFrame(o.resize.frame())
		return
	}
	o.drawBitmap()
}

func (o *Overlay) drawBitmap() {
	d := o.cur
	fp := d.Footprint(o.x, o.y)
	vis := fp.Intersect(o.scr.Bounds())
	if vis.Empty() {
		return
	}
	shade := d.Mode == ModeTransparent
	for y := vis.Y; y < vis.Bottom(); y++ {
		src := d.Bitmap[(y-fp.Y)*d.Width:]
		var under []uint32
		if shade {
			under = o.scr.ShadowRow(o.scratch, y, vis.X, vis.Right())
		}
		start := -1
		flush := func(end int) {
			if start < 0 {
				return
			}
			run := make([]uint32, end-start)
			for i := range run {
				p := src[start+i-fp.X]
				if p == SemiTransparent {
					p = 0
					if shade {
						p = darken(under[start+i-vis.X])
					}
				}
				run[i] = p
			}
			o.scr.OverlaySpan(start, y, run)
			start = -1
		}
		for x := vis.X; x < vis.Right(); x++ {
			if src[x-fp.X] == Transparent {
				flush(x)
				continue
			}
			if start < 0 {
				start = x
			}
		}
		flush(vis.Right())
	}
	o.drawn = append(o.drawn, vis)
}

func (o *Overlay) drawFrame(r platform.Rect) {
	t := min(FrameThickness, r.Width, r.Height)
	if t <= 0 {
		return
	}
	strips := []platform.Rect{
		{X: r.X, Y: r.Y, Width: r.Width, Height: t},
		{X: r.X, Y: r.Bottom() - t, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
		{X: r.Right() - t, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
	}
	for _, s := range strips {
		s = s.Intersect(o.scr.Bounds())
		if s.Empty() {
			continue
		}
		for y := s.Y; y < s.Bottom(); y++ {
			row := o.scr.ShadowRow(o.scratch, y, s.X, s.Right())
			out := make([]uint32, len(row))
			for i, p := range row {
				out[i] = p ^ 0x00FFFFFF
			}
			o.scr.OverlaySpan(s.X, y, out)
		}
		o.drawn = append(o.drawn, s)
	}
}

// darken halves every channel, producing the drop-shadow tint.
func darken(p uint32) uint32 {
	return (p >> 1) & 0x007F7F7F
}
