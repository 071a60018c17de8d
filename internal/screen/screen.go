// Package screen pairs the output device with a shadow copy of everything
// composited onto it. Reads of "what is on screen" are served from the shadow
// only; the cursor overlay draws to the device alone and undraws by restoring
// from the shadow.
package screen

import (
	"sync"

	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/surface"
)

// Screen is mutated only by the compositor task. ReadPixel may be called
// from any task.
type Screen struct {
	mu      sync.RWMutex
	dev     platform.Device
	shadow  *surface.Surface
	touched platform.Rect
	scratch []uint32
}

// New creates a screen for dev with a zeroed shadow.
func New(dev platform.Device) *Screen {
	return &Screen{
		dev:     dev,
		shadow:  surface.New(dev.Width(), dev.Height()),
		scratch: make([]uint32, dev.Width()),
	}
}

func (s *Screen) Width() int  { return s.shadow.Width() }
func (s *Screen) Height() int { return s.shadow.Height() }

// Bounds returns the screen rectangle.
func (s *Screen) Bounds() platform.Rect { return s.shadow.Bounds() }

// Device returns the underlying output device.
func (s *Screen) Device() platform.Device { return s.dev }

// WriteSpan composites a run of pixels: the shadow and the device both
// receive them.
func (s *Screen) WriteSpan(x, y int, px []uint32) {
	span := platform.Rect{X: x, Y: y, Width: len(px), Height: 1}.Intersect(s.Bounds())
	if span.Empty() {
		return
	}
	px = px[span.X-x : span.X-x+span.Width]

	s.mu.Lock()
	copy(s.shadow.Row(span.Y, span.X, span.Right()), px)
	s.touched = s.touched.Union(span)
	s.mu.Unlock()

	s.dev.WriteSpan(span.X, span.Y, px)
}

// Fill composites a solid rectangle.
func (s *Screen) Fill(r platform.Rect, c uint32) {
	r = r.Intersect(s.Bounds())
	if r.Empty() {
		return
	}
	row := s.scratch[:r.Width]
	for i := range row {
		row[i] = c
	}
	for y := r.Y; y < r.Bottom(); y++ {
		s.WriteSpan(r.X, y, row)
	}
}

// ReadPixel returns the composited pixel at (x, y), or 0 off screen.
func (s *Screen) ReadPixel(x, y int) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadow.At(x, y)
}

// ShadowRow copies row y of the shadow between x0 and x1 into dst and
// returns the filled part.
func (s *Screen) ShadowRow(dst []uint32, y, x0, x1 int) []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := copy(dst, s.shadow.Row(y, x0, x1))
	return dst[:n]
}

// OverlaySpan writes pixels to the device only, leaving the shadow intact.
func (s *Screen) OverlaySpan(x, y int, px []uint32) {
	span := platform.Rect{X: x, Y: y, Width: len(px), Height: 1}.Intersect(s.Bounds())
	if span.Empty() {
		return
	}
	s.dev.WriteSpan(span.X, span.Y, px[span.X-x:span.X-x+span.Width])
}

// Restore copies r from the shadow back to the device, erasing overlays.
func (s *Screen) Restore(r platform.Rect) {
	r = r.Intersect(s.Bounds())
	if r.Empty() {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for y := r.Y; y < r.Bottom(); y++ {
		s.dev.WriteSpan(r.X, y, s.shadow.Row(y, r.X, r.Right()))
	}
}

// TakeTouched returns the bounding box of composited writes since the last
// call and resets it.
func (s *Screen) TakeTouched() platform.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.touched
	s.touched = platform.Rect{}
	return r
}

// Flush presents pending device writes.
func (s *Screen) Flush() error {
	return s.dev.Flush()
}
