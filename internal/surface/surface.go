// Package surface implements bounds-checked 2D pixel buffers with a clip
// rectangle and the fill and blit primitives the compositor draws with.
package surface

import (
	"fmt"

	"github.com/1broseidon/framewm/internal/platform"
)

// Surface is an owned pixel buffer. Pixels are 0x00RRGGBB; the top byte is
// free for sentinel values such as cursor transparency keys.
type Surface struct {
	pix    []uint32
	width  int
	height int
	pitch  int
	clip   platform.Rect
}

// New allocates a width x height surface.
func New(width, height int) *Surface {
	width, height = max(width, 0), max(height, 0)
	s, _ := FromPixels(make([]uint32, width*height), width, height)
	return s
}

// FromPixels wraps an existing buffer, e.g. one obtained from an allocator.
func FromPixels(pix []uint32, width, height int) (*Surface, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if len(pix) < width*height {
		return nil, fmt.Errorf("buffer of %d pixels too small for %dx%d", len(pix), width, height)
	}
	s := &Surface{
		pix:    pix,
		width:  width,
		height: height,
		pitch:  width,
	}
	s.clip = s.Bounds()
	return s, nil
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Pitch is the distance in pixels between the starts of two rows.
func (s *Surface) Pitch() int { return s.pitch }

// Bounds returns the surface rectangle at the origin.
func (s *Surface) Bounds() platform.Rect {
	return platform.Rect{Width: s.width, Height: s.height}
}

// Pixels exposes the backing buffer so its owner can return it to an allocator.
func (s *Surface) Pixels() []uint32 { return s.pix }

// Clip returns the current clip rectangle.
func (s *Surface) Clip() platform.Rect { return s.clip }

// SetClip restricts drawing to r intersected with the surface bounds.
func (s *Surface) SetClip(r platform.Rect) {
	s.clip = r.Intersect(s.Bounds())
}

// ResetClip allows drawing on the whole surface again.
func (s *Surface) ResetClip() {
	s.clip = s.Bounds()
}

// At returns the pixel at (x, y), or 0 outside the surface.
func (s *Surface) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0
	}
	return s.pix[y*s.pitch+x]
}

// Set writes c at (x, y) if the point is inside the clip.
func (s *Surface) Set(x, y int, c uint32) bool {
	if !s.clip.Contains(x, y) {
		return false
	}
	s.pix[y*s.pitch+x] = c
	return true
}

// Row returns the pixels of row y between x0 and x1 (exclusive), clamped to
// the surface. The slice aliases the buffer.
func (s *Surface) Row(y, x0, x1 int) []uint32 {
	if y < 0 || y >= s.height {
		return nil
	}
	x0 = max(x0, 0)
	x1 = min(x1, s.width)
	if x1 <= x0 {
		return nil
	}
	off := y * s.pitch
	return s.pix[off+x0 : off+x1]
}

// Fill paints r, clipped, with c.
func (s *Surface) Fill(r platform.Rect, c uint32) {
	r = r.Intersect(s.clip)
	if r.Empty() {
		return
	}
	first := s.pix[r.Y*s.pitch+r.X : r.Y*s.pitch+r.Right()]
	for i := range first {
		first[i] = c
	}
	for y := r.Y + 1; y < r.Bottom(); y++ {
		copy(s.pix[y*s.pitch+r.X:y*s.pitch+r.Right()], first)
	}
}

// Clear fills the whole surface, ignoring the clip.
func (s *Surface) Clear(c uint32) {
	if len(s.pix) == 0 {
		return
	}
	s.pix[0] = c
	for filled := 1; filled < len(s.pix); filled *= 2 {
		copy(s.pix[filled:], s.pix[:filled])
	}
}

// FrameRect draws the outline of r, thickness pixels wide.
func (s *Surface) FrameRect(r platform.Rect, thickness int, c uint32) {
	if r.Empty() || thickness <= 0 {
		return
	}
	t := min(thickness, r.Height, r.Width)
	s.Fill(platform.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: t}, c)
	s.Fill(platform.Rect{X: r.X, Y: r.Bottom() - t, Width: r.Width, Height: t}, c)
	s.Fill(platform.Rect{X: r.X, Y: r.Y + t, Width: t, Height: r.Height - 2*t}, c)
	s.Fill(platform.Rect{X: r.Right() - t, Y: r.Y + t, Width: t, Height: r.Height - 2*t}, c)
}

// Blit copies srcRect of src so that its top-left lands at (dx, dy), clipped
// to both surfaces. Rows are copied in bulk.
func (s *Surface) Blit(dx, dy int, src *Surface, srcRect platform.Rect) {
	dst, from := s.blitRects(dx, dy, src, srcRect)
	if dst.Empty() {
		return
	}
	for row := 0; row < dst.Height; row++ {
		copy(
			s.pix[(dst.Y+row)*s.pitch+dst.X:(dst.Y+row)*s.pitch+dst.Right()],
			src.pix[(from.Y+row)*src.pitch+from.X:(from.Y+row)*src.pitch+from.Right()],
		)
	}
}

// BlitKeyed is Blit that leaves destination pixels alone where the source
// pixel equals key.
func (s *Surface) BlitKeyed(dx, dy int, src *Surface, srcRect platform.Rect, key uint32) {
	dst, from := s.blitRects(dx, dy, src, srcRect)
	if dst.Empty() {
		return
	}
	for row := 0; row < dst.Height; row++ {
		d := s.pix[(dst.Y+row)*s.pitch+dst.X : (dst.Y+row)*s.pitch+dst.Right()]
		in := src.pix[(from.Y+row)*src.pitch+from.X : (from.Y+row)*src.pitch+from.Right()]
		for i, p := range in {
			if p != key {
				d[i] = p
			}
		}
	}
}

// blitRects clips a blit against the source bounds and destination clip and
// returns matching destination and source rectangles.
func (s *Surface) blitRects(dx, dy int, src *Surface, srcRect platform.Rect) (platform.Rect, platform.Rect) {
	from := srcRect.Intersect(src.Bounds())
	if from.Empty() {
		return platform.Rect{}, platform.Rect{}
	}
	dx += from.X - srcRect.X
	dy += from.Y - srcRect.Y
	dst := platform.Rect{X: dx, Y: dy, Width: from.Width, Height: from.Height}.Intersect(s.clip)
	if dst.Empty() {
		return platform.Rect{}, platform.Rect{}
	}
	from.X += dst.X - dx
	from.Y += dst.Y - dy
	from.Width = dst.Width
	from.Height = dst.Height
	return dst, from
}

// CopyOverlap copies the region both surfaces share at the origin from src.
// It is what a resize keeps of the old contents.
func (s *Surface) CopyOverlap(src *Surface) {
	s.Blit(0, 0, src, src.Bounds())
}
