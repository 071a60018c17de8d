package window

import (
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/surface"
)

const (
	// TitleBarHeight is the height of the title strip in pixels.
	TitleBarHeight = 18
	// BorderWidth is the frame thickness on the remaining sides.
	BorderWidth = 2
)

// Margins returns the decoration thickness for a window with flags.
func Margins(flags Flags) (top, left, right, bottom int) {
	if !flags.Has(NoBorder) {
		top, left, right, bottom = BorderWidth, BorderWidth, BorderWidth, BorderWidth
	}
	if !flags.Has(NoTitle) {
		top += TitleBarHeight
	}
	return top, left, right, bottom
}

// ClientArea returns the client rectangle of a width x height window in
// window coordinates.
func ClientArea(flags Flags, width, height int) platform.Rect {
	top, left, right, bottom := Margins(flags)
	r := platform.Rect{X: left, Y: top, Width: width - left - right, Height: height - top - bottom}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// TitleBar returns the title strip of a width-wide window in window
// coordinates, or an empty rect for untitled windows.
func TitleBar(flags Flags, width int) platform.Rect {
	if flags.Has(NoTitle) {
		return platform.Rect{}
	}
	top, left, right, _ := Margins(flags)
	return platform.Rect{X: left, Y: top - TitleBarHeight, Width: width - left - right, Height: TitleBarHeight}
}

// Canvas draws into a window's client area. Coordinates are relative to the
// client origin; everything drawn is recorded as damage.
type Canvas struct {
	surf   *surface.Surface
	client platform.Rect
	dirty  platform.Rect
}

func (c *Canvas) Width() int  { return c.client.Width }
func (c *Canvas) Height() int { return c.client.Height }

// Bounds returns the client rectangle at the origin.
func (c *Canvas) Bounds() platform.Rect {
	return platform.Rect{Width: c.client.Width, Height: c.client.Height}
}

func (c *Canvas) mark(r platform.Rect) {
	c.dirty = c.dirty.Union(r.Translate(c.client.X, c.client.Y).Intersect(c.client))
}

// Clear fills the whole client area.
func (c *Canvas) Clear(col uint32) {
	c.Fill(c.Bounds(), col)
}

// Fill paints r with col.
func (c *Canvas) Fill(r platform.Rect, col uint32) {
	c.surf.Fill(r.Translate(c.client.X, c.client.Y), col)
	c.mark(r)
}

// Set paints a single pixel.
func (c *Canvas) Set(x, y int, col uint32) {
	if c.surf.Set(x+c.client.X, y+c.client.Y, col) {
		c.mark(platform.Rect{X: x, Y: y, Width: 1, Height: 1})
	}
}

// At reads a client pixel.
func (c *Canvas) At(x, y int) uint32 {
	if !c.Bounds().Contains(x, y) {
		return 0
	}
	return c.surf.At(x+c.client.X, y+c.client.Y)
}

// FrameRect outlines r.
func (c *Canvas) FrameRect(r platform.Rect, thickness int, col uint32) {
	c.surf.FrameRect(r.Translate(c.client.X, c.client.Y), thickness, col)
	c.mark(r)
}

// Blit copies srcRect of src to (x, y).
func (c *Canvas) Blit(x, y int, src *surface.Surface, srcRect platform.Rect) {
	c.surf.Blit(x+c.client.X, y+c.client.Y, src, srcRect)
	c.mark(platform.Rect{X: x, Y: y, Width: srcRect.Width, Height: srcRect.Height})
}

// Draw runs fn with a canvas over the client area while holding the screen
// lock, then records what fn touched as damage.
func (w *Window) Draw(fn func(c *Canvas)) {
	w.Lock()
	if w.surf == nil {
		w.Unlock()
		return
	}
	client := ClientArea(w.flags, w.surf.Width(), w.surf.Height())
	w.surf.SetClip(client)
	c := &Canvas{surf: w.surf, client: client}
	func() {
		defer func() {
			w.surf.ResetClip()
			w.Unlock()
		}()
		fn(c)
	}()
	w.damage.Add(c.dirty)
}

// DrawFrame runs fn over the whole buffer, decorations included, under the
// screen lock and marks rect dirty afterwards.
func (w *Window) DrawFrame(fn func(s *surface.Surface), dirty platform.Rect) {
	w.Lock()
	if w.surf == nil {
		w.Unlock()
		return
	}
	func() {
		defer w.Unlock()
		fn(w.surf)
	}()
	w.damage.Add(dirty)
}

// Invalidate marks a client-relative rectangle dirty without drawing.
func (w *Window) Invalidate(r platform.Rect) {
	w.screenLock.Lock()
	var client platform.Rect
	if w.surf != nil {
		client = ClientArea(w.flags, w.surf.Width(), w.surf.Height())
	}
	w.screenLock.Unlock()
	w.damage.Add(r.Translate(client.X, client.Y).Intersect(client))
}

// InvalidateAll marks the whole window dirty.
func (w *Window) InvalidateAll() {
	w.damage.InvalidateAll()
}
