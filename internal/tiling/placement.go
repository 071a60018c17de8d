package tiling

import "github.com/1broseidon/framewm/internal/platform"

// Placer hands out cascading positions for windows created without one.
type Placer struct {
	Step  int
	Reset int
	next  platform.Point
}

// NewPlacer starts cascading at (reset, reset).
func NewPlacer(step, reset int) *Placer {
	return &Placer{Step: step, Reset: reset, next: platform.Point{X: reset, Y: reset}}
}

// Next returns the position for a width x height window and advances the
// cascade. When the window would leave screen the cascade starts over.
func (p *Placer) Next(screen platform.Rect, width, height int) platform.Point {
	pos := p.next
	if pos.X+width > screen.Right() || pos.Y+height > screen.Bottom() {
		pos = platform.Point{X: screen.X + p.Reset, Y: screen.Y + p.Reset}
	}
	p.next = platform.Point{X: pos.X + p.Step, Y: pos.Y + p.Step}
	return pos
}

// ClampSize limits a size to the screen and the minimum window size.
func ClampSize(width, height int, screen platform.Rect, minW, minH int) (int, int) {
	width = min(max(width, minW), max(screen.Width, minW))
	height = min(max(height, minH), max(screen.Height, minH))
	return width, height
}

// ClampToScreen keeps at least a grabbable strip of r on screen: the top
// edge may not go above the screen and grab pixels of the title must stay
// visible horizontally and vertically.
func ClampToScreen(r platform.Rect, screen platform.Rect, grab int) platform.Rect {
	if r.Y < screen.Y {
		r.Y = screen.Y
	}
	if r.Y > screen.Bottom()-grab {
		r.Y = screen.Bottom() - grab
	}
	if r.Right() < screen.X+grab {
		r.X = screen.X + grab - r.Width
	}
	if r.X > screen.Right()-grab {
		r.X = screen.Right() - grab
	}
	return r
}
