package platform

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Point is a screen position.
type Point struct {
	X int
	Y int
}

// R builds a Rect from two corners; right and bottom are exclusive.
func R(left, top, right, bottom int) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.Right() && y < r.Bottom()
}

// ContainsRect reports whether o lies fully inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return true
	}
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersect returns the overlap of r and o; the result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	left := max(r.X, o.X)
	top := max(r.Y, o.Y)
	right := min(r.Right(), o.Right())
	bottom := min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return R(left, top, right, bottom)
}

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Union returns the bounding box of r and o. Empty operands are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return R(min(r.X, o.X), min(r.Y, o.Y), max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom()))
}

// Inset shrinks r by n on every side (grows it when n is negative).
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
}

// Translate moves r by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Subtract returns up to four rectangles covering r minus o.
func (r Rect) Subtract(o Rect) []Rect {
	in := r.Intersect(o)
	if in.Empty() {
		if r.Empty() {
			return nil
		}
		return []Rect{r}
	}
	var out []Rect
	if in.Y > r.Y {
		out = append(out, R(r.X, r.Y, r.Right(), in.Y))
	}
	if in.Bottom() < r.Bottom() {
		out = append(out, R(r.X, in.Bottom(), r.Right(), r.Bottom()))
	}
	if in.X > r.X {
		out = append(out, R(r.X, in.Y, in.X, in.Bottom()))
	}
	if in.Right() < r.Right() {
		out = append(out, R(in.Right(), in.Y, r.Right(), in.Bottom()))
	}
	return out
}
