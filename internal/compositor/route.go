package compositor

import (
	"github.com/1broseidon/framewm/internal/cursor"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/hotkeys"
	"github.com/1broseidon/framewm/internal/input"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/tiling"
	"github.com/1broseidon/framewm/internal/window"
)

type dragMode int

const (
	dragNone dragMode = iota
	// dragPending is a press on the title bar or a resize edge that has not
	// moved yet.
	dragPending
	dragMove
	dragResize
	dragClient
	dragButton
)

// dragState follows one left press until its release.
type dragState struct {
	id           platform.WindowID
	mode         dragMode
	button       titleButton
	edges        cursor.Edges
	offX, offY   int
	lastX, lastY int
}

func (c *Compositor) cancelDrag() {
	if c.drag.mode == dragResize {
		c.overlay.EndResize()
	}
	c.drag = dragState{}
}

// windowAt shoots a ray through the ownership map.
func (c *Compositor) windowAt(x, y int) *window.Window {
	slot, ok := c.occ.Owner(x, y)
	if !ok {
		return nil
	}
	w := c.reg.AtSlot(slot)
	if w == nil || w.Hidden() {
		return nil
	}
	return w
}

// edgesAt returns the resize edges of w under (x, y).
func (c *Compositor) edgesAt(w *window.Window, x, y int) cursor.Edges {
	flags := w.Flags()
	if !flags.Has(window.Resizable) || flags.Has(window.NoBorder) || w.Maximized() || w.Minimized() {
		return 0
	}
	r := w.Rect()
	grab := window.BorderWidth * 2
	var e cursor.Edges
	switch {
	case x < r.X+grab:
		e |= cursor.EdgeLeft
	case x >= r.Right()-grab:
		e |= cursor.EdgeRight
	}
	switch {
	case y < r.Y+window.BorderWidth:
		e |= cursor.EdgeTop
	case y >= r.Bottom()-grab:
		e |= cursor.EdgeBottom
	}
	return e
}

// route delivers buffered clicks and keys.
func (c *Compositor) route(snap input.Snapshot, set settings) {
	for _, cl := range snap.Clicks {
		if c.dirty {
			c.rebuild(set)
		}
		switch cl.Kind {
		case input.Left:
			c.press(cl.X, cl.Y)
		case input.LeftDrag:
			c.dragTo(cl.X, cl.Y, set)
		case input.LeftRelease:
			c.release(cl.X, cl.Y)
		case input.Right, input.RightRelease:
			c.rightClick(cl)
		}
	}
	c.routeKeys(set)
}

func (c *Compositor) press(x, y int) {
	c.cancelDrag()
	w := c.windowAt(x, y)
	if w == nil || w.Hung() || w.Flags().Has(window.Frozen) {
		return
	}
	c.selectWindow(w)

	flags := w.Flags()
	r := w.Rect()
	lx, ly := x-r.X, y-r.Y
	c.drag = dragState{id: w.ID(), offX: lx, offY: ly, lastX: x, lastY: y}

	if edges := c.edgesAt(w, x, y); edges != 0 {
		c.drag.mode = dragPending
		c.drag.edges = edges
		return
	}
	if window.TitleBar(flags, r.Width).Contains(lx, ly) {
		if b := buttonAt(flags, r.Width, lx, ly); b != buttonNone {
			c.drag.mode = dragButton
			c.drag.button = b
			return
		}
		c.drag.mode = dragPending
		return
	}
	if window.ClientArea(flags, r.Width, r.Height).Contains(lx, ly) {
		c.drag.mode = dragClient
		cx, cy := clientPoint(w, x, y)
		c.notify(w, event.Click, cx, cy)
	}
}

func (c *Compositor) dragTo(x, y int, set settings) {
	if c.drag.mode == dragNone {
		return
	}
	w, err := c.reg.Get(c.drag.id)
	if err != nil {
		c.cancelDrag()
		return
	}
	dx, dy := x-c.drag.lastX, y-c.drag.lastY
	c.drag.lastX, c.drag.lastY = x, y

	switch c.drag.mode {
	case dragPending:
		if c.drag.edges != 0 {
			c.drag.mode = dragResize
			c.overlay.BeginResize(w.Rect(), c.drag.edges, set.placement.MinWidth, set.placement.MinHeight)
			c.overlay.Accumulate(dx, dy)
			return
		}
		if w.Maximized() {
			c.drag.mode = dragNone
			return
		}
		c.drag.mode = dragMove
		c.moveDragged(w, x, y)
	case dragMove:
		c.moveDragged(w, x, y)
	case dragResize:
		c.overlay.Accumulate(dx, dy)
	case dragClient:
		if !w.Hung() {
			cx, cy := clientPoint(w, x, y)
			c.notify(w, event.Click, cx, cy)
		}
	}
}

func (c *Compositor) moveDragged(w *window.Window, x, y int) {
	r := w.Rect()
	r.X, r.Y = x-c.drag.offX, y-c.drag.offY
	r = tiling.ClampToScreen(r, c.scr.Bounds(), window.TitleBarHeight)
	if err := c.resize(w, r); err != nil {
		c.logger.Debug("drag move skipped", "id", w.ID(), "error", err)
	}
}

func (c *Compositor) release(x, y int) {
	d := c.drag
	w, err := c.reg.Get(d.id)
	if d.mode == dragResize {
		r := c.overlay.EndResize()
		c.drag = dragState{}
		if err == nil {
			if err := c.resize(w, r); err != nil {
				c.logger.Warn("resize failed", "id", d.id, "error", err)
			}
		}
		return
	}
	c.drag = dragState{}
	if err != nil {
		return
	}

	switch d.mode {
	case dragButton:
		r := w.Rect()
		if buttonAt(w.Flags(), r.Width, x-r.X, y-r.Y) != d.button {
			return
		}
		switch d.button {
		case buttonClose:
			c.notify(w, event.Close, 0, 0)
		case buttonMaximize:
			if w.Maximized() {
				c.notify(w, event.Restore, 0, 0)
			} else {
				c.notify(w, event.Maximize, 0, 0)
			}
		case buttonMinimize:
			c.notify(w, event.Minimize, 0, 0)
		}
	case dragClient:
		cx, cy := clientPoint(w, x, y)
		c.notify(w, event.ClickRelease, cx, cy)
	}
}

func (c *Compositor) rightClick(cl input.Click) {
	w := c.windowAt(cl.X, cl.Y)
	if w == nil || w.Hung() || w.Flags().Has(window.Frozen) {
		return
	}
	if w.Minimized() {
		if cl.Kind == input.RightRelease {
			c.notify(w, event.Restore, 0, 0)
		}
		return
	}
	kind := event.RightClick
	if cl.Kind == input.RightRelease {
		kind = event.RightClickRelease
	}
	cx, cy := clientPoint(w, cl.X, cl.Y)
	c.notify(w, kind, cx, cy)
}

// routeKeys feeds raw codes to the selected window. Alt+Tab and bound key
// sequences are consumed by the compositor.
func (c *Compositor) routeKeys(set settings) {
	for _, code := range c.input.Keys() {
		base := code &^ event.ReleaseBit
		released := code&event.ReleaseBit != 0
		c.mods = hotkeys.Track(c.mods, code)
		if base == input.KeyShift || base == input.KeyRightShift {
			c.shift.Store(c.mods&hotkeys.ModShift != 0)
		}
		if base == input.KeyTab && c.mods&hotkeys.ModAlt != 0 {
			if !released {
				c.cycleFocus()
			}
			continue
		}
		if !released {
			if cmd, ok := set.bindings.Lookup(c.mods, base); ok {
				if err := c.Exec(c.ctx, platform.NoWindow, cmd); err != nil {
					c.logger.Debug("key binding failed", "command", cmd.String(), "error", err)
				}
				continue
			}
		}

		w, err := c.reg.Get(c.Selected())
		if err != nil || w.Hung() || w.Flags().Has(window.Frozen) {
			continue
		}
		if !w.Keys().Push(code) {
			c.notify(w, event.KeyRaw, int(code), 0)
		}
	}
}

// cycleFocus selects the back-most ordinary window; repeating it walks
// through every window.
func (c *Compositor) cycleFocus() {
	if w := c.cycleTarget(); w != nil {
		c.selectWindow(w)
	}
}

func (c *Compositor) cycleTarget() *window.Window {
	cur := c.Selected()
	for _, w := range c.reg.DrawOrder() {
		if w.Hidden() || w.ID() == cur || w.Flags().Has(window.SysPopup) {
			continue
		}
		return w
	}
	return nil
}

// updateCursor picks the pointer shape and keeps the overlay on top of
// whatever was composited this tick.
func (c *Compositor) updateCursor(snap input.Snapshot) {
	if !c.overlay.Resizing() {
		shape := cursor.Default
		if c.drag.mode == dragMove {
			shape = cursor.Resize
		} else if w := c.windowAt(snap.X, snap.Y); w != nil {
			if c.edgesAt(w, snap.X, snap.Y) != 0 {
				shape = cursor.Resize
			} else {
				shape = w.Cursor()
			}
		}
		c.overlay.Set(cursor.Builtin(shape))
	}

	touched := c.scr.TakeTouched()
	if x, y := c.overlay.Position(); x != snap.X || y != snap.Y {
		c.overlay.Move(snap.X, snap.Y)
		return
	}
	if touched.Overlaps(c.overlay.Footprint()) {
		c.overlay.Redraw()
	}
}
