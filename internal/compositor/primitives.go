package compositor

import (
	"fmt"
	"runtime"
	"time"

	"github.com/1broseidon/framewm/internal/action"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/surface"
	"github.com/1broseidon/framewm/internal/window"
)

// execute runs one structural primitive. It is only ever called on the
// compositor task.
func (c *Compositor) execute(req action.Request) error {
	w, err := c.reg.Get(req.Target)
	if err != nil {
		return fmt.Errorf("%s: %w", req.Kind, err)
	}
	switch req.Kind {
	case action.Show:
		c.show(w)
	case action.Hide:
		c.hide(w)
	case action.Resize:
		if err := c.resize(w, req.Rect); err != nil {
			return err
		}
		if req.ClearState {
			w.SetMinimized(false, platform.Rect{})
			w.SetMaximized(false, platform.Rect{})
		}
	case action.Minimize:
		return c.minimize(w)
	case action.Maximize:
		return c.maximize(w)
	case action.Restore:
		return c.restore(w)
	case action.Select:
		c.selectWindow(w)
	case action.Destroy:
		return c.destroy(w)
	default:
		return fmt.Errorf("unknown action %s", req.Kind)
	}
	return nil
}

func (c *Compositor) show(w *window.Window) {
	if !w.Hidden() {
		return
	}
	w.SetHidden(false)
	c.reg.Append(w.ID())
	w.InvalidateAll()
	c.dirty = true
}

func (c *Compositor) hide(w *window.Window) {
	if w.Hidden() {
		return
	}
	w.SetHidden(true)
	c.reg.Remove(w.ID())
	c.expose(w.Rect())
	if c.drag.id == w.ID() {
		c.cancelDrag()
	}
	if c.Selected() == w.ID() {
		w.SetSelected(false)
		c.selected.Store(uint32(platform.NoWindow))
		c.reselect()
	}
}

// maximize grows w to the whole screen. The state and the rectangle to
// restore to are recorded only once the new geometry is in place.
func (c *Compositor) maximize(w *window.Window) error {
	if w.Maximized() || w.Flags().Has(window.NoMaximize) {
		return nil
	}
	backup := w.Rect()
	if w.Minimized() {
		backup = w.Backup()
	}
	if err := c.resize(w, c.scr.Bounds()); err != nil {
		return err
	}
	w.SetMinimized(false, platform.Rect{})
	w.SetMaximized(true, backup)
	return nil
}

// minimize shrinks w to a title strip along the bottom of the screen.
func (c *Compositor) minimize(w *window.Window) error {
	flags := w.Flags()
	if w.Minimized() || flags.Has(window.NoMinimize) || flags.Has(window.NoTitle) {
		return nil
	}
	backup := w.Rect()
	if w.Maximized() {
		backup = w.Backup()
	}
	if err := c.resize(w, c.minimizedStrip(w)); err != nil {
		return err
	}
	w.SetMaximized(false, platform.Rect{})
	w.SetMinimized(true, backup)
	return nil
}

func (c *Compositor) minimizedStrip(w *window.Window) platform.Rect {
	idx := 0
	for _, o := range c.reg.Windows() {
		if o != w && o.Minimized() {
			idx++
		}
	}
	set := c.live()
	top, _, _, bottom := window.Margins(w.Flags())
	strip := platform.Rect{
		Width:  max(minimizedWidth, set.placement.MinWidth),
		Height: max(top+bottom, set.placement.MinHeight),
	}
	bounds := c.scr.Bounds()
	perRow := max(bounds.Width/strip.Width, 1)
	strip.X = bounds.X + (idx%perRow)*strip.Width
	strip.Y = bounds.Bottom() - (idx/perRow+1)*strip.Height
	return strip
}

// restore returns a minimized or maximized window to its saved rectangle.
func (c *Compositor) restore(w *window.Window) error {
	if !w.Minimized() && !w.Maximized() {
		return nil
	}
	if r := w.Backup(); !r.Empty() {
		if err := c.resize(w, r); err != nil {
			return err
		}
	}
	w.SetMinimized(false, platform.Rect{})
	w.SetMaximized(false, platform.Rect{})
	return nil
}

// resize applies a new outer rectangle. A pure move keeps the buffer; a size
// change allocates a new one, keeps the overlapping pixels and repaints the
// decorations.
func (c *Compositor) resize(w *window.Window, r platform.Rect) error {
	set := c.live()
	r.Width = max(r.Width, set.placement.MinWidth)
	r.Height = max(r.Height, set.placement.MinHeight)

	old := w.Rect()
	if r == old {
		return nil
	}
	sized := r.Width != old.Width || r.Height != old.Height

	var next *surface.Surface
	if sized {
		pix, err := c.alloc.Allocate(r.Width * r.Height)
		if err != nil {
			return fmt.Errorf("resize %s: %w", w.ID(), err)
		}
		next, err = surface.FromPixels(pix, r.Width, r.Height)
		if err != nil {
			c.alloc.Free(pix)
			return fmt.Errorf("resize %s: %w", w.ID(), err)
		}
		next.Clear(uint32(set.theme.Window))
	}

	if !c.lockWindow(w) {
		if next != nil {
			c.alloc.Free(next.Pixels())
		}
		return fmt.Errorf("resize %s: %w", w.ID(), ErrBusy)
	}
	var prev *surface.Surface
	if sized {
		if cur := w.Surface(); cur != nil {
			next.CopyOverlap(cur)
		}
		prev = w.SetGeometry(r, next)
		drawDecorations(next, w, set.theme)
	} else {
		w.Move(r.X, r.Y)
	}
	w.Unlock()
	if prev != nil {
		c.alloc.Free(prev.Pixels())
	}

	w.InvalidateAll()
	if !w.Hidden() {
		c.expose(old)
	}
	if sized {
		client := window.ClientArea(w.Flags(), r.Width, r.Height)
		c.notify(w, event.Size, client.Width, client.Height)
	}
	if r.X != old.X || r.Y != old.Y {
		c.notify(w, event.Move, r.X, r.Y)
	}
	return nil
}

// selectWindow focuses w and raises it.
func (c *Compositor) selectWindow(w *window.Window) {
	if w.Hidden() {
		return
	}
	c.focus(w)
	order := c.reg.DrawOrder()
	if len(order) > 0 && order[len(order)-1] == w {
		return
	}
	c.reg.BringToFront(w.ID())
	w.InvalidateAll()
	c.dirty = true
}

// focus moves the selection to w without changing the draw order.
func (c *Compositor) focus(w *window.Window) {
	prevID := c.Selected()
	if prevID == w.ID() {
		return
	}
	if prev, err := c.reg.Get(prevID); err == nil {
		prev.SetSelected(false)
		c.decorateNow(prev)
		c.notify(prev, event.KillFocus, 0, 0)
	}
	w.SetSelected(true)
	c.selected.Store(uint32(w.ID()))
	c.decorateNow(w)
	c.notify(w, event.SetFocus, 0, 0)
}

// reselect focuses the front-most remaining window, preferring ordinary
// windows over popups and minimized strips.
func (c *Compositor) reselect() {
	next := c.reg.Frontmost(func(w *window.Window) bool {
		return !w.Flags().Has(window.SysPopup) && !w.Minimized()
	})
	if next == nil {
		next = c.reg.Frontmost(nil)
	}
	if next != nil {
		c.focus(next)
	}
}

// destroy hides w, frees its slot, events and buffer, and moves the focus.
func (c *Compositor) destroy(w *window.Window) error {
	id := w.ID()
	c.hide(w)
	if _, err := c.reg.Free(id); err != nil {
		return err
	}
	if dropped := c.router.Flush(id.Slot()); dropped > 0 {
		c.logger.Debug("dropped events of destroyed window", "id", id, "count", dropped)
	}
	c.dropOutbox(id)

	if c.lockWindow(w) {
		c.releaseBuffer(w)
	} else {
		c.logger.Warn("destroyed window still locked; freeing its buffer once released", "id", id, "title", w.Title())
		c.released = append(c.released, w)
	}
	c.logger.Info("window destroyed", "id", id, "title", w.Title())
	return nil
}

// releaseBuffer frees w's buffer. The caller holds w's screen lock, which
// is released here.
func (c *Compositor) releaseBuffer(w *window.Window) {
	prev := w.SetGeometry(w.Rect(), nil)
	w.Unlock()
	if prev != nil {
		c.alloc.Free(prev.Pixels())
	}
}

// freeReleased retries the buffers of destroyed windows whose screen lock
// was still held when they went away.
func (c *Compositor) freeReleased() {
	kept := c.released[:0]
	for _, w := range c.released {
		if w.TryLock() {
			c.releaseBuffer(w)
			continue
		}
		kept = append(kept, w)
	}
	clear(c.released[len(kept):])
	c.released = kept
}

func (c *Compositor) dropOutbox(id platform.WindowID) {
	delete(c.outbox, id)
}

func (c *Compositor) expose(r platform.Rect) {
	if r.Empty() {
		return
	}
	c.exposed = append(c.exposed, r)
	c.dirty = true
}

// lockWindow takes w's screen lock, giving up after lockWait.
func (c *Compositor) lockWindow(w *window.Window) bool {
	deadline := time.Now().Add(lockWait)
	for !w.TryLock() {
		if time.Now().After(deadline) {
			return false
		}
		runtime.Gosched()
	}
	return true
}
