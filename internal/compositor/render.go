package compositor

import (
	"slices"

	"github.com/1broseidon/framewm/internal/occlusion"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/window"
)

// rebuild recomputes pixel ownership and repaints what structural changes
// uncovered: background where nobody owns the pixel, and damage for the
// windows that now own it.
func (c *Compositor) rebuild(set settings) {
	c.occ.Rebuild(c.reg.Layers())
	c.dirty = false
	if len(c.exposed) == 0 {
		return
	}

	bg := make([]uint32, c.scr.Width())
	for i := range bg {
		bg[i] = uint32(set.theme.Background)
	}
	visible := slices.DeleteFunc(c.reg.DrawOrder(), (*window.Window).Hidden)
	for _, r := range c.exposed {
		r = r.Intersect(c.scr.Bounds())
		if r.Empty() {
			continue
		}
		c.occ.FreeRuns(r, func(x, y, n int) {
			c.scr.WriteSpan(x, y, bg[:n])
		})
		for _, w := range visible {
			wr := w.Rect()
			if in := r.Intersect(wr); !in.Empty() {
				w.Damage().Add(in.Translate(-wr.X, -wr.Y))
			}
		}
	}
	c.exposed = c.exposed[:0]
}

// render copies every visible window's pending damage to the screen. Windows
// whose lock is busy keep their damage for the next tick.
func (c *Compositor) render(now int64, set settings) {
	for _, w := range c.reg.DrawOrder() {
		if w.Hidden() || !w.Damage().Pending() {
			continue
		}
		if !w.TryLock() {
			if held := w.LockHeldFor(now); held > set.hangTimeout {
				c.markHung(w, now, false)
			}
			continue
		}
		c.renderLocked(w)
		w.Unlock()
	}
}

func (c *Compositor) renderLocked(w *window.Window) {
	s := w.Surface()
	if s == nil {
		w.Damage().Consume(platform.Rect{})
		return
	}
	wr := w.Geometry()
	dmg := w.Damage().Consume(s.Bounds())
	slot := w.ID().Slot()
	status := c.occ.Status(slot)
	if status != occlusion.Foremost && status != occlusion.Partial {
		return
	}

	screen := c.scr.Bounds()
	for _, r := range dmg.Rects {
		sr := r.Translate(wr.X, wr.Y).Intersect(screen)
		if sr.Empty() {
			continue
		}
		if status == occlusion.Foremost {
			for y := sr.Y; y < sr.Bottom(); y++ {
				c.scr.WriteSpan(sr.X, y, s.Row(y-wr.Y, sr.X-wr.X, sr.Right()-wr.X))
			}
			continue
		}
		c.occ.OwnedRuns(slot, sr, func(x, y, n int) {
			c.scr.WriteSpan(x, y, s.Row(y-wr.Y, x-wr.X, x-wr.X+n))
		})
	}
}
