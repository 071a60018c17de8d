package compositor

import (
	"context"
	"time"

	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/input"
	"github.com/1broseidon/framewm/internal/task"
	"github.com/1broseidon/framewm/internal/window"
)

// Run ticks until ctx is cancelled, then shuts down: every window is sent
// Destroy, and whatever is left when the shutdown timeout passes is destroyed
// by force and its owning task killed.
func (c *Compositor) Run(ctx context.Context) error {
	defer c.task.Finish(nil)
	c.overlay.SetReady()
	c.logger.Info("compositor started",
		"width", c.scr.Width(),
		"height", c.scr.Height(),
		"format", c.scr.Device().Format().String())

	stop := ctx.Done()
	for !c.closed.Load() {
		start := time.Now()
		select {
		case <-stop:
			c.BeginShutdown()
			stop = nil
		default:
		}
		c.Tick()
		if d := c.live().tick - time.Since(start); d > 0 {
			_ = task.Sleep(c.ctx, d)
		}
	}
	return nil
}

// Tick runs one frame. It must only be called from one goroutine at a time,
// which then acts as the compositor task.
func (c *Compositor) Tick() {
	now := c.now()
	set := c.live()

	c.actions.Drain(c.execute)
	c.freeReleased()

	snap := c.input.Take()
	c.service(now, snap)
	c.flushOutbox()

	if c.repaint.Swap(false) {
		for _, w := range c.reg.Windows() {
			c.decorateNow(w)
		}
		c.expose(c.scr.Bounds())
	}
	c.composite(now, set)

	c.route(snap, set)
	if c.dirty {
		c.composite(now, set)
	}
	c.flushOutbox()

	c.updateCursor(snap)
	c.detectHangs(now, set)
	c.stepShutdown(now, set)

	if err := c.scr.Flush(); err != nil {
		c.logger.Warn("device flush failed", "error", err)
	}
}

// composite brings the screen up to date: rebuild first when the topology
// changed, then render pending damage.
func (c *Compositor) composite(now int64, set settings) {
	if c.dirty {
		c.rebuild(set)
	}
	c.render(now, set)
}

// service runs the per-window housekeeping of a tick: timers, pointer
// motion, adoption of orphaned windows and pumping adopted ones.
func (c *Compositor) service(now int64, snap input.Snapshot) {
	for _, w := range c.reg.Windows() {
		for _, id := range w.DueTimers(now) {
			c.notify(w, event.Timer, id, 0)
		}
		if snap.Moved && !w.Hidden() && !w.Hung() && (w.Selected() || w.Flags().Has(window.SysPopup)) {
			x, y := clientPoint(w, snap.X, snap.Y)
			c.notify(w, event.PointerMove, x, y)
		}
		if owner := w.Owner(); owner != nil && owner != c.task && !owner.Alive() {
			c.adopt(w, "owner task ended")
		}
		if w.TakenOver() {
			c.Pump(c.ctx, w.ID())
		}
	}
}

// adopt makes the compositor pump w and asks it to go away.
func (c *Compositor) adopt(w *window.Window, reason string) {
	if w.TakenOver() {
		return
	}
	w.TakeOver()
	c.logger.Warn("window adopted by compositor", "id", w.ID(), "title", w.Title(), "reason", reason)
	c.notify(w, event.Destroy, 0, 0)
}

// clientPoint converts a screen position to w's client coordinates.
func clientPoint(w *window.Window, x, y int) (int, int) {
	r := w.Rect()
	top, left, _, _ := window.Margins(w.Flags())
	return x - r.X - left, y - r.Y - top
}
