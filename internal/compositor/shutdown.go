package compositor

import (
	"github.com/1broseidon/framewm/internal/action"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/window"
)

type shutdownState struct {
	started bool
	at      int64
}

// BeginShutdown stops accepting new windows and, on the next tick, sends
// Destroy to every window. Ticking continues until all windows are gone or
// the shutdown timeout passed.
func (c *Compositor) BeginShutdown() {
	c.stopping.Store(true)
}

// Closed reports whether shutdown has completed.
func (c *Compositor) Closed() bool { return c.closed.Load() }

func (c *Compositor) stepShutdown(now int64, set settings) {
	if !c.stopping.Load() || c.closed.Load() {
		return
	}
	if !c.shutdown.started {
		c.shutdown = shutdownState{started: true, at: now}
		order := c.shutdownOrder()
		c.logger.Info("shutting down", "windows", len(order), "timeout_ms", set.shutdownTimeout)
		for _, w := range order {
			if w.Owner() == c.task {
				w.TakeOver()
			}
			c.notify(w, event.Destroy, 0, 0)
		}
		c.flushOutbox()
	}
	if c.reg.Len() == 0 {
		c.finishShutdown()
		return
	}
	if now-c.shutdown.at < set.shutdownTimeout {
		return
	}
	for _, w := range c.reg.Windows() {
		owner := w.Owner()
		c.logger.Warn("force destroying window", "id", w.ID(), "title", w.Title(), "hung", w.Hung())
		if err := c.destroy(w); err != nil {
			c.logger.Warn("force destroy failed", "id", w.ID(), "error", err)
		}
		if owner != nil && owner != c.task {
			owner.Kill()
		}
	}
	c.finishShutdown()
}

// shutdownOrder lists windows back to front, hidden ones last.
func (c *Compositor) shutdownOrder() []*window.Window {
	order := c.reg.DrawOrder()
	for _, w := range c.reg.Windows() {
		if w.Hidden() {
			order = append(order, w)
		}
	}
	return order
}

func (c *Compositor) finishShutdown() {
	c.overlay.Erase()
	c.closed.Store(true)
	c.actions.Drain(func(action.Request) error { return ErrClosed })
	c.outbox = nil
	c.freeReleased()
	c.logger.Info("compositor stopped")
}
