package compositor

import "github.com/1broseidon/framewm/internal/window"

// detectHangs flags windows that left events pending longer than the hang
// timeout. A window with nothing pending counts as responsive.
func (c *Compositor) detectHangs(now int64, set settings) {
	for _, w := range c.reg.Windows() {
		if w.TakenOver() {
			continue
		}
		pending := c.router.Pending(w.ID().Slot()) + w.Private().Len() + w.Keys().Len()
		if pending == 0 {
			w.Responded(now)
			continue
		}
		if w.Hung() || now-w.LastResponded() <= set.hangTimeout {
			continue
		}
		c.markHung(w, now, true)
	}
}

// markHung flags w. The border is repainted in the hung colour unless the
// window's own lock is what is stuck.
func (c *Compositor) markHung(w *window.Window, now int64, repaint bool) {
	if !w.MarkHung() {
		return
	}
	c.logger.Warn("window not responding",
		"id", w.ID(),
		"title", w.Title(),
		"silent_ms", now-w.LastResponded())
	if repaint {
		c.decorateNow(w)
	}
}
