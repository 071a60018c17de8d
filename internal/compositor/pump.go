package compositor

import (
	"context"

	"github.com/1broseidon/framewm/internal/action"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/input"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/window"
)

// Pump drains everything queued for a window and dispatches it: private
// events first, then the shared ring, then raw keys. Each event goes to the
// window's handler and then through the default handling. Pump returns false
// once a Destroy was processed, the window no longer exists, or the
// compositor took it over.
func (c *Compositor) Pump(ctx context.Context, id platform.WindowID) bool {
	w, err := c.reg.Get(id)
	if err != nil {
		return false
	}
	if w.TakenOver() && !c.onCompositor(ctx) {
		return false
	}

	events := w.Private().Take(0)
	events = append(events, c.router.Take(id, 0)...)
	alive := true
	for _, ev := range events {
		if !c.dispatch(ctx, w, ev) {
			alive = false
			break
		}
	}
	if alive {
		alive = c.dispatchKeys(ctx, w, w.Keys().Take())
	}

	w.Responded(c.now())
	if alive && w.ClearHung() {
		c.logger.Info("window responding again", "id", id, "title", w.Title())
		c.decorate(ctx, w)
	}
	return alive
}

func (c *Compositor) dispatchKeys(ctx context.Context, w *window.Window, codes []byte) bool {
	shift := c.shift.Load()
	for _, code := range codes {
		base := code &^ event.ReleaseBit
		released := code&event.ReleaseBit != 0
		if base == input.KeyShift || base == input.KeyRightShift {
			shift = !released
		}
		if !c.dispatch(ctx, w, event.Event{Target: w.ID(), Kind: event.KeyRaw, P1: int(code)}) {
			return false
		}
		if released {
			continue
		}
		r := input.RuneForScanCode(base, shift)
		if !c.dispatch(ctx, w, event.Event{Target: w.ID(), Kind: event.KeyPress, P1: int(base), P2: int(r)}) {
			return false
		}
	}
	return true
}

// dispatch hands ev to the handler and the default handling. It returns
// false when the window is gone afterwards.
func (c *Compositor) dispatch(ctx context.Context, w *window.Window, ev event.Event) bool {
	if h := w.Handler(); h != nil && !w.TakenOver() {
		if !c.invoke(w, h, ev) {
			w.TakeOver()
			if err := c.post(ctx, w, event.Event{Target: w.ID(), Kind: event.Destroy}); err != nil {
				c.logger.Warn("destroy after handler panic not queued", "id", w.ID(), "error", err)
			}
			return false
		}
	}
	return c.defaultHandle(ctx, w, ev)
}

func (c *Compositor) invoke(w *window.Window, h window.Handler, ev event.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("window handler panicked",
				"id", w.ID(),
				"title", w.Title(),
				"event", ev.Kind.String(),
				"panic", r)
			ok = false
		}
	}()
	h.Handle(w, ev)
	return true
}

func (c *Compositor) defaultHandle(ctx context.Context, w *window.Window, ev event.Event) bool {
	id := w.ID()
	flags := w.Flags()
	var err error
	switch ev.Kind {
	case event.Create:
		err = c.submit(ctx, action.Request{Target: id, Kind: action.Show})
		if err == nil && !flags.Has(window.NoInitialFocus) {
			err = c.submit(ctx, action.Request{Target: id, Kind: action.Select})
		}
		switch {
		case err != nil:
		case flags.Has(window.StartMaximized):
			err = c.submit(ctx, action.Request{Target: id, Kind: action.Maximize})
		case flags.Has(window.StartMinimized):
			err = c.submit(ctx, action.Request{Target: id, Kind: action.Minimize})
		}
	case event.Close:
		if !flags.Has(window.NoClose) {
			err = c.post(ctx, w, event.Event{Target: id, Kind: event.Destroy})
		}
	case event.Destroy:
		if err := c.submit(ctx, action.Request{Target: id, Kind: action.Destroy}); err != nil {
			c.logger.Warn("destroy not queued", "id", id, "error", err)
		}
		return false
	case event.Size, event.RepaintBorder:
		c.decorate(ctx, w)
	case event.RequestRepaint:
		w.InvalidateAll()
	case event.RequestResize:
		x, y := event.Unpack(ev.P1)
		width, height := event.Unpack(ev.P2)
		err = c.submit(ctx, action.Request{Target: id, Kind: action.Resize, Rect: platform.Rect{X: x, Y: y, Width: width, Height: height}})
	case event.Minimize:
		err = c.submit(ctx, action.Request{Target: id, Kind: action.Minimize})
	case event.Maximize:
		err = c.submit(ctx, action.Request{Target: id, Kind: action.Maximize})
	case event.Restore:
		err = c.submit(ctx, action.Request{Target: id, Kind: action.Restore})
	}
	if err != nil {
		c.logger.Warn("default handling failed", "id", id, "event", ev.Kind.String(), "error", err)
	}
	return true
}
