package compositor

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/framewm/internal/action"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/surface"
	"github.com/1broseidon/framewm/internal/task"
	"github.com/1broseidon/framewm/internal/tiling"
	"github.com/1broseidon/framewm/internal/window"
)

// CreateSurface allocates a hidden window for the calling task and posts its
// Create event; the window is shown when the owner pumps that event. rect is
// the outer rectangle including decorations. A negative X or Y places the
// window on the cascade unless ExactPosition is set.
func (c *Compositor) CreateSurface(ctx context.Context, title string, rect platform.Rect, h window.Handler, flags window.Flags) (platform.WindowID, error) {
	if c.closed.Load() || c.stopping.Load() {
		return platform.NoWindow, ErrClosed
	}
	set := c.live()
	bounds := c.scr.Bounds()

	rect.Width, rect.Height = tiling.ClampSize(rect.Width, rect.Height, bounds,
		set.placement.MinWidth, set.placement.MinHeight)
	if !flags.Has(window.ExactPosition) && (rect.X < 0 || rect.Y < 0) {
		c.mu.Lock()
		pos := c.placer.Next(bounds, rect.Width, rect.Height)
		c.mu.Unlock()
		rect.X, rect.Y = pos.X, pos.Y
	}

	pix, err := c.alloc.Allocate(rect.Width * rect.Height)
	if err != nil {
		return platform.NoWindow, fmt.Errorf("create %q: %w", title, err)
	}
	surf, err := surface.FromPixels(pix, rect.Width, rect.Height)
	if err != nil {
		c.alloc.Free(pix)
		return platform.NoWindow, fmt.Errorf("create %q: %w", title, err)
	}
	surf.Clear(uint32(set.theme.Window))

	w, err := c.reg.Allocate(window.Spec{
		Title:   title,
		Rect:    rect,
		Flags:   flags,
		Handler: h,
		Owner:   task.FromContext(ctx),
		Surface: surf,
	})
	if err != nil {
		c.alloc.Free(pix)
		return platform.NoWindow, err
	}
	id := w.ID()
	c.router.Flush(id.Slot())

	w.Lock()
	drawDecorations(surf, w, set.theme)
	w.Unlock()
	w.InvalidateAll()

	if err := c.post(ctx, w, event.Event{Target: id, Kind: event.Create}); err != nil {
		c.logger.Warn("create event not delivered", "id", id, "title", title, "error", err)
	}
	c.logger.Debug("window created", "id", id, "title", title, "rect", rect)
	return id, nil
}

// Show makes a window visible.
func (c *Compositor) Show(ctx context.Context, id platform.WindowID) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Show})
}

// Hide removes a window from the screen without destroying it.
func (c *Compositor) Hide(ctx context.Context, id platform.WindowID) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Hide})
}

// Resize moves and resizes a window. r is the outer rectangle.
func (c *Compositor) Resize(ctx context.Context, id platform.WindowID, r platform.Rect) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Resize, Rect: r})
}

// Select focuses a window and raises it to the front.
func (c *Compositor) Select(ctx context.Context, id platform.WindowID) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Select})
}

// Destroy frees a window immediately, without asking its handler. Use Close
// to ask first.
func (c *Compositor) Destroy(ctx context.Context, id platform.WindowID) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Destroy})
}

// request runs req on the compositor task and waits for its result.
func (c *Compositor) request(ctx context.Context, req action.Request) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.onCompositor(ctx) {
		return c.execute(req)
	}
	h, err := c.actions.Enqueue(ctx, req)
	if err != nil {
		return err
	}
	for !h.Done() {
		if c.closed.Load() {
			return ErrClosed
		}
		if err := task.Yield(ctx); err != nil {
			return err
		}
	}
	return h.Err()
}

// submit queues req without waiting for it. Default event handling uses it
// so a pumping task never blocks on the compositor.
func (c *Compositor) submit(ctx context.Context, req action.Request) error {
	if c.onCompositor(ctx) {
		return c.execute(req)
	}
	if c.actions.TryEnqueue(req) != nil {
		return nil
	}
	_, err := c.actions.Enqueue(ctx, req)
	return err
}

// PublishEvent queues an event for a window. Events to one window are
// delivered in publish order; a full ring makes the caller yield, it never
// drops the event.
func (c *Compositor) PublishEvent(ctx context.Context, id platform.WindowID, kind event.Kind, p1, p2 int) error {
	w, err := c.reg.Get(id)
	if err != nil {
		return err
	}
	return c.post(ctx, w, event.Event{Target: id, Kind: kind, P1: p1, P2: p2})
}

// post routes ev to w: private kinds go to the private ring first, everything
// else (and private overflow) to the shared router. The compositor never
// waits on a full router; its events wait in the outbox instead.
func (c *Compositor) post(ctx context.Context, w *window.Window, ev event.Event) error {
	if w.Flags().Has(window.Frozen) && !frozenAccepts(ev.Kind) {
		w.Responded(c.now())
		return nil
	}
	w.Sent(c.now())
	if ev.Kind.Private() && w.Private().Push(ev) {
		return nil
	}
	if c.onCompositor(ctx) {
		c.queue(ev)
		return nil
	}
	return c.router.Publish(ctx, ev)
}

// queue publishes from the compositor task. Events that do not fit wait in
// the target's own outbox, behind anything already waiting for that target.
func (c *Compositor) queue(ev event.Event) {
	if len(c.outbox[ev.Target]) == 0 && c.router.TryPublish(ev) {
		return
	}
	if c.outbox == nil {
		c.outbox = make(map[platform.WindowID][]event.Event)
	}
	c.outbox[ev.Target] = append(c.outbox[ev.Target], ev)
}

// frozenAccepts lists what still reaches a frozen window: its own repaint
// and resize requests plus the lifecycle events that show and remove it.
func frozenAccepts(k event.Kind) bool {
	return k.Private() || k == event.Create || k == event.Close || k == event.Destroy
}

func (c *Compositor) notify(w *window.Window, kind event.Kind, p1, p2 int) {
	_ = c.post(c.ctx, w, event.Event{Target: w.ID(), Kind: kind, P1: p1, P2: p2})
}

func (c *Compositor) flushOutbox() {
	for id, box := range c.outbox {
		n := 0
		for n < len(box) && c.router.TryPublish(box[n]) {
			n++
		}
		if n == len(box) {
			delete(c.outbox, id)
			continue
		}
		c.outbox[id] = box[n:]
	}
}

// ReadScreenPixel returns the composited pixel at (x, y). The cursor is never
// part of the result.
func (c *Compositor) ReadScreenPixel(x, y int) uint32 {
	return c.scr.ReadPixel(x, y)
}

// Canvas runs fn with a drawing canvas over the window's client area.
func (c *Compositor) Canvas(id platform.WindowID, fn func(cv *window.Canvas)) error {
	w, err := c.reg.Get(id)
	if err != nil {
		return err
	}
	w.Draw(fn)
	return nil
}

// Invalidate marks a client-relative rectangle for redraw.
func (c *Compositor) Invalidate(id platform.WindowID, r platform.Rect) error {
	w, err := c.reg.Get(id)
	if err != nil {
		return err
	}
	w.Invalidate(r)
	return nil
}

// Close asks a window to close. Unless the window has NoClose, the default
// handling destroys it.
func (c *Compositor) Close(ctx context.Context, id platform.WindowID) error {
	return c.PublishEvent(ctx, id, event.Close, 0, 0)
}

// AddTimer starts a periodic Timer event every intervalMS milliseconds. P1 of
// the event carries the returned timer id.
func (c *Compositor) AddTimer(id platform.WindowID, intervalMS int64) (int, error) {
	if intervalMS <= 0 {
		return 0, fmt.Errorf("timer interval must be > 0, got %d", intervalMS)
	}
	w, err := c.reg.Get(id)
	if err != nil {
		return 0, err
	}
	return w.AddTimer(c.now(), intervalMS), nil
}

// RemoveTimer stops a timer started with AddTimer.
func (c *Compositor) RemoveTimer(id platform.WindowID, timer int) error {
	w, err := c.reg.Get(id)
	if err != nil {
		return err
	}
	if !w.RemoveTimer(timer) {
		return fmt.Errorf("window %s has no timer %d", id, timer)
	}
	return nil
}

// Minimize shrinks a window to a title strip along the bottom of the screen.
func (c *Compositor) Minimize(ctx context.Context, id platform.WindowID) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Minimize})
}

// Maximize grows a window to the whole screen.
func (c *Compositor) Maximize(ctx context.Context, id platform.WindowID) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Maximize})
}

// Restore returns a minimized or maximized window to its previous rectangle.
func (c *Compositor) Restore(ctx context.Context, id platform.WindowID) error {
	return c.request(ctx, action.Request{Target: id, Kind: action.Restore})
}

// Snap places a window in a screen region.
func (c *Compositor) Snap(ctx context.Context, id platform.WindowID, region tiling.Region) error {
	if _, err := c.reg.Get(id); err != nil {
		return err
	}
	if _, err := tiling.ParseRegion(string(region)); err != nil {
		return fmt.Errorf("snap %s: %w", id, err)
	}
	r := tiling.ApplyRegion(c.scr.Bounds(), region, c.live().placement.SnapGap)
	return c.request(ctx, action.Request{Target: id, Kind: action.Resize, Rect: r, ClearState: true})
}

// Tile arranges every visible, non-minimized window with the configured
// layout, back-most window first.
func (c *Compositor) Tile(ctx context.Context) error {
	var targets []*window.Window
	for _, w := range c.reg.DrawOrder() {
		if w.Hidden() || w.Minimized() || w.Flags().Has(window.SysPopup) {
			continue
		}
		targets = append(targets, w)
	}
	if len(targets) == 0 {
		return nil
	}
	set := c.live()
	rects, err := tiling.Arrange(len(targets), c.scr.Bounds(), set.tile)
	if err != nil {
		return fmt.Errorf("tile: %w", err)
	}
	var errs []error
	for i, w := range targets {
		req := action.Request{Target: w.ID(), Kind: action.Resize, Rect: rects[i], ClearState: true}
		if err := c.request(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Windows returns a snapshot of every live window in slot order.
func (c *Compositor) Windows() []platform.Window {
	ws := c.reg.Windows()
	out := make([]platform.Window, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Info())
	}
	return out
}

// Selected returns the focused window, or NoWindow.
func (c *Compositor) Selected() platform.WindowID {
	return platform.WindowID(c.selected.Load())
}
