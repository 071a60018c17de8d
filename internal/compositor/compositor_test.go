package compositor

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/action"
	"github.com/1broseidon/framewm/internal/alloc"
	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/occlusion"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/task"
	"github.com/1broseidon/framewm/internal/tiling"
	"github.com/1broseidon/framewm/internal/window"
)

const (
	background = 0x007F7F
	titleOn    = 0x00007F
	titleOff   = 0x7F7F7F
	titleHung  = 0x404040
	clientFill = 0xC0C0C0
)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Handle(_ *window.Window, ev event.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) take() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func ofKind(events []event.Event, kinds ...event.Kind) []event.Event {
	var out []event.Event
	for _, ev := range events {
		for _, k := range kinds {
			if ev.Kind == k {
				out = append(out, ev)
			}
		}
	}
	return out
}

type harness struct {
	*Compositor
	dev   *platform.MemoryDevice
	clock *task.ManualClock
}

func newHarness(t *testing.T, mutate ...func(*config.Config, *Options)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	dev := platform.NewMemoryDevice(cfg.Screen.Width, cfg.Screen.Height)
	clock := task.NewManualClock()
	opts := Options{Config: cfg, Device: dev, Clock: clock}
	for _, m := range mutate {
		m(cfg, &opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	return &harness{Compositor: c, dev: dev, clock: clock}
}

// open creates a window on the compositor task, pumps its Create event and
// ticks once so it is on screen.
func (h *harness) open(t *testing.T, title string, r platform.Rect, flags window.Flags, hd window.Handler) platform.WindowID {
	t.Helper()
	ctx := h.Context()
	id, err := h.CreateSurface(ctx, title, r, hd, flags)
	require.NoError(t, err)
	require.True(t, h.Pump(ctx, id))
	h.Tick()
	return id
}

func (h *harness) info(t *testing.T, id platform.WindowID) platform.Window {
	t.Helper()
	for _, w := range h.Windows() {
		if w.ID == id {
			return w
		}
	}
	t.Fatalf("window %s not found", id)
	return platform.Window{}
}

func (h *harness) fill(t *testing.T, id platform.WindowID, col uint32) {
	t.Helper()
	require.NoError(t, h.Canvas(id, func(cv *window.Canvas) { cv.Clear(col) }))
}

func tickUntil(t *testing.T, c *Compositor, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !done() {
		require.True(t, time.Now().Before(deadline), "timed out waiting for condition")
		c.Tick()
		runtime.Gosched()
	}
}

func TestOverlapScenario(t *testing.T) {
	h := newHarness(t)
	a := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	b := h.open(t, "B", platform.R(150, 120, 350, 270), 0, nil)
	h.fill(t, a, 0xFF0000)
	h.fill(t, b, 0x0000FF)
	h.Tick()

	assert.Equal(t, occlusion.Partial, h.occ.Status(a.Slot()))
	assert.Equal(t, occlusion.Foremost, h.occ.Status(b.Slot()))
	assert.Equal(t, uint32(0x0000FF), h.ReadScreenPixel(200, 200))
	assert.Equal(t, uint32(0xFF0000), h.ReadScreenPixel(120, 200))
	assert.Equal(t, uint32(0x0000FF), h.ReadScreenPixel(340, 260))
	assert.Equal(t, uint32(titleOff), h.ReadScreenPixel(103, 103))

	require.NoError(t, h.Hide(h.Context(), b))
	h.Tick()

	assert.Equal(t, occlusion.Foremost, h.occ.Status(a.Slot()))
	assert.Equal(t, occlusion.NotMapped, h.occ.Status(b.Slot()))
	assert.Equal(t, uint32(0xFF0000), h.ReadScreenPixel(200, 200))
	assert.Equal(t, uint32(background), h.ReadScreenPixel(340, 260))
	assert.Equal(t, a, h.Selected())
}

func TestSelectRaisesWindow(t *testing.T) {
	h := newHarness(t)
	a := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	b := h.open(t, "B", platform.R(150, 120, 350, 270), 0, nil)
	h.fill(t, a, 0xFF0000)
	h.fill(t, b, 0x0000FF)
	h.Tick()
	require.Equal(t, b, h.Selected())

	require.NoError(t, h.Select(h.Context(), a))
	h.Tick()

	assert.Equal(t, a, h.Selected())
	assert.Equal(t, occlusion.Foremost, h.occ.Status(a.Slot()))
	assert.Equal(t, occlusion.Partial, h.occ.Status(b.Slot()))
	assert.Equal(t, uint32(0xFF0000), h.ReadScreenPixel(200, 200))
	assert.Equal(t, uint32(titleOn), h.ReadScreenPixel(103, 103))
	assert.Equal(t, uint32(0x0000FF), h.ReadScreenPixel(340, 260))
}

func TestNewWindowShowsDecorationsAndClient(t *testing.T) {
	h := newHarness(t)
	h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)

	assert.Equal(t, uint32(0), h.ReadScreenPixel(100, 100), "border")
	assert.Equal(t, uint32(titleOn), h.ReadScreenPixel(103, 103))
	assert.Equal(t, uint32(clientFill), h.ReadScreenPixel(150, 170))
	assert.Equal(t, uint32(background), h.ReadScreenPixel(99, 99))
}

func TestCascadePlacement(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	first, err := h.CreateSurface(ctx, "one", platform.Rect{X: -1, Y: -1, Width: 100, Height: 80}, nil, 0)
	require.NoError(t, err)
	second, err := h.CreateSurface(ctx, "two", platform.Rect{X: -1, Y: -1, Width: 100, Height: 80}, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, platform.Rect{X: 10, Y: 10, Width: 100, Height: 80}, h.info(t, first).Bounds)
	assert.Equal(t, platform.Rect{X: 32, Y: 32, Width: 100, Height: 80}, h.info(t, second).Bounds)
	assert.True(t, h.info(t, first).Hidden, "windows stay hidden until Create is handled")
}

func TestCreateClampsToMinimumSize(t *testing.T) {
	h := newHarness(t)
	id, err := h.CreateSurface(h.Context(), "tiny", platform.Rect{X: 5, Y: 5, Width: 1, Height: 1}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, platform.Rect{X: 5, Y: 5, Width: 32, Height: 14}, h.info(t, id).Bounds)
}

func TestResizeRequestsApplyInOrder(t *testing.T) {
	h := newHarness(t)
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	h.router.Take(id, 0)

	first := platform.R(10, 10, 210, 160)
	second := platform.R(20, 20, 420, 320)
	require.NotNil(t, h.actions.TryEnqueue(action.Request{Target: id, Kind: action.Resize, Rect: first}))
	require.NotNil(t, h.actions.TryEnqueue(action.Request{Target: id, Kind: action.Resize, Rect: second}))
	h.Tick()

	assert.Equal(t, second, h.info(t, id).Bounds)
	sizes := ofKind(h.router.Take(id, 0), event.Size)
	require.Len(t, sizes, 2)
	assert.Equal(t, [2]int{196, 128}, [2]int{sizes[0].P1, sizes[0].P2})
	assert.Equal(t, [2]int{396, 278}, [2]int{sizes[1].P1, sizes[1].P2})
}

func TestResizeFromAnotherTaskWaitsForCompletion(t *testing.T) {
	h := newHarness(t)
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)

	app, actx := task.New(context.Background(), "app")
	defer app.Finish(nil)

	first := platform.R(10, 10, 210, 160)
	second := platform.R(20, 20, 420, 320)
	type result struct {
		err1, err2 error
		seen       platform.Rect
	}
	done := make(chan result, 1)
	go func() {
		var res result
		res.err1 = h.Resize(actx, id, first)
		for _, w := range h.Windows() {
			if w.ID == id {
				res.seen = w.Bounds
			}
		}
		res.err2 = h.Resize(actx, id, second)
		done <- res
	}()

	var res result
	tickUntil(t, h.Compositor, func() bool {
		select {
		case res = <-done:
			return true
		default:
			return false
		}
	})
	require.NoError(t, res.err1)
	require.NoError(t, res.err2)
	assert.Equal(t, first, res.seen)
	assert.Equal(t, second, h.info(t, id).Bounds)
}

func TestStaleIdentityIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	require.NoError(t, h.Destroy(ctx, id))

	assert.ErrorIs(t, h.Show(ctx, id), window.ErrStale)
	assert.ErrorIs(t, h.PublishEvent(ctx, id, event.User, 0, 0), window.ErrStale)
	assert.False(t, h.Pump(ctx, id))

	next, err := h.CreateSurface(ctx, "B", platform.R(0, 0, 100, 100), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, id.Slot(), next.Slot())
	assert.NotEqual(t, id, next)
	assert.ErrorIs(t, h.Resize(ctx, id, platform.R(0, 0, 50, 50)), window.ErrStale)
	assert.Equal(t, platform.R(0, 0, 100, 100), h.info(t, next).Bounds)
}

func TestDestroyFreesBufferAndRepaintsBackground(t *testing.T) {
	budget := alloc.NewBudget(0, nil)
	h := newHarness(t, func(_ *config.Config, o *Options) { o.Allocator = budget })
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	require.Equal(t, uint64(200*150*4), budget.InUse())

	require.NoError(t, h.Destroy(h.Context(), id))
	h.Tick()

	assert.Zero(t, budget.InUse())
	assert.Equal(t, uint32(background), h.ReadScreenPixel(150, 170))
	assert.Equal(t, platform.NoWindow, h.Selected())
	assert.Empty(t, h.Windows())
}

func TestDestroyWhileLockedFreesBufferLater(t *testing.T) {
	budget := alloc.NewBudget(0, nil)
	h := newHarness(t, func(_ *config.Config, o *Options) { o.Allocator = budget })
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	w, err := h.reg.Get(id)
	require.NoError(t, err)

	w.Lock()
	require.NoError(t, h.Destroy(h.Context(), id))
	assert.Empty(t, h.Windows())
	h.Tick()
	assert.Equal(t, uint64(200*150*4), budget.InUse(), "buffer stays while its owner draws")
	require.Len(t, h.released, 1)

	w.Unlock()
	h.Tick()
	assert.Zero(t, budget.InUse())
	assert.Empty(t, h.released)
}

func TestDestroyReselectsFrontmost(t *testing.T) {
	h := newHarness(t)
	a := h.open(t, "A", platform.R(10, 10, 110, 110), 0, nil)
	h.open(t, "popup", platform.R(20, 20, 120, 120), window.SysPopup, nil)
	c := h.open(t, "C", platform.R(30, 30, 130, 130), 0, nil)

	require.NoError(t, h.Destroy(h.Context(), c))
	assert.Equal(t, a, h.Selected(), "ordinary windows win over popups")
}

func TestAllocationFailureLeavesCompositorRunning(t *testing.T) {
	h := newHarness(t, func(_ *config.Config, o *Options) {
		o.Allocator = alloc.NewBudget(200*150*4, nil)
	})
	h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)

	_, err := h.CreateSurface(h.Context(), "B", platform.R(0, 0, 200, 150), nil, 0)
	require.ErrorIs(t, err, alloc.ErrExhausted)
	assert.Len(t, h.Windows(), 1)

	h.Tick()
	assert.Equal(t, uint32(clientFill), h.ReadScreenPixel(150, 170))
}

func TestRegistryFull(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config, _ *Options) { cfg.MaxWindows = 2 })
	ctx := h.Context()
	for i := 0; i < 2; i++ {
		_, err := h.CreateSurface(ctx, "w", platform.R(0, 0, 50, 50), nil, 0)
		require.NoError(t, err)
	}
	_, err := h.CreateSurface(ctx, "w", platform.R(0, 0, 50, 50), nil, 0)
	assert.ErrorIs(t, err, window.ErrRegistryFull)
}

func TestEventsAreOrderedPerWindow(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	ra, rb := &recorder{}, &recorder{}
	a := h.open(t, "A", platform.R(10, 10, 110, 110), 0, ra)
	b := h.open(t, "B", platform.R(200, 10, 300, 110), 0, rb)
	h.Pump(ctx, a)
	h.Pump(ctx, b)
	ra.take()
	rb.take()

	for i := 1; i <= 5; i++ {
		require.NoError(t, h.PublishEvent(ctx, a, event.User, i, 0))
		if i == 3 {
			require.NoError(t, h.PublishEvent(ctx, b, event.User, 100, 0))
		}
	}
	require.True(t, h.Pump(ctx, a))

	got := ofKind(ra.take(), event.User)
	require.Len(t, got, 5)
	for i, ev := range got {
		assert.Equal(t, a, ev.Target)
		assert.Equal(t, i+1, ev.P1)
	}

	require.True(t, h.Pump(ctx, b))
	gotB := ofKind(rb.take(), event.User)
	require.Len(t, gotB, 1)
	assert.Equal(t, 100, gotB[0].P1)
}

func TestStalledWindowDoesNotHoldBackOthers(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config, _ *Options) { cfg.Queues.EventRing = 16 })
	ctx := h.Context()
	ra, rb := &recorder{}, &recorder{}
	a := h.open(t, "A", platform.R(10, 10, 110, 110), 0, ra)
	b := h.open(t, "B", platform.R(200, 10, 300, 110), 0, rb)
	h.Pump(ctx, a)
	h.Pump(ctx, b)
	rb.take()

	require.NoError(t, h.PublishEvent(ctx, a, event.User, -1, 0))
	for i := 0; i < 40; i++ {
		require.NoError(t, h.PublishEvent(ctx, b, event.User, i, 0))
		if i%8 == 7 {
			require.True(t, h.Pump(ctx, b))
		}
	}
	require.True(t, h.Pump(ctx, b))

	got := ofKind(rb.take(), event.User)
	require.Len(t, got, 40)
	for i, ev := range got {
		assert.Equal(t, i, ev.P1)
	}
	assert.Empty(t, h.outbox)
	assert.Equal(t, 1, h.router.Pending(a.Slot()))
}

func TestOutboxKeepsOrderPerWindow(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config, _ *Options) { cfg.Queues.EventRing = 16 })
	ctx := h.Context()
	ra, rb := &recorder{}, &recorder{}
	a := h.open(t, "A", platform.R(10, 10, 110, 110), 0, ra)
	b := h.open(t, "B", platform.R(200, 10, 300, 110), 0, rb)
	h.Pump(ctx, a)
	h.Pump(ctx, b)
	ra.take()
	rb.take()

	for i := 0; i < 20; i++ {
		require.NoError(t, h.PublishEvent(ctx, a, event.User, i, 0))
	}
	require.NoError(t, h.PublishEvent(ctx, b, event.User, 99, 0))
	assert.Len(t, h.outbox[b], 1)

	require.True(t, h.Pump(ctx, a))
	h.Tick()
	assert.Empty(t, h.outbox)

	require.True(t, h.Pump(ctx, b))
	gotB := ofKind(rb.take(), event.User)
	require.Len(t, gotB, 1)
	assert.Equal(t, 99, gotB[0].P1)

	require.True(t, h.Pump(ctx, a))
	got := ofKind(ra.take(), event.User)
	require.Len(t, got, 20)
	for i, ev := range got {
		assert.Equal(t, i, ev.P1)
	}
}

func TestPrivateEventsComeFirst(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	r := &recorder{}
	id := h.open(t, "A", platform.R(10, 10, 110, 110), 0, r)
	h.Pump(ctx, id)
	r.take()

	require.NoError(t, h.PublishEvent(ctx, id, event.User, 0, 0))
	require.NoError(t, h.PublishEvent(ctx, id, event.RequestRepaint, 0, 0))
	h.Pump(ctx, id)

	got := r.take()
	require.Len(t, got, 2)
	assert.Equal(t, event.RequestRepaint, got[0].Kind)
	assert.Equal(t, event.User, got[1].Kind)
}

func TestCloseDestroysUnlessNoClose(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	keep := h.open(t, "keep", platform.R(10, 10, 110, 110), window.NoClose, nil)
	gone := h.open(t, "gone", platform.R(200, 10, 300, 110), 0, nil)

	require.NoError(t, h.Close(ctx, keep))
	require.NoError(t, h.Close(ctx, gone))

	assert.True(t, h.Pump(ctx, keep))
	assert.True(t, h.Pump(ctx, keep))
	assert.True(t, h.Pump(ctx, gone), "close posts destroy")
	assert.False(t, h.Pump(ctx, gone), "destroy ends pumping")

	require.Len(t, h.Windows(), 1)
	assert.Equal(t, keep, h.Windows()[0].ID)
}

func TestHandlerPanicDestroysWindow(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	other := h.open(t, "other", platform.R(300, 10, 400, 110), 0, nil)
	id := h.open(t, "bad", platform.R(10, 10, 110, 110), 0, window.HandlerFunc(func(_ *window.Window, ev event.Event) {
		if ev.Kind == event.User {
			panic("boom")
		}
	}))

	require.NoError(t, h.PublishEvent(ctx, id, event.User, 0, 0))
	assert.False(t, h.Pump(ctx, id))
	h.Tick()

	require.Len(t, h.Windows(), 1)
	assert.Equal(t, other, h.Windows()[0].ID)
}

func TestOrphanedWindowIsAdoptedAndDestroyed(t *testing.T) {
	h := newHarness(t)
	app, actx := task.New(context.Background(), "app")
	_, err := h.CreateSurface(actx, "orphan", platform.R(10, 10, 110, 110), nil, 0)
	require.NoError(t, err)
	app.Finish(nil)

	h.Tick()
	assert.Empty(t, h.Windows())
}

func TestTimersDeliverEvents(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	r := &recorder{}
	id := h.open(t, "clock", platform.R(10, 10, 110, 110), 0, r)
	timer, err := h.AddTimer(id, 100)
	require.NoError(t, err)

	h.clock.Set(99 * time.Millisecond)
	h.Tick()
	h.Pump(ctx, id)
	assert.Empty(t, ofKind(r.take(), event.Timer))

	h.clock.Set(100 * time.Millisecond)
	h.Tick()
	h.Pump(ctx, id)
	fired := ofKind(r.take(), event.Timer)
	require.Len(t, fired, 1)
	assert.Equal(t, timer, fired[0].P1)

	require.NoError(t, h.RemoveTimer(id, timer))
	assert.Error(t, h.RemoveTimer(id, timer))
	h.clock.Set(300 * time.Millisecond)
	h.Tick()
	h.Pump(ctx, id)
	assert.Empty(t, ofKind(r.take(), event.Timer))
}

func TestMinimizeMaximizeRestore(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	orig := platform.R(100, 100, 300, 250)
	id := h.open(t, "A", orig, 0, nil)

	require.NoError(t, h.Maximize(ctx, id))
	info := h.info(t, id)
	assert.True(t, info.Maximized)
	assert.Equal(t, platform.R(0, 0, 640, 480), info.Bounds)

	require.NoError(t, h.Restore(ctx, id))
	info = h.info(t, id)
	assert.False(t, info.Maximized)
	assert.Equal(t, orig, info.Bounds)

	require.NoError(t, h.Minimize(ctx, id))
	info = h.info(t, id)
	assert.True(t, info.Minimized)
	assert.Equal(t, platform.Rect{X: 0, Y: 480 - 22, Width: 160, Height: 22}, info.Bounds)

	require.NoError(t, h.Maximize(ctx, id))
	require.NoError(t, h.Restore(ctx, id))
	assert.Equal(t, orig, h.info(t, id).Bounds)
}

func TestFailedStateChangeKeepsWindowState(t *testing.T) {
	h := newHarness(t, func(_ *config.Config, o *Options) {
		o.Allocator = alloc.NewBudget(200*150*4, nil)
	})
	ctx := h.Context()
	orig := platform.R(100, 100, 300, 250)
	id := h.open(t, "A", orig, 0, nil)

	require.ErrorIs(t, h.Maximize(ctx, id), alloc.ErrExhausted)
	info := h.info(t, id)
	assert.False(t, info.Maximized)
	assert.Equal(t, orig, info.Bounds)

	require.ErrorIs(t, h.Minimize(ctx, id), alloc.ErrExhausted)
	info = h.info(t, id)
	assert.False(t, info.Minimized)
	assert.Equal(t, orig, info.Bounds)

	require.NoError(t, h.Restore(ctx, id))
	assert.Equal(t, orig, h.info(t, id).Bounds)
}

func TestStartMaximized(t *testing.T) {
	h := newHarness(t)
	id := h.open(t, "A", platform.R(100, 100, 300, 250), window.StartMaximized, nil)
	assert.Equal(t, h.Bounds(), h.info(t, id).Bounds)
}

func TestSnapAndTile(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	a := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	b := h.open(t, "B", platform.R(150, 120, 350, 270), 0, nil)

	require.NoError(t, h.Snap(ctx, a, tiling.RegionLeftHalf))
	assert.Equal(t, platform.Rect{Width: 320, Height: 480}, h.info(t, a).Bounds)
	assert.Error(t, h.Snap(ctx, a, tiling.Region("middle")))

	require.NoError(t, h.Tile(ctx))
	ra, rb := h.info(t, a).Bounds, h.info(t, b).Bounds
	assert.False(t, ra.Overlaps(rb))
	assert.True(t, h.Bounds().ContainsRect(ra))
	assert.True(t, h.Bounds().ContainsRect(rb))

	h.Tick()
	assert.Equal(t, occlusion.Foremost, h.occ.Status(a.Slot()))
	assert.Equal(t, occlusion.Foremost, h.occ.Status(b.Slot()))
}

func TestReadScreenPixelExcludesCursor(t *testing.T) {
	h := newHarness(t)
	h.overlay.SetReady()
	h.Input().PointerAt(20, 20)
	h.Tick()

	assert.Equal(t, uint32(background), h.ReadScreenPixel(20, 20))
	assert.Equal(t, uint32(0x000000), h.dev.Pixel(20, 20), "arrow tip is drawn on the device")
}

func TestCursorRedrawnOverCompositedOutput(t *testing.T) {
	h := newHarness(t)
	h.overlay.SetReady()
	h.Input().PointerAt(150, 170)
	h.Tick()

	h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	assert.Equal(t, uint32(clientFill), h.ReadScreenPixel(150, 170))
	assert.Equal(t, uint32(0x000000), h.dev.Pixel(150, 170))
}

func TestReconfigureRepaintsTheme(t *testing.T) {
	h := newHarness(t)
	h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)

	cfg := config.DefaultConfig()
	cfg.Theme.Background = 0x112233
	cfg.Theme.TitleActive = 0x445566
	h.Reconfigure(cfg)
	h.Tick()
	h.Tick()

	assert.Equal(t, uint32(0x112233), h.ReadScreenPixel(5, 5))
	assert.Equal(t, uint32(0x445566), h.ReadScreenPixel(103, 103))
}

func TestClosedCompositorRejectsCalls(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	id := h.open(t, "A", platform.R(10, 10, 110, 110), 0, nil)
	h.BeginShutdown()
	h.Tick()
	h.Tick()
	require.True(t, h.Closed())

	_, err := h.CreateSurface(ctx, "late", platform.R(0, 0, 50, 50), nil, 0)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.ErrorIs(t, h.Show(ctx, id), ErrClosed)
}
