// Package compositor runs the compositing loop and exposes the application
// API: surface creation, structural requests, event publishing and pumping.
//
// All screen output and every structural mutation happen on the compositor
// task. Other tasks reach it through the action queue and the event router;
// a call made from the compositor task itself runs the primitive directly.
package compositor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/framewm/internal/action"
	"github.com/1broseidon/framewm/internal/alloc"
	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/cursor"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/hotkeys"
	"github.com/1broseidon/framewm/internal/input"
	"github.com/1broseidon/framewm/internal/occlusion"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/screen"
	"github.com/1broseidon/framewm/internal/task"
	"github.com/1broseidon/framewm/internal/tiling"
	"github.com/1broseidon/framewm/internal/window"
)

var (
	// ErrClosed is returned by API calls once the compositor has shut down.
	ErrClosed = errors.New("compositor closed")
	// ErrBusy is returned when a window's screen lock could not be taken
	// for a structural change.
	ErrBusy = errors.New("window busy")
)

// lockWait bounds how long a structural primitive waits for a window's
// screen lock before giving up with ErrBusy.
const lockWait = 50 * time.Millisecond

// Options configures a Compositor.
type Options struct {
	Config    *config.Config
	Device    platform.Device
	Allocator alloc.Allocator
	Clock     task.Clock
	Logger    *slog.Logger
}

// settings are the live-tunable values, swapped by Reconfigure.
type settings struct {
	tick            time.Duration
	hangTimeout     int64
	shutdownTimeout int64
	theme           config.Theme
	placement       config.Placement
	tile            tiling.Layout
	bindings        *hotkeys.Table
}

func settingsFrom(cfg *config.Config) settings {
	layout := tiling.DefaultLayout()
	layout.Mode = tiling.Mode(cfg.Tile.Mode)
	layout.Rows = cfg.Tile.Rows
	layout.Cols = cfg.Tile.Cols
	if cfg.Tile.MasterPercent > 0 {
		layout.MasterPercent = cfg.Tile.MasterPercent
	}
	layout.FlexibleLastRow = cfg.Tile.FlexibleLastRow
	layout.Gap = cfg.Placement.SnapGap
	// Validate rejects bad bindings; a nil table binds nothing.
	bindings, _ := hotkeys.NewTable(cfg.Bindings)
	return settings{
		tick:            cfg.Tick(),
		hangTimeout:     cfg.HangTimeout().Milliseconds(),
		shutdownTimeout: cfg.ShutdownTimeout().Milliseconds(),
		theme:           cfg.Theme,
		placement:       cfg.Placement,
		tile:            layout,
		bindings:        bindings,
	}
}

// Compositor owns the screen, the window registry and the queues feeding
// them.
type Compositor struct {
	logger *slog.Logger
	clock  task.Clock
	alloc  alloc.Allocator

	scr     *screen.Screen
	reg     *window.Registry
	router  *event.Router
	actions *action.Queue
	occ     *occlusion.Map
	overlay *cursor.Overlay
	input   *input.State

	task *task.Task
	ctx  context.Context

	mu     sync.RWMutex
	set    settings
	placer *tiling.Placer

	selected atomic.Uint32
	closed   atomic.Bool
	repaint  atomic.Bool
	stopping atomic.Bool
	shift    atomic.Bool

	// Compositor task only.
	outbox   map[platform.WindowID][]event.Event
	released []*window.Window
	dirty    bool
	exposed  []platform.Rect
	drag     dragState
	mods     hotkeys.Modifiers
	shutdown shutdownState
}

// New creates a compositor drawing to opts.Device. The returned compositor
// is idle until Run or Tick is called.
func New(opts Options) (*Compositor, error) {
	if opts.Device == nil {
		return nil, errors.New("compositor: no device")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := opts.Clock
	if clock == nil {
		clock = task.NewSystemClock()
	}
	allocator := opts.Allocator
	if allocator == nil {
		allocator = alloc.NewBudget(cfg.MemoryLimit(), logger)
	}

	scr := screen.New(opts.Device)
	reg := window.NewRegistry(window.Options{
		Capacity:     cfg.MaxWindows,
		DamageCap:    cfg.Damage.Cap,
		DamageMargin: cfg.Damage.Margin,
		PrivateQueue: cfg.Queues.PrivateRing,
		KeyRing:      cfg.Queues.KeyRing,
	}, clock)

	t, ctx := task.New(context.Background(), "compositor")
	set := settingsFrom(cfg)
	c := &Compositor{
		logger:  logger,
		clock:   clock,
		alloc:   allocator,
		scr:     scr,
		reg:     reg,
		router:  event.NewRouter(cfg.Queues.EventRing, reg.Capacity()),
		actions: action.NewQueue(cfg.Queues.Actions),
		occ:     occlusion.New(scr.Width(), scr.Height()),
		overlay: cursor.NewOverlay(scr),
		input:   input.NewState(scr.Width(), scr.Height(), cfg.Queues.Clicks, cfg.Queues.KeyRing),
		task:    t,
		ctx:     ctx,
		set:     set,
		placer:  tiling.NewPlacer(set.placement.CascadeStep, set.placement.CascadeReset),
	}
	scr.Fill(scr.Bounds(), uint32(set.theme.Background))
	scr.TakeTouched()
	return c, nil
}

// Context returns a context carrying the compositor task. API calls made
// with it run their primitives directly instead of queueing.
func (c *Compositor) Context() context.Context { return c.ctx }

// Input returns the sink backends feed raw input into.
func (c *Compositor) Input() *input.State { return c.input }

// Screen returns the composited screen.
func (c *Compositor) Screen() *screen.Screen { return c.scr }

// Bounds returns the screen rectangle.
func (c *Compositor) Bounds() platform.Rect { return c.scr.Bounds() }

// Reconfigure applies the live-tunable part of cfg: tick, hang and shutdown
// timeouts, placement, tiling, theme and key bindings. Decorations and the background are
// repainted on the next tick.
func (c *Compositor) Reconfigure(cfg *config.Config) {
	set := settingsFrom(cfg)
	c.mu.Lock()
	c.set = set
	c.placer.Step = set.placement.CascadeStep
	c.placer.Reset = set.placement.CascadeReset
	c.mu.Unlock()

	c.repaint.Store(true)
	c.logger.Info("configuration applied",
		"tick", set.tick,
		"hang_timeout_ms", set.hangTimeout)
}

func (c *Compositor) live() settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

func (c *Compositor) now() int64 { return task.Millis(c.clock) }

// onCompositor reports whether ctx belongs to the compositor task.
func (c *Compositor) onCompositor(ctx context.Context) bool {
	return task.FromContext(ctx) == c.task
}
