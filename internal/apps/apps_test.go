package apps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/compositor"
	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/task"
)

type rig struct {
	*compositor.Compositor
	clock *task.ManualClock
}

func newRig(t *testing.T) *rig {
	t.Helper()
	cfg := config.DefaultConfig()
	clock := task.NewManualClock()
	c, err := compositor.New(compositor.Options{
		Config: cfg,
		Device: platform.NewMemoryDevice(cfg.Screen.Width, cfg.Screen.Height),
		Clock:  clock,
	})
	require.NoError(t, err)
	return &rig{Compositor: c, clock: clock}
}

// open creates the app's window, delivers Create and composites.
func (r *rig) open(t *testing.T, app *App) (platform.WindowID, platform.Point) {
	t.Helper()
	ctx := r.Context()
	id, err := r.CreateSurface(ctx, app.Title, app.Rect, app.Handler, app.Flags)
	require.NoError(t, err)
	require.True(t, r.Pump(ctx, id))
	r.Tick()
	ws := r.Windows()
	require.Len(t, ws, 1)
	b := ws[0].Bounds
	return id, platform.Point{X: b.X + 2, Y: b.Y + 20}
}

func TestNewKnowsEveryDemoKind(t *testing.T) {
	r := newRig(t)
	for _, kind := range config.DemoKinds {
		app, err := New(kind, r)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, app.Title)
		assert.NotNil(t, app.Handler)
	}
	_, err := New("browser", r)
	assert.Error(t, err)
}

func TestPatternDrawsBars(t *testing.T) {
	r := newRig(t)
	app, err := New("pattern", r)
	require.NoError(t, err)
	_, origin := r.open(t, app)

	// 236 pixel wide client: eight bars of 29 or 30 pixels.
	assert.Equal(t, uint32(0xFFFFFF), r.ReadScreenPixel(origin.X, origin.Y+50))
	assert.Equal(t, uint32(0xFFFF00), r.ReadScreenPixel(origin.X+30, origin.Y+50))
	assert.Equal(t, uint32(0x000000), r.ReadScreenPixel(origin.X+235, origin.Y+50))
}

func TestScribblePaintsAndClears(t *testing.T) {
	r := newRig(t)
	ctx := r.Context()
	app, err := New("scribble", r)
	require.NoError(t, err)
	id, origin := r.open(t, app)
	require.Equal(t, uint32(0xFFFFFF), r.ReadScreenPixel(origin.X+40, origin.Y+40))

	require.NoError(t, r.PublishEvent(ctx, id, event.Click, 40, 40))
	require.NoError(t, r.PublishEvent(ctx, id, event.PointerMove, 60, 40))
	require.NoError(t, r.PublishEvent(ctx, id, event.ClickRelease, 60, 40))
	require.NoError(t, r.PublishEvent(ctx, id, event.PointerMove, 80, 40))
	require.True(t, r.Pump(ctx, id))
	r.Tick()

	assert.Equal(t, uint32(0x000000), r.ReadScreenPixel(origin.X+40, origin.Y+40))
	assert.Equal(t, uint32(0x000000), r.ReadScreenPixel(origin.X+60, origin.Y+40))
	assert.Equal(t, uint32(0xFFFFFF), r.ReadScreenPixel(origin.X+80, origin.Y+40), "no ink after release")

	require.NoError(t, r.PublishEvent(ctx, id, event.RightClick, 0, 0))
	require.True(t, r.Pump(ctx, id))
	r.Tick()
	assert.Equal(t, uint32(0xFFFFFF), r.ReadScreenPixel(origin.X+40, origin.Y+40))
}

func TestClockAdvancesOnTimer(t *testing.T) {
	r := newRig(t)
	ctx := r.Context()
	app, err := New("clock", r)
	require.NoError(t, err)
	id, origin := r.open(t, app)
	assert.Equal(t, uint32(clockFace), r.ReadScreenPixel(origin.X, origin.Y+5))

	r.clock.Set(1000 * time.Millisecond)
	r.Tick()
	require.True(t, r.Pump(ctx, id))
	r.Tick()

	// 196 pixel wide client: one tick fills three pixels.
	assert.Equal(t, uint32(clockBar), r.ReadScreenPixel(origin.X, origin.Y+5))
	assert.Equal(t, uint32(clockBar), r.ReadScreenPixel(origin.X+2, origin.Y+5))
	assert.Equal(t, uint32(clockFace), r.ReadScreenPixel(origin.X+3, origin.Y+5))
}

func TestStallRequestsPauseOnTimer(t *testing.T) {
	r := newRig(t)
	ctx := r.Context()
	st := NewStall(r, time.Second, 3*time.Second)
	app := &App{Title: "Stall", Rect: cascade(200, 100), Handler: st}
	id, origin := r.open(t, app)
	assert.Equal(t, uint32(stallIdle), r.ReadScreenPixel(origin.X+5, origin.Y+5))
	assert.Zero(t, st.takeStall())

	r.clock.Set(time.Second)
	r.Tick()
	require.True(t, r.Pump(ctx, id))
	r.Tick()

	assert.Equal(t, uint32(stallStalled), r.ReadScreenPixel(origin.X+5, origin.Y+5))
	assert.Equal(t, 3*time.Second, st.takeStall())
	assert.Zero(t, st.takeStall(), "one pause per timer")
}

func TestRunPumpsUntilShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TickMS = 1
	c, err := compositor.New(compositor.Options{
		Config: cfg,
		Device: platform.NewMemoryDevice(cfg.Screen.Width, cfg.Screen.Height),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx) }()

	app, err := New("pattern", c)
	require.NoError(t, err)
	tk := task.Spawn(context.Background(), "pattern", func(actx context.Context) error {
		return Run(actx, c, app, time.Millisecond)
	})

	require.Eventually(t, func() bool {
		ws := c.Windows()
		return len(ws) == 1 && !ws[0].Hidden
	}, 3*time.Second, time.Millisecond)

	cancel()
	select {
	case <-tk.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, tk.Err())
	require.NoError(t, <-runErr)
}
