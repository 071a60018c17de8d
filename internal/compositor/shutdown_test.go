package compositor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/task"
	"github.com/1broseidon/framewm/internal/window"
)

func TestGracefulShutdown(t *testing.T) {
	h := newHarness(t)
	h.open(t, "A", platform.R(10, 10, 110, 110), 0, nil)
	h.open(t, "B", platform.R(200, 10, 300, 110), window.NoClose, nil)

	h.BeginShutdown()
	h.Tick()
	assert.False(t, h.Closed())
	h.Tick()
	assert.True(t, h.Closed())
	assert.Empty(t, h.Windows())
}

func TestShutdownForcesUnresponsiveOwners(t *testing.T) {
	h := newHarness(t)
	app, actx := task.New(context.Background(), "stuck")
	defer app.Finish(nil)
	id, err := h.CreateSurface(actx, "stuck", platform.R(10, 10, 110, 110), nil, 0)
	require.NoError(t, err)

	h.BeginShutdown()
	h.Tick()
	require.False(t, h.Closed())

	h.clock.Set(9999 * time.Millisecond)
	h.Tick()
	require.False(t, h.Closed())
	assert.NoError(t, actx.Err())

	h.clock.Set(10000 * time.Millisecond)
	h.Tick()
	assert.True(t, h.Closed())
	assert.Empty(t, h.Windows())
	assert.ErrorIs(t, context.Cause(actx), task.ErrKilled)

	_, err = h.CreateSurface(actx, "late", platform.R(0, 0, 50, 50), nil, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, h.Show(h.Context(), id), ErrClosed)
}

func TestPendingRequestsFailAfterShutdown(t *testing.T) {
	h := newHarness(t)
	id := h.open(t, "A", platform.R(10, 10, 110, 110), 0, nil)

	app, actx := task.New(context.Background(), "app")
	defer app.Finish(nil)
	done := make(chan error, 1)
	go func() {
		done <- h.Resize(actx, id, platform.R(0, 0, 300, 300))
	}()

	h.BeginShutdown()
	var err error
	tickUntil(t, h.Compositor, func() bool {
		select {
		case err = <-done:
			return true
		default:
			return false
		}
	})
	if err != nil {
		assert.ErrorIs(t, err, ErrClosed)
	}
	assert.True(t, h.Closed())
}

func TestRunStopsWhenContextEnds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TickMS = 1
	dev := platform.NewMemoryDevice(cfg.Screen.Width, cfg.Screen.Height)
	c, err := New(Options{Config: cfg, Device: dev})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx) }()

	created := make(chan platform.WindowID, 1)
	app := task.Spawn(context.Background(), "app", func(actx context.Context) error {
		id, err := c.CreateSurface(actx, "app", platform.R(50, 50, 250, 200), nil, 0)
		if err != nil {
			return err
		}
		created <- id
		for c.Pump(actx, id) {
			if err := task.Sleep(actx, time.Millisecond); err != nil {
				return err
			}
		}
		return nil
	})

	select {
	case <-created:
	case <-time.After(3 * time.Second):
		t.Fatal("window not created")
	}
	require.Eventually(t, func() bool {
		ws := c.Windows()
		return len(ws) == 1 && !ws[0].Hidden
	}, 3*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	select {
	case <-app.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("app task did not finish")
	}
	assert.True(t, c.Closed())
	assert.Empty(t, c.Windows())
	assert.False(t, errors.Is(app.Err(), task.ErrKilled), "app left on its own")
}
