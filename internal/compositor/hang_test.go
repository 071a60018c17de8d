package compositor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/cursor"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/platform"
)

func TestWindowFlaggedHungAfterTimeout(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	h.Pump(ctx, id)
	w, err := h.reg.Get(id)
	require.NoError(t, err)

	require.NoError(t, h.PublishEvent(ctx, id, event.User, 0, 0))

	h.clock.Set(5000 * time.Millisecond)
	h.Tick()
	assert.False(t, w.Hung(), "exactly the timeout is not yet a hang")

	h.clock.Set(5001 * time.Millisecond)
	h.Tick()
	require.True(t, w.Hung())
	assert.True(t, h.info(t, id).Hung)
	assert.Equal(t, cursor.Wait, w.Cursor())

	h.Tick()
	assert.Equal(t, uint32(titleHung), h.ReadScreenPixel(103, 103))

	require.True(t, h.Pump(ctx, id))
	assert.False(t, w.Hung())
	assert.Equal(t, cursor.Default, w.Cursor())
	h.Tick()
	assert.Equal(t, uint32(titleOn), h.ReadScreenPixel(103, 103))
}

func TestIdleWindowNeverHangs(t *testing.T) {
	h := newHarness(t)
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	h.Pump(h.Context(), id)

	h.clock.Set(time.Minute)
	h.Tick()
	assert.False(t, h.info(t, id).Hung)
}

func TestHungWindowReceivesNoInput(t *testing.T) {
	h := newHarness(t)
	ctx := h.Context()
	r := &recorder{}
	a := h.open(t, "A", platform.R(100, 100, 300, 250), 0, r)
	b := h.open(t, "B", platform.R(150, 120, 350, 270), 0, nil)
	h.Pump(ctx, a)
	h.Pump(ctx, b)
	r.take()

	require.NoError(t, h.PublishEvent(ctx, a, event.User, 0, 0))
	h.clock.Set(5001 * time.Millisecond)
	h.Tick()
	require.True(t, h.info(t, a).Hung)

	h.click(120, 200)
	h.Input().Key(0x1E)
	h.Tick()
	assert.Equal(t, b, h.Selected())

	h.Pump(ctx, a)
	assert.Empty(t, ofKind(r.take(), event.Click, event.ClickRelease, event.KeyRaw))
}

func TestStuckScreenLockFlagsHung(t *testing.T) {
	h := newHarness(t)
	id := h.open(t, "A", platform.R(100, 100, 300, 250), 0, nil)
	h.Pump(h.Context(), id)
	w, err := h.reg.Get(id)
	require.NoError(t, err)

	w.Lock()
	w.InvalidateAll()
	h.clock.Set(5000 * time.Millisecond)
	h.Tick()
	assert.False(t, w.Hung())

	h.clock.Set(5001 * time.Millisecond)
	h.Tick()
	assert.True(t, w.Hung())
	w.Unlock()

	h.Tick()
	assert.False(t, w.Damage().Pending(), "damage kept while locked is rendered once free")
}
