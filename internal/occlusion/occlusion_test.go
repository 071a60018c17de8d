package occlusion

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/platform"
)

func TestRebuildOverlapScenario(t *testing.T) {
	m := New(640, 480)
	a := Layer{Slot: 0, Rect: platform.R(100, 100, 300, 250)}
	b := Layer{Slot: 1, Rect: platform.R(150, 120, 350, 270)}

	m.Rebuild([]Layer{a, b})
	assert.Equal(t, Partial, m.Status(0))
	assert.Equal(t, Foremost, m.Status(1))

	owner, ok := m.Owner(200, 200)
	require.True(t, ok)
	assert.Equal(t, 1, owner)
	assert.True(t, m.Owns(0, 110, 110))

	// B hidden: only A takes part in the rebuild.
	m.Rebuild([]Layer{a})
	assert.Equal(t, Foremost, m.Status(0))
	assert.Equal(t, NotMapped, m.Status(1))
	assert.True(t, m.Owns(0, 200, 200))
}

func TestFullyCoveredWindowIsObscured(t *testing.T) {
	m := New(100, 100)
	m.Rebuild([]Layer{
		{Slot: 3, Rect: platform.R(10, 10, 20, 20)},
		{Slot: 4, Rect: platform.R(0, 0, 50, 50)},
	})
	assert.Equal(t, Obscured, m.Status(3))
	assert.Equal(t, 0, m.Owned(3))
	assert.Equal(t, Foremost, m.Status(4))
}

func TestOffscreenWindowIsObscured(t *testing.T) {
	m := New(100, 100)
	m.Rebuild([]Layer{{Slot: 0, Rect: platform.R(200, 200, 250, 250)}})
	assert.Equal(t, Obscured, m.Status(0))
}

func TestRandomLayoutsKeepOwnershipConsistent(t *testing.T) {
	const w, h = 120, 90
	rng := rand.New(rand.NewSource(42))
	m := New(w, h)

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(6)
		layers := make([]Layer, n)
		for i := range layers {
			x, y := rng.Intn(w+20)-10, rng.Intn(h+20)-10
			layers[i] = Layer{Slot: i, Rect: platform.Rect{X: x, Y: y, Width: 1 + rng.Intn(60), Height: 1 + rng.Intn(50)}}
		}
		m.Rebuild(layers)

		counts := make(map[int]int)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				owner, ok := m.Owner(x, y)
				// The owner must be the front-most layer containing the pixel.
				want := -1
				for i := n - 1; i >= 0; i-- {
					if layers[i].Rect.Contains(x, y) {
						want = layers[i].Slot
						break
					}
				}
				if want < 0 {
					require.False(t, ok, "pixel (%d,%d) should be unowned", x, y)
					continue
				}
				require.True(t, ok)
				require.Equal(t, want, owner, "pixel (%d,%d)", x, y)
				counts[owner]++
			}
		}

		for _, l := range layers {
			visible := l.Rect.Intersect(m.Bounds())
			switch m.Status(l.Slot) {
			case Foremost:
				assert.Equal(t, visible.Width*visible.Height, counts[l.Slot])
			case Partial:
				assert.Greater(t, counts[l.Slot], 0)
				assert.Less(t, counts[l.Slot], visible.Width*visible.Height)
			case Obscured:
				assert.Equal(t, 0, counts[l.Slot])
			default:
				t.Fatalf("layer %d was not classified", l.Slot)
			}
			assert.Equal(t, counts[l.Slot], m.Owned(l.Slot))
		}
	}
}

func TestOwnedRunsSkipsForeignPixels(t *testing.T) {
	m := New(10, 1)
	m.Rebuild([]Layer{
		{Slot: 0, Rect: platform.R(0, 0, 10, 1)},
		{Slot: 1, Rect: platform.R(3, 0, 5, 1)},
	})

	var runs [][2]int
	m.OwnedRuns(0, platform.R(0, 0, 10, 1), func(x, y, n int) {
		runs = append(runs, [2]int{x, n})
	})
	assert.Equal(t, [][2]int{{0, 3}, {5, 5}}, runs)
}

func TestFreeRunsReturnsUnclaimedPixels(t *testing.T) {
	m := New(10, 2)
	m.Rebuild([]Layer{{Slot: 4, Rect: platform.R(2, 0, 6, 1)}})

	var runs [][3]int
	m.FreeRuns(platform.R(0, 0, 10, 2), func(x, y, n int) {
		runs = append(runs, [3]int{x, y, n})
	})
	assert.Equal(t, [][3]int{{0, 0, 2}, {6, 0, 4}, {0, 1, 10}}, runs)
}
