package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/platform"
)

func TestPointerIsClampedAndAccumulated(t *testing.T) {
	s := NewState(100, 50, 0, 0)

	s.PointerMoved(10, 5)
	s.PointerMoved(-200, 0)
	snap := s.Take()

	assert.True(t, snap.Moved)
	assert.Equal(t, 0, snap.X)
	assert.Equal(t, 30, snap.Y)
	assert.Equal(t, -50, snap.DX)
	assert.Equal(t, 5, snap.DY)

	snap = s.Take()
	assert.False(t, snap.Moved)
	assert.Zero(t, snap.DX)
}

func TestClicksAreBufferedInOrderAndDragsCoalesce(t *testing.T) {
	s := NewState(100, 100, 0, 0)

	s.PointerAt(10, 10)
	s.Button(platform.ButtonLeft, true)
	s.PointerAt(12, 10)
	s.PointerAt(15, 11)
	s.Button(platform.ButtonLeft, false)
	s.Button(platform.ButtonRight, true)
	s.Button(platform.ButtonRight, false)

	snap := s.Take()
	require.Len(t, snap.Clicks, 5)
	assert.Equal(t, Click{Kind: Left, X: 10, Y: 10}, snap.Clicks[0])
	assert.Equal(t, Click{Kind: LeftDrag, X: 15, Y: 11}, snap.Clicks[1])
	assert.Equal(t, LeftRelease, snap.Clicks[2].Kind)
	assert.Equal(t, Right, snap.Clicks[3].Kind)
	assert.Equal(t, RightRelease, snap.Clicks[4].Kind)

	assert.Empty(t, s.Take().Clicks)
}

func TestRepeatedButtonStateIsIgnored(t *testing.T) {
	s := NewState(100, 100, 0, 0)
	s.Button(platform.ButtonLeft, true)
	s.Button(platform.ButtonLeft, true)
	s.Button(platform.ButtonMiddle, true)

	assert.Len(t, s.Take().Clicks, 1)
}

func TestFullClickQueueKeepsPresses(t *testing.T) {
	s := NewState(100, 100, 3, 0)
	s.Button(platform.ButtonLeft, true)
	s.PointerAt(1, 1)
	s.Button(platform.ButtonLeft, false)
	// Queue full: the drag makes room for the next press.
	s.Button(platform.ButtonRight, true)
	s.Button(platform.ButtonRight, false)

	snap := s.Take()
	require.Len(t, snap.Clicks, 3)
	assert.Equal(t, []ClickKind{Left, LeftRelease, Right}, []ClickKind{snap.Clicks[0].Kind, snap.Clicks[1].Kind, snap.Clicks[2].Kind})
	assert.Equal(t, 1, s.Dropped())
}

func TestKeysTrackAlt(t *testing.T) {
	s := NewState(10, 10, 0, 4)
	s.Key(KeyAlt)
	assert.True(t, s.Alt())
	s.Key(KeyTab)
	s.Key(KeyAlt | 0x80)
	assert.False(t, s.Alt())

	assert.Equal(t, []byte{KeyAlt, KeyTab, KeyAlt | 0x80}, s.Keys())
	assert.Empty(t, s.Keys())
}

func TestScanCodeRoundTrip(t *testing.T) {
	for _, r := range "hello, World! 42" {
		code, shift, ok := ScanCodeForRune(r)
		require.Truef(t, ok, "no scan code for %q", r)
		assert.Equal(t, r, RuneForScanCode(code, shift))
	}
	assert.Equal(t, 'q', RuneForScanCode(0x10|0x80, false))
	assert.Zero(t, RuneForScanCode(KeyAlt, false))
}
