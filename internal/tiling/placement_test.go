package tiling

import (
	"testing"

	"github.com/1broseidon/framewm/internal/platform"
)

func TestPlacerCascadesAndResets(t *testing.T) {
	screen := platform.Rect{Width: 200, Height: 150}
	p := NewPlacer(22, 10)

	first := p.Next(screen, 100, 80)
	second := p.Next(screen, 100, 80)
	if first != (platform.Point{X: 10, Y: 10}) {
		t.Fatalf("expected first at 10,10, got %+v", first)
	}
	if second != (platform.Point{X: 32, Y: 32}) {
		t.Fatalf("expected second at 32,32, got %+v", second)
	}

	p.Next(screen, 100, 80)
	// 76+80 > 150: start over.
	if got := p.Next(screen, 100, 80); got != (platform.Point{X: 10, Y: 10}) {
		t.Fatalf("expected cascade reset, got %+v", got)
	}
}

func TestClampSize(t *testing.T) {
	screen := platform.Rect{Width: 200, Height: 150}
	w, h := ClampSize(5, 900, screen, 32, 14)
	if w != 32 || h != 150 {
		t.Fatalf("expected 32x150, got %dx%d", w, h)
	}
}

func TestClampToScreenKeepsGrabStrip(t *testing.T) {
	screen := platform.Rect{Width: 200, Height: 150}
	r := ClampToScreen(platform.Rect{X: -500, Y: -20, Width: 100, Height: 50}, screen, 8)
	if r.Y != 0 {
		t.Fatalf("expected top clamped to 0, got %d", r.Y)
	}
	if r.Right() != 8 {
		t.Fatalf("expected 8 pixels to stay visible, got right edge %d", r.Right())
	}
	r = ClampToScreen(platform.Rect{X: 500, Y: 400, Width: 100, Height: 50}, screen, 8)
	if r.X != 192 || r.Y != 142 {
		t.Fatalf("unexpected clamp %+v", r)
	}
}
