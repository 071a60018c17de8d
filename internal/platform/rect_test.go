package platform

import "testing"

func TestRectIntersectAndUnion(t *testing.T) {
	a := R(100, 100, 300, 250)
	b := R(150, 120, 350, 270)

	in := a.Intersect(b)
	if in != R(150, 120, 300, 250) {
		t.Fatalf("unexpected intersection %+v", in)
	}
	if u := a.Union(b); u != R(100, 100, 350, 270) {
		t.Fatalf("unexpected union %+v", u)
	}
	if !a.Intersect(R(400, 400, 500, 500)).Empty() {
		t.Fatalf("expected disjoint rects to have an empty intersection")
	}
	if u := (Rect{}).Union(b); u != b {
		t.Fatalf("expected union with empty rect to return operand, got %+v", u)
	}
}

func TestRectSubtractCoversDifference(t *testing.T) {
	r := R(0, 0, 10, 10)
	o := R(3, 3, 6, 6)

	parts := r.Subtract(o)
	area := 0
	for _, p := range parts {
		if p.Overlaps(o) {
			t.Fatalf("part %+v overlaps subtracted rect", p)
		}
		if !r.ContainsRect(p) {
			t.Fatalf("part %+v escapes source rect", p)
		}
		area += p.Width * p.Height
	}
	if area != 100-9 {
		t.Fatalf("expected remaining area 91, got %d", area)
	}

	if parts := r.Subtract(R(-5, -5, 20, 20)); len(parts) != 0 {
		t.Fatalf("expected nothing left, got %+v", parts)
	}
}

func TestWindowIDPacksSlotAndGeneration(t *testing.T) {
	id := NewWindowID(7, 3)
	if id.Slot() != 7 || id.Gen() != 3 {
		t.Fatalf("expected slot 7 gen 3, got slot %d gen %d", id.Slot(), id.Gen())
	}
	if !id.Valid() {
		t.Fatalf("expected id to be valid")
	}
	if NoWindow.Valid() {
		t.Fatalf("expected NoWindow to be invalid")
	}
	if NewWindowID(7, 4) == id {
		t.Fatalf("expected different generations to produce different ids")
	}
}

func TestMemoryDeviceClipsSpans(t *testing.T) {
	d := NewMemoryDevice(4, 2)
	d.WriteSpan(-2, 0, []uint32{1, 2, 3, 4, 5, 6, 7})
	if got := d.Pixel(0, 0); got != 3 {
		t.Fatalf("expected clipped span to start with 3, got %d", got)
	}
	if got := d.Pixel(3, 0); got != 6 {
		t.Fatalf("expected last pixel 6, got %d", got)
	}
	d.WriteSpan(0, 5, []uint32{9})
	if err := d.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if d.Flushes() != 1 {
		t.Fatalf("expected one flush, got %d", d.Flushes())
	}
}
