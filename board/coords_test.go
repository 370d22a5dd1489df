package board

import (
	"math"
	"testing"
)

func TestToAbsoluteAndRelativeRoundTrip(t *testing.T) {
	sections := SectionMap{
		"outer": {ID: "outer", X: 100, Y: 50, Width: 400, Height: 300},
		"inner": {ID: "inner", X: 20, Y: 30, Width: 100, Height: 80, SectionID: "outer"},
	}

	cases := []struct {
		name      string
		sectionID string
		x, y      float64
		wantX     float64
		wantY     float64
	}{
		{"free_element", "", 10, 20, 10, 20},
		{"single_level", "outer", 5, 5, 105, 55},
		{"nested", "inner", 1, 2, 121, 82},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := &Element{ID: "e", Type: TypeRectangle, X: c.x, Y: c.y, SectionID: c.sectionID}
			abs := ToAbsolute(e, sections)
			if abs.X != c.wantX || abs.Y != c.wantY {
				t.Fatalf("ToAbsolute = (%v,%v), want (%v,%v)", abs.X, abs.Y, c.wantX, c.wantY)
			}
			back := ToRelative(abs, c.sectionID, sections)
			if math.Abs(back.X-c.x) > 1e-6 || math.Abs(back.Y-c.y) > 1e-6 {
				t.Fatalf("round trip = (%v,%v), want (%v,%v)", back.X, back.Y, c.x, c.y)
			}
		})
	}
}

func TestToAbsoluteBrokenChainFallsBackToLocal(t *testing.T) {
	e := &Element{ID: "e", Type: TypeRectangle, X: 7, Y: 9, SectionID: "gone"}
	abs := ToAbsolute(e, SectionMap{})
	if abs.X != 7 || abs.Y != 9 {
		t.Fatalf("broken chain should fall back to local position, got (%v,%v)", abs.X, abs.Y)
	}
}

func TestSectionAbsoluteOriginCycleCapped(t *testing.T) {
	sections := SectionMap{
		"a": {ID: "a", X: 1, Y: 1, SectionID: "b"},
		"b": {ID: "b", X: 1, Y: 1, SectionID: "a"},
	}
	if _, ok := SectionAbsoluteOrigin(sections, "a"); ok {
		t.Fatal("cyclic chain must not resolve")
	}
}

func TestWouldCycle(t *testing.T) {
	sections := SectionMap{
		"parent": {ID: "parent"},
		"child":  {ID: "child", SectionID: "parent"},
	}
	cases := []struct {
		name             string
		childID, parent  string
		want             bool
	}{
		{"self", "s1", "s1", true},
		{"ancestor", "parent", "child", true},
		{"ok", "other", "child", false},
		{"no_parent", "x", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := WouldCycle(sections, c.childID, c.parent); got != c.want {
				t.Fatalf("WouldCycle(%q, %q) = %v, want %v", c.childID, c.parent, got, c.want)
			}
		})
	}
}

func TestScreenDeltaToCanvasDelta(t *testing.T) {
	cases := []struct {
		name   string
		dx, dy float64
		scale  float64
		wantX  float64
		wantY  float64
	}{
		{"zoom_2", 10, 20, 2, 5, 10},
		{"zoom_half", 10, 20, 0.5, 20, 40},
		{"zero_scale_passthrough", 10, 20, 0, 10, 20},
		{"nan_scale_passthrough", 10, 20, math.NaN(), 10, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gx, gy := ScreenDeltaToCanvasDelta(c.dx, c.dy, c.scale)
			if gx != c.wantX || gy != c.wantY {
				t.Fatalf("got (%v,%v), want (%v,%v)", gx, gy, c.wantX, c.wantY)
			}
		})
	}
}

func TestBatchApplyDeltaPreservesFrames(t *testing.T) {
	sections := SectionMap{
		"sec": {ID: "sec", X: 100, Y: 100},
	}
	free := &Element{ID: "free", Type: TypeRectangle, X: 10, Y: 10}
	owned := &Element{ID: "owned", Type: TypeRectangle, X: 5, Y: 5, SectionID: "sec"}

	moved := BatchApplyDelta([]*Element{free, owned}, 3, 4, sections)
	if moved == nil {
		t.Fatal("expected positions")
	}
	if p := moved["free"]; p.X != 13 || p.Y != 14 {
		t.Fatalf("free moved to (%v,%v), want (13,14)", p.X, p.Y)
	}
	// Section-owned elements move by the same delta in their own frame.
	if p := moved["owned"]; p.X != 8 || p.Y != 9 {
		t.Fatalf("owned moved to (%v,%v), want (8,9)", p.X, p.Y)
	}
	// The input elements are not mutated.
	if free.X != 10 || owned.X != 5 {
		t.Fatal("BatchApplyDelta must not mutate its inputs")
	}
}

func TestBatchApplyDeltaRejectsSubPixelAndInvalid(t *testing.T) {
	e := &Element{ID: "e", Type: TypeRectangle}
	if got := BatchApplyDelta([]*Element{e}, 0.4, 0.4, SectionMap{}); got != nil {
		t.Fatal("sub-pixel delta in both axes must be a no-op")
	}
	if got := BatchApplyDelta([]*Element{e}, 0.4, 2, SectionMap{}); got == nil {
		t.Fatal("delta above the dead zone in one axis must apply")
	}
	if got := BatchApplyDelta([]*Element{e}, math.NaN(), 2, SectionMap{}); got != nil {
		t.Fatal("invalid delta must be dropped")
	}
}
