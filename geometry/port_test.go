package geometry

import (
	"math"
	"testing"

	"github.com/mtmitchel/slate/board"
)

func TestPortWorldPointBoxPorts(t *testing.T) {
	e := &board.Element{ID: "r", Type: board.TypeRectangle, X: 10, Y: 20, Width: 100, Height: 60}
	origin := board.Point{X: 10, Y: 20}

	cases := []struct {
		kind  PortKind
		wantX float64
		wantY float64
	}{
		{PortCenter, 60, 50},
		{PortN, 60, 20},
		{PortS, 60, 80},
		{PortE, 110, 50},
		{PortW, 10, 50},
		{PortNE, 110, 20},
		{PortSW, 10, 80},
	}
	for _, c := range cases {
		t.Run(string(c.kind), func(t *testing.T) {
			p := PortWorldPoint(e, origin, PortByKind(string(c.kind)))
			if math.Abs(p.X-c.wantX) > 1e-9 || math.Abs(p.Y-c.wantY) > 1e-9 {
				t.Fatalf("port %s = (%v,%v), want (%v,%v)", c.kind, p.X, p.Y, c.wantX, c.wantY)
			}
		})
	}
}

// Rotating a square 90 degrees maps its north port onto the unrotated east
// port position.
func TestPortWorldPointRotation(t *testing.T) {
	e := &board.Element{ID: "r", Type: board.TypeRectangle, Width: 100, Height: 100, Rotation: 90}
	origin := board.Point{}
	north := PortWorldPoint(e, origin, PortByKind("n"))

	unrotated := &board.Element{ID: "r2", Type: board.TypeRectangle, Width: 100, Height: 100}
	east := PortWorldPoint(unrotated, origin, PortByKind("e"))

	if math.Abs(north.X-east.X) > 1e-9 || math.Abs(north.Y-east.Y) > 1e-9 {
		t.Fatalf("rotated north = (%v,%v), want east position (%v,%v)", north.X, north.Y, east.X, east.Y)
	}
}

func TestPortByKindDefaultsToCenter(t *testing.T) {
	for _, kind := range []string{"", "bogus"} {
		p := PortByKind(kind)
		if p.Kind != PortCenter || p.NX != 0 || p.NY != 0 {
			t.Fatalf("PortByKind(%q) = %+v, want center", kind, p)
		}
	}
}

func TestCirclePortsUseBoundingSize(t *testing.T) {
	e := &board.Element{ID: "c", Type: board.TypeCircle, Radius: 50}
	origin := board.Point{X: 0, Y: 0}
	east := PortWorldPoint(e, origin, PortByKind("e"))
	if east.X != 100 || east.Y != 50 {
		t.Fatalf("circle east port = (%v,%v), want (100,50)", east.X, east.Y)
	}
}

func TestAnchorPointResolvesSectionFrame(t *testing.T) {
	sections := board.SectionMap{
		"s": {ID: "s", X: 100, Y: 100},
	}
	e := &board.Element{ID: "e", Type: board.TypeRectangle, X: 10, Y: 10, Width: 20, Height: 20, SectionID: "s"}
	center := AnchorPoint(e, sections, "center")
	if center.X != 120 || center.Y != 120 {
		t.Fatalf("center = (%v,%v), want (120,120)", center.X, center.Y)
	}
}
