package geometry

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/mtmitchel/slate/board"
)

// ElementBB returns the element's axis-aligned bounding box in absolute
// canvas coordinates. Rotation is ignored; hit-testing and containment
// both work against the unrotated box. Connectors live in absolute space
// and take their box from the path rather than from X/Y/Width/Height.
func ElementBB(e *board.Element, sections board.SectionResolver) cp.BB {
	if e.Type == board.TypeConnector {
		return connectorBB(e)
	}
	origin := board.ToAbsolute(e, sections)
	w, h := e.Size()
	return cp.BB{L: origin.X, B: origin.Y, R: origin.X + w, T: origin.Y + h}
}

// connectorPickPad widens a connector's path box so a horizontal or
// vertical run is still clickable.
const connectorPickPad = 4.0

func connectorBB(e *board.Element) cp.BB {
	pts := make([]board.Point, 0, len(e.IntermediatePoints)+2)
	if e.StartPoint != nil {
		pts = append(pts, e.StartPoint.Point)
	}
	pts = append(pts, e.IntermediatePoints...)
	if e.EndPoint != nil {
		pts = append(pts, e.EndPoint.Point)
	}
	if len(pts) == 0 {
		return cp.BB{L: e.X, B: e.Y, R: e.X, T: e.Y}
	}
	bb := cp.BB{L: pts[0].X, B: pts[0].Y, R: pts[0].X, T: pts[0].Y}
	for _, p := range pts[1:] {
		bb.L = math.Min(bb.L, p.X)
		bb.B = math.Min(bb.B, p.Y)
		bb.R = math.Max(bb.R, p.X)
		bb.T = math.Max(bb.T, p.Y)
	}
	bb.L -= connectorPickPad
	bb.B -= connectorPickPad
	bb.R += connectorPickPad
	bb.T += connectorPickPad
	return bb
}

// SectionBB returns a section's absolute bounding box.
func SectionBB(s *board.Section, sections board.SectionResolver) cp.BB {
	origin, _ := board.SectionAbsoluteOrigin(sections, s.ID)
	return cp.BB{L: origin.X, B: origin.Y, R: origin.X + s.Width, T: origin.Y + s.Height}
}

// BBContains reports whether the box contains the point. cp.BB is
// bottom/top ordered for physics; board boxes are built with B=top edge
// and T=bottom edge, so the check is plain interval containment on both
// axes regardless of naming.
func BBContains(bb cp.BB, p board.Point) bool {
	lo, hi := bb.B, bb.T
	if lo > hi {
		lo, hi = hi, lo
	}
	return p.X >= bb.L && p.X <= bb.R && p.Y >= lo && p.Y <= hi
}

// BBFromCorners builds a box from two opposite drag corners in any order.
func BBFromCorners(a, b board.Point) cp.BB {
	return cp.BB{
		L: math.Min(a.X, b.X),
		B: math.Min(a.Y, b.Y),
		R: math.Max(a.X, b.X),
		T: math.Max(a.Y, b.Y),
	}
}

// BBIntersects reports whether two boxes overlap, used by marquee select.
func BBIntersects(a, b cp.BB) bool {
	return a.L <= b.R && b.L <= a.R && a.B <= b.T && b.B <= a.T
}

// InscribedTextBox returns the width and height of the largest centered
// rectangle that keeps text inside a circle of the given radius once the
// padding is reserved. Circles get a square inscribed at r*sqrt(2) per side.
func InscribedTextBox(radius, padding float64) (w, h float64) {
	inner := radius - padding
	if inner <= 0 {
		return 0, 0
	}
	side := inner * math.Sqrt2
	return side, side
}
