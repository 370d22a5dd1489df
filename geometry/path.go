package geometry

import "github.com/mtmitchel/slate/board"

// ConnectorPath computes the intermediate points for a connector between
// two resolved endpoints. Straight, arrow and line connectors have none.
//
// Bent connectors route through two orthogonal segments meeting at the
// horizontal midpoint between start and end. Curved connectors return two
// cubic Bezier control points at 30% and 70% of the horizontal span, each
// pinned to its endpoint's y; an approximation, not a minimal-curvature
// spline.
func ConnectorPath(sub board.ConnectorSubType, start, end board.Point) []board.Point {
	switch sub {
	case board.ConnectorBent:
		midX := (start.X + end.X) / 2
		return []board.Point{
			{X: midX, Y: start.Y},
			{X: midX, Y: end.Y},
		}
	case board.ConnectorCurved:
		span := end.X - start.X
		return []board.Point{
			{X: start.X + span*0.3, Y: start.Y},
			{X: start.X + span*0.7, Y: end.Y},
		}
	default:
		return nil
	}
}

// CubicBezier evaluates the curve defined by p0..p3 at t in [0,1]. The
// renderer flattens curved connectors with it.
func CubicBezier(p0, p1, p2, p3 board.Point, t float64) board.Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return board.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// PointsEqual compares two points within tolerance. Connector updates are
// only committed when a path actually changed.
func PointsEqual(a, b board.Point, tol float64) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= tol && dy <= tol
}

// PathsEqual compares whole point slices within tolerance.
func PathsEqual(a, b []board.Point, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !PointsEqual(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
