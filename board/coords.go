package board

import "log"

// ToAbsolute resolves an element's position to absolute canvas coordinates.
// Free elements are already absolute. Section-owned elements add the
// resolved origin of their ancestor section chain. A broken or cyclic chain
// falls back to the element's local position rather than hanging.
func ToAbsolute(e *Element, sections SectionResolver) Point {
	if e == nil {
		return Point{}
	}
	if e.SectionID == "" {
		return Point{X: e.X, Y: e.Y}
	}
	origin, ok := SectionAbsoluteOrigin(sections, e.SectionID)
	if !ok {
		log.Printf("board: unresolvable section chain for element %s (section %s), using local position", e.ID, e.SectionID)
		return Point{X: e.X, Y: e.Y}
	}
	return Point{X: origin.X + e.X, Y: origin.Y + e.Y}
}

// ToRelative converts an absolute point into the local frame of the given
// section. An empty section id returns the point unchanged.
func ToRelative(abs Point, sectionID string, sections SectionResolver) Point {
	if sectionID == "" {
		return abs
	}
	origin, ok := SectionAbsoluteOrigin(sections, sectionID)
	if !ok {
		return abs
	}
	return Point{X: abs.X - origin.X, Y: abs.Y - origin.Y}
}

// ScreenDeltaToCanvasDelta converts a screen-space pixel delta into a
// canvas-space delta under the current zoom, so movement is pan/zoom
// invariant. A zero or invalid scale leaves the delta untouched.
func ScreenDeltaToCanvasDelta(dx, dy, scale float64) (float64, float64) {
	if scale <= 0 || !ValidNumber(scale) {
		return dx, dy
	}
	return dx / scale, dy / scale
}

// minDragDelta is the dead zone under which a drag delta is ignored in
// both axes, keeping jittery input out of the store and the history log.
const minDragDelta = 1.0

// BatchApplyDelta applies the same canvas-space delta to every element,
// preserving each element's coordinate frame: section-owned elements move
// in section-local space, free elements in absolute space. It returns the
// new positions keyed by id without mutating anything; the caller commits.
// A sub-pixel delta in both axes is a no-op.
func BatchApplyDelta(elements []*Element, dx, dy float64, sections SectionResolver) map[string]Point {
	if !ValidPosition(dx, dy) {
		log.Printf("board: dropping invalid drag delta (%v, %v)", dx, dy)
		return nil
	}
	if absf(dx) < minDragDelta && absf(dy) < minDragDelta {
		return nil
	}
	out := make(map[string]Point, len(elements))
	for _, e := range elements {
		if e == nil {
			continue
		}
		// The frame does not change here, so the delta applies directly
		// whether the coordinates are absolute or section-relative.
		out[e.ID] = Point{X: e.X + dx, Y: e.Y + dy}
	}
	return out
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
