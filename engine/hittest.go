package engine

import (
	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
)

// HitTest returns the topmost element whose bounding box contains the
// canvas point, or nil for empty canvas. Later-created elements sit on
// top, so iteration runs back to front.
func (en *Engine) HitTest(p board.Point) *board.Element {
	elems := en.store.Elements()
	for i := len(elems) - 1; i >= 0; i-- {
		e := elems[i]
		if geometry.BBContains(geometry.ElementBB(e, en.store), p) {
			return e
		}
	}
	return nil
}

// SectionAt returns the innermost section containing the canvas point:
// the smallest area wins, with ties broken by the most recently created
// section (then by id, so the result is deterministic).
func (en *Engine) SectionAt(p board.Point) *board.Section {
	return ResolveDropSection(en.store, p)
}
