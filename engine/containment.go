package engine

import (
	"log"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
	"github.com/mtmitchel/slate/store"
)

// ResolveDropSection picks the section that captures an element dropped at
// the given absolute point. When overlapping sections all contain the
// point, the innermost (smallest-area) section wins; ties go to the most
// recently created section, then to the lexically larger id so the result
// is always deterministic.
func ResolveDropSection(st store.Store, p board.Point) *board.Section {
	var best *board.Section
	for _, sec := range st.Sections() {
		if !geometry.BBContains(geometry.SectionBB(sec, st), p) {
			continue
		}
		if best == nil || dropBeats(sec, best) {
			best = sec
		}
	}
	return best
}

func dropBeats(a, b *board.Section) bool {
	if a.Area() != b.Area() {
		return a.Area() < b.Area()
	}
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.ID > b.ID
}

// ApplyDrop runs containment for one element after a completed drag: it
// determines the section now spatially containing the element's absolute
// position, migrates the element's coordinate frame when the owner
// changed, and writes position and sectionId in one store commit so no
// intermediate inconsistent state is observable.
func ApplyDrop(st store.Store, elementID string, opts *store.UpdateOptions) {
	e, ok := st.GetElement(elementID)
	if !ok {
		log.Printf("engine: drop of missing element %s ignored", elementID)
		return
	}
	if e.Type == board.TypeConnector {
		// Connectors live in absolute space and never join sections.
		return
	}

	abs := board.ToAbsolute(e, st)
	target := ResolveDropSection(st, abs)

	targetID := ""
	if target != nil {
		targetID = target.ID
	}
	if targetID == e.SectionID {
		return
	}
	if targetID != "" && board.WouldCycle(st, elementID, targetID) {
		log.Printf("engine: refusing cyclic section assignment %s -> %s", elementID, targetID)
		return
	}

	local := board.ToRelative(abs, targetID, st)
	if !board.ValidPosition(local.X, local.Y) {
		log.Printf("engine: invalid containment position for %s, keeping previous frame", elementID)
		return
	}
	st.UpdateElement(elementID, func(el *board.Element) {
		el.SectionID = targetID
		el.X = local.X
		el.Y = local.Y
	}, opts)
}

// ApplySectionDrop runs containment for a dragged section: the section
// reparents into the section now containing its top-left corner, keeping
// its absolute position fixed. The dragged section itself and anything it
// transitively contains never qualify as the target, so the ancestor
// chain stays acyclic.
func ApplySectionDrop(st store.Store, sectionID string, opts *store.UpdateOptions) {
	sec, ok := st.GetSection(sectionID)
	if !ok {
		log.Printf("engine: drop of missing section %s ignored", sectionID)
		return
	}
	origin, ok := board.SectionAbsoluteOrigin(st, sectionID)
	if !ok {
		return
	}

	var best *board.Section
	for _, cand := range st.Sections() {
		if board.WouldCycle(st, sectionID, cand.ID) {
			continue
		}
		if !geometry.BBContains(geometry.SectionBB(cand, st), origin) {
			continue
		}
		if best == nil || dropBeats(cand, best) {
			best = cand
		}
	}

	targetID := ""
	if best != nil {
		targetID = best.ID
	}
	if targetID == sec.SectionID {
		return
	}
	local := board.ToRelative(origin, targetID, st)
	if !board.ValidPosition(local.X, local.Y) {
		log.Printf("engine: invalid containment position for section %s, keeping previous frame", sectionID)
		return
	}
	st.UpdateSection(sectionID, func(s *board.Section) {
		s.SectionID = targetID
		s.X = local.X
		s.Y = local.Y
	}, opts)
}

// RescaleChildren applies a section resize from (oldW,oldH) to
// (newW,newH) to every contained element: relative positions and sizes
// scale proportionally. Containment detection is not re-run.
func RescaleChildren(st store.Store, sectionID string, oldW, oldH, newW, newH float64) {
	if oldW <= 0 || oldH <= 0 {
		return
	}
	scaleX := newW / oldW
	scaleY := newH / oldH
	if !board.ValidPosition(scaleX, scaleY) {
		log.Printf("engine: invalid section scale for %s, skipping child rescale", sectionID)
		return
	}

	var ids []string
	for _, e := range st.Elements() {
		if e.SectionID == sectionID {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	st.BatchUpdate("resize section contents", ids, func(e *board.Element) {
		e.X *= scaleX
		e.Y *= scaleY
		switch e.Type {
		case board.TypeCircle:
			e.Radius *= (scaleX + scaleY) / 2
		case board.TypeStar:
			f := (scaleX + scaleY) / 2
			e.OuterRadius *= f
			e.InnerRadius *= f
		default:
			e.Width *= scaleX
			e.Height *= scaleY
		}
	}, &store.UpdateOptions{SkipHistory: true})
}
