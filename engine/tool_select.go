package engine

import (
	"fmt"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
	"github.com/mtmitchel/slate/store"
)

// selectPointerDown starts a handle resize (pointer on a selection
// handle), a selection drag (pointer over an element or section), or a
// marquee sweep (empty canvas).
func selectPointerDown(en *Engine, ctx *Context) error {
	if td := en.handleAt(ctx.Canvas); td != nil {
		en.drag = dragState{active: true, transform: td, lastX: ctx.Event.X, lastY: ctx.Event.Y}
		return nil
	}

	en.drag = dragState{active: true, lastX: ctx.Event.X, lastY: ctx.Event.Y}

	if ctx.Target != nil {
		sel := en.store.Selection()
		if _, already := sel[ctx.Target.ID]; !already {
			en.store.Select(ctx.Target.ID, ctx.Event.Shift)
			sel = en.store.Selection()
		}
		for id := range sel {
			if _, ok := en.store.GetElement(id); ok {
				en.drag.ids = append(en.drag.ids, id)
			} else if _, ok := en.store.GetSection(id); ok {
				en.drag.sections = append(en.drag.sections, id)
			}
		}
		en.drag.ids, en.drag.sections = filterNestedDrag(en.store, en.drag.ids, en.drag.sections)
		return nil
	}

	if sec := en.SectionAt(ctx.Canvas); sec != nil {
		if _, already := en.store.Selection()[sec.ID]; !already {
			en.store.Select(sec.ID, ctx.Event.Shift)
		}
		en.drag.sections = append(en.drag.sections, sec.ID)
		return nil
	}

	if !ctx.Event.Shift {
		en.store.ClearSelection()
	}
	en.drag.marquee = true
	en.drag.marqueeStart = ctx.Canvas
	en.drag.marqueeEnd = ctx.Canvas
	return nil
}

func selectPointerMove(en *Engine, ctx *Context) error {
	if !en.drag.active {
		return nil
	}
	if en.drag.transform != nil {
		en.drag.transform.current = ctx.Canvas
		en.drag.moved = true
		return nil
	}
	if en.drag.marquee {
		en.drag.marqueeEnd = ctx.Canvas
		return nil
	}

	dxScreen := ctx.Event.X - en.drag.lastX
	dyScreen := ctx.Event.Y - en.drag.lastY
	en.drag.lastX = ctx.Event.X
	en.drag.lastY = ctx.Event.Y
	dx, dy := board.ScreenDeltaToCanvasDelta(dxScreen, dyScreen, en.camera.Zoom)

	elems := make([]*board.Element, 0, len(en.drag.ids))
	for _, id := range en.drag.ids {
		if e, ok := en.store.GetElement(id); ok {
			elems = append(elems, e)
		}
	}
	moved := board.BatchApplyDelta(elems, dx, dy, en.store)
	if moved != nil {
		en.markDragMoved()
		en.store.BatchUpdate("drag move", en.drag.ids, func(e *board.Element) {
			if p, ok := moved[e.ID]; ok {
				e.X, e.Y = p.X, p.Y
			}
		}, &store.UpdateOptions{SkipHistory: true})
	}

	// Sections move as a unit: only the section's own absolute position
	// changes, children stay correct by virtue of being relative.
	for _, id := range en.drag.sections {
		if dx == 0 && dy == 0 {
			break
		}
		en.markDragMoved()
		en.store.UpdateSection(id, func(s *board.Section) {
			s.X += dx
			s.Y += dy
		}, &store.UpdateOptions{SkipHistory: true})
	}
	return nil
}

// markDragMoved flips the drag into its moved state, snapshotting the
// pre-gesture board exactly once so the whole move is one undo step.
func (en *Engine) markDragMoved() {
	if en.drag.moved {
		return
	}
	en.store.Checkpoint()
	en.drag.moved = true
}

// filterNestedDrag drops anything whose owning-section chain passes
// through a section that is itself being dragged: the parent's move
// already carries it, so applying the delta again would double it.
func filterNestedDrag(st store.Store, ids, sections []string) ([]string, []string) {
	if len(sections) == 0 {
		return ids, sections
	}
	dragged := make(map[string]struct{}, len(sections))
	for _, id := range sections {
		dragged[id] = struct{}{}
	}
	carried := func(ownerID string) bool {
		for depth := 0; ownerID != "" && depth < 64; depth++ {
			if _, ok := dragged[ownerID]; ok {
				return true
			}
			s, ok := st.GetSection(ownerID)
			if !ok {
				return false
			}
			ownerID = s.SectionID
		}
		return false
	}
	keptIDs := ids[:0]
	for _, id := range ids {
		if e, ok := st.GetElement(id); !ok || !carried(e.SectionID) {
			keptIDs = append(keptIDs, id)
		}
	}
	keptSecs := sections[:0]
	for _, id := range sections {
		if s, ok := st.GetSection(id); !ok || !carried(s.SectionID) {
			keptSecs = append(keptSecs, id)
		}
	}
	return keptIDs, keptSecs
}

// selectPointerUp finishes a drag: marquee selects everything the band
// touched; a completed move runs the containment pass for every dragged
// element and records one history entry for the whole batch.
func selectPointerUp(en *Engine, ctx *Context) error {
	drag := en.drag
	en.drag = dragState{}
	if !drag.active {
		return nil
	}

	if drag.marquee {
		band := geometry.BBFromCorners(drag.marqueeStart, ctx.Canvas)
		for _, e := range en.store.Elements() {
			if geometry.BBIntersects(band, geometry.ElementBB(e, en.store)) {
				en.store.Select(e.ID, true)
			}
		}
		return nil
	}

	if !drag.moved {
		return nil
	}

	if drag.transform != nil {
		en.finishHandleDrag(drag.transform)
		return nil
	}

	for _, id := range drag.ids {
		ApplyDrop(en.store, id, &store.UpdateOptions{SkipHistory: true})
	}
	for _, id := range drag.sections {
		ApplySectionDrop(en.store, id, &store.UpdateOptions{SkipHistory: true})
	}

	affected := append(append([]string(nil), drag.ids...), drag.sections...)
	en.store.AddHistoryEntry(
		fmt.Sprintf("move %d element(s)", len(affected)),
		nil, nil,
		store.HistoryMeta{ElementIDs: affected, OperationType: "move", AffectedCount: len(affected)},
	)
	return nil
}

// selectClick toggles selection without initiating a drag; clicking empty
// canvas clears it.
func selectClick(en *Engine, ctx *Context) error {
	if ctx.Target != nil {
		en.store.Select(ctx.Target.ID, ctx.Event.Shift)
		return nil
	}
	if sec := en.SectionAt(ctx.Canvas); sec != nil {
		en.store.Select(sec.ID, ctx.Event.Shift)
		return nil
	}
	if !ctx.Event.Shift {
		en.store.ClearSelection()
	}
	return nil
}
