package engine

import (
	"fmt"
	"math"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/store"
)

func sectionPointerDown(en *Engine, ctx *Context) error {
	if ctx.Target != nil {
		return nil
	}
	en.gesture = gesture{phase: phaseArmed, start: ctx.Canvas, current: ctx.Canvas}
	return nil
}

func sectionPointerMove(en *Engine, ctx *Context) error {
	switch en.gesture.phase {
	case phaseArmed:
		en.gesture.phase = phaseActive
		fallthrough
	case phaseActive:
		en.gesture.current = ctx.Canvas
	}
	return nil
}

// sectionPointerUp creates the section when both dimensions reach the
// section minimum, then captures any free element whose absolute position
// already lies inside the new bounds.
func sectionPointerUp(en *Engine, ctx *Context) error {
	g := en.gesture
	if g.phase == phaseIdle {
		return nil
	}
	en.gesture = gesture{}

	w := math.Abs(ctx.Canvas.X - g.start.X)
	h := math.Abs(ctx.Canvas.Y - g.start.Y)
	if w < en.opts.MinSectionSize || h < en.opts.MinSectionSize {
		return nil
	}
	x := math.Min(g.start.X, ctx.Canvas.X)
	y := math.Min(g.start.Y, ctx.Canvas.Y)
	if !board.ValidPosition(x, y, w, h) {
		return fmt.Errorf("invalid section bounds (%v,%v %vx%v)", x, y, w, h)
	}

	id := en.store.CreateSection(x, y, w, h, "Section")
	for _, e := range en.store.Elements() {
		if e.SectionID != "" || e.Type == board.TypeConnector {
			continue
		}
		abs := board.ToAbsolute(e, en.store)
		if abs.X >= x && abs.X <= x+w && abs.Y >= y && abs.Y <= y+h {
			ApplyDrop(en.store, e.ID, &store.UpdateOptions{SkipHistory: true})
		}
	}

	en.store.ClearSelection()
	en.store.Select(id, false)
	en.store.AddHistoryEntry(
		"create section",
		nil, nil,
		store.HistoryMeta{ElementIDs: []string{id}, OperationType: "create", AffectedCount: 1},
	)
	en.finishCreation()
	return nil
}
