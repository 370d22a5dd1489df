package engine

import (
	"fmt"
	"math"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/store"
)

// shapePointerDown arms a shape gesture when the press lands on empty
// canvas; a press over an existing element does not arm.
func shapePointerDown(en *Engine, ctx *Context) error {
	if ctx.Target != nil {
		return nil
	}
	en.gesture = gesture{phase: phaseArmed, start: ctx.Canvas, current: ctx.Canvas}
	return nil
}

func shapePointerMove(en *Engine, ctx *Context) error {
	switch en.gesture.phase {
	case phaseArmed:
		en.gesture.phase = phaseActive
		fallthrough
	case phaseActive:
		en.gesture.current = ctx.Canvas
	}
	return nil
}

// shapePointerUp commits the gesture when the dragged bounding box meets
// the minimum shape size; sub-threshold gestures are discarded.
func shapePointerUp(en *Engine, ctx *Context) error {
	g := en.gesture
	if g.phase == phaseIdle {
		return nil
	}
	en.gesture = gesture{}

	w := math.Abs(ctx.Canvas.X - g.start.X)
	h := math.Abs(ctx.Canvas.Y - g.start.Y)
	if w < en.opts.MinShapeSize || h < en.opts.MinShapeSize {
		return nil
	}
	x := math.Min(g.start.X, ctx.Canvas.X)
	y := math.Min(g.start.Y, ctx.Canvas.Y)
	if !board.ValidPosition(x, y, w, h) {
		return fmt.Errorf("invalid shape bounds (%v,%v %vx%v)", x, y, w, h)
	}

	var e *board.Element
	switch ctx.Tool {
	case ToolCircle:
		e = board.NewElement(board.TypeCircle, x, y)
		e.Radius = math.Min(w, h) / 2
	case ToolStar:
		e = board.NewElement(board.TypeStar, x, y)
		e.OuterRadius = math.Min(w, h) / 2
		e.InnerRadius = e.OuterRadius / 2
	case ToolTriangle:
		e = board.NewElement(board.TypeTriangle, x, y)
		e.Width, e.Height = w, h
	default:
		e = board.NewElement(board.TypeRectangle, x, y)
		e.Width, e.Height = w, h
	}

	en.create(e)
	return nil
}

// placePointerUp is the click-to-place path for text, sticky notes,
// tables, and imported images: no drag, default dimensions.
func placePointerUp(en *Engine, ctx *Context) error {
	var e *board.Element
	switch ctx.Tool {
	case ToolText:
		e = board.NewElement(board.TypeText, ctx.Canvas.X, ctx.Canvas.Y)
		e.Width = en.opts.DefaultTextWidth
		e.Height = en.opts.DefaultTextHeight
	case ToolSticky:
		e = board.NewElement(board.TypeSticky, ctx.Canvas.X, ctx.Canvas.Y)
		e.Width = en.opts.DefaultStickyWidth
		e.Height = en.opts.DefaultStickyHeight
	case ToolTable:
		e = board.NewTable(ctx.Canvas.X, ctx.Canvas.Y, en.opts.DefaultTableRows, en.opts.DefaultTableCols)
	case ToolImage:
		if en.pendingImage == nil {
			return nil
		}
		e = en.pendingImage
		en.pendingImage = nil
		e.X, e.Y = ctx.Canvas.X, ctx.Canvas.Y
	default:
		return fmt.Errorf("place handler invoked for tool %s", ctx.Tool)
	}

	en.create(e)
	return nil
}

// SetPendingImage stages a validated image import for the image tool's
// next placement click.
func (en *Engine) SetPendingImage(e *board.Element) {
	en.pendingImage = e
}

// create appends the element, selects it, records the history entry, and
// applies the one-shot tool reset.
func (en *Engine) create(e *board.Element) {
	en.store.AddElement(e)
	en.store.ClearSelection()
	en.store.Select(e.ID, false)
	en.store.AddHistoryEntry(
		fmt.Sprintf("create %s", e.Type),
		nil, nil,
		store.HistoryMeta{ElementIDs: []string{e.ID}, OperationType: "create", AffectedCount: 1},
	)
	en.finishCreation()
}
