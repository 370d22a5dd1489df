package engine

import (
	"github.com/mtmitchel/slate/board"
)

func penPointerDown(en *Engine, ctx *Context) error {
	en.gesture = gesture{
		phase:   phaseArmed,
		start:   ctx.Canvas,
		current: ctx.Canvas,
		points:  []board.Point{ctx.Canvas},
	}
	return nil
}

func penPointerMove(en *Engine, ctx *Context) error {
	switch en.gesture.phase {
	case phaseArmed:
		en.gesture.phase = phaseActive
		fallthrough
	case phaseActive:
		en.gesture.current = ctx.Canvas
		en.gesture.points = append(en.gesture.points, ctx.Canvas)
	}
	return nil
}

// penPointerUp commits the accumulated freehand path as a stroke element
// whose points are stored relative to the path's top-left corner.
func penPointerUp(en *Engine, _ *Context) error {
	g := en.gesture
	if g.phase == phaseIdle {
		return nil
	}
	en.gesture = gesture{}
	if len(g.points) < en.opts.MinPenPoints {
		return nil
	}

	minX, minY := g.points[0].X, g.points[0].Y
	for _, p := range g.points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
	}
	local := make([]board.Point, len(g.points))
	for i, p := range g.points {
		local[i] = board.Point{X: p.X - minX, Y: p.Y - minY}
	}

	e := board.NewElement(board.TypeStroke, minX, minY)
	e.Points = local
	en.create(e)
	return nil
}
