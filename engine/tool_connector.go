package engine

import (
	"math"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
)

// connectorPointerDown arms a connector gesture. A press over an element
// attaches the start endpoint to that element's nearest port; a press on
// empty canvas starts a free endpoint.
func connectorPointerDown(en *Engine, ctx *Context) error {
	g := gesture{phase: phaseArmed, start: ctx.Canvas, current: ctx.Canvas}
	if ctx.Target != nil && ctx.Target.Type != board.TypeConnector {
		g.startElementID = ctx.Target.ID
		g.startAnchor = string(nearestPort(ctx.Target, en.store, ctx.Canvas))
		g.start = geometry.AnchorPoint(ctx.Target, en.store, g.startAnchor)
	}
	en.gesture = g
	return nil
}

func connectorPointerMove(en *Engine, ctx *Context) error {
	switch en.gesture.phase {
	case phaseArmed:
		en.gesture.phase = phaseActive
		fallthrough
	case phaseActive:
		en.gesture.current = ctx.Canvas
	}
	return nil
}

// connectorPointerUp commits the connector when its length reaches the
// minimum. A release over an element attaches the end endpoint.
func connectorPointerUp(en *Engine, ctx *Context) error {
	g := en.gesture
	if g.phase == phaseIdle {
		return nil
	}
	en.gesture = gesture{}

	end := ctx.Canvas
	var endID, endAnchor string
	if ctx.Target != nil && ctx.Target.Type != board.TypeConnector && ctx.Target.ID != g.startElementID {
		endID = ctx.Target.ID
		endAnchor = string(nearestPort(ctx.Target, en.store, ctx.Canvas))
		end = geometry.AnchorPoint(ctx.Target, en.store, endAnchor)
	}

	if math.Hypot(end.X-g.start.X, end.Y-g.start.Y) < en.opts.MinConnectorLength {
		return nil
	}

	e := board.NewElement(board.TypeConnector, 0, 0)
	e.SubType = en.connectorSub
	e.StartPoint = &board.Endpoint{ElementID: g.startElementID, Anchor: g.startAnchor, Point: g.start}
	e.EndPoint = &board.Endpoint{ElementID: endID, Anchor: endAnchor, Point: end}
	e.IntermediatePoints = geometry.ConnectorPath(e.SubType, g.start, end)

	en.create(e)
	return nil
}

// nearestPort picks the anchor port closest to the pointer, defaulting to
// center when the element center itself is nearest.
func nearestPort(e *board.Element, sections board.SectionResolver, p board.Point) geometry.PortKind {
	origin := board.ToAbsolute(e, sections)
	best := geometry.PortCenter
	bestDist := math.Inf(1)
	for _, port := range geometry.Ports() {
		wp := geometry.PortWorldPoint(e, origin, port)
		d := math.Hypot(wp.X-p.X, wp.Y-p.Y)
		if d < bestDist {
			bestDist = d
			best = port.Kind
		}
	}
	return best
}
