// Package connector keeps every connector's path consistent with the live
// positions of the elements it references. It subscribes to store changes,
// collects dirty connectors, and recomputes them in a single pass per
// frame so a bulk drag of many elements costs one recompute, not one per
// element per change.
package connector

import (
	"log"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
	"github.com/mtmitchel/slate/store"
)

const pointTolerance = 1e-9

// Engine is the connector maintenance engine.
type Engine struct {
	store store.Store

	dirty map[string]struct{}
	// suppress drops self-inflicted notifications while committing
	suppress    bool
	unsubscribe func()
}

// NewEngine creates the maintenance engine and subscribes it to the store.
func NewEngine(st store.Store) *Engine {
	en := &Engine{store: st, dirty: map[string]struct{}{}}
	en.unsubscribe = st.Subscribe(en.onChange)
	return en
}

// Close detaches the engine from the store.
func (en *Engine) Close() {
	if en.unsubscribe != nil {
		en.unsubscribe()
		en.unsubscribe = nil
	}
}

// onChange marks every connector touching a changed element as dirty.
// Section moves shift all their descendants, so a section change marks
// every attached connector whose endpoint element lives in (a descendant
// of) that section; the cheap conservative answer is to mark them all.
func (en *Engine) onChange(changed []string) {
	if en.suppress {
		return
	}
	changedSet := make(map[string]struct{}, len(changed))
	sectionChanged := false
	for _, id := range changed {
		changedSet[id] = struct{}{}
		if _, ok := en.store.GetSection(id); ok {
			sectionChanged = true
		}
	}

	for _, e := range en.store.Elements() {
		if e.Type != board.TypeConnector {
			continue
		}
		if _, ok := changedSet[e.ID]; ok {
			en.dirty[e.ID] = struct{}{}
			continue
		}
		if sectionChanged && (attachedTo(e.StartPoint) || attachedTo(e.EndPoint)) {
			en.dirty[e.ID] = struct{}{}
			continue
		}
		if endpointIn(e.StartPoint, changedSet) || endpointIn(e.EndPoint, changedSet) {
			en.dirty[e.ID] = struct{}{}
		}
	}
}

func attachedTo(ep *board.Endpoint) bool {
	return ep != nil && ep.ElementID != ""
}

func endpointIn(ep *board.Endpoint, set map[string]struct{}) bool {
	if ep == nil || ep.ElementID == "" {
		return false
	}
	_, ok := set[ep.ElementID]
	return ok
}

// Flush runs one maintenance pass over all dirty connectors. The host
// calls it once per frame; calling it with nothing dirty is free.
func (en *Engine) Flush() int {
	if len(en.dirty) == 0 {
		return 0
	}
	dirty := en.dirty
	en.dirty = map[string]struct{}{}

	updated := 0
	for id := range dirty {
		if en.refresh(id) {
			updated++
		}
	}
	return updated
}

// refresh recomputes one connector and commits only when the path
// actually changed. Missing endpoint elements leave that endpoint at its
// last known point.
func (en *Engine) refresh(id string) bool {
	e, ok := en.store.GetElement(id)
	if !ok || e.Type != board.TypeConnector {
		return false
	}

	start := resolveEndpoint(en.store, e.StartPoint)
	end := resolveEndpoint(en.store, e.EndPoint)
	mid := geometry.ConnectorPath(e.SubType, start, end)

	if e.StartPoint != nil && geometry.PointsEqual(e.StartPoint.Point, start, pointTolerance) &&
		e.EndPoint != nil && geometry.PointsEqual(e.EndPoint.Point, end, pointTolerance) &&
		geometry.PathsEqual(e.IntermediatePoints, mid, pointTolerance) {
		return false
	}

	en.suppress = true
	en.store.UpdateElement(id, func(c *board.Element) {
		if c.StartPoint == nil {
			c.StartPoint = &board.Endpoint{}
		}
		if c.EndPoint == nil {
			c.EndPoint = &board.Endpoint{}
		}
		c.StartPoint.Point = start
		c.EndPoint.Point = end
		c.IntermediatePoints = mid
	}, &store.UpdateOptions{SkipHistory: true})
	en.suppress = false
	return true
}

func resolveEndpoint(st store.Store, ep *board.Endpoint) board.Point {
	if ep == nil {
		return board.Point{}
	}
	if ep.ElementID == "" {
		return ep.Point
	}
	target, ok := st.GetElement(ep.ElementID)
	if !ok {
		log.Printf("connector: endpoint element %s missing, keeping last point", ep.ElementID)
		return ep.Point
	}
	return geometry.AnchorPoint(target, st, ep.Anchor)
}
