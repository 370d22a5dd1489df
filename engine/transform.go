package engine

import (
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
	"github.com/mtmitchel/slate/store"
)

// TransformUpdate is one element's share of a completed resize/rotate
// gesture: the accumulated scale factors plus the final position and
// rotation from the transform handles.
type TransformUpdate struct {
	ID       string
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	X, Y     float64
}

// CommitTransform converts the gesture's scale factors into permanent
// element-type-specific dimension updates, clamped to per-type minimums,
// and applies them as one batched store update with one history entry.
// After the commit the visual scale is back at 1 by construction: the new
// dimensions absorb it.
func (en *Engine) CommitTransform(updates []TransformUpdate) {
	if len(updates) == 0 {
		return
	}

	valid := make(map[string]TransformUpdate, len(updates))
	ids := make([]string, 0, len(updates))
	for _, u := range updates {
		if !board.ValidPosition(u.ScaleX, u.ScaleY, u.Rotation, u.X, u.Y) {
			log.Printf("engine: dropping invalid transform for %s", u.ID)
			continue
		}
		if _, ok := en.store.GetElement(u.ID); !ok {
			log.Printf("engine: transform of missing element %s ignored", u.ID)
			continue
		}
		valid[u.ID] = u
		ids = append(ids, u.ID)
	}
	if len(ids) == 0 {
		return
	}

	opts := en.opts
	// The default options snapshot the pre-transform board, making the
	// whole gesture one undo step.
	en.store.BatchUpdate("transform", ids, func(e *board.Element) {
		u := valid[e.ID]
		e.X, e.Y = u.X, u.Y
		e.Rotation = u.Rotation
		switch e.Type {
		case board.TypeCircle:
			// Uniform scaling only: anisotropic gestures average out
			// rather than producing an ellipse.
			f := (u.ScaleX + u.ScaleY) / 2
			e.Radius = math.Max(e.Radius*f, opts.MinCircleRadius)
		case board.TypeStar:
			f := (u.ScaleX + u.ScaleY) / 2
			e.OuterRadius = math.Max(e.OuterRadius*f, opts.MinStarOuter)
			e.InnerRadius = math.Max(e.InnerRadius*f, opts.MinStarInner)
		default:
			e.Width = math.Max(e.Width*u.ScaleX, opts.MinBoxDim)
			e.Height = math.Max(e.Height*u.ScaleY, opts.MinBoxDim)
		}
	}, nil)

	en.store.AddHistoryEntry(
		fmt.Sprintf("transform %d element(s)", len(ids)),
		nil, nil,
		store.HistoryMeta{ElementIDs: ids, OperationType: "transform", AffectedCount: len(ids)},
	)
}

// CommitSectionResize applies a section resize and rescales its contents
// proportionally as one operation.
func (en *Engine) CommitSectionResize(id string, newW, newH float64) {
	sec, ok := en.store.GetSection(id)
	if !ok {
		log.Printf("engine: resize of missing section %s ignored", id)
		return
	}
	if !board.ValidPosition(newW, newH) || newW < en.opts.MinSectionSize || newH < en.opts.MinSectionSize {
		log.Printf("engine: invalid section resize %s to %vx%v", id, newW, newH)
		return
	}
	oldW, oldH := sec.Width, sec.Height
	// One snapshot covers the section and its rescaled contents: the
	// section write takes it, the child rescale stays snapshot-free.
	en.store.UpdateSection(id, func(s *board.Section) {
		s.Width = newW
		s.Height = newH
	}, nil)
	RescaleChildren(en.store, id, oldW, oldH, newW, newH)
	en.store.AddHistoryEntry(
		"resize section",
		nil, nil,
		store.HistoryMeta{ElementIDs: []string{id}, OperationType: "resize", AffectedCount: 1},
	)
}

// handleTolerance is the pick radius around a selection handle, in screen
// pixels.
const handleTolerance = 6.0

// transformDrag is an in-progress handle resize: the grabbed corner
// follows the pointer while the opposite corner stays fixed.
type transformDrag struct {
	id      string
	section bool
	anchor  board.Point // fixed opposite corner, absolute
	grip    board.Point // grabbed corner at drag start, absolute
	current board.Point
}

// handleAt reports the selection handle under the canvas point, or nil.
// Elements expose all four corners; sections only their bottom-right one,
// so a section resize keeps its origin and children's relative frames.
func (en *Engine) handleAt(p board.Point) *transformDrag {
	tol := handleTolerance / en.camera.Zoom
	for id := range en.store.Selection() {
		if e, ok := en.store.GetElement(id); ok {
			if e.Type == board.TypeConnector || e.Type == board.TypeStroke {
				continue
			}
			if td := cornerGrab(id, geometry.ElementBB(e, en.store), p, tol); td != nil {
				return td
			}
		} else if sec, ok := en.store.GetSection(id); ok {
			bb := geometry.SectionBB(sec, en.store)
			grip := board.Point{X: bb.R, Y: bb.T}
			if math.Hypot(p.X-grip.X, p.Y-grip.Y) <= tol {
				return &transformDrag{
					id:      id,
					section: true,
					anchor:  board.Point{X: bb.L, Y: bb.B},
					grip:    grip,
					current: grip,
				}
			}
		}
	}
	return nil
}

func cornerGrab(id string, bb cp.BB, p board.Point, tol float64) *transformDrag {
	corners := [4]board.Point{
		{X: bb.L, Y: bb.B}, {X: bb.R, Y: bb.B},
		{X: bb.L, Y: bb.T}, {X: bb.R, Y: bb.T},
	}
	for _, c := range corners {
		if math.Hypot(p.X-c.X, p.Y-c.Y) <= tol {
			anchor := board.Point{X: bb.L + bb.R - c.X, Y: bb.B + bb.T - c.Y}
			return &transformDrag{id: id, anchor: anchor, grip: c, current: c}
		}
	}
	return nil
}

// finishHandleDrag converts a completed handle drag into a transform
// commit. Drags that collapse or flip across the anchor are dropped.
func (en *Engine) finishHandleDrag(td *transformDrag) {
	dx := td.grip.X - td.anchor.X
	dy := td.grip.Y - td.anchor.Y
	if dx == 0 || dy == 0 {
		return
	}
	sx := (td.current.X - td.anchor.X) / dx
	sy := (td.current.Y - td.anchor.Y) / dy
	if !board.ValidPosition(sx, sy) || sx <= 0 || sy <= 0 {
		log.Printf("engine: degenerate handle drag on %s dropped", td.id)
		return
	}

	if td.section {
		if sec, ok := en.store.GetSection(td.id); ok {
			en.CommitSectionResize(td.id, sec.Width*sx, sec.Height*sy)
		}
		return
	}

	e, ok := en.store.GetElement(td.id)
	if !ok {
		return
	}
	// The new absolute top-left once the grabbed corner lands at the
	// pointer, mapped back into the element's owning frame.
	topLeft := board.Point{
		X: math.Min(td.anchor.X, td.current.X),
		Y: math.Min(td.anchor.Y, td.current.Y),
	}
	local := board.ToRelative(topLeft, e.SectionID, en.store)
	en.CommitTransform([]TransformUpdate{{
		ID:       td.id,
		ScaleX:   sx,
		ScaleY:   sy,
		Rotation: e.Rotation,
		X:        local.X,
		Y:        local.Y,
	}})
}
