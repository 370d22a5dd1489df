package engine

import "github.com/mtmitchel/slate/board"

// gesturePhase is the drag-tool state machine:
// Idle → Armed (pointerdown on empty canvas) → Active (pointermove) →
// committed on pointerup when above the minimum size, back to Idle.
// A pointerup with no prior Armed/Active state is a no-op.
type gesturePhase int

const (
	phaseIdle gesturePhase = iota
	phaseArmed
	phaseActive
)

type gesture struct {
	phase   gesturePhase
	start   board.Point
	current board.Point

	// pen accumulates the freehand path
	points []board.Point

	// connector start attachment
	startElementID string
	startAnchor    string
}

// dragState tracks a select-tool drag: either moving the current
// selection or sweeping a marquee over empty canvas.
type dragState struct {
	active bool
	moved  bool

	// screen coords of the last applied move, so each frame applies only
	// the incremental delta
	lastX, lastY float64

	// ids being moved and their positions at drag start (for the final
	// containment pass and for the single history entry)
	ids      []string
	sections []string

	// non-nil while a selection handle is being dragged
	transform *transformDrag

	marquee      bool
	marqueeStart board.Point
	marqueeEnd   board.Point
}

// GesturePreview exposes the in-progress gesture to the renderer: the
// drag rectangle for shape/section tools, the accumulated pen path, or
// the connector rubber band.
type GesturePreview struct {
	Active  bool
	Tool    Tool
	Start   board.Point
	Current board.Point
	Points  []board.Point
}

// Preview returns the current gesture for preview rendering.
func (en *Engine) Preview() GesturePreview {
	if en.gesture.phase != phaseActive {
		if en.drag.marquee && en.drag.active {
			return GesturePreview{Active: true, Tool: ToolSelect, Start: en.drag.marqueeStart, Current: en.drag.marqueeEnd}
		}
		if td := en.drag.transform; td != nil && en.drag.active && en.drag.moved {
			return GesturePreview{Active: true, Tool: ToolSelect, Start: td.anchor, Current: td.current}
		}
		return GesturePreview{}
	}
	return GesturePreview{
		Active:  true,
		Tool:    en.tool,
		Start:   en.gesture.start,
		Current: en.gesture.current,
		Points:  en.gesture.points,
	}
}
