// Package engine is the canvas interaction core: it owns the tool state,
// routes raw pointer/keyboard events through a (tool, event kind) handler
// table, and turns completed gestures into store mutations. One Engine is
// attached to the drawing surface for the lifetime of the application;
// handlers resolve the active tool from engine state at dispatch time, so
// a tool change mid-gesture can never route to a stale handler.
package engine

// EventKind identifies a raw event from the drawing surface.
type EventKind string

const (
	EvPointerDown EventKind = "pointerdown"
	EvPointerMove EventKind = "pointermove"
	EvPointerUp   EventKind = "pointerup"
	EvClick       EventKind = "click"
	EvWheel       EventKind = "wheel"
	EvDragEnd     EventKind = "dragend"
	EvKeyDown     EventKind = "keydown"
)

// Key names the keyboard keys the core reacts to.
type Key string

const (
	KeyDelete    Key = "delete"
	KeyBackspace Key = "backspace"
	KeyEscape    Key = "escape"
)

// Event is one raw input event in screen coordinates, plus modifier flags.
type Event struct {
	Kind   EventKind
	X, Y   float64
	WheelY float64
	Key    Key
	Shift  bool
	Ctrl   bool
	Meta   bool
}

// Tool identifies the active tool. Pan and select are sticky; every other
// tool is one-shot and resets to select after a successful creation.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolPan       Tool = "pan"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolTriangle  Tool = "triangle"
	ToolStar      Tool = "star"
	ToolText      Tool = "text"
	ToolSticky    Tool = "sticky-note"
	ToolImage     Tool = "image"
	ToolTable     Tool = "table"
	ToolConnector Tool = "connector"
	ToolSection   Tool = "section"
	ToolPen       Tool = "pen"
)

// Sticky reports whether the tool stays active after use.
func (t Tool) Sticky() bool {
	return t == ToolSelect || t == ToolPan
}
