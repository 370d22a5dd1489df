package engine

import (
	"log"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/store"
)

// Options carries the tunable thresholds and clamps of the interaction
// core. Config files map onto it; DefaultOptions matches the shipped
// defaults.
type Options struct {
	MinShapeSize       float64 // minimum drag bounding box for shape creation
	MinSectionSize     float64 // minimum section dimension
	MinConnectorLength float64 // minimum connector length
	MinPenPoints       int

	MinBoxDim       float64 // transform clamp for box-like elements
	MinCircleRadius float64
	MinStarOuter    float64
	MinStarInner    float64

	DefaultStickyWidth  float64
	DefaultStickyHeight float64
	DefaultTextWidth    float64
	DefaultTextHeight   float64
	DefaultTableRows    int
	DefaultTableCols    int

	Debug bool
}

// DefaultOptions returns the shipped thresholds.
func DefaultOptions() Options {
	return Options{
		MinShapeSize:        5,
		MinSectionSize:      10,
		MinConnectorLength:  10,
		MinPenPoints:        2,
		MinBoxDim:           20,
		MinCircleRadius:     10,
		MinStarOuter:        10,
		MinStarInner:        5,
		DefaultStickyWidth:  160,
		DefaultStickyHeight: 120,
		DefaultTextWidth:    200,
		DefaultTextHeight:   40,
		DefaultTableRows:    3,
		DefaultTableCols:    3,
	}
}

// Context is the per-event dispatch context: the tool and pointer target
// resolved once at dispatch time and passed explicitly to the handler, so
// no handler ever closes over stale tool state.
type Context struct {
	Tool   Tool
	Event  Event
	Canvas board.Point    // event position in canvas coordinates
	Target *board.Element // element under the pointer, nil for empty canvas
}

type handlerFunc func(*Engine, *Context) error

// Engine routes raw events to per-tool handlers and owns all transient
// gesture state. It is single-threaded: Dispatch and Flush are only called
// from the host's update loop.
type Engine struct {
	store  store.Store
	camera *Camera
	opts   Options

	tool         Tool
	connectorSub board.ConnectorSubType

	handlers map[Tool]map[EventKind]handlerFunc

	gesture gesture
	drag    dragState

	// pendingMove coalesces pointermove events: at most one is dispatched
	// per frame and a newer one replaces an undispatched older one.
	pendingMove *Event

	pendingImage *board.Element

	// Overlay subsystem hooks, wired by the shell. editingActive gates
	// keyboard deletion; cancelEditing is part of the Escape cleanup.
	editingActive func() bool
	cancelEditing func()
	onToolChange  func(Tool)
}

// New creates an engine over the given store and camera.
func New(st store.Store, cam *Camera, opts Options) *Engine {
	en := &Engine{
		store:        st,
		camera:       cam,
		opts:         opts,
		tool:         ToolSelect,
		connectorSub: board.ConnectorArrow,
	}
	en.handlers = buildHandlerTable()
	return en
}

// Store exposes the engine's store to collaborators wired by the shell.
func (en *Engine) Store() store.Store { return en.store }

// Camera returns the view transform.
func (en *Engine) Camera() *Camera { return en.camera }

// Options returns the active thresholds.
func (en *Engine) Options() Options { return en.opts }

// SetOptions swaps the thresholds, used by config live reload. In-progress
// gestures keep running; new thresholds apply from the next commit.
func (en *Engine) SetOptions(opts Options) { en.opts = opts }

// Tool returns the currently active tool.
func (en *Engine) Tool() Tool { return en.tool }

// SetTool switches the active tool, cancelling any in-progress gesture.
func (en *Engine) SetTool(t Tool) {
	if t == en.tool {
		return
	}
	en.resetTransient()
	en.tool = t
	if en.onToolChange != nil {
		en.onToolChange(t)
	}
}

// SetConnectorSubType selects the path style for new connectors.
func (en *Engine) SetConnectorSubType(sub board.ConnectorSubType) {
	en.connectorSub = sub
}

// SetOverlayHooks wires the overlay editing subsystem into keyboard
// handling and Escape cleanup.
func (en *Engine) SetOverlayHooks(active func() bool, cancel func()) {
	en.editingActive = active
	en.cancelEditing = cancel
}

// SetToolChangeListener notifies the shell (toolbar) about tool resets.
func (en *Engine) SetToolChangeListener(fn func(Tool)) {
	en.onToolChange = fn
}

// Dispatch feeds one raw event into the engine. Pointer moves are
// coalesced and only delivered on the next Flush; everything else is
// handled immediately.
func (en *Engine) Dispatch(ev Event) {
	if ev.Kind == EvPointerMove {
		en.pendingMove = &ev
		return
	}
	// A pending move older than a down/up would reorder the gesture; run
	// it first.
	en.flushPendingMove()
	en.dispatchNow(ev)
}

// Flush delivers the coalesced pointermove, at most once per frame.
func (en *Engine) Flush() {
	en.flushPendingMove()
}

func (en *Engine) flushPendingMove() {
	if en.pendingMove == nil {
		return
	}
	ev := *en.pendingMove
	en.pendingMove = nil
	en.dispatchNow(ev)
}

func (en *Engine) dispatchNow(ev Event) {
	// The active tool is read here, at dispatch time, never from closure.
	tool := en.tool
	ctx := &Context{Tool: tool, Event: ev}
	if ev.Kind != EvKeyDown {
		ctx.Canvas = en.camera.ScreenToCanvas(ev.X, ev.Y)
		ctx.Target = en.HitTest(ctx.Canvas)
	}

	switch ev.Kind {
	case EvKeyDown:
		en.handleKey(ctx)
		return
	case EvWheel:
		// Zoom is tool-independent.
		en.handleWheel(ctx)
		return
	}

	row := en.handlers[tool]
	h := row[ev.Kind]
	if h == nil {
		if en.opts.Debug {
			log.Printf("engine: no %s handler for tool %s", ev.Kind, tool)
		}
		return
	}
	_ = h(en, ctx)
}

func (en *Engine) handleWheel(ctx *Context) {
	if ctx.Event.WheelY == 0 {
		return
	}
	factor := 1.1
	if ctx.Event.WheelY < 0 {
		factor = 1 / 1.1
	}
	en.camera.ZoomAt(ctx.Event.X, ctx.Event.Y, factor)
}

// resetTransient clears every in-progress gesture flag: pointer-down
// state, previews, marquee. The store is not touched.
func (en *Engine) resetTransient() {
	en.gesture = gesture{}
	en.drag = dragState{}
	en.pendingMove = nil
}

// recoverFromFailure is the dispatch-boundary cleanup: transient state is
// cleared and the tool forced back to select so one bad interaction can
// never leave the canvas stuck mid-gesture.
func (en *Engine) recoverFromFailure() {
	en.resetTransient()
	if en.tool != ToolSelect {
		en.tool = ToolSelect
		if en.onToolChange != nil {
			en.onToolChange(ToolSelect)
		}
	}
}

// finishCreation runs the one-shot tool policy: after a successful
// creation the active tool snaps back to select.
func (en *Engine) finishCreation() {
	en.gesture = gesture{}
	if !en.tool.Sticky() {
		en.tool = ToolSelect
		if en.onToolChange != nil {
			en.onToolChange(ToolSelect)
		}
	}
}

// wrap builds the uniform safe handler stored in the dispatch table: the
// validator gates execution, panics are caught at this boundary, and any
// failure funnels into the fallback plus the universal cleanup-and-reset.
func wrap(name string, primary handlerFunc, fallback handlerFunc, validator func(*Engine, *Context) bool) handlerFunc {
	return func(en *Engine, ctx *Context) error {
		if validator != nil && !validator(en, ctx) {
			if en.opts.Debug {
				log.Printf("engine: validator rejected %s for tool %s", name, ctx.Tool)
			}
			if fallback != nil {
				return fallback(en, ctx)
			}
			return nil
		}
		defer func() {
			if r := recover(); r != nil {
				log.Printf("engine: handler %s panicked: %v", name, r)
				if fallback != nil {
					func() {
						defer func() { _ = recover() }()
						_ = fallback(en, ctx)
					}()
				}
				en.recoverFromFailure()
			}
		}()
		if err := primary(en, ctx); err != nil {
			log.Printf("engine: handler %s failed: %v", name, err)
			en.recoverFromFailure()
		}
		return nil
	}
}

// resetGesture is the shared fallback: it clears transient gesture state
// without touching the store.
func resetGesture(en *Engine, _ *Context) error {
	en.resetTransient()
	return nil
}

func toolValidator(t Tool) func(*Engine, *Context) bool {
	return func(en *Engine, ctx *Context) bool {
		// ctx.Tool was resolved at dispatch time; both must agree before
		// a handler registered for t may run.
		return ctx.Tool == t && en.tool == t
	}
}

func register(table map[Tool]map[EventKind]handlerFunc, t Tool, kind EventKind, name string, fn handlerFunc) {
	row := table[t]
	if row == nil {
		row = map[EventKind]handlerFunc{}
		table[t] = row
	}
	row[kind] = wrap(name, fn, resetGesture, toolValidator(t))
}

func buildHandlerTable() map[Tool]map[EventKind]handlerFunc {
	table := map[Tool]map[EventKind]handlerFunc{}

	register(table, ToolSelect, EvPointerDown, "select.down", selectPointerDown)
	register(table, ToolSelect, EvPointerMove, "select.move", selectPointerMove)
	register(table, ToolSelect, EvPointerUp, "select.up", selectPointerUp)
	register(table, ToolSelect, EvDragEnd, "select.dragend", selectPointerUp)
	register(table, ToolSelect, EvClick, "select.click", selectClick)

	register(table, ToolPan, EvPointerDown, "pan.down", panPointerDown)
	register(table, ToolPan, EvPointerMove, "pan.move", panPointerMove)
	register(table, ToolPan, EvPointerUp, "pan.up", panPointerUp)

	for _, t := range []Tool{ToolRectangle, ToolCircle, ToolTriangle, ToolStar} {
		register(table, t, EvPointerDown, string(t)+".down", shapePointerDown)
		register(table, t, EvPointerMove, string(t)+".move", shapePointerMove)
		register(table, t, EvPointerUp, string(t)+".up", shapePointerUp)
	}

	for _, t := range []Tool{ToolText, ToolSticky, ToolTable, ToolImage} {
		register(table, t, EvPointerUp, string(t)+".place", placePointerUp)
	}

	register(table, ToolPen, EvPointerDown, "pen.down", penPointerDown)
	register(table, ToolPen, EvPointerMove, "pen.move", penPointerMove)
	register(table, ToolPen, EvPointerUp, "pen.up", penPointerUp)

	register(table, ToolConnector, EvPointerDown, "connector.down", connectorPointerDown)
	register(table, ToolConnector, EvPointerMove, "connector.move", connectorPointerMove)
	register(table, ToolConnector, EvPointerUp, "connector.up", connectorPointerUp)

	register(table, ToolSection, EvPointerDown, "section.down", sectionPointerDown)
	register(table, ToolSection, EvPointerMove, "section.move", sectionPointerMove)
	register(table, ToolSection, EvPointerUp, "section.up", sectionPointerUp)

	return table
}
