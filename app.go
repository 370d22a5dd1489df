package main

import (
	"io/fs"
	"log"
	"path/filepath"
	"time"

	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/config"
	"github.com/mtmitchel/slate/connector"
	"github.com/mtmitchel/slate/engine"
	"github.com/mtmitchel/slate/overlay"
	"github.com/mtmitchel/slate/script"
	"github.com/mtmitchel/slate/store"
)

// doubleClickWindow is the max gap between two clicks that open an editor.
const doubleClickWindow = 300 * time.Millisecond

// clickSlop is the max pointer travel for a press to still count as a click.
const clickSlop = 4.0

// App is the Ebiten shell around the interaction core: it synthesizes
// engine events from raw input, hosts the toolbar and editing overlays,
// and runs the per-frame flush pipeline.
type App struct {
	store   *store.MemoryStore
	camera  *engine.Camera
	engine  *engine.Engine
	conn    *connector.Engine
	overlay *overlay.Manager
	ui      *BoardUI

	configPath string
	watcher    *config.Watcher

	debug        bool
	clipboardOK  bool
	screenW      int
	screenH      int
	pointerDown  bool
	downX, downY float64
	lastClick    time.Time
	lastClickID  string
}

func NewApp(configPath, scriptPath string, debug bool) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st := store.NewMemoryStore()
	cam := engine.NewCamera()
	cfg.ApplyCamera(cam)

	opts := cfg.Options()
	opts.Debug = opts.Debug || debug
	en := engine.New(st, cam, opts)

	a := &App{
		store:      st,
		camera:     cam,
		engine:     en,
		conn:       connector.NewEngine(st),
		configPath: configPath,
		debug:      opts.Debug,
		screenW:    1280,
		screenH:    800,
	}

	a.ui = BuildBoardUI(en)
	a.overlay = overlay.NewManager(st, cam, a.ui)
	a.ui.SetOverlayManager(a.overlay)
	en.SetOverlayHooks(a.overlay.Active, a.overlay.Cancel)
	en.SetToolChangeListener(a.ui.SetTool)

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
	} else {
		a.clipboardOK = true
	}

	if w, err := config.NewWatcher(filepath.Dir(configPath)); err != nil {
		log.Printf("config watch disabled: %v", err)
	} else {
		a.watcher = w
	}

	if scriptPath != "" {
		rt, err := script.NewRuntime(st, scriptPath)
		if err != nil {
			return nil, err
		}
		if err := rt.Run(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	a.conn.Close()
}

func (a *App) Update() error {
	a.pollWatcher()
	if files := ebiten.DroppedFiles(); files != nil {
		a.importDropped(files)
	}

	editing := a.overlay.Active()
	if !editing {
		a.handleHotkeys()
	} else {
		a.handleEditingKeys()
	}

	a.ui.Update()
	a.handlePointer()

	// Per-frame pipeline: coalesced moves first, then connector repair,
	// then overlay timers and position sync.
	a.engine.Flush()
	a.conn.Flush()
	a.overlay.Tick(time.Now())
	return nil
}

func (a *App) pollWatcher() {
	if a.watcher == nil {
		return
	}
	cfg, done := a.watcher.Poll(a.configPath)
	if cfg != nil {
		opts := cfg.Options()
		opts.Debug = opts.Debug || a.debug
		a.engine.SetOptions(opts)
		cfg.ApplyCamera(a.camera)
		log.Printf("config reloaded from %s", a.configPath)
	}
	if done {
		a.watcher = nil
	}
}

func (a *App) handleHotkeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	if ctrl {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyZ) && shift:
			a.store.Redo()
		case inpututil.IsKeyJustPressed(ebiten.KeyZ):
			a.store.Undo()
		case inpututil.IsKeyJustPressed(ebiten.KeyY):
			a.store.Redo()
		case inpututil.IsKeyJustPressed(ebiten.KeyC):
			a.copySelection()
		case inpututil.IsKeyJustPressed(ebiten.KeyV):
			a.pasteClipboard()
		}
		return
	}

	// Single-key tool switching, same keys as the toolbar tooltips.
	toolKeys := map[ebiten.Key]engine.Tool{
		ebiten.KeyV: engine.ToolSelect,
		ebiten.KeyH: engine.ToolPan,
		ebiten.KeyR: engine.ToolRectangle,
		ebiten.KeyO: engine.ToolCircle,
		ebiten.KeyT: engine.ToolText,
		ebiten.KeyN: engine.ToolSticky,
		ebiten.KeyL: engine.ToolConnector,
		ebiten.KeyP: engine.ToolPen,
		ebiten.KeyS: engine.ToolSection,
	}
	for key, tool := range toolKeys {
		if inpututil.IsKeyJustPressed(key) {
			a.engine.SetTool(tool)
			a.ui.SetTool(tool)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) {
		a.engine.Dispatch(engine.Event{Kind: engine.EvKeyDown, Key: engine.KeyDelete})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.engine.Dispatch(engine.Event{Kind: engine.EvKeyDown, Key: engine.KeyBackspace})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.engine.Dispatch(engine.Event{Kind: engine.EvKeyDown, Key: engine.KeyEscape})
	}
}

// handleEditingKeys runs while an overlay session is open: the text widget
// consumes regular typing, the shell only watches for session control keys
// and, for cell sessions, the table structure shortcuts.
func (a *App) handleEditingKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.overlay.Cancel()
		return
	}
	sess := a.overlay.Session()
	if sess == nil {
		return
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)

	// Ctrl+I/D edit the table structure around the edited cell: insert
	// row below / delete row, with Shift for the column versions.
	if sess.Kind == overlay.KindCell && ctrl {
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyI) && shift:
			a.overlay.InsertCol(sess.ElementID, sess.Col+1)
		case inpututil.IsKeyJustPressed(ebiten.KeyI):
			a.overlay.InsertRow(sess.ElementID, sess.Row+1)
		case inpututil.IsKeyJustPressed(ebiten.KeyD) && shift:
			a.overlay.DeleteCol(sess.ElementID, sess.Col)
		case inpututil.IsKeyJustPressed(ebiten.KeyD):
			a.overlay.DeleteRow(sess.ElementID, sess.Row)
		}
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && sess.Kind == overlay.KindCell {
		dCol := 1
		if shift {
			dCol = -1
		}
		if err := a.overlay.CommitAndMove(0, dCol); err != nil {
			log.Printf("cell navigation: %v", err)
		}
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if sess.Multiline() {
			// The input widget is single-line, so the line break is
			// spliced into the session text here.
			a.ui.InsertNewline()
			a.overlay.LiveUpdate()
			return
		}
		if sess.Kind == overlay.KindCell && shift {
			if err := a.overlay.CommitAndMove(1, 0); err != nil {
				log.Printf("cell navigation: %v", err)
			}
			return
		}
		a.overlay.Commit()
	}
}

func (a *App) handlePointer() {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)

	if _, wy := ebiten.Wheel(); wy != 0 && !ebuiinput.UIHovered {
		a.engine.Dispatch(engine.Event{Kind: engine.EvWheel, X: x, Y: y, WheelY: wy})
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && !ebuiinput.UIHovered {
		// A press on the canvas while an editor is open is an explicit
		// outside-click: the session commits before the press does
		// anything else.
		if a.overlay.Active() {
			a.overlay.Commit()
		}
		a.pointerDown = true
		a.downX, a.downY = x, y
		a.engine.Dispatch(engine.Event{Kind: engine.EvPointerDown, X: x, Y: y, Shift: shift})
	}
	if a.pointerDown && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		a.engine.Dispatch(engine.Event{Kind: engine.EvPointerMove, X: x, Y: y, Shift: shift})
	}
	if a.pointerDown && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		a.pointerDown = false
		a.engine.Dispatch(engine.Event{Kind: engine.EvPointerUp, X: x, Y: y, Shift: shift})
		a.handleClick(x, y, shift)
	}

	// Middle-drag pans regardless of the active tool.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		a.downX, a.downY = x, y
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		a.camera.Pan(x-a.downX, y-a.downY)
		a.downX, a.downY = x, y
	}
}

// handleClick synthesizes click and double-click semantics from the raw
// press/release pair: a short press is a click, and two quick clicks on
// the same element open its editor.
func (a *App) handleClick(x, y float64, shift bool) {
	dx, dy := x-a.downX, y-a.downY
	if dx < -clickSlop || dx > clickSlop || dy < -clickSlop || dy > clickSlop {
		a.lastClickID = ""
		return
	}

	canvas := a.camera.ScreenToCanvas(x, y)
	target := a.engine.HitTest(canvas)

	now := time.Now()
	if target != nil && target.ID == a.lastClickID && now.Sub(a.lastClick) < doubleClickWindow {
		a.lastClickID = ""
		a.openEditorFor(target, canvas)
		return
	}
	a.lastClick = now
	if target != nil {
		a.lastClickID = target.ID
	} else {
		a.lastClickID = ""
	}

	a.engine.Dispatch(engine.Event{Kind: engine.EvClick, X: x, Y: y, Shift: shift})
}

func (a *App) openEditorFor(target *board.Element, canvas board.Point) {
	var err error
	switch target.Type {
	case board.TypeTable:
		abs := board.ToAbsolute(target, a.store)
		row, col := cellAt(target, canvas.X-abs.X, canvas.Y-abs.Y)
		err = a.overlay.OpenCell(target.ID, row, col)
	case board.TypeConnector, board.TypeImage, board.TypeStroke:
		return
	default:
		err = a.overlay.OpenText(target.ID)
	}
	if err != nil {
		log.Printf("open editor: %v", err)
	}
}

// cellAt maps a table-local point to a cell coordinate.
func cellAt(table *board.Element, lx, ly float64) (int, int) {
	if table.Rows == 0 || table.Cols == 0 || table.Width <= 0 || table.Height <= 0 {
		return 0, 0
	}
	col := int(lx / (table.Width / float64(table.Cols)))
	row := int(ly / (table.Height / float64(table.Rows)))
	return table.ClampCell(row, col)
}

// importDropped stages the first image among files dropped onto the
// window: the decoded pixels go straight into the render cache and the
// image tool is armed, so the next click places the element.
func (a *App) importDropped(files fs.FS) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		log.Printf("dropped files: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(files, entry.Name())
		if err != nil {
			log.Printf("dropped file %s: %v", entry.Name(), err)
			continue
		}
		e, err := overlay.ImportImageData(entry.Name(), data)
		if err != nil {
			log.Printf("image import: %v", err)
			continue
		}
		cacheImageData(e.ImagePath, data)
		a.engine.SetPendingImage(e)
		a.engine.SetTool(engine.ToolImage)
		a.ui.SetTool(engine.ToolImage)
		return
	}
}

func (a *App) Draw(screen *ebiten.Image) {
	drawBoard(screen, a.store, a.camera, a.engine, a.debug)
	a.ui.Draw(screen)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.screenW, a.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
