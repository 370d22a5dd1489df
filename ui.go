package main

import (
	"bytes"
	"image"
	"image/color"

	"github.com/ebitenui/ebitenui"
	euiimage "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mtmitchel/slate/engine"
	"github.com/mtmitchel/slate/overlay"
)

// toolbarTools is the toolbar order. The image tool is armed through file
// import, not a button.
var toolbarTools = []struct {
	Label string
	Tool  engine.Tool
}{
	{"Select", engine.ToolSelect},
	{"Pan", engine.ToolPan},
	{"Rect", engine.ToolRectangle},
	{"Circle", engine.ToolCircle},
	{"Triangle", engine.ToolTriangle},
	{"Star", engine.ToolStar},
	{"Text", engine.ToolText},
	{"Sticky", engine.ToolSticky},
	{"Table", engine.ToolTable},
	{"Connector", engine.ToolConnector},
	{"Section", engine.ToolSection},
	{"Pen", engine.ToolPen},
}

// BoardUI owns the ebitenui tree: the toolbar plus the floating editor
// layer that hosts overlay text inputs. It implements overlay.Host.
type BoardUI struct {
	ui       *ebitenui.UI
	fontFace text.Face
	theme    *widget.Theme

	engine  *engine.Engine
	manager *overlay.Manager

	group       *widget.RadioGroup
	toolButtons map[engine.Tool]*widget.Button
	syncingTool bool

	editorLayer   *widget.Container
	editor        *widget.TextInput
	editorSess    *overlay.Session
	editorFocused bool
}

func solidNineSlice(c color.Color) *euiimage.NineSlice {
	return euiimage.NewNineSliceColor(c)
}

func newBoardTheme(fontFace *text.Face) *widget.Theme {
	return &widget.Theme{
		PanelTheme: &widget.PanelParams{
			BackgroundImage: solidNineSlice(color.RGBA{40, 40, 40, 255}),
		},
		ButtonTheme: &widget.ButtonParams{
			Image: &widget.ButtonImage{
				Idle:    solidNineSlice(color.RGBA{180, 180, 180, 255}),
				Hover:   solidNineSlice(color.RGBA{200, 200, 200, 255}),
				Pressed: solidNineSlice(color.RGBA{160, 160, 160, 255}),
			},
			TextFace: fontFace,
			TextColor: &widget.ButtonTextColor{
				Idle: color.Black,
			},
		},
	}
}

func BuildBoardUI(en *engine.Engine) *BoardUI {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}
	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}

	b := &BoardUI{
		engine:      en,
		fontFace:    fontFace,
		toolButtons: map[engine.Tool]*widget.Button{},
	}
	b.theme = newBoardTheme(&b.fontFace)

	ui := &ebitenui.UI{}
	ui.PrimaryTheme = b.theme

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))

	toolbar := b.buildToolbar()
	toolbar.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionCenter,
		VerticalPosition:   widget.AnchorLayoutPositionStart,
	}
	root.AddChild(toolbar)

	// The editor layer has no layout manager: overlay inputs are placed at
	// explicit screen rectangles that track the camera transform.
	b.editorLayer = widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				StretchHorizontal: true,
				StretchVertical:   true,
			}),
		),
	)
	root.AddChild(b.editorLayer)

	ui.Container = root
	b.ui = ui
	return b
}

func (b *BoardUI) buildToolbar() *widget.Container {
	buttonTextColor := &widget.ButtonTextColor{
		Idle:     color.Black,
		Hover:    color.Black,
		Pressed:  color.RGBA{0, 0, 200, 255},
		Disabled: color.Gray{Y: 128},
	}

	toolbar := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(220, 48),
		),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(8),
			),
		),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(color.RGBA{220, 220, 240, 255})),
	)

	var buttons []*widget.Button
	for _, entry := range toolbarTools {
		btn := widget.NewButton(
			widget.ButtonOpts.Image(b.theme.ButtonTheme.Image),
			widget.ButtonOpts.Text(entry.Label, &b.fontFace, buttonTextColor),
			widget.ButtonOpts.ToggleMode(),
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(48, 40),
			),
		)
		b.toolButtons[entry.Tool] = btn
		buttons = append(buttons, btn)
		toolbar.AddChild(btn)
	}

	elements := make([]widget.RadioGroupElement, 0, len(buttons))
	for _, btn := range buttons {
		elements = append(elements, btn)
	}
	b.group = widget.NewRadioGroup(
		widget.RadioGroupOpts.Elements(elements...),
		widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
			if b.syncingTool {
				return
			}
			for idx, btn := range buttons {
				if args.Active == btn {
					b.engine.SetTool(toolbarTools[idx].Tool)
					return
				}
			}
		}),
	)
	b.group.SetActive(b.toolButtons[engine.ToolSelect])
	return toolbar
}

func (b *BoardUI) SetOverlayManager(m *overlay.Manager) { b.manager = m }

// SetTool reflects an engine-side tool change (one-shot reset, Escape, or
// hotkey) in the toolbar without re-dispatching it.
func (b *BoardUI) SetTool(t engine.Tool) {
	btn, ok := b.toolButtons[t]
	if !ok || b.group == nil {
		return
	}
	b.syncingTool = true
	b.group.SetActive(btn)
	b.syncingTool = false
}

func (b *BoardUI) Update() {
	b.ui.Update()

	// Focus transitions on the open editor drive the overlay's blur
	// protocol: losing focus schedules the grace-delayed commit, getting
	// it back cancels a pending one.
	if b.editor != nil && b.manager != nil {
		focused := b.editor.IsFocused()
		switch {
		case b.editorFocused && !focused:
			b.manager.HandleBlur()
		case !b.editorFocused && focused:
			b.manager.HandleFocusRegained()
		}
		b.editorFocused = focused
	}
}

// InsertNewline splices a line break into the open editor's text. The
// underlying input widget is single-line; committed text keeps the break
// and the board renderer honors it.
func (b *BoardUI) InsertNewline() {
	if b.editor == nil {
		return
	}
	b.editor.SetText(b.editor.GetText() + "\n")
}

func (b *BoardUI) Draw(screen *ebiten.Image) {
	b.ui.Draw(screen)
}

// overlay.Host implementation.

func (b *BoardUI) ShowEditor(sess *overlay.Session, rect overlay.Rect, content string) {
	if b.editor != nil {
		b.editorLayer.RemoveChild(b.editor)
		b.editor = nil
	}

	input := widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(int(rect.W), int(rect.H)),
		),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     solidNineSlice(color.RGBA{255, 255, 255, 235}),
			Disabled: solidNineSlice(color.RGBA{200, 200, 200, 255}),
		}),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:     color.Black,
			Disabled: color.Gray{Y: 120},
			Caret:    color.Black,
		}),
		widget.TextInputOpts.Face(&b.fontFace),
		widget.TextInputOpts.SubmitOnEnter(!sess.Multiline()),
		widget.TextInputOpts.ChangedHandler(func(args *widget.TextInputChangedEventArgs) {
			if b.manager != nil {
				b.manager.LiveUpdate()
			}
		}),
		widget.TextInputOpts.SubmitHandler(func(args *widget.TextInputChangedEventArgs) {
			if b.manager != nil {
				b.manager.Commit()
			}
		}),
	)
	input.SetText(content)

	b.editor = input
	b.editorSess = sess
	b.editorFocused = false
	b.editorLayer.AddChild(input)
	b.placeEditor(rect)
}

func (b *BoardUI) HideEditor(sess *overlay.Session) {
	if b.editor == nil || b.editorSess != sess {
		return
	}
	b.editorLayer.RemoveChild(b.editor)
	b.editor = nil
	b.editorSess = nil
	b.editorFocused = false
}

func (b *BoardUI) FocusEditor(sess *overlay.Session) bool {
	if b.editor == nil || b.editorSess != sess {
		return false
	}
	b.editor.Focus(true)
	return b.editor.IsFocused()
}

func (b *BoardUI) EditorText(sess *overlay.Session) string {
	if b.editor == nil || b.editorSess != sess {
		return ""
	}
	return b.editor.GetText()
}

func (b *BoardUI) Reposition(sess *overlay.Session, rect overlay.Rect) {
	if b.editor == nil || b.editorSess != sess {
		return
	}
	b.placeEditor(rect)
}

func (b *BoardUI) placeEditor(rect overlay.Rect) {
	b.editor.GetWidget().SetLocation(image.Rect(
		int(rect.X), int(rect.Y),
		int(rect.X+rect.W), int(rect.Y+rect.H),
	))
}
