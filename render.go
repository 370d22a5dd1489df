package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/engine"
	"github.com/mtmitchel/slate/geometry"
	"github.com/mtmitchel/slate/store"
)

var (
	canvasBackground = color.RGBA{248, 248, 246, 255}
	sectionFill      = color.RGBA{235, 238, 245, 160}
	sectionBorder    = color.RGBA{160, 170, 190, 255}
	shapeFill        = color.RGBA{255, 255, 255, 255}
	shapeBorder      = color.RGBA{60, 60, 70, 255}
	stickyFill       = color.RGBA{255, 242, 150, 255}
	connectorColor   = color.RGBA{70, 70, 80, 255}
	selectionColor   = color.RGBA{40, 120, 255, 255}
	previewColor     = color.RGBA{40, 120, 255, 140}
)

var boardFace text.Face

func init() {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}
	boardFace = &text.GoTextFace{Source: s, Size: 13}
}

var imageCache = map[string]*ebiten.Image{}

// cacheImageData decodes dropped-file bytes straight into the cache;
// those images have no path on disk to fall back to.
func cacheImageData(key string, data []byte) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("render: decode dropped %s: %v", key, err)
		imageCache[key] = nil
		return
	}
	imageCache[key] = ebiten.NewImageFromImage(decoded)
}

func cachedImage(path string) *ebiten.Image {
	if img, ok := imageCache[path]; ok {
		return img
	}
	f, err := os.Open(path)
	if err != nil {
		imageCache[path] = nil
		return nil
	}
	defer f.Close()
	decoded, _, err := image.Decode(f)
	if err != nil {
		log.Printf("render: decode %s: %v", path, err)
		imageCache[path] = nil
		return nil
	}
	img := ebiten.NewImageFromImage(decoded)
	imageCache[path] = img
	return img
}

func drawBoard(screen *ebiten.Image, st *store.MemoryStore, cam *engine.Camera, en *engine.Engine, debug bool) {
	screen.Fill(canvasBackground)

	zoom := float32(cam.Zoom)
	toScreen := func(p board.Point) (float32, float32) {
		sx, sy := cam.CanvasToScreen(p)
		return float32(sx), float32(sy)
	}

	selection := st.Selection()
	for _, sec := range st.Sections() {
		origin, _ := board.SectionAbsoluteOrigin(st, sec.ID)
		x, y := toScreen(origin)
		w, h := float32(sec.Width)*zoom, float32(sec.Height)*zoom
		vector.FillRect(screen, x, y, w, h, sectionFill, false)
		vector.StrokeRect(screen, x, y, w, h, 1.5, sectionBorder, false)
		drawLabel(screen, sec.Title, x+6, y+4)
		if _, sel := selection[sec.ID]; sel {
			vector.StrokeRect(screen, x-2, y-2, w+4, h+4, 1.5, selectionColor, false)
			// Sections resize from their bottom-right handle only.
			vector.FillRect(screen, x+w-4, y+h-4, 8, 8, selectionColor, false)
		}
	}
	for _, e := range st.Elements() {
		drawElement(screen, st, e, toScreen, zoom)
		if _, sel := selection[e.ID]; sel {
			drawSelection(screen, st, e, toScreen, zoom)
		}
	}

	drawPreview(screen, en, toScreen)

	if debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("tool=%s zoom=%.2f elements=%d", en.Tool(), cam.Zoom, len(st.Elements())))
	}
}

func drawElement(screen *ebiten.Image, st *store.MemoryStore, e *board.Element, toScreen func(board.Point) (float32, float32), zoom float32) {
	abs := board.ToAbsolute(e, st)
	x, y := toScreen(abs)
	w, h := e.Size()
	sw, sh := float32(w)*zoom, float32(h)*zoom

	switch e.Type {
	case board.TypeRectangle:
		vector.FillRect(screen, x, y, sw, sh, shapeFill, false)
		vector.StrokeRect(screen, x, y, sw, sh, 1.5, shapeBorder, false)
		drawLabel(screen, e.Text, x+6, y+6)
	case board.TypeSticky:
		vector.FillRect(screen, x, y, sw, sh, stickyFill, false)
		vector.StrokeRect(screen, x, y, sw, sh, 1, color.RGBA{210, 190, 90, 255}, false)
		drawLabel(screen, e.Text, x+6, y+6)
	case board.TypeText:
		drawLabel(screen, e.Text, x, y)
	case board.TypeCircle:
		r := float32(e.Radius) * zoom
		vector.FillCircle(screen, x+r, y+r, r, shapeFill, true)
		vector.StrokeCircle(screen, x+r, y+r, r, 1.5, shapeBorder, true)
		drawLabel(screen, e.Text, x+r/2, y+r-8)
	case board.TypeTriangle:
		strokePolygon(screen, []board.Point{
			{X: abs.X + w/2, Y: abs.Y},
			{X: abs.X + w, Y: abs.Y + h},
			{X: abs.X, Y: abs.Y + h},
		}, toScreen)
	case board.TypeStar:
		strokePolygon(screen, starPoints(abs, e), toScreen)
	case board.TypeStroke:
		drawPolyline(screen, absolutePoints(abs, e.Points), toScreen, 2, shapeBorder)
	case board.TypeConnector:
		drawConnector(screen, e, toScreen)
	case board.TypeTable:
		drawTable(screen, e, x, y, sw, sh, zoom)
	case board.TypeImage:
		if img := cachedImage(e.ImagePath); img != nil {
			op := &ebiten.DrawImageOptions{}
			bw := img.Bounds().Dx()
			if bw > 0 && e.NaturalWidth > 0 {
				scale := e.Width / e.NaturalWidth * float64(zoom)
				op.GeoM.Scale(scale, scale)
			}
			op.GeoM.Translate(float64(x), float64(y))
			screen.DrawImage(img, op)
		} else {
			vector.StrokeRect(screen, x, y, sw, sh, 1, shapeBorder, false)
		}
	}
}

func drawTable(screen *ebiten.Image, e *board.Element, x, y, sw, sh float32, zoom float32) {
	vector.FillRect(screen, x, y, sw, sh, shapeFill, false)
	vector.StrokeRect(screen, x, y, sw, sh, 1.5, shapeBorder, false)
	if e.Rows == 0 || e.Cols == 0 {
		return
	}
	cw := sw / float32(e.Cols)
	ch := sh / float32(e.Rows)
	for c := 1; c < e.Cols; c++ {
		vector.StrokeLine(screen, x+float32(c)*cw, y, x+float32(c)*cw, y+sh, 1, shapeBorder, false)
	}
	for r := 1; r < e.Rows; r++ {
		vector.StrokeLine(screen, x, y+float32(r)*ch, x+sw, y+float32(r)*ch, 1, shapeBorder, false)
	}
	for r := 0; r < e.Rows; r++ {
		for c := 0; c < e.Cols; c++ {
			if s := e.Cell(r, c); s != "" {
				drawLabel(screen, s, x+float32(c)*cw+4, y+float32(r)*ch+4)
			}
		}
	}
}

func drawConnector(screen *ebiten.Image, e *board.Element, toScreen func(board.Point) (float32, float32)) {
	if e.StartPoint == nil || e.EndPoint == nil {
		return
	}
	var pts []board.Point
	if e.SubType == board.ConnectorCurved && len(e.IntermediatePoints) == 2 {
		pts = flattenCurve(e.StartPoint.Point, e.IntermediatePoints[0], e.IntermediatePoints[1], e.EndPoint.Point)
	} else {
		pts = make([]board.Point, 0, len(e.IntermediatePoints)+2)
		pts = append(pts, e.StartPoint.Point)
		pts = append(pts, e.IntermediatePoints...)
		pts = append(pts, e.EndPoint.Point)
	}
	drawPolyline(screen, pts, toScreen, 2, connectorColor)

	if e.SubType == board.ConnectorArrow || e.SubType == board.ConnectorStraight {
		drawArrowHead(screen, pts[len(pts)-2], pts[len(pts)-1], toScreen)
	}
}

// flattenCurve samples the cubic through the two control points into line
// segments for the polyline renderer.
func flattenCurve(p0, c0, c1, p1 board.Point) []board.Point {
	const steps = 16
	out := make([]board.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		out = append(out, geometry.CubicBezier(p0, c0, c1, p1, float64(i)/steps))
	}
	return out
}

func drawArrowHead(screen *ebiten.Image, from, to board.Point, toScreen func(board.Point) (float32, float32)) {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	const size = 10.0
	left := board.Point{
		X: to.X - size*math.Cos(angle-math.Pi/6),
		Y: to.Y - size*math.Sin(angle-math.Pi/6),
	}
	right := board.Point{
		X: to.X - size*math.Cos(angle+math.Pi/6),
		Y: to.Y - size*math.Sin(angle+math.Pi/6),
	}
	tx, ty := toScreen(to)
	lx, ly := toScreen(left)
	rx, ry := toScreen(right)
	vector.StrokeLine(screen, tx, ty, lx, ly, 2, connectorColor, true)
	vector.StrokeLine(screen, tx, ty, rx, ry, 2, connectorColor, true)
}

func drawSelection(screen *ebiten.Image, st *store.MemoryStore, e *board.Element, toScreen func(board.Point) (float32, float32), zoom float32) {
	abs := board.ToAbsolute(e, st)
	x, y := toScreen(abs)
	w, h := e.Size()
	sw, sh := float32(w)*zoom, float32(h)*zoom
	vector.StrokeRect(screen, x-2, y-2, sw+4, sh+4, 1.5, selectionColor, false)
	for _, hx := range []float32{x - 2, x + sw - 2} {
		for _, hy := range []float32{y - 2, y + sh - 2} {
			vector.FillRect(screen, hx-2, hy-2, 8, 8, selectionColor, false)
		}
	}
}

func drawPreview(screen *ebiten.Image, en *engine.Engine, toScreen func(board.Point) (float32, float32)) {
	p := en.Preview()
	if !p.Active {
		return
	}
	switch p.Tool {
	case engine.ToolPen:
		drawPolyline(screen, p.Points, toScreen, 2, previewColor)
	case engine.ToolConnector:
		sx, sy := toScreen(p.Start)
		cx, cy := toScreen(p.Current)
		vector.StrokeLine(screen, sx, sy, cx, cy, 1.5, previewColor, true)
	default:
		x0, y0 := toScreen(p.Start)
		x1, y1 := toScreen(p.Current)
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1.5, previewColor, false)
	}
}

func drawPolyline(screen *ebiten.Image, pts []board.Point, toScreen func(board.Point) (float32, float32), width float32, c color.Color) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := toScreen(pts[i-1])
		x1, y1 := toScreen(pts[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, width, c, true)
	}
}

func strokePolygon(screen *ebiten.Image, pts []board.Point, toScreen func(board.Point) (float32, float32)) {
	if len(pts) < 2 {
		return
	}
	closed := append(append([]board.Point(nil), pts...), pts[0])
	drawPolyline(screen, closed, toScreen, 1.5, shapeBorder)
}

func starPoints(abs board.Point, e *board.Element) []board.Point {
	cx := abs.X + e.OuterRadius
	cy := abs.Y + e.OuterRadius
	pts := make([]board.Point, 0, 10)
	for i := 0; i < 10; i++ {
		r := e.OuterRadius
		if i%2 == 1 {
			r = e.InnerRadius
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		pts = append(pts, board.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}

func absolutePoints(abs board.Point, local []board.Point) []board.Point {
	out := make([]board.Point, len(local))
	for i, p := range local {
		out[i] = board.Point{X: abs.X + p.X, Y: abs.Y + p.Y}
	}
	return out
}

func drawLabel(screen *ebiten.Image, s string, x, y float32) {
	if s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(color.Black)
	op.LineSpacing = 16
	text.Draw(screen, s, boardFace, op)
}
