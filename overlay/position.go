package overlay

import (
	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/geometry"
)

// contentPadding insets the editable surface from the element border.
const contentPadding = 8.0

// Rect is an overlay placement in host screen pixels.
type Rect struct {
	X, Y, W, H float64
}

// sessionRect computes the screen rectangle for a session from the
// element's absolute canvas position, the camera transform, and the
// drawing surface's offset inside the host window.
func (m *Manager) sessionRect(sess *Session) (Rect, bool) {
	e, ok := m.store.GetElement(sess.ElementID)
	if !ok {
		return Rect{}, false
	}
	abs := board.ToAbsolute(e, m.store)

	var cx, cy, cw, ch float64
	switch {
	case sess.Kind == KindCell:
		rx, ry, rw, rh := e.CellRect(sess.Row, sess.Col)
		cx, cy = abs.X+rx, abs.Y+ry
		cw, ch = rw, rh
	case e.Type == board.TypeCircle:
		// Center the editor in the square inscribed in the circle so
		// text never spills past the rim.
		side, _ := geometry.InscribedTextBox(e.Radius, contentPadding)
		cx = abs.X + e.Radius - side/2
		cy = abs.Y + e.Radius - side/2
		cw, ch = side, side
	default:
		cx = abs.X + contentPadding
		cy = abs.Y + contentPadding
		cw = e.Width - 2*contentPadding
		ch = e.Height - 2*contentPadding
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	sx, sy := m.camera.CanvasToScreen(board.Point{X: cx, Y: cy})
	zoom := m.camera.Zoom
	return Rect{
		X: sx + m.ContainerOffsetX,
		Y: sy + m.ContainerOffsetY,
		W: cw * zoom,
		H: ch * zoom,
	}, true
}
