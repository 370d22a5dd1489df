package engine

import (
	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/common"
)

// Camera is the pan/zoom view transform between screen pixels and canvas
// coordinates.
type Camera struct {
	X, Y float64 // canvas coordinate at the screen origin
	Zoom float64

	MinZoom float64
	MaxZoom float64
}

// NewCamera returns a camera at the origin with zoom 1.
func NewCamera() *Camera {
	return &Camera{Zoom: 1, MinZoom: 0.25, MaxZoom: 4}
}

// ScreenToCanvas converts a screen point into canvas coordinates.
func (c *Camera) ScreenToCanvas(sx, sy float64) board.Point {
	return board.Point{X: sx/c.Zoom + c.X, Y: sy/c.Zoom + c.Y}
}

// CanvasToScreen converts a canvas point into screen coordinates.
func (c *Camera) CanvasToScreen(p board.Point) (float64, float64) {
	return (p.X - c.X) * c.Zoom, (p.Y - c.Y) * c.Zoom
}

// Pan shifts the view by a screen-space delta.
func (c *Camera) Pan(dxScreen, dyScreen float64) {
	c.X -= dxScreen / c.Zoom
	c.Y -= dyScreen / c.Zoom
}

// ZoomAt multiplies the zoom by factor, keeping the canvas point under the
// given screen position fixed.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	anchor := c.ScreenToCanvas(sx, sy)
	c.Zoom = common.Clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	// reanchor so the point under the cursor stays put
	c.X = anchor.X - sx/c.Zoom
	c.Y = anchor.Y - sy/c.Zoom
}
