// Package geometry holds the pure spatial math of the board: anchor ports,
// connector path computation, and bounding-box helpers. It has no store or
// engine dependencies.
package geometry

import (
	"math"

	"github.com/mtmitchel/slate/board"
)

// PortKind names one of the nine anchor points of an element.
type PortKind string

const (
	PortN      PortKind = "n"
	PortS      PortKind = "s"
	PortE      PortKind = "e"
	PortW      PortKind = "w"
	PortNE     PortKind = "ne"
	PortNW     PortKind = "nw"
	PortSE     PortKind = "se"
	PortSW     PortKind = "sw"
	PortCenter PortKind = "center"
)

// Port is a normalized anchor offset from the element center.
// NX and NY are always in [-0.5, 0.5].
type Port struct {
	Kind PortKind
	NX   float64
	NY   float64
}

var ports = []Port{
	{PortN, 0, -0.5},
	{PortS, 0, 0.5},
	{PortE, 0.5, 0},
	{PortW, -0.5, 0},
	{PortNE, 0.5, -0.5},
	{PortNW, -0.5, -0.5},
	{PortSE, 0.5, 0.5},
	{PortSW, -0.5, 0.5},
	{PortCenter, 0, 0},
}

// Ports returns the fixed set of nine anchor ports.
func Ports() []Port {
	out := make([]Port, len(ports))
	copy(out, ports)
	return out
}

// PortByKind looks a port up by kind, defaulting to center for unknown or
// empty kinds (free connector endpoints store no anchor at all).
func PortByKind(kind string) Port {
	for _, p := range ports {
		if string(p.Kind) == kind {
			return p
		}
	}
	return Port{PortCenter, 0, 0}
}

// PortWorldPoint projects a port to absolute canvas coordinates for an
// element whose absolute top-left origin has already been resolved. The
// normalized offset is scaled by the element's bounding size and rotated
// about the element center.
func PortWorldPoint(e *board.Element, origin board.Point, p Port) board.Point {
	w, h := e.Size()
	cx := origin.X + w/2
	cy := origin.Y + h/2
	dx := p.NX * w
	dy := p.NY * h
	if e.Rotation != 0 {
		rad := e.Rotation * math.Pi / 180
		sin, cos := math.Sincos(rad)
		dx, dy = dx*cos-dy*sin, dx*sin+dy*cos
	}
	return board.Point{X: cx + dx, Y: cy + dy}
}

// AnchorPoint resolves a connector endpoint's anchor to an absolute point,
// combining the section-resolved origin with the port projection.
func AnchorPoint(e *board.Element, sections board.SectionResolver, anchor string) board.Point {
	origin := board.ToAbsolute(e, sections)
	return PortWorldPoint(e, origin, PortByKind(anchor))
}
