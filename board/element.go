// Package board defines the whiteboard data model: the element tagged
// union, sections, tables, and the coordinate service that moves element
// positions between absolute canvas space and section-relative space.
package board

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ElementType tags the element union.
type ElementType string

const (
	TypeRectangle ElementType = "rectangle"
	TypeCircle    ElementType = "circle"
	TypeTriangle  ElementType = "triangle"
	TypeStar      ElementType = "star"
	TypeText      ElementType = "text"
	TypeSticky    ElementType = "sticky-note"
	TypeImage     ElementType = "image"
	TypeTable     ElementType = "table"
	TypeConnector ElementType = "connector"
	TypeSection   ElementType = "section"
	TypeStroke    ElementType = "stroke"
)

// ConnectorSubType selects how a connector path is computed.
type ConnectorSubType string

const (
	ConnectorStraight ConnectorSubType = "straight"
	ConnectorBent     ConnectorSubType = "bent"
	ConnectorCurved   ConnectorSubType = "curved"
	ConnectorArrow    ConnectorSubType = "arrow"
	ConnectorLine     ConnectorSubType = "line"
)

// Point is a 2D coordinate in whichever frame its owner lives in.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Endpoint describes one end of a connector. When ElementID is empty the
// endpoint is a fixed point; otherwise Point is derived from the element's
// anchor port and recomputed whenever the element moves.
type Endpoint struct {
	ElementID string `json:"elementId,omitempty"`
	Anchor    string `json:"anchor,omitempty"` // port kind, defaults to center
	Point     Point  `json:"point"`
}

// Element is the tagged union over every board variant. Fields beyond the
// common block are only meaningful for the variants noted on each one.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Rotation float64     `json:"rotation,omitempty"`

	// SectionID, when set, means X/Y are relative to the owning section.
	// Empty means absolute canvas coordinates.
	SectionID string `json:"sectionId,omitempty"`

	// Box-like variants (rectangle, triangle, text, sticky, image, table, section).
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Circle.
	Radius float64 `json:"radius,omitempty"`

	// Star.
	InnerRadius float64 `json:"innerRadius,omitempty"`
	OuterRadius float64 `json:"outerRadius,omitempty"`

	// Text-bearing variants.
	Text      string `json:"text,omitempty"`
	IsEditing bool   `json:"isEditing,omitempty"`

	// Styling shared across variants.
	Fill   string `json:"fill,omitempty"`
	Stroke string `json:"stroke,omitempty"`

	// Connector.
	SubType            ConnectorSubType `json:"subType,omitempty"`
	StartPoint         *Endpoint        `json:"startPoint,omitempty"`
	EndPoint           *Endpoint        `json:"endPoint,omitempty"`
	IntermediatePoints []Point          `json:"intermediatePoints,omitempty"`

	// Stroke (freehand pen path), points in the element's own frame.
	Points []Point `json:"points,omitempty"`

	// Table.
	Rows  int        `json:"rows,omitempty"`
	Cols  int        `json:"cols,omitempty"`
	Cells [][]string `json:"cells,omitempty"`

	// Image.
	ImagePath     string  `json:"imagePath,omitempty"`
	NaturalWidth  float64 `json:"naturalWidth,omitempty"`
	NaturalHeight float64 `json:"naturalHeight,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

// NewID returns a fresh element id.
func NewID() string {
	return uuid.NewString()
}

// NewElement creates an element of the given type at an absolute position
// with timestamps set.
func NewElement(t ElementType, x, y float64) *Element {
	now := time.Now().UnixMilli()
	return &Element{
		ID:        NewID(),
		Type:      t,
		X:         x,
		Y:         y,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsBoxLike reports whether the element stores its size as width/height.
func (e *Element) IsBoxLike() bool {
	switch e.Type {
	case TypeRectangle, TypeTriangle, TypeText, TypeSticky, TypeImage, TypeTable, TypeSection:
		return true
	}
	return false
}

// Size returns the element's bounding width and height in its local frame.
func (e *Element) Size() (w, h float64) {
	switch e.Type {
	case TypeCircle:
		return e.Radius * 2, e.Radius * 2
	case TypeStar:
		return e.OuterRadius * 2, e.OuterRadius * 2
	case TypeStroke:
		minX, minY, maxX, maxY := pointsBounds(e.Points)
		return maxX - minX, maxY - minY
	default:
		return e.Width, e.Height
	}
}

func pointsBounds(pts []Point) (minX, minY, maxX, maxY float64) {
	if len(pts) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = pts[0].X, pts[0].Y
	maxX, maxY = minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// ValidNumber rejects NaN and infinities from misbehaving gestures.
func ValidNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidPosition reports whether every numeric attribute of an update is a
// real number. Invalid updates are dropped before they reach the store.
func ValidPosition(vals ...float64) bool {
	for _, v := range vals {
		if !ValidNumber(v) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	if e.StartPoint != nil {
		sp := *e.StartPoint
		c.StartPoint = &sp
	}
	if e.EndPoint != nil {
		ep := *e.EndPoint
		c.EndPoint = &ep
	}
	if e.IntermediatePoints != nil {
		c.IntermediatePoints = append([]Point(nil), e.IntermediatePoints...)
	}
	if e.Points != nil {
		c.Points = append([]Point(nil), e.Points...)
	}
	if e.Cells != nil {
		c.Cells = make([][]string, len(e.Cells))
		for i, row := range e.Cells {
			c.Cells[i] = append([]string(nil), row...)
		}
	}
	return &c
}
