package board

import "time"

// Section is a container element with its own frame. Elements whose
// SectionID points at it store coordinates relative to the section's
// top-left corner. Sections may nest; the ancestor chain must be acyclic
// and terminate at a section with no SectionID.
type Section struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	SectionID string  `json:"sectionId,omitempty"`
	Fill      string  `json:"fill,omitempty"`
	CreatedAt int64   `json:"createdAt,omitempty"`
	UpdatedAt int64   `json:"updatedAt,omitempty"`
}

// NewSection creates a section at an absolute position.
func NewSection(x, y, w, h float64, title string) *Section {
	now := time.Now().UnixMilli()
	return &Section{
		ID:        NewID(),
		Title:     title,
		X:         x,
		Y:         y,
		Width:     w,
		Height:    h,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Area returns the section's bounding area, used as the containment
// tie-break (innermost, i.e. smallest area, wins).
func (s *Section) Area() float64 {
	return s.Width * s.Height
}

// SectionResolver looks sections up by id. The store satisfies it; tests
// use plain maps.
type SectionResolver interface {
	GetSection(id string) (*Section, bool)
}

// SectionMap is a trivial SectionResolver over a map.
type SectionMap map[string]*Section

func (m SectionMap) GetSection(id string) (*Section, bool) {
	s, ok := m[id]
	return s, ok
}

// maxSectionDepth caps ancestor-chain resolution. A chain longer than this
// is treated as a containment cycle and resolved as a local position.
const maxSectionDepth = 64

// SectionAbsoluteOrigin resolves a section's absolute top-left corner by
// walking its ancestor chain. Reports ok=false when the chain is broken or
// exceeds the depth cap, in which case the walked-so-far origin is returned.
func SectionAbsoluteOrigin(sections SectionResolver, id string) (Point, bool) {
	var origin Point
	depth := 0
	for id != "" {
		if depth >= maxSectionDepth {
			return origin, false
		}
		s, ok := sections.GetSection(id)
		if !ok || s == nil {
			return origin, false
		}
		origin.X += s.X
		origin.Y += s.Y
		id = s.SectionID
		depth++
	}
	return origin, true
}

// WouldCycle reports whether assigning parentID as child's owning section
// would create a containment cycle. Enforced at the moment of assignment
// rather than only guarded at read time.
func WouldCycle(sections SectionResolver, childID, parentID string) bool {
	depth := 0
	for parentID != "" {
		if parentID == childID {
			return true
		}
		if depth >= maxSectionDepth {
			return true
		}
		s, ok := sections.GetSection(parentID)
		if !ok || s == nil {
			return false
		}
		parentID = s.SectionID
		depth++
	}
	return false
}
