package engine

import (
	"testing"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/store"
)

func TestResolveDropSectionInnermostWins(t *testing.T) {
	st := store.NewMemoryStore()
	outer := st.CreateSection(0, 0, 400, 400, "outer")
	inner := st.CreateSection(100, 100, 100, 100, "inner")
	_ = outer

	got := ResolveDropSection(st, board.Point{X: 150, Y: 150})
	if got == nil || got.ID != inner {
		t.Fatalf("got %+v, want inner section", got)
	}

	if got := ResolveDropSection(st, board.Point{X: 350, Y: 350}); got == nil || got.ID != outer {
		t.Fatalf("point outside inner should resolve to outer, got %+v", got)
	}

	if got := ResolveDropSection(st, board.Point{X: 900, Y: 900}); got != nil {
		t.Fatalf("point outside everything should resolve to nil, got %+v", got)
	}
}

func TestDropTieBreaks(t *testing.T) {
	older := &board.Section{ID: "a", Width: 100, Height: 100, CreatedAt: 1}
	newer := &board.Section{ID: "b", Width: 100, Height: 100, CreatedAt: 2}
	if !dropBeats(newer, older) {
		t.Fatal("equal area: more recently created section should win")
	}
	twinA := &board.Section{ID: "a", Width: 100, Height: 100, CreatedAt: 5}
	twinB := &board.Section{ID: "b", Width: 100, Height: 100, CreatedAt: 5}
	if !dropBeats(twinB, twinA) {
		t.Fatal("equal area and age: lexically larger id should win")
	}
	small := &board.Section{ID: "z", Width: 10, Height: 10, CreatedAt: 0}
	if !dropBeats(small, newer) {
		t.Fatal("smaller area always wins regardless of age")
	}
}

func TestApplyDropMigratesFrames(t *testing.T) {
	st := store.NewMemoryStore()
	secID := st.CreateSection(100, 100, 200, 200, "Section")

	t.Run("free element enters the section", func(t *testing.T) {
		e := board.NewElement(board.TypeRectangle, 150, 150)
		st.AddElement(e)
		ApplyDrop(st, e.ID, nil)
		got, _ := st.GetElement(e.ID)
		if got.SectionID != secID || got.X != 50 || got.Y != 50 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("owned element leaves to absolute", func(t *testing.T) {
		e := board.NewElement(board.TypeRectangle, 0, 0)
		e.SectionID = secID
		e.X, e.Y = 500, 500 // relative, resolves to (600,600) outside
		st.AddElement(e)
		ApplyDrop(st, e.ID, nil)
		got, _ := st.GetElement(e.ID)
		if got.SectionID != "" || got.X != 600 || got.Y != 600 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("unchanged owner is a no-op", func(t *testing.T) {
		e := board.NewElement(board.TypeRectangle, 0, 0)
		e.SectionID = secID
		e.X, e.Y = 10, 10
		st.AddElement(e)
		before, _ := st.GetElement(e.ID)
		updated := before.UpdatedAt
		ApplyDrop(st, e.ID, nil)
		after, _ := st.GetElement(e.ID)
		if after.UpdatedAt != updated || after.X != 10 {
			t.Fatalf("no-op drop must not touch the element: %+v", after)
		}
	})

	t.Run("connectors never join sections", func(t *testing.T) {
		c := board.NewElement(board.TypeConnector, 150, 150)
		st.AddElement(c)
		ApplyDrop(st, c.ID, nil)
		got, _ := st.GetElement(c.ID)
		if got.SectionID != "" {
			t.Fatal("connector acquired a section")
		}
	})

	t.Run("missing element is a no-op", func(t *testing.T) {
		ApplyDrop(st, "missing", nil)
	})
}

func TestWouldCycleThroughNestedSections(t *testing.T) {
	st := store.NewMemoryStore()
	outerID := st.CreateSection(0, 0, 400, 400, "outer")
	innerID := st.CreateSection(50, 50, 100, 100, "inner")
	st.UpdateSection(innerID, func(s *board.Section) { s.SectionID = outerID }, nil)
	if !board.WouldCycle(st, outerID, innerID) {
		t.Fatal("inner's ancestor chain includes outer, cycle expected")
	}
	if board.WouldCycle(st, "unrelated", innerID) {
		t.Fatal("no cycle for an unrelated child")
	}
}

func TestRescaleChildren(t *testing.T) {
	st := store.NewMemoryStore()
	secID := st.CreateSection(0, 0, 200, 200, "Section")
	child := board.NewElement(board.TypeRectangle, 50, 50)
	child.SectionID = secID
	child.Width, child.Height = 20, 20
	circle := board.NewElement(board.TypeCircle, 100, 100)
	circle.SectionID = secID
	circle.Radius = 40
	free := board.NewElement(board.TypeRectangle, 50, 50)
	free.Width, free.Height = 20, 20
	st.AddElement(child)
	st.AddElement(circle)
	st.AddElement(free)

	RescaleChildren(st, secID, 200, 200, 100, 100)

	got, _ := st.GetElement(child.ID)
	if got.X != 25 || got.Y != 25 || got.Width != 10 || got.Height != 10 {
		t.Fatalf("child = %+v", got)
	}
	c, _ := st.GetElement(circle.ID)
	if c.Radius != 20 {
		t.Fatalf("circle radius = %v, want 20", c.Radius)
	}
	f, _ := st.GetElement(free.ID)
	if f.X != 50 || f.Width != 20 {
		t.Fatal("elements outside the section must not rescale")
	}
}

func TestRescaleChildrenRejectsDegenerateScale(t *testing.T) {
	st := store.NewMemoryStore()
	secID := st.CreateSection(0, 0, 200, 200, "Section")
	child := board.NewElement(board.TypeRectangle, 50, 50)
	child.SectionID = secID
	st.AddElement(child)

	RescaleChildren(st, secID, 0, 0, 100, 100)

	got, _ := st.GetElement(child.ID)
	if got.X != 50 {
		t.Fatal("zero-size previous bounds must be a no-op")
	}
}

func TestApplySectionDropNestsIntoContainer(t *testing.T) {
	st := store.NewMemoryStore()
	outer := st.CreateSection(100, 100, 400, 400, "outer")
	moved := st.CreateSection(150, 150, 80, 80, "moved")

	ApplySectionDrop(st, moved, nil)

	sec, _ := st.GetSection(moved)
	if sec.SectionID != outer {
		t.Fatalf("sectionID = %q, want outer", sec.SectionID)
	}
	if sec.X != 50 || sec.Y != 50 {
		t.Fatalf("relative origin = (%v,%v), want (50,50)", sec.X, sec.Y)
	}
	if origin, ok := board.SectionAbsoluteOrigin(st, moved); !ok || origin.X != 150 || origin.Y != 150 {
		t.Fatalf("absolute origin changed: %v", origin)
	}
}

func TestApplySectionDropDetachesOutside(t *testing.T) {
	st := store.NewMemoryStore()
	outer := st.CreateSection(0, 0, 200, 200, "outer")
	child := st.CreateSection(0, 0, 50, 50, "child")
	st.UpdateSection(child, func(s *board.Section) {
		s.SectionID = outer
		s.X, s.Y = 600, 600
	}, nil)

	ApplySectionDrop(st, child, nil)

	sec, _ := st.GetSection(child)
	if sec.SectionID != "" {
		t.Fatalf("sectionID = %q, want detached", sec.SectionID)
	}
	if sec.X != 600 || sec.Y != 600 {
		t.Fatalf("origin = (%v,%v), want absolute (600,600)", sec.X, sec.Y)
	}
}

func TestApplySectionDropNeverTargetsDescendant(t *testing.T) {
	st := store.NewMemoryStore()
	parent := st.CreateSection(0, 0, 400, 400, "parent")
	kid := st.CreateSection(0, 0, 300, 300, "kid")
	// The child overhangs its parent, so the parent's origin sits
	// inside the child's box; nesting there would make the chain
	// circular.
	st.UpdateSection(kid, func(s *board.Section) {
		s.SectionID = parent
		s.X, s.Y = -20, -20
	}, nil)
	st.UpdateSection(parent, func(s *board.Section) {
		s.X, s.Y = 50, 50
	}, nil)
	ApplySectionDrop(st, parent, nil)

	sec, _ := st.GetSection(parent)
	if sec.SectionID != "" {
		t.Fatalf("parent nested into %q", sec.SectionID)
	}
}
