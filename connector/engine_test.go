package connector

import (
	"testing"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/store"
)

func attachedConnector(t *testing.T, st *store.MemoryStore) (*board.Element, *board.Element, *board.Element) {
	t.Helper()
	a := board.NewElement(board.TypeRectangle, 0, 0)
	a.Width, a.Height = 40, 40
	b := board.NewElement(board.TypeRectangle, 200, 0)
	b.Width, b.Height = 40, 40
	st.AddElement(a)
	st.AddElement(b)

	conn := board.NewElement(board.TypeConnector, 0, 0)
	conn.SubType = board.ConnectorStraight
	conn.StartPoint = &board.Endpoint{ElementID: a.ID, Anchor: "e", Point: board.Point{X: 40, Y: 20}}
	conn.EndPoint = &board.Endpoint{ElementID: b.ID, Anchor: "w", Point: board.Point{X: 200, Y: 20}}
	st.AddElement(conn)
	return a, b, conn
}

func TestFlushFollowsMovedEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	en := NewEngine(st)
	defer en.Close()
	a, _, conn := attachedConnector(t, st)

	st.UpdateElement(a.ID, func(e *board.Element) { e.X, e.Y = 100, 100 }, nil)

	if updated := en.Flush(); updated != 1 {
		t.Fatalf("flush updated %d connectors, want 1", updated)
	}
	got, _ := st.GetElement(conn.ID)
	if got.StartPoint.Point != (board.Point{X: 140, Y: 120}) {
		t.Fatalf("start = %v, want east port of moved element", got.StartPoint.Point)
	}
	if got.EndPoint.Point != (board.Point{X: 200, Y: 20}) {
		t.Fatalf("end = %v, should be unchanged", got.EndPoint.Point)
	}
}

func TestFlushIsValueCompared(t *testing.T) {
	st := store.NewMemoryStore()
	en := NewEngine(st)
	defer en.Close()
	a, _, conn := attachedConnector(t, st)

	st.UpdateElement(a.ID, func(e *board.Element) { e.X = 100 }, nil)
	en.Flush()

	before, _ := st.GetElement(conn.ID)
	updated := before.UpdatedAt

	// A change that does not move any endpoint dirties the connector but
	// must not produce a write.
	st.UpdateElement(a.ID, func(e *board.Element) { e.Text = "label" }, nil)
	if n := en.Flush(); n != 0 {
		t.Fatalf("flush wrote %d connectors on an identical path", n)
	}
	after, _ := st.GetElement(conn.ID)
	if after.UpdatedAt != updated {
		t.Fatal("connector touched despite unchanged path")
	}
}

func TestFlushBatchesManyChangesIntoOnePass(t *testing.T) {
	st := store.NewMemoryStore()
	en := NewEngine(st)
	defer en.Close()
	a, _, _ := attachedConnector(t, st)

	// Many per-frame drag updates accumulate into a single dirty set.
	for i := 0; i < 10; i++ {
		st.UpdateElement(a.ID, func(e *board.Element) { e.X += 5 }, &store.UpdateOptions{SkipHistory: true})
	}
	if updated := en.Flush(); updated != 1 {
		t.Fatalf("flush updated %d, want exactly 1", updated)
	}
	if updated := en.Flush(); updated != 0 {
		t.Fatal("second flush with nothing dirty must be free")
	}
}

func TestMissingEndpointKeepsLastPoint(t *testing.T) {
	st := store.NewMemoryStore()
	en := NewEngine(st)
	defer en.Close()
	a, b, conn := attachedConnector(t, st)
	_ = a

	st.RemoveElement(b.ID)
	en.Flush()

	got, _ := st.GetElement(conn.ID)
	if got.EndPoint.Point != (board.Point{X: 200, Y: 20}) {
		t.Fatalf("end = %v, want last known point preserved", got.EndPoint.Point)
	}
}

func TestSectionMoveMarksAttachedConnectors(t *testing.T) {
	st := store.NewMemoryStore()
	en := NewEngine(st)
	defer en.Close()
	secID := st.CreateSection(0, 0, 500, 500, "Section")
	a, _, conn := attachedConnector(t, st)
	st.UpdateElement(a.ID, func(e *board.Element) { e.SectionID = secID }, nil)
	en.Flush()

	st.UpdateSection(secID, func(s *board.Section) { s.X = 50 }, nil)
	if updated := en.Flush(); updated != 1 {
		t.Fatalf("section move should dirty the attached connector, updated=%d", updated)
	}
	got, _ := st.GetElement(conn.ID)
	if got.StartPoint.Point != (board.Point{X: 90, Y: 20}) {
		t.Fatalf("start = %v, want port shifted by the section move", got.StartPoint.Point)
	}
}

func TestMaintenanceWriteDoesNotSelfDirty(t *testing.T) {
	st := store.NewMemoryStore()
	en := NewEngine(st)
	defer en.Close()
	a, _, _ := attachedConnector(t, st)

	st.UpdateElement(a.ID, func(e *board.Element) { e.X = 60 }, nil)
	en.Flush()
	if len(en.dirty) != 0 {
		t.Fatalf("maintenance commit re-dirtied %d connectors", len(en.dirty))
	}
}

func TestFreeEndpointsAreStable(t *testing.T) {
	st := store.NewMemoryStore()
	en := NewEngine(st)
	defer en.Close()

	conn := board.NewElement(board.TypeConnector, 0, 0)
	conn.SubType = board.ConnectorStraight
	conn.StartPoint = &board.Endpoint{Point: board.Point{X: 10, Y: 10}}
	conn.EndPoint = &board.Endpoint{Point: board.Point{X: 90, Y: 90}}
	st.AddElement(conn)

	// AddElement dirtied it; the pass must leave free endpoints alone.
	if n := en.Flush(); n != 0 {
		t.Fatalf("flush wrote %d, free endpoints should compare equal", n)
	}
}
