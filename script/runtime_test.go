package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/store"
)

func runScript(t *testing.T, st store.Store, src string) error {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.tengo")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	rt, err := NewRuntime(st, path)
	if err != nil {
		t.Fatal(err)
	}
	return rt.Run()
}

func TestScriptBuildsBoard(t *testing.T) {
	st := store.NewMemoryStore()
	err := runScript(t, st, `
a := board.add_rect(0, 0, 100, 60)
b := board.add_circle(300, 0, 40)
board.set_text(a, "start")
board.connect(a, b, "bent")
board.add_table(0, 200, 2, 3)
`)
	if err != nil {
		t.Fatal(err)
	}

	elems := st.Elements()
	if len(elems) != 4 {
		t.Fatalf("elements = %d, want 4", len(elems))
	}
	rect := elems[0]
	if rect.Type != board.TypeRectangle || rect.Text != "start" {
		t.Fatalf("rect = %+v", rect)
	}
	var conn *board.Element
	for _, e := range elems {
		if e.Type == board.TypeConnector {
			conn = e
		}
	}
	if conn == nil {
		t.Fatal("connector not created")
	}
	if conn.SubType != board.ConnectorBent {
		t.Fatalf("subtype = %s", conn.SubType)
	}
	if conn.StartPoint.ElementID != rect.ID {
		t.Fatalf("start endpoint = %+v", conn.StartPoint)
	}
	if conn.StartPoint.Point != (board.Point{X: 50, Y: 30}) {
		t.Fatalf("start = %v, want rect center", conn.StartPoint.Point)
	}
	// Scripted creations carry history like pointer creations do.
	if len(st.History()) != 4 {
		t.Fatalf("history entries = %d, want 4", len(st.History()))
	}
}

func TestScriptSectionsContainElements(t *testing.T) {
	st := store.NewMemoryStore()
	err := runScript(t, st, `
sec := board.add_section(0, 0, 400, 300, "Inputs")
board.add_sticky(50, 50, "note")
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Sections()) != 1 || st.Sections()[0].Title != "Inputs" {
		t.Fatalf("sections = %+v", st.Sections())
	}
	if len(st.Elements()) != 1 {
		t.Fatalf("elements = %d", len(st.Elements()))
	}
}

func TestScriptSetCellClamps(t *testing.T) {
	st := store.NewMemoryStore()
	err := runScript(t, st, `
tbl := board.add_table(0, 0, 2, 2)
board.set_cell(tbl, 9, 9, "corner")
`)
	if err != nil {
		t.Fatal(err)
	}
	tbl := st.Elements()[0]
	if tbl.Cell(1, 1) != "corner" {
		t.Fatalf("cells = %v", tbl.Cells)
	}
}

func TestScriptConnectUnknownElementFails(t *testing.T) {
	st := store.NewMemoryStore()
	err := runScript(t, st, `board.connect("ghost", "phantom")`)
	if err == nil {
		t.Fatal("connecting unknown elements should fail the run")
	}
}

func TestScriptCompileErrorSurfaces(t *testing.T) {
	st := store.NewMemoryStore()
	path := filepath.Join(t.TempDir(), "broken.tengo")
	if err := os.WriteFile(path, []byte("a := ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRuntime(st, path); err == nil {
		t.Fatal("expected a compile error")
	}
}

func TestScriptMissingFile(t *testing.T) {
	st := store.NewMemoryStore()
	if _, err := NewRuntime(st, filepath.Join(t.TempDir(), "nope.tengo")); err == nil {
		t.Fatal("expected a read error")
	}
}
