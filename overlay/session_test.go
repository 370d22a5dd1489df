package overlay

import (
	"strings"
	"testing"
	"time"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/engine"
	"github.com/mtmitchel/slate/store"
)

// fakeHost is a scriptable widget host: the editor text is set directly
// and focus succeeds from the focusAfter-th attempt on.
type fakeHost struct {
	text       string
	shown      int
	hidden     int
	focusCalls int
	focusAfter int
	lastRect   Rect
}

func (f *fakeHost) ShowEditor(sess *Session, rect Rect, text string) {
	f.shown++
	f.text = text
	f.lastRect = rect
}

func (f *fakeHost) HideEditor(sess *Session) { f.hidden++ }

func (f *fakeHost) FocusEditor(sess *Session) bool {
	f.focusCalls++
	return f.focusCalls >= f.focusAfter
}

func (f *fakeHost) EditorText(sess *Session) string { return f.text }

func (f *fakeHost) Reposition(sess *Session, rect Rect) { f.lastRect = rect }

func newTestManager() (*Manager, *fakeHost, *store.MemoryStore) {
	st := store.NewMemoryStore()
	host := &fakeHost{focusAfter: 1}
	return NewManager(st, engine.NewCamera(), host), host, st
}

func addText(st *store.MemoryStore, text string) *board.Element {
	e := board.NewElement(board.TypeText, 100, 100)
	e.Width, e.Height = 200, 40
	e.Text = text
	st.AddElement(e)
	return e
}

func TestOpenCommitRoundTrip(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "before")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	if !m.Active() || host.shown != 1 || host.text != "before" {
		t.Fatalf("open: active=%v shown=%d text=%q", m.Active(), host.shown, host.text)
	}
	if got, _ := st.GetElement(e.ID); !got.IsEditing {
		t.Fatal("element should carry the editing flag while the session is open")
	}

	host.text = "after"
	m.Commit()

	got, _ := st.GetElement(e.ID)
	if got.Text != "after" || got.IsEditing {
		t.Fatalf("commit: %+v", got)
	}
	if m.Active() || host.hidden != 1 {
		t.Fatal("session should be closed and the editor hidden")
	}
	h := st.History()
	if len(h) != 1 || h[0].Description != "edit text" {
		t.Fatalf("history = %+v", h)
	}
}

func TestCommitUnchangedTextSkipsHistory(t *testing.T) {
	m, _, st := newTestManager()
	e := addText(st, "same")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	m.Commit()

	if len(st.History()) != 0 {
		t.Fatal("unchanged commit must not record history")
	}
}

func TestCancelRestoresOriginal(t *testing.T) {
	m, host, st := newTestManager()
	e := board.NewElement(board.TypeSticky, 0, 0)
	e.Width, e.Height = 160, 120
	e.Text = "keep me"
	st.AddElement(e)

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	host.text = "scratch"
	m.LiveUpdate()
	// Simulate a live auto-grow during editing.
	st.UpdateElement(e.ID, func(el *board.Element) { el.Height = 300 }, &store.UpdateOptions{SkipHistory: true})

	m.Cancel()

	got, _ := st.GetElement(e.ID)
	if got.Text != "keep me" || got.IsEditing {
		t.Fatalf("cancel: %+v", got)
	}
	if got.Width != 160 || got.Height != 120 {
		t.Fatalf("dimensions not restored: %vx%v", got.Width, got.Height)
	}
	if len(st.History()) != 0 {
		t.Fatal("cancel must not record history")
	}
}

func TestOpeningNewSessionCommitsOutgoing(t *testing.T) {
	m, host, st := newTestManager()
	a := addText(st, "")
	b := addText(st, "")

	if err := m.OpenText(a.ID); err != nil {
		t.Fatal(err)
	}
	host.text = "first"
	if err := m.OpenText(b.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := st.GetElement(a.ID)
	if got.Text != "first" || got.IsEditing {
		t.Fatalf("outgoing session not committed: %+v", got)
	}
	if m.Session().ElementID != b.ID {
		t.Fatal("new session should target the second element")
	}
}

func TestLiveUpdateIsEphemeral(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	host.text = "typing"
	m.LiveUpdate()

	got, _ := st.GetElement(e.ID)
	if got.Text != "typing" {
		t.Fatalf("live text = %q", got.Text)
	}
	if len(st.History()) != 0 {
		t.Fatal("live updates must not record history")
	}
}

func TestComposingSuppressesLiveUpdates(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	m.SetComposing(true)
	host.text = "かn"
	m.LiveUpdate()
	if got, _ := st.GetElement(e.ID); got.Text != "" {
		t.Fatalf("intermediate composition leaked to the store: %q", got.Text)
	}

	host.text = "漢字"
	m.SetComposing(false)
	if got, _ := st.GetElement(e.ID); got.Text != "漢字" {
		t.Fatalf("composition end should flush, got %q", got.Text)
	}
}

func TestFocusRetriesUntilSticky(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "")
	host.focusAfter = 3

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	m.Tick(start)
	if host.focusCalls != 1 {
		t.Fatalf("first tick should attempt focus once, got %d", host.focusCalls)
	}
	m.Tick(start.Add(60 * time.Millisecond))
	if host.focusCalls != 2 {
		t.Fatalf("second attempt expected, got %d", host.focusCalls)
	}
	m.Tick(start.Add(200 * time.Millisecond))
	if host.focusCalls != 3 {
		t.Fatalf("third attempt expected, got %d", host.focusCalls)
	}
	m.Tick(start.Add(300 * time.Millisecond))
	if host.focusCalls != 3 {
		t.Fatal("no attempts after focus stuck")
	}
}

func TestBlurCommitsAfterGrace(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	host.text = "blurred"
	m.HandleBlur()

	m.Tick(time.Now())
	if !m.Active() {
		t.Fatal("commit must wait out the grace period")
	}
	m.Tick(time.Now().Add(200 * time.Millisecond))
	if m.Active() {
		t.Fatal("session should be committed after the grace period")
	}
	if got, _ := st.GetElement(e.ID); got.Text != "blurred" {
		t.Fatalf("text = %q", got.Text)
	}
}

func TestFocusRegainedCancelsBlurCommit(t *testing.T) {
	m, _, st := newTestManager()
	e := addText(st, "")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	m.HandleBlur()
	m.HandleFocusRegained()
	m.Tick(time.Now().Add(200 * time.Millisecond))
	if !m.Active() {
		t.Fatal("regained focus must cancel the pending commit")
	}
}

func TestStaleBlurTimerNeverCommitsNewSession(t *testing.T) {
	m, host, st := newTestManager()
	a := addText(st, "")
	b := addText(st, "")

	if err := m.OpenText(a.ID); err != nil {
		t.Fatal(err)
	}
	m.HandleBlur()
	if err := m.OpenText(b.ID); err != nil {
		t.Fatal(err)
	}
	host.text = "in progress"
	m.Tick(time.Now().Add(200 * time.Millisecond))

	if !m.Active() || m.Session().ElementID != b.ID {
		t.Fatal("the old session's blur timer must not close the new session")
	}
}

func TestOpenTextRejectsNonEditableTypes(t *testing.T) {
	m, _, st := newTestManager()
	c := board.NewElement(board.TypeConnector, 0, 0)
	st.AddElement(c)
	if err := m.OpenText(c.ID); err == nil {
		t.Fatal("connector is not text-editable")
	}
	if err := m.OpenText("missing"); err == nil {
		t.Fatal("missing element should error")
	}
}

func TestOpenCellClampsTarget(t *testing.T) {
	m, _, st := newTestManager()
	tbl := board.NewTable(0, 0, 2, 2)
	st.AddElement(tbl)

	if err := m.OpenCell(tbl.ID, 5, 5); err != nil {
		t.Fatal(err)
	}
	sess := m.Session()
	if sess.Row != 1 || sess.Col != 1 {
		t.Fatalf("cell = (%d,%d), want clamped (1,1)", sess.Row, sess.Col)
	}
}

func TestCommitAndMoveNavigatesCells(t *testing.T) {
	m, host, st := newTestManager()
	tbl := board.NewTable(0, 0, 2, 2)
	st.AddElement(tbl)

	if err := m.OpenCell(tbl.ID, 0, 0); err != nil {
		t.Fatal(err)
	}
	host.text = "a"
	if err := m.CommitAndMove(0, 1); err != nil {
		t.Fatal(err)
	}

	got, _ := st.GetElement(tbl.ID)
	if got.Cell(0, 0) != "a" {
		t.Fatalf("cell(0,0) = %q", got.Cell(0, 0))
	}
	sess := m.Session()
	if sess.Row != 0 || sess.Col != 1 {
		t.Fatalf("session cell = (%d,%d)", sess.Row, sess.Col)
	}

	// Moving past the edge clamps to the last cell.
	host.text = "b"
	if err := m.CommitAndMove(0, 1); err != nil {
		t.Fatal(err)
	}
	if sess := m.Session(); sess.Row != 0 || sess.Col != 1 {
		t.Fatalf("session cell = (%d,%d), want clamped (0,1)", sess.Row, sess.Col)
	}
}

func TestTableEditCommitsInSessionFirst(t *testing.T) {
	m, host, st := newTestManager()
	tbl := board.NewTable(0, 0, 2, 2)
	st.AddElement(tbl)

	if err := m.OpenCell(tbl.ID, 0, 0); err != nil {
		t.Fatal(err)
	}
	host.text = "x"
	m.InsertRow(tbl.ID, 0)

	got, _ := st.GetElement(tbl.ID)
	if got.Rows != 3 {
		t.Fatalf("rows = %d", got.Rows)
	}
	// The committed cell shifted down with its row.
	if got.Cell(1, 0) != "x" {
		t.Fatalf("cell(1,0) = %q, want committed text", got.Cell(1, 0))
	}
	if m.Active() {
		t.Fatal("structure edits close the session")
	}
	h := st.History()
	if len(h) != 2 || h[1].Description != "insert row" {
		t.Fatalf("history = %+v", h)
	}
}

func TestCommitAutoGrowsBoxHeight(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	host.text = strings.Repeat("line\n", 4) + "line"
	m.Commit()

	got, _ := st.GetElement(e.ID)
	want := 5*20.0 + 2*contentPadding
	if got.Height != want {
		t.Fatalf("height = %v, want %v", got.Height, want)
	}
}

func TestMultilinePolicy(t *testing.T) {
	m, _, st := newTestManager()
	sticky := board.NewElement(board.TypeSticky, 0, 0)
	sticky.Width, sticky.Height = 160, 120
	circle := board.NewElement(board.TypeCircle, 0, 0)
	circle.Radius = 40
	st.AddElement(sticky)
	st.AddElement(circle)

	if err := m.OpenText(sticky.ID); err != nil {
		t.Fatal(err)
	}
	if !m.Session().Multiline() {
		t.Fatal("sticky editor should be multi-line")
	}
	if err := m.OpenText(circle.ID); err != nil {
		t.Fatal(err)
	}
	if m.Session().Multiline() {
		t.Fatal("circle editor commits on enter")
	}
}

func TestRepositionFollowsCamera(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	first := host.lastRect
	m.camera.X += 50
	m.SyncPosition()
	if host.lastRect.X != first.X-50 {
		t.Fatalf("rect did not follow the pan: %v -> %v", first, host.lastRect)
	}
}

func TestUndoAfterCommitRestoresPreEditText(t *testing.T) {
	m, host, st := newTestManager()
	e := addText(st, "before")

	if err := m.OpenText(e.ID); err != nil {
		t.Fatal(err)
	}
	// Live updates stream into the store while typing; the commit
	// snapshot must still capture the pre-edit board.
	for _, draft := range []string{"b", "bet", "between"} {
		host.text = draft
		m.LiveUpdate()
	}
	host.text = "after"
	m.Commit()

	if got, _ := st.GetElement(e.ID); got.Text != "after" {
		t.Fatalf("text = %q", got.Text)
	}
	if !st.Undo() {
		t.Fatal("undo available")
	}
	got, _ := st.GetElement(e.ID)
	if got.Text != "before" {
		t.Fatalf("undo left %q, want the pre-edit %q", got.Text, "before")
	}
	if got.IsEditing {
		t.Fatal("undo must not resurrect the editing flag")
	}
}
