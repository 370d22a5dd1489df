// Package overlay implements the live text and table-cell editing
// subsystem: a native editable surface positioned over the target element,
// kept aligned to the camera transform, with an explicit commit/cancel
// protocol back into the store. At most one session is open at a time;
// opening a new one always commits the outgoing session first.
package overlay

import (
	"fmt"
	"log"
	"time"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/engine"
	"github.com/mtmitchel/slate/store"
)

// State is the session lifecycle.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateEditing
	StateCommitting
	StateCanceling
)

// Kind distinguishes the editor surfaces.
type Kind int

const (
	// KindText edits an element's text: multi-line for box-like elements,
	// centered single-surface for circles.
	KindText Kind = iota
	// KindCell edits one table cell, single-line.
	KindCell
)

// Session is one ephemeral editing session.
type Session struct {
	ID        uint64
	Kind      Kind
	ElementID string
	Row, Col  int

	OriginalText   string
	OriginalWidth  float64
	OriginalHeight float64

	state     State
	multiline bool
	composing bool
}

// State returns the session lifecycle state.
func (s *Session) State() State { return s.state }

// Multiline reports whether Enter inserts a newline instead of
// committing. Rectangle and sticky text editors are multi-line; table
// cells and circle labels commit on Enter.
func (s *Session) Multiline() bool { return s.multiline }

// Composing reports whether an input-method composition is in progress.
func (s *Session) Composing() bool { return s.composing }

// Host is the widget side of the subsystem, implemented by the shell over
// its UI toolkit. The manager drives it; it never drives the manager.
type Host interface {
	ShowEditor(sess *Session, rect Rect, text string)
	HideEditor(sess *Session)
	// FocusEditor attempts to move input focus into the overlay and
	// reports whether focus stuck.
	FocusEditor(sess *Session) bool
	EditorText(sess *Session) string
	Reposition(sess *Session, rect Rect)
}

// focusRetrySchedule defeats toolkit/layout races: focus is retried at
// these offsets after the editor is shown until one attempt sticks.
var focusRetrySchedule = []time.Duration{0, 50 * time.Millisecond, 150 * time.Millisecond}

// blurGrace delays commit-on-blur long enough for focus to move within
// the same editing UI without a false commit.
const blurGrace = 100 * time.Millisecond

// Manager owns the single active session and its timers. It is
// single-threaded: Tick runs from the host update loop.
type Manager struct {
	store  store.Store
	host   Host
	camera *engine.Camera

	// ContainerOffset is the drawing surface's screen offset inside the
	// host window.
	ContainerOffsetX float64
	ContainerOffsetY float64

	session *Session
	nextID  uint64

	openedAt     time.Time
	focusRetries []time.Duration
	focused      bool

	// pending commit-on-blur; sessionID guards against a timer outliving
	// the session that scheduled it
	blurDeadline  time.Time
	blurSessionID uint64
}

// NewManager wires the subsystem over a store, camera and widget host.
func NewManager(st store.Store, cam *engine.Camera, host Host) *Manager {
	return &Manager{store: st, camera: cam, host: host}
}

// Active reports whether a session is open.
func (m *Manager) Active() bool {
	return m.session != nil && m.session.state != StateClosed
}

// Session returns the active session, or nil.
func (m *Manager) Session() *Session { return m.session }

// OpenText opens a text editing session over an element. An active
// session is committed first.
func (m *Manager) OpenText(elementID string) error {
	e, ok := m.store.GetElement(elementID)
	if !ok {
		return fmt.Errorf("overlay: element %s not found", elementID)
	}
	switch e.Type {
	case board.TypeText, board.TypeSticky, board.TypeRectangle, board.TypeCircle, board.TypeTriangle:
	default:
		return fmt.Errorf("overlay: element type %s is not text-editable", e.Type)
	}

	m.closeActive(true)

	m.nextID++
	sess := &Session{
		ID:             m.nextID,
		Kind:           KindText,
		ElementID:      elementID,
		OriginalText:   e.Text,
		OriginalWidth:  e.Width,
		OriginalHeight: e.Height,
		state:          StateOpening,
		multiline:      e.Type == board.TypeRectangle || e.Type == board.TypeSticky,
	}
	m.begin(sess, e.Text)
	m.store.UpdateElement(elementID, func(el *board.Element) {
		el.IsEditing = true
	}, &store.UpdateOptions{SkipHistory: true})
	return nil
}

// OpenCell opens a single-line editor over one table cell. The target
// cell is clamped to the table bounds.
func (m *Manager) OpenCell(elementID string, row, col int) error {
	e, ok := m.store.GetElement(elementID)
	if !ok || e.Type != board.TypeTable {
		return fmt.Errorf("overlay: table %s not found", elementID)
	}
	row, col = e.ClampCell(row, col)

	m.closeActive(true)

	m.nextID++
	sess := &Session{
		ID:           m.nextID,
		Kind:         KindCell,
		ElementID:    elementID,
		Row:          row,
		Col:          col,
		OriginalText: e.Cell(row, col),
		state:        StateOpening,
	}
	m.begin(sess, sess.OriginalText)
	return nil
}

func (m *Manager) begin(sess *Session, text string) {
	m.session = sess
	m.openedAt = time.Now()
	m.focusRetries = append([]time.Duration(nil), focusRetrySchedule...)
	m.focused = false
	m.blurDeadline = time.Time{}

	rect, ok := m.sessionRect(sess)
	if !ok {
		log.Printf("overlay: no rect for session on %s", sess.ElementID)
	}
	m.host.ShowEditor(sess, rect, text)
	sess.state = StateEditing
}

// Tick advances timers: focus retries while any remain, then the
// commit-on-blur grace deadline. It also re-syncs the overlay position to
// the live transform, so pan/zoom/resize can never leave the overlay
// drifted from its target.
func (m *Manager) Tick(now time.Time) {
	if m.session != nil && m.session.state == StateEditing {
		for len(m.focusRetries) > 0 && !m.focused {
			if now.Sub(m.openedAt) < m.focusRetries[0] {
				break
			}
			m.focusRetries = m.focusRetries[1:]
			m.focused = m.host.FocusEditor(m.session)
		}
		m.SyncPosition()
	}

	if !m.blurDeadline.IsZero() && now.After(m.blurDeadline) {
		deadlineFor := m.blurSessionID
		m.blurDeadline = time.Time{}
		// The session that scheduled this timer may be long gone; only
		// act when it is still the ambient one.
		if m.session != nil && m.session.ID == deadlineFor && m.session.state == StateEditing {
			m.Commit()
		}
	}
}

// SyncPosition repositions the open overlay to the element's current
// screen rectangle.
func (m *Manager) SyncPosition() {
	if m.session == nil || m.session.state != StateEditing {
		return
	}
	if rect, ok := m.sessionRect(m.session); ok {
		m.host.Reposition(m.session, rect)
	}
}

// HandleBlur schedules a commit after the grace delay.
func (m *Manager) HandleBlur() {
	if m.session == nil || m.session.state != StateEditing {
		return
	}
	m.blurDeadline = time.Now().Add(blurGrace)
	m.blurSessionID = m.session.ID
}

// HandleFocusRegained cancels a pending blur commit when focus moved
// within the editing UI.
func (m *Manager) HandleFocusRegained() {
	m.blurDeadline = time.Time{}
	m.focused = true
}

// SetComposing toggles input-method composition. While composing, live
// updates are suppressed so intermediate garbled text never reaches the
// store or history.
func (m *Manager) SetComposing(composing bool) {
	if m.session == nil {
		return
	}
	m.session.composing = composing
	if !composing {
		m.LiveUpdate()
	}
}

// LiveUpdate propagates the overlay's current content into the store as
// an ephemeral (skip-history) update, unless a composition is running.
func (m *Manager) LiveUpdate() {
	sess := m.session
	if sess == nil || sess.state != StateEditing || sess.composing {
		return
	}
	text := m.host.EditorText(sess)
	switch sess.Kind {
	case KindText:
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.Text = text
		}, &store.UpdateOptions{SkipHistory: true})
	case KindCell:
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.SetCell(sess.Row, sess.Col, text)
		}, &store.UpdateOptions{SkipHistory: true})
	}
}

// Commit reads the overlay content, writes it through the store, clears
// the editing flag, and closes the overlay. Live updates already streamed
// the draft text into the store skip-history, so the original content is
// written back first: the commit's own undo snapshot then captures the
// pre-edit board, not the draft.
func (m *Manager) Commit() {
	sess := m.session
	if sess == nil || sess.state != StateEditing {
		return
	}
	sess.state = StateCommitting
	text := m.host.EditorText(sess)

	var commitOpts *store.UpdateOptions
	if text == sess.OriginalText {
		commitOpts = &store.UpdateOptions{SkipHistory: true}
	}

	switch sess.Kind {
	case KindText:
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.Text = sess.OriginalText
			el.IsEditing = false
		}, &store.UpdateOptions{SkipHistory: true})
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.Text = text
			if el.IsBoxLike() {
				if h := autoGrowHeight(text); h > el.Height {
					el.Height = h
				}
			}
		}, commitOpts)
	case KindCell:
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.SetCell(sess.Row, sess.Col, sess.OriginalText)
		}, &store.UpdateOptions{SkipHistory: true})
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.SetCell(sess.Row, sess.Col, text)
		}, commitOpts)
	}

	if text != sess.OriginalText {
		m.store.AddHistoryEntry(
			"edit text",
			nil, nil,
			store.HistoryMeta{ElementIDs: []string{sess.ElementID}, OperationType: "edit", AffectedCount: 1},
		)
	}
	m.close(sess)
}

// Cancel restores the original text and dimensions and closes the
// overlay without ever writing the modified content.
func (m *Manager) Cancel() {
	sess := m.session
	if sess == nil || sess.state != StateEditing {
		return
	}
	sess.state = StateCanceling

	switch sess.Kind {
	case KindText:
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.Text = sess.OriginalText
			el.IsEditing = false
			el.Width = sess.OriginalWidth
			el.Height = sess.OriginalHeight
		}, &store.UpdateOptions{SkipHistory: true})
	case KindCell:
		m.store.UpdateElement(sess.ElementID, func(el *board.Element) {
			el.SetCell(sess.Row, sess.Col, sess.OriginalText)
		}, &store.UpdateOptions{SkipHistory: true})
	}
	m.close(sess)
}

func (m *Manager) close(sess *Session) {
	m.host.HideEditor(sess)
	sess.state = StateClosed
	if m.session == sess {
		m.session = nil
	}
	m.blurDeadline = time.Time{}
	m.focusRetries = nil
}

// closeActive force-closes the current session before a new one opens.
// The outgoing session is always committed, never silently discarded.
func (m *Manager) closeActive(commit bool) {
	if m.session == nil || m.session.state == StateClosed {
		return
	}
	if commit {
		m.Commit()
	} else {
		m.Cancel()
	}
}

// CommitAndMove implements directional table-cell navigation: commit the
// current cell, clamp the target coordinates, and reopen on the new cell.
func (m *Manager) CommitAndMove(dRow, dCol int) error {
	sess := m.session
	if sess == nil || sess.Kind != KindCell {
		return fmt.Errorf("overlay: no cell session to navigate")
	}
	elementID := sess.ElementID
	row, col := sess.Row+dRow, sess.Col+dCol
	m.Commit()
	return m.OpenCell(elementID, row, col)
}

// Table structure edits exposed to the cell context menu. Each rebuilds
// the cell matrix preserving content by position and records one history
// entry.

func (m *Manager) InsertRow(elementID string, index int) {
	m.tableEdit(elementID, "insert row", func(e *board.Element) { e.InsertRow(index) })
}

func (m *Manager) DeleteRow(elementID string, index int) {
	m.tableEdit(elementID, "delete row", func(e *board.Element) { e.DeleteRow(index) })
}

func (m *Manager) InsertCol(elementID string, index int) {
	m.tableEdit(elementID, "insert column", func(e *board.Element) { e.InsertCol(index) })
}

func (m *Manager) DeleteCol(elementID string, index int) {
	m.tableEdit(elementID, "delete column", func(e *board.Element) { e.DeleteCol(index) })
}

func (m *Manager) tableEdit(elementID, description string, apply func(*board.Element)) {
	if m.session != nil && m.session.ElementID == elementID {
		m.Commit()
	}
	e, ok := m.store.GetElement(elementID)
	if !ok || e.Type != board.TypeTable {
		log.Printf("overlay: %s on missing table %s ignored", description, elementID)
		return
	}
	m.store.UpdateElement(elementID, apply, nil)
	m.store.AddHistoryEntry(
		description,
		nil, nil,
		store.HistoryMeta{ElementIDs: []string{elementID}, OperationType: "table", AffectedCount: 1},
	)
}

// autoGrowHeight estimates the height needed for the committed text,
// growing box-like editors that overflow. One line per newline at a
// fixed line height over the content padding.
func autoGrowHeight(text string) float64 {
	lines := 1
	for _, r := range text {
		if r == '\n' {
			lines++
		}
	}
	const lineHeight = 20.0
	return float64(lines)*lineHeight + 2*contentPadding
}
