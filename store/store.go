// Package store holds the board state: elements, sections, the selection
// set, and the append-only history log. The core mutates boards only
// through the Store contract; the in-memory implementation here is what
// the application shell and the tests run against.
package store

import "github.com/mtmitchel/slate/board"

// UpdateOptions tunes a single mutation.
type UpdateOptions struct {
	// SkipHistory suppresses the history entry for live/ephemeral updates
	// (drag previews, per-frame connector maintenance).
	SkipHistory bool
}

// HistoryMeta describes an operation for the history log.
type HistoryMeta struct {
	ElementIDs    []string
	OperationType string
	AffectedCount int
}

// HistoryEntry is an append-only record of one committed operation. The
// patch payloads are opaque to the core.
type HistoryEntry struct {
	Description    string
	Patches        any
	InversePatches any
	Meta           HistoryMeta
}

// ChangeListener is notified after a commit with the ids that changed.
// Listeners run synchronously inside the dispatch turn.
type ChangeListener func(changed []string)

// Store is the adapter contract every core component consumes.
type Store interface {
	board.SectionResolver

	GetElement(id string) (*board.Element, bool)
	AddElement(e *board.Element)
	UpdateElement(id string, apply func(*board.Element), opts *UpdateOptions)
	RemoveElement(id string)
	Elements() []*board.Element

	UpdateSection(id string, apply func(*board.Section), opts *UpdateOptions)
	CreateSection(x, y, w, h float64, title string) string
	RemoveSection(id string)
	Sections() []*board.Section

	// RemoveMany deletes a mixed batch of elements and sections as one
	// atomic commit with a single notification.
	RemoveMany(ids []string)

	Selection() map[string]struct{}
	Select(id string, multi bool)
	ClearSelection()

	AddHistoryEntry(description string, patches, inverse any, meta HistoryMeta)
	History() []HistoryEntry

	// BatchUpdate applies several element mutations as one atomic commit:
	// listeners fire once and at most one history entry is recorded.
	BatchUpdate(description string, ids []string, apply func(*board.Element), opts *UpdateOptions)

	// Checkpoint records an undo snapshot of the current state. Gestures
	// that stream skip-history live updates call it once before their
	// first write.
	Checkpoint()

	Subscribe(l ChangeListener) func()
}
