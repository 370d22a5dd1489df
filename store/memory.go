package store

import (
	"log"
	"time"

	"github.com/mtmitchel/slate/board"
)

// MemoryStore is the reference Store implementation. All mutation happens
// synchronously within one dispatch turn, so there is no locking.
type MemoryStore struct {
	elements map[string]*board.Element
	sections map[string]*board.Section
	order    []string // element insertion order, drives render z-order

	selection map[string]struct{}

	history   []HistoryEntry
	undoStack []snapshot
	redoStack []snapshot
	maxUndo   int

	listeners map[int]ChangeListener
	nextSub   int
}

type snapshot struct {
	elements map[string]*board.Element
	sections map[string]*board.Section
	order    []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		elements:  map[string]*board.Element{},
		sections:  map[string]*board.Section{},
		selection: map[string]struct{}{},
		listeners: map[int]ChangeListener{},
		maxUndo:   100,
	}
}

func (s *MemoryStore) GetElement(id string) (*board.Element, bool) {
	e, ok := s.elements[id]
	return e, ok
}

func (s *MemoryStore) GetSection(id string) (*board.Section, bool) {
	sec, ok := s.sections[id]
	return sec, ok
}

// Elements returns every element in insertion order.
func (s *MemoryStore) Elements() []*board.Element {
	out := make([]*board.Element, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Sections returns every section, creation order not guaranteed.
func (s *MemoryStore) Sections() []*board.Section {
	out := make([]*board.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		out = append(out, sec)
	}
	return out
}

func (s *MemoryStore) AddElement(e *board.Element) {
	if e == nil || e.ID == "" {
		return
	}
	s.pushUndo()
	s.elements[e.ID] = e
	s.order = append(s.order, e.ID)
	s.notify([]string{e.ID})
}

// UpdateElement mutates one element through apply. Unknown ids are a
// logged no-op, never an error that escapes the dispatch boundary.
func (s *MemoryStore) UpdateElement(id string, apply func(*board.Element), opts *UpdateOptions) {
	e, ok := s.elements[id]
	if !ok {
		log.Printf("store: update of missing element %s ignored", id)
		return
	}
	if opts == nil || !opts.SkipHistory {
		s.pushUndo()
	}
	apply(e)
	e.UpdatedAt = time.Now().UnixMilli()
	s.notify([]string{id})
}

func (s *MemoryStore) RemoveElement(id string) {
	if _, ok := s.elements[id]; !ok {
		return
	}
	s.pushUndo()
	delete(s.elements, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.selection, id)
	s.notify([]string{id})
}

func (s *MemoryStore) CreateSection(x, y, w, h float64, title string) string {
	sec := board.NewSection(x, y, w, h, title)
	s.pushUndo()
	s.sections[sec.ID] = sec
	s.notify([]string{sec.ID})
	return sec.ID
}

func (s *MemoryStore) UpdateSection(id string, apply func(*board.Section), opts *UpdateOptions) {
	sec, ok := s.sections[id]
	if !ok {
		log.Printf("store: update of missing section %s ignored", id)
		return
	}
	if opts == nil || !opts.SkipHistory {
		s.pushUndo()
	}
	apply(sec)
	sec.UpdatedAt = time.Now().UnixMilli()
	s.notify([]string{id})
}

func (s *MemoryStore) RemoveSection(id string) {
	if _, ok := s.sections[id]; !ok {
		return
	}
	s.pushUndo()
	s.orphanChildrenOf(id)
	delete(s.sections, id)
	delete(s.selection, id)
	s.notify([]string{id})
}

// orphanChildrenOf detaches everything owned by the section: children
// fall back to absolute coordinates at their last resolved position, so
// resolution must happen while the frame still exists.
func (s *MemoryStore) orphanChildrenOf(id string) {
	for _, e := range s.elements {
		if e.SectionID == id {
			abs := board.ToAbsolute(e, s)
			e.SectionID = ""
			e.X, e.Y = abs.X, abs.Y
		}
	}
	for _, sec := range s.sections {
		if sec.SectionID == id {
			if origin, ok := board.SectionAbsoluteOrigin(s, sec.ID); ok {
				sec.X, sec.Y = origin.X, origin.Y
			}
			sec.SectionID = ""
		}
	}
}

// RemoveMany deletes a mixed batch of elements and sections as one
// commit: one undo snapshot, one listener notification. Ids that resolve
// to nothing are skipped.
func (s *MemoryStore) RemoveMany(ids []string) {
	var elems, secs []string
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			elems = append(elems, id)
		} else if _, ok := s.sections[id]; ok {
			secs = append(secs, id)
		}
	}
	if len(elems) == 0 && len(secs) == 0 {
		return
	}
	s.pushUndo()
	for _, id := range secs {
		s.orphanChildrenOf(id)
	}
	changed := make([]string, 0, len(elems)+len(secs))
	for _, id := range elems {
		delete(s.elements, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		delete(s.selection, id)
		changed = append(changed, id)
	}
	for _, id := range secs {
		delete(s.sections, id)
		delete(s.selection, id)
		changed = append(changed, id)
	}
	s.notify(changed)
}

func (s *MemoryStore) Selection() map[string]struct{} {
	out := make(map[string]struct{}, len(s.selection))
	for id := range s.selection {
		out[id] = struct{}{}
	}
	return out
}

func (s *MemoryStore) Select(id string, multi bool) {
	if !multi {
		s.selection = map[string]struct{}{}
	}
	s.selection[id] = struct{}{}
}

func (s *MemoryStore) ClearSelection() {
	s.selection = map[string]struct{}{}
}

func (s *MemoryStore) AddHistoryEntry(description string, patches, inverse any, meta HistoryMeta) {
	s.history = append(s.history, HistoryEntry{
		Description:    description,
		Patches:        patches,
		InversePatches: inverse,
		Meta:           meta,
	})
}

func (s *MemoryStore) History() []HistoryEntry {
	return append([]HistoryEntry(nil), s.history...)
}

// BatchUpdate applies one mutation to several elements as a single commit:
// one undo snapshot, one listener notification. Missing ids are skipped.
func (s *MemoryStore) BatchUpdate(description string, ids []string, apply func(*board.Element), opts *UpdateOptions) {
	if len(ids) == 0 {
		return
	}
	if opts == nil || !opts.SkipHistory {
		s.pushUndo()
	}
	now := time.Now().UnixMilli()
	changed := make([]string, 0, len(ids))
	for _, id := range ids {
		e, ok := s.elements[id]
		if !ok {
			log.Printf("store: batch %q skipping missing element %s", description, id)
			continue
		}
		apply(e)
		e.UpdatedAt = now
		changed = append(changed, id)
	}
	if len(changed) == 0 {
		return
	}
	s.notify(changed)
}

func (s *MemoryStore) Subscribe(l ChangeListener) func() {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	return func() { delete(s.listeners, id) }
}

func (s *MemoryStore) notify(changed []string) {
	for _, l := range s.listeners {
		l(changed)
	}
}

// Checkpoint records an undo snapshot of the current state without
// mutating it. Gestures that stream skip-history live updates call it
// once, right before their first write, so Undo restores the pre-gesture
// board instead of skipping past it.
func (s *MemoryStore) Checkpoint() {
	s.pushUndo()
}

// pushUndo snapshots current state onto the undo stack, dropping the
// oldest entry past the cap and invalidating the redo stack.
func (s *MemoryStore) pushUndo() {
	s.undoStack = append(s.undoStack, s.snapshot())
	if len(s.undoStack) > s.maxUndo {
		s.undoStack = s.undoStack[1:]
	}
	s.redoStack = nil
}

func (s *MemoryStore) snapshot() snapshot {
	snap := snapshot{
		elements: make(map[string]*board.Element, len(s.elements)),
		sections: make(map[string]*board.Section, len(s.sections)),
		order:    append([]string(nil), s.order...),
	}
	for id, e := range s.elements {
		snap.elements[id] = e.Clone()
	}
	for id, sec := range s.sections {
		c := *sec
		snap.sections[id] = &c
	}
	return snap
}

func (s *MemoryStore) restore(snap snapshot) {
	s.elements = snap.elements
	s.sections = snap.sections
	s.order = snap.order
	for id := range s.selection {
		if _, ok := s.elements[id]; !ok {
			if _, ok := s.sections[id]; !ok {
				delete(s.selection, id)
			}
		}
	}
	all := make([]string, 0, len(s.elements))
	for id := range s.elements {
		all = append(all, id)
	}
	s.notify(all)
}

// Undo restores the previous snapshot, if any.
func (s *MemoryStore) Undo() bool {
	n := len(s.undoStack)
	if n == 0 {
		return false
	}
	s.redoStack = append(s.redoStack, s.snapshot())
	snap := s.undoStack[n-1]
	s.undoStack = s.undoStack[:n-1]
	s.restore(snap)
	return true
}

// Redo reverses the most recent Undo.
func (s *MemoryStore) Redo() bool {
	n := len(s.redoStack)
	if n == 0 {
		return false
	}
	s.undoStack = append(s.undoStack, s.snapshot())
	snap := s.redoStack[n-1]
	s.redoStack = s.redoStack[:n-1]
	s.restore(snap)
	return true
}
