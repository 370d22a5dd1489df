package engine

import (
	"fmt"

	"github.com/mtmitchel/slate/store"
)

func (en *Engine) handleKey(ctx *Context) {
	switch ctx.Event.Key {
	case KeyDelete, KeyBackspace:
		en.deleteSelection()
	case KeyEscape:
		en.escape()
	}
}

// deleteSelection removes every selected element and section in one
// operation with a single history entry. Deletion is suppressed while a
// text-edit session is active so Backspace edits text, not the board.
func (en *Engine) deleteSelection() {
	if en.editingActive != nil && en.editingActive() {
		return
	}
	sel := en.store.Selection()
	if len(sel) == 0 {
		return
	}
	ids := make([]string, 0, len(sel))
	for id := range sel {
		ids = append(ids, id)
	}
	en.store.RemoveMany(ids)
	en.store.ClearSelection()
	en.store.AddHistoryEntry(
		fmt.Sprintf("delete %d element(s)", len(ids)),
		nil, nil,
		store.HistoryMeta{ElementIDs: ids, OperationType: "delete", AffectedCount: len(ids)},
	)
}

// escape is the universal cancel: clear selection, drop any in-progress
// gesture state, close an active edit session without committing, and
// reset the tool to select.
func (en *Engine) escape() {
	if en.cancelEditing != nil {
		en.cancelEditing()
	}
	en.resetTransient()
	en.store.ClearSelection()
	if en.tool != ToolSelect {
		en.tool = ToolSelect
		if en.onToolChange != nil {
			en.onToolChange(ToolSelect)
		}
	}
}
