package main

import (
	"encoding/json"
	"log"

	"golang.design/x/clipboard"

	"github.com/mtmitchel/slate/board"
	"github.com/mtmitchel/slate/store"
)

// pasteOffset nudges pasted elements so they never land exactly on their
// originals.
const pasteOffset = 16.0

// clipPayload is the clipboard wire format for copied elements.
type clipPayload struct {
	Slate    bool             `json:"slate"`
	Elements []*board.Element `json:"elements"`
}

func (a *App) copySelection() {
	if !a.clipboardOK {
		return
	}
	sel := a.store.Selection()
	if len(sel) == 0 {
		return
	}
	payload := clipPayload{Slate: true}
	for id := range sel {
		e, ok := a.store.GetElement(id)
		if !ok {
			continue
		}
		c := e.Clone()
		// Copies travel in absolute coordinates so pasting never depends on
		// the source section still existing.
		abs := board.ToAbsolute(e, a.store)
		c.X, c.Y = abs.X, abs.Y
		c.SectionID = ""
		payload.Elements = append(payload.Elements, c)
	}
	if len(payload.Elements) == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("copy: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
}

func (a *App) pasteClipboard() {
	if !a.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	var payload clipPayload
	if err := json.Unmarshal(data, &payload); err != nil || !payload.Slate {
		return
	}

	a.store.ClearSelection()
	ids := make([]string, 0, len(payload.Elements))
	for _, e := range payload.Elements {
		c := e.Clone()
		c.ID = board.NewID()
		c.X += pasteOffset
		c.Y += pasteOffset
		// Connector endpoints reference elements that were not copied with
		// them; pasted connectors keep their last routed geometry.
		if c.StartPoint != nil {
			c.StartPoint.ElementID = ""
			c.StartPoint.Point.X += pasteOffset
			c.StartPoint.Point.Y += pasteOffset
		}
		if c.EndPoint != nil {
			c.EndPoint.ElementID = ""
			c.EndPoint.Point.X += pasteOffset
			c.EndPoint.Point.Y += pasteOffset
		}
		for i := range c.IntermediatePoints {
			c.IntermediatePoints[i].X += pasteOffset
			c.IntermediatePoints[i].Y += pasteOffset
		}
		a.store.AddElement(c)
		a.store.Select(c.ID, true)
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return
	}
	a.store.AddHistoryEntry(
		"paste elements",
		nil, nil,
		store.HistoryMeta{ElementIDs: ids, OperationType: "paste", AffectedCount: len(ids)},
	)
}
