package board

// NewTable creates a table element with an empty rows x cols cell grid.
func NewTable(x, y float64, rows, cols int) *Element {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	e := NewElement(TypeTable, x, y)
	e.Rows = rows
	e.Cols = cols
	e.Cells = emptyCells(rows, cols)
	e.Width = float64(cols) * defaultCellWidth
	e.Height = float64(rows) * defaultCellHeight
	return e
}

const (
	defaultCellWidth  = 120.0
	defaultCellHeight = 36.0
)

func emptyCells(rows, cols int) [][]string {
	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
	}
	return cells
}

// Cell returns the text at (row, col), or "" when out of bounds.
func (e *Element) Cell(row, col int) string {
	if e.Type != TypeTable || row < 0 || row >= len(e.Cells) {
		return ""
	}
	if col < 0 || col >= len(e.Cells[row]) {
		return ""
	}
	return e.Cells[row][col]
}

// SetCell writes the text at (row, col). Out-of-bounds writes are dropped.
func (e *Element) SetCell(row, col int, text string) bool {
	if e.Type != TypeTable || row < 0 || row >= len(e.Cells) {
		return false
	}
	if col < 0 || col >= len(e.Cells[row]) {
		return false
	}
	e.Cells[row][col] = text
	return true
}

// ClampCell clamps a target cell coordinate to the table bounds, used by
// directional cell navigation in the overlay editor.
func (e *Element) ClampCell(row, col int) (int, int) {
	if row < 0 {
		row = 0
	}
	if row >= e.Rows {
		row = e.Rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= e.Cols {
		col = e.Cols - 1
	}
	return row, col
}

// InsertRow rebuilds the cell matrix with a new empty row at index,
// preserving existing cell content by position. The index is clamped to
// [0, rows].
func (e *Element) InsertRow(index int) {
	if e.Type != TypeTable {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > e.Rows {
		index = e.Rows
	}
	next := emptyCells(e.Rows+1, e.Cols)
	for r := 0; r < e.Rows; r++ {
		dst := r
		if r >= index {
			dst = r + 1
		}
		copy(next[dst], e.Cells[r])
	}
	e.Cells = next
	e.Rows++
	e.Height += defaultCellHeight
}

// DeleteRow removes a row. The last remaining row cannot be deleted.
func (e *Element) DeleteRow(index int) {
	if e.Type != TypeTable || e.Rows <= 1 || index < 0 || index >= e.Rows {
		return
	}
	e.Cells = append(e.Cells[:index], e.Cells[index+1:]...)
	e.Rows--
	e.Height -= defaultCellHeight
}

// InsertCol rebuilds rows with a new empty column at index.
func (e *Element) InsertCol(index int) {
	if e.Type != TypeTable {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > e.Cols {
		index = e.Cols
	}
	for r := range e.Cells {
		row := make([]string, e.Cols+1)
		for c := 0; c < e.Cols; c++ {
			dst := c
			if c >= index {
				dst = c + 1
			}
			row[dst] = e.Cells[r][c]
		}
		e.Cells[r] = row
	}
	e.Cols++
	e.Width += defaultCellWidth
}

// DeleteCol removes a column. The last remaining column cannot be deleted.
func (e *Element) DeleteCol(index int) {
	if e.Type != TypeTable || e.Cols <= 1 || index < 0 || index >= e.Cols {
		return
	}
	for r := range e.Cells {
		e.Cells[r] = append(e.Cells[r][:index], e.Cells[r][index+1:]...)
	}
	e.Cols--
	e.Width -= defaultCellWidth
}

// CellRect returns the local-frame rectangle of a cell, assuming a uniform
// grid over the table's width and height.
func (e *Element) CellRect(row, col int) (x, y, w, h float64) {
	if e.Type != TypeTable || e.Rows == 0 || e.Cols == 0 {
		return 0, 0, 0, 0
	}
	w = e.Width / float64(e.Cols)
	h = e.Height / float64(e.Rows)
	return float64(col) * w, float64(row) * h, w, h
}
