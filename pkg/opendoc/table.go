package opendoc

// Table owns an optional column grid and an ordered sequence of rows.
type Table struct {
	node
	grid []int
}

// NewTable creates an empty table.
func NewTable(p Props) *Table {
	return &Table{node: newNode(p)}
}

// Grid returns the declared column widths in twips.
func (t *Table) Grid() []int {
	return append([]int(nil), t.grid...)
}

// SetGrid replaces the declared column widths (twips).
func (t *Table) SetGrid(widths ...int) *Table {
	t.grid = append([]int(nil), widths...)
	return t
}

// AddRow appends a new row.
func (t *Table) AddRow(p Props) *TableRow {
	row := &TableRow{node: newNode(p)}
	// a fresh row is never attached
	_ = t.attach("table", row)
	return row
}

// Rows returns the table rows.
func (t *Table) Rows() []*TableRow {
	rows := make([]*TableRow, 0, len(t.children))
	for _, c := range t.children {
		rows = append(rows, c.(*TableRow))
	}
	return rows
}

// TableRow is an ordered sequence of cells.
type TableRow struct {
	node
}

// AddCell appends a new cell.
func (r *TableRow) AddCell(p Props) *TableCell {
	cell := &TableCell{blockContainer{node: newNode(p)}}
	_ = r.attach("row", cell)
	return cell
}

// Cells returns the row cells.
func (r *TableRow) Cells() []*TableCell {
	cells := make([]*TableCell, 0, len(r.children))
	for _, c := range r.children {
		cells = append(cells, c.(*TableCell))
	}
	return cells
}

// TableCell holds block content.
type TableCell struct {
	blockContainer
}

// Insert appends block content; see Section.Insert for the lifting rules.
func (c *TableCell) Insert(items ...any) error {
	return c.insertBlocks("cell", items)
}

// IsContinuation reports whether the cell continues a vertical merge.
func (c *TableCell) IsContinuation() bool {
	return c.Properties().String("rowspan", "") == rowspanContinue
}

const rowspanContinue = "continue"
