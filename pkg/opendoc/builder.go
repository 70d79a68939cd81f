package opendoc

import (
	"fmt"
	"sort"
)

type tableContext int

const (
	contextTable tableContext = iota
	contextGrid
	contextRow
	contextCell
)

func (c tableContext) String() string {
	switch c {
	case contextTable:
		return "TABLE"
	case contextGrid:
		return "GRID"
	case contextRow:
		return "ROW"
	case contextCell:
		return "CELL"
	default:
		return "UNKNOWN"
	}
}

// pendingSpan is a vertical merge still owed continuation cells.
type pendingSpan struct {
	remaining int // rows still covered, counting the current one
	colspan   int
}

// TableBuilder is a cursor over a Table. Calls chain; the first error is
// kept and every later call becomes a no-op. Check it with Err or Table.
//
//	tb := opendoc.NewTableBuilder(nil).
//		Row(nil).Cell("A", nil).Rowspan(2).Cell("B", nil).
//		Row(nil).Cell("C", nil).
//		End()
type TableBuilder struct {
	table   *Table
	parent  *TableBuilder
	context tableContext
	row     *TableRow
	cell    *TableCell
	// index is the grid column of the next cell in the current row;
	// cellIndex is the grid column of the current cell.
	index     int
	cellIndex int
	spans     map[int]*pendingSpan
	maxCols   int
	ended     bool
	err       error
}

// NewTableBuilder starts building a new table.
func NewTableBuilder(p Props) *TableBuilder {
	return &TableBuilder{
		table: NewTable(p),
		spans: make(map[int]*pendingSpan),
	}
}

func (b *TableBuilder) fail(err error) *TableBuilder {
	for cur := b; cur != nil; cur = cur.parent {
		if cur.err == nil {
			cur.err = err
		}
	}
	return b
}

func (b *TableBuilder) require(op string, allowed ...tableContext) bool {
	if b.err != nil {
		return false
	}
	if b.ended {
		b.fail(NewStructuralError("table", fmt.Sprintf("%s() called after End()", op)))
		return false
	}
	for _, c := range allowed {
		if b.context == c {
			return true
		}
	}
	names := make([]string, len(allowed))
	for i, c := range allowed {
		names[i] = c.String()
	}
	b.fail(NewStructuralError("table", fmt.Sprintf("%s() requires %v context, current context is %s", op, names, b.context)))
	return false
}

// Err returns the first error raised by the builder or any nested
// builder.
func (b *TableBuilder) Err() error {
	return b.err
}

// Table returns the built table and the first error.
func (b *TableBuilder) Table() (*Table, error) {
	return b.table, b.err
}

// Grid declares column widths in twips and enters GRID context.
func (b *TableBuilder) Grid(widths ...int) *TableBuilder {
	if !b.require("grid", contextTable, contextGrid) {
		return b
	}
	b.context = contextGrid
	b.table.grid = append(b.table.grid, widths...)
	return b
}

// Col appends one column width (twips) to the grid.
func (b *TableBuilder) Col(width int) *TableBuilder {
	if !b.require("col", contextGrid) {
		return b
	}
	b.table.grid = append(b.table.grid, width)
	return b
}

// Row closes the current row and starts a new one.
func (b *TableBuilder) Row(p Props) *TableBuilder {
	if !b.require("row", contextTable, contextGrid, contextRow, contextCell) {
		return b
	}
	b.closeRow()
	b.row = b.table.AddRow(p)
	b.cell = nil
	b.index = 0
	b.context = contextRow
	return b
}

// Cell adds a cell to the current row, starting a row when none is open.
// Columns still covered by a row span from an earlier row first receive
// continuation cells. Content is inserted with TableCell.Insert.
func (b *TableBuilder) Cell(content any, p Props) *TableBuilder {
	if !b.require("cell", contextTable, contextGrid, contextRow, contextCell) {
		return b
	}
	if b.row == nil {
		b.Row(nil)
	}
	b.continueSpans()

	cell := b.row.AddCell(p)
	if content != nil {
		if err := cell.Insert(content); err != nil {
			return b.fail(err)
		}
	}
	b.cell = cell
	b.cellIndex = b.index
	b.index++
	b.context = contextCell

	// spans given as properties move the cursor like Colspan and Rowspan
	if n := intProp(cell, "colspan"); n > 1 {
		b.index += n - 1
	}
	if n := intProp(cell, "rowspan"); n > 1 {
		b.spans[b.cellIndex] = &pendingSpan{remaining: n, colspan: max(intProp(cell, "colspan"), 1)}
	}
	return b
}

// intProp reads a numeric property of an element; anything else is 0.
func intProp(e Element, key string) int {
	f, _ := numericProp(e.Properties().Get(key, nil))
	return int(f)
}

// Colspan merges the current cell across n grid columns.
func (b *TableBuilder) Colspan(n int) *TableBuilder {
	if !b.require("colspan", contextCell) {
		return b
	}
	if n < 1 {
		return b.fail(NewStructuralError("table", fmt.Sprintf("colspan must be at least 1, got %d", n)))
	}
	prev := max(intProp(b.cell, "colspan"), 1)
	b.cell.Properties().Set("colspan", n)
	b.index += n - prev
	if span, ok := b.spans[b.cellIndex]; ok {
		span.colspan = n
	}
	return b
}

// Rowspan merges the current cell down across n rows. Later rows receive
// continuation cells in the same column.
func (b *TableBuilder) Rowspan(n int) *TableBuilder {
	if !b.require("rowspan", contextCell) {
		return b
	}
	if n < 1 {
		return b.fail(NewStructuralError("table", fmt.Sprintf("rowspan must be at least 1, got %d", n)))
	}
	if n == 1 {
		return b
	}
	b.cell.Properties().Set("rowspan", n)
	b.spans[b.cellIndex] = &pendingSpan{remaining: n, colspan: max(intProp(b.cell, "colspan"), 1)}
	return b
}

// SkipBefore leaves n empty grid columns before the first cell of the
// current row.
func (b *TableBuilder) SkipBefore(n int) *TableBuilder {
	if !b.require("skipBefore", contextRow) {
		return b
	}
	if !b.checkGrid("skipBefore", n) {
		return b
	}
	b.row.Properties().Set("skipBefore", n)
	b.index += n
	return b
}

// SkipAfter leaves n empty grid columns after the last cell of the
// current row.
func (b *TableBuilder) SkipAfter(n int) *TableBuilder {
	if !b.require("skipAfter", contextRow, contextCell) {
		return b
	}
	if !b.checkGrid("skipAfter", n) {
		return b
	}
	b.row.Properties().Set("skipAfter", n)
	return b
}

// checkGrid bounds skip arithmetic by the declared grid, if any.
func (b *TableBuilder) checkGrid(op string, n int) bool {
	if n < 0 {
		b.fail(NewStructuralError("table", fmt.Sprintf("%s must not be negative", op)))
		return false
	}
	if cols := len(b.table.grid); cols > 0 && b.index+n > cols {
		b.fail(NewStructuralError("table", fmt.Sprintf("%s(%d) at column %d exceeds the %d grid columns", op, n, b.index, cols)))
		return false
	}
	return true
}

// NestedTable starts a table inside the current cell and returns its
// builder; End on it returns to this one.
func (b *TableBuilder) NestedTable(p Props) *TableBuilder {
	if !b.require("nestedTable", contextCell) {
		return b
	}
	child := NewTableBuilder(p)
	child.parent = b
	if err := b.cell.Insert(child.table); err != nil {
		b.fail(err)
		return b
	}
	return child
}

// End finishes this table: the open row is closed and outstanding row
// spans are flushed into synthesized rows. It returns the parent builder,
// or b itself for the outermost table.
func (b *TableBuilder) End() *TableBuilder {
	if b.err == nil && !b.ended {
		b.closeRow()
		b.flushSpans()
		b.ended = true
		b.row = nil
		b.cell = nil
		b.context = contextTable
	}
	if b.parent != nil {
		return b.parent
	}
	return b
}

// EndAll ends this and every enclosing table and returns the outermost
// builder.
func (b *TableBuilder) EndAll() *TableBuilder {
	cur := b
	for {
		next := cur.End()
		if next == cur {
			return cur
		}
		cur = next
	}
}

// continueSpans inserts continuation cells for every pending span that
// covers the cursor column.
func (b *TableBuilder) continueSpans() {
	for {
		span, ok := b.spans[b.index]
		if !ok {
			return
		}
		p := Props{"rowspan": rowspanContinue}
		if span.colspan > 1 {
			p["colspan"] = span.colspan
		}
		b.row.AddCell(p)
		span.remaining--
		if span.remaining <= 1 {
			delete(b.spans, b.index)
		}
		b.index += span.colspan
	}
}

func (b *TableBuilder) closeRow() {
	if b.row == nil {
		return
	}
	b.continueSpans()
	// a short row still owes continuations to the spans on its right
	for _, col := range b.spanColumns() {
		if col < b.index {
			continue
		}
		for b.index < col {
			b.row.AddCell(nil)
			b.index++
		}
		b.continueSpans()
	}
	width := b.index + intProp(b.row, "skipAfter")
	if width > b.maxCols {
		b.maxCols = width
	}
	b.row = nil
}

// flushSpans synthesizes rows until no span is pending. Columns not
// covered by a span get an empty cell.
func (b *TableBuilder) flushSpans() {
	for len(b.spans) > 0 {
		before := b.pendingRows()
		cols := b.maxCols
		for idx := range b.spans {
			if idx+b.spans[idx].colspan > cols {
				cols = idx + b.spans[idx].colspan
			}
		}
		b.row = b.table.AddRow(nil)
		b.index = 0
		for b.index < cols {
			if _, ok := b.spans[b.index]; ok {
				b.continueSpans()
				continue
			}
			b.row.AddCell(nil)
			b.index++
		}
		b.row = nil
		if b.pendingRows() == before {
			// overlapping spans shadow each other; drop what cannot be placed
			b.spans = make(map[int]*pendingSpan)
		}
	}
}

func (b *TableBuilder) pendingRows() int {
	total := 0
	for _, span := range b.spans {
		total += span.remaining
	}
	return total
}

// spanColumns lists the columns with an outstanding row span in
// ascending order.
func (b *TableBuilder) spanColumns() []int {
	cols := make([]int, 0, len(b.spans))
	for idx := range b.spans {
		cols = append(cols, idx)
	}
	sort.Ints(cols)
	return cols
}

// ListBuilder is a cursor over a ListItems. Like TableBuilder it keeps the
// first error.
type ListBuilder struct {
	list   *ListItems
	parent *ListBuilder
	ids    *IDGenerator
	err    error
}

func newListBuilder(ids *IDGenerator, listFormat string, p Props) *ListBuilder {
	b := &ListBuilder{ids: ids}
	if listFormat == "" {
		listFormat = ListBullet
	}
	b.list = &ListItems{node: newNode(p), numID: ids.NextNumbering(), format: listFormat}
	if err := validListFormat(listFormat); err != nil {
		b.err = err
	}
	return b
}

func (b *ListBuilder) fail(err error) *ListBuilder {
	for cur := b; cur != nil; cur = cur.parent {
		if cur.err == nil {
			cur.err = err
		}
	}
	return b
}

// Err returns the first error raised by the builder or a nested builder.
func (b *ListBuilder) Err() error {
	return b.err
}

// List returns the built list and the first error.
func (b *ListBuilder) List() (*ListItems, error) {
	return b.list, b.err
}

// Item appends an entry. Content is lifted into a paragraph; p holds the
// paragraph properties.
func (b *ListBuilder) Item(content any, p Props) *ListBuilder {
	if b.err != nil {
		return b
	}
	if err := b.list.addItem(content, p); err != nil {
		return b.fail(err)
	}
	return b
}

// ListItems starts a nested list one level deeper and returns its
// builder. An empty format inherits the parent's numbering; any other
// format gets a numbering definition of its own.
func (b *ListBuilder) ListItems(listFormat string, p Props) *ListBuilder {
	if b.err != nil {
		return b
	}
	child := &ListBuilder{parent: b, ids: b.ids}
	numID, f := b.list.numID, b.list.format
	if listFormat != "" && listFormat != f {
		if err := validListFormat(listFormat); err != nil {
			return b.fail(err)
		}
		numID, f = b.ids.NextNumbering(), listFormat
	}
	child.list = &ListItems{node: newNode(p), numID: numID, level: b.list.level + 1, format: f}
	if err := b.list.attach("listitems", child.list); err != nil {
		return b.fail(err)
	}
	return child
}

// End returns the parent builder, or b itself for the outermost list.
func (b *ListBuilder) End() *ListBuilder {
	if b.parent != nil {
		return b.parent
	}
	return b
}

// EndAll returns the outermost builder.
func (b *ListBuilder) EndAll() *ListBuilder {
	cur := b
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}
