package opendoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// cellLayout renders a table as rows of cell texts; continuation cells
// show as "^", other empty cells as "".
func cellLayout(table *Table) [][]string {
	var out [][]string
	for _, row := range table.Rows() {
		var cells []string
		for _, cell := range row.Cells() {
			text := ""
			if cell.IsContinuation() {
				text = "^"
			}
			for _, e := range cell.Elements() {
				if p, ok := e.(*Paragraph); ok {
					text += p.PlainText()
				}
			}
			cells = append(cells, text)
		}
		out = append(out, cells)
	}
	return out
}

func TestTableBuilderBasic(t *testing.T) {
	table, err := NewTableBuilder(nil).
		Row(nil).Cell("A1", nil).Cell("B1", nil).
		Row(nil).Cell("A2", nil).Cell("B2", nil).
		End().Table()
	if err != nil {
		t.Fatalf("builder error = %v", err)
	}
	want := [][]string{{"A1", "B1"}, {"A2", "B2"}}
	if diff := cmp.Diff(want, cellLayout(table)); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestTableBuilderAutoRow(t *testing.T) {
	table, err := NewTableBuilder(nil).Cell("only", nil).End().Table()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]string{{"only"}}, cellLayout(table)); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestTableBuilderRowspan(t *testing.T) {
	tests := []struct {
		name  string
		build func(*TableBuilder) *TableBuilder
		want  [][]string
	}{
		{
			name: "continuation before the next cell",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", nil).Rowspan(2).Cell("B", nil).
					Row(nil).Cell("C", nil)
			},
			want: [][]string{{"A", "B"}, {"^", "C"}},
		},
		{
			name: "rowspan n yields n-1 continuations",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", nil).Rowspan(3).Cell("B", nil).
					Row(nil).Cell("C", nil).
					Row(nil).Cell("D", nil)
			},
			want: [][]string{{"A", "B"}, {"^", "C"}, {"^", "D"}},
		},
		{
			name: "trailing column continues when the row closes",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", nil).Cell("B", nil).Rowspan(2).
					Row(nil).Cell("C", nil)
			},
			want: [][]string{{"A", "B"}, {"C", "^"}},
		},
		{
			name: "short row pads up to a pending span",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", nil).Cell("B", nil).Cell("C", nil).Rowspan(2).
					Row(nil).Cell("X", nil)
			},
			want: [][]string{{"A", "B", "C"}, {"X", "", "^"}},
		},
		{
			name: "short row continues every span on its right",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", nil).Cell("B", nil).Rowspan(2).Cell("C", nil).Cell("D", nil).Rowspan(2).
					Row(nil).Cell("X", nil)
			},
			want: [][]string{{"A", "B", "C", "D"}, {"X", "^", "", "^"}},
		},
		{
			name: "end flushes pending spans",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", nil).Rowspan(3).Cell("B", nil)
			},
			want: [][]string{{"A", "B"}, {"^", ""}, {"^", ""}},
		},
		{
			name: "rowspan from properties",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", Props{"rowspan": 2}).Cell("B", nil).
					Row(nil).Cell("C", nil)
			},
			want: [][]string{{"A", "B"}, {"^", "C"}},
		},
		{
			name: "rowspan of one is a plain cell",
			build: func(b *TableBuilder) *TableBuilder {
				return b.Row(nil).Cell("A", nil).Rowspan(1).
					Row(nil).Cell("B", nil)
			},
			want: [][]string{{"A"}, {"B"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.build(NewTableBuilder(nil)).End().Table()
			if err != nil {
				t.Fatalf("builder error = %v", err)
			}
			if diff := cmp.Diff(tt.want, cellLayout(table)); diff != "" {
				t.Errorf("layout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTableBuilderColspan(t *testing.T) {
	b := NewTableBuilder(nil).Row(nil).Cell("wide", nil).Colspan(3)
	if b.index != 3 {
		t.Errorf("index after colspan(3) = %d, want 3", b.index)
	}
	b.Cell("next", nil)
	if b.cellIndex != 3 {
		t.Errorf("next cell index = %d, want 3", b.cellIndex)
	}
	// changing the span again moves the cursor relative to the old span
	b.Colspan(2)
	if b.index != 5 {
		t.Errorf("index after re-span = %d, want 5", b.index)
	}

	table, err := b.End().Table()
	if err != nil {
		t.Fatal(err)
	}
	cells := table.Rows()[0].Cells()
	if got := cells[0].Properties().Get("colspan", nil); got != 3 {
		t.Errorf("colspan property = %v, want 3", got)
	}
}

func TestTableBuilderColspanWithRowspan(t *testing.T) {
	table, err := NewTableBuilder(nil).
		Row(nil).Cell("A", nil).Colspan(2).Rowspan(2).Cell("B", nil).
		Row(nil).Cell("C", nil).
		End().Table()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]string{{"A", "B"}, {"^", "C"}}, cellLayout(table)); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	cont := table.Rows()[1].Cells()[0]
	if got := cont.Properties().Get("colspan", nil); got != 2 {
		t.Errorf("continuation colspan = %v, want 2", got)
	}
}

func TestTableBuilderSkips(t *testing.T) {
	b := NewTableBuilder(nil).Grid(1000, 1000, 1000).
		Row(nil).SkipBefore(1).Cell("B", nil).SkipAfter(1)
	if err := b.Err(); err != nil {
		t.Fatal(err)
	}
	table, _ := b.End().Table()
	row := table.Rows()[0]
	if got := row.Properties().Get("skipBefore", nil); got != 1 {
		t.Errorf("skipBefore = %v, want 1", got)
	}
	if got := row.Properties().Get("skipAfter", nil); got != 1 {
		t.Errorf("skipAfter = %v, want 1", got)
	}

	err := NewTableBuilder(nil).Grid(1000, 1000).Row(nil).SkipBefore(3).Err()
	if !IsStructuralError(err) {
		t.Errorf("skip beyond the grid error = %v, want structural error", err)
	}
}

func TestTableBuilderGrid(t *testing.T) {
	table, err := NewTableBuilder(nil).Grid(100).Col(200).Col(300).Row(nil).Cell("x", nil).End().Table()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{100, 200, 300}, table.Grid()); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestTableBuilderContextErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   func(*TableBuilder) *TableBuilder
		message string
	}{
		{
			name:    "col outside grid",
			build:   func(b *TableBuilder) *TableBuilder { return b.Col(100) },
			message: "col() requires [GRID] context, current context is TABLE",
		},
		{
			name:    "colspan outside cell",
			build:   func(b *TableBuilder) *TableBuilder { return b.Row(nil).Colspan(2) },
			message: "colspan() requires [CELL] context, current context is ROW",
		},
		{
			name:    "rowspan outside cell",
			build:   func(b *TableBuilder) *TableBuilder { return b.Rowspan(2) },
			message: "rowspan() requires [CELL] context",
		},
		{
			name:    "grid after rows",
			build:   func(b *TableBuilder) *TableBuilder { return b.Row(nil).Grid(100) },
			message: "grid() requires [TABLE GRID] context",
		},
		{
			name:    "skipBefore inside cell",
			build:   func(b *TableBuilder) *TableBuilder { return b.Cell("x", nil).SkipBefore(1) },
			message: "skipBefore() requires [ROW] context",
		},
		{
			name:    "calls after End",
			build:   func(b *TableBuilder) *TableBuilder { return b.Cell("x", nil).End().Cell("y", nil) },
			message: "cell() called after End()",
		},
		{
			name:    "negative colspan",
			build:   func(b *TableBuilder) *TableBuilder { return b.Cell("x", nil).Colspan(0) },
			message: "colspan must be at least 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build(NewTableBuilder(nil)).Err()
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want structural error", err)
			}
			if !strings.Contains(se.Message, tt.message) {
				t.Errorf("message = %q, want it to contain %q", se.Message, tt.message)
			}
		})
	}
}

func TestTableBuilderStickyError(t *testing.T) {
	b := NewTableBuilder(nil).Col(1).Row(nil).Cell("x", nil)
	first := b.Err()
	if first == nil {
		t.Fatal("expected an error")
	}
	b.Colspan(0)
	if b.Err() != first {
		t.Errorf("later error replaced the first: %v", b.Err())
	}
	if len(b.table.Rows()) != 0 {
		t.Error("calls after an error must not modify the table")
	}
}

func TestTableBuilderNested(t *testing.T) {
	outer := NewTableBuilder(nil).Row(nil).Cell("outer", nil)
	inner := outer.NestedTable(nil)
	if inner == outer {
		t.Fatal("NestedTable returned the parent builder")
	}
	inner.Row(nil).Cell("inner", nil).Rowspan(2)
	back := inner.End()
	if back != outer {
		t.Fatal("End on a nested table must return the parent")
	}
	table, err := back.Cell("after", nil).End().Table()
	if err != nil {
		t.Fatal(err)
	}

	cells := table.Rows()[0].Cells()
	if len(cells) != 2 {
		t.Fatalf("outer cells = %d, want 2", len(cells))
	}
	var nested *Table
	for _, e := range cells[0].Elements() {
		if tbl, ok := e.(*Table); ok {
			nested = tbl
		}
	}
	if nested == nil {
		t.Fatal("nested table not inserted into the cell")
	}
	// the nested table flushed its own span on End
	if diff := cmp.Diff([][]string{{"inner"}, {"^"}}, cellLayout(nested)); diff != "" {
		t.Errorf("nested layout mismatch (-want +got):\n%s", diff)
	}
}

func TestTableBuilderNestedErrorPropagates(t *testing.T) {
	outer := NewTableBuilder(nil).Cell("x", nil)
	outer.NestedTable(nil).Col(5)
	if !IsStructuralError(outer.Err()) {
		t.Errorf("outer error = %v, want the nested structural error", outer.Err())
	}
}

func TestTableBuilderEndAll(t *testing.T) {
	outer := NewTableBuilder(nil).Cell("x", nil)
	inner := outer.NestedTable(nil).Cell("y", nil).NestedTable(nil).Cell("z", nil)
	if got := inner.EndAll(); got != outer {
		t.Error("EndAll did not return the outermost builder")
	}
	if !outer.ended {
		t.Error("outermost table not ended")
	}
}

func TestTableBuilderSpanColumns(t *testing.T) {
	b := NewTableBuilder(nil).Row(nil).Cell("a", nil).Rowspan(2).Cell("b", nil).Cell("c", nil).Rowspan(3)
	if diff := cmp.Diff([]int{0, 2}, b.spanColumns()); diff != "" {
		t.Errorf("span columns mismatch (-want +got):\n%s", diff)
	}
	b.End()
	if len(b.spanColumns()) != 0 {
		t.Errorf("spans left after End: %v", b.spanColumns())
	}
}

func TestListBuilder(t *testing.T) {
	doc := NewDocument(nil)
	list, err := doc.NewList("", Props{"keepNext": true}).
		Item("one", nil).
		ListItems("", nil).Item("nested", nil).End().
		ListItems(ListDecimal, nil).Item("numbered", nil).End().
		Item(NewParagraph(Props{"align": "center"}), Props{"bold": true}).
		List()
	if err != nil {
		t.Fatal(err)
	}
	if list.Format() != ListBullet || list.NumID() != 1 || list.Level() != 0 {
		t.Errorf("outer list = %s/%d/%d, want bullet/1/0", list.Format(), list.NumID(), list.Level())
	}

	children := list.Elements()
	if len(children) != 4 {
		t.Fatalf("entries = %d, want 4", len(children))
	}
	same := children[1].(*ListItems)
	if same.NumID() != 1 || same.Level() != 1 || same.Format() != ListBullet {
		t.Errorf("inherited list = %s/%d/%d", same.Format(), same.NumID(), same.Level())
	}
	other := children[2].(*ListItems)
	if other.NumID() != 2 || other.Format() != ListDecimal {
		t.Errorf("decimal list = %s/%d, want decimal/2", other.Format(), other.NumID())
	}
	last := children[3].(*Paragraph)
	if !last.Properties().Has("align") || !last.Properties().Has("bold") {
		t.Errorf("paragraph entry props = %v, want align and bold", last.Properties().All())
	}
}

func TestListBuilderErrors(t *testing.T) {
	doc := NewDocument(nil)
	err := doc.NewList("stars", nil).Err()
	if !IsValidationError(err) {
		t.Errorf("unknown format error = %v, want validation error", err)
	}

	b := doc.NewList("", nil)
	nested := b.ListItems("", nil)
	nested.Item(NewTable(nil), nil)
	if !IsStructuralError(b.Err()) {
		t.Errorf("table entry error = %v, want structural error propagated to the parent", b.Err())
	}
	if b.End() != b || nested.End() != b || nested.EndAll() != b {
		t.Error("End/EndAll navigation mismatch")
	}
}
