package importer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

func newSection(t *testing.T) (*opendoc.Document, *opendoc.Section) {
	t.Helper()
	doc := opendoc.NewDocument(nil)
	section, err := doc.AddSection("", nil)
	if err != nil {
		t.Fatal(err)
	}
	return doc, section
}

// findRun returns the first run below elements whose text is text.
func findRun(elements []opendoc.Element, text string) *opendoc.TextRun {
	for _, e := range elements {
		if run, ok := e.(*opendoc.TextRun); ok && run.PlainText() == text {
			return run
		}
		if run := findRun(e.Elements(), text); run != nil {
			return run
		}
	}
	return nil
}

func paragraphs(t *testing.T, elements []opendoc.Element) []*opendoc.Paragraph {
	t.Helper()
	var out []*opendoc.Paragraph
	for _, e := range elements {
		p, ok := e.(*opendoc.Paragraph)
		if !ok {
			t.Fatalf("element %T is not a paragraph", e)
		}
		out = append(out, p)
	}
	return out
}

func plainTexts(paras []*opendoc.Paragraph) []string {
	out := make([]string, len(paras))
	for i, p := range paras {
		out[i] = p.PlainText()
	}
	return out
}

func TestRunProps(t *testing.T) {
	im := newImporter(opendoc.NewDocument(nil), &Options{CodeFont: "Mono"}, "test")
	tests := []struct {
		name string
		path []string
		want opendoc.Props
	}{
		{"none", nil, nil},
		{"unknown tag", []string{"span"}, nil},
		{"bold", []string{"strong"}, opendoc.Props{"bold": true}},
		{"nested", []string{"b", "em", "u"}, opendoc.Props{"bold": true, "italic": true, "underline": "single"}},
		{"strike", []string{"del"}, opendoc.Props{"strike": true}},
		{"superscript", []string{"sup"}, opendoc.Props{"valign": "superscript"}},
		{"innermost valign wins", []string{"sup", "sub"}, opendoc.Props{"valign": "subscript"}},
		{"code", []string{"kbd"}, opendoc.Props{"font": "Mono"}},
		{"mark", []string{"mark"}, opendoc.Props{"highlight": "yellow"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, im.runProps(tt.path)); diff != "" {
				t.Errorf("runProps() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollapse(t *testing.T) {
	text := func(s string) piece { return piece{kind: pieceText, text: s} }
	tests := []struct {
		name string
		in   []piece
		want []string
	}{
		{"trims edges", []piece{text("  hello  ")}, []string{"hello"}},
		{"joins runs of space", []piece{text("a \n\t b")}, []string{"a b"}},
		{"space across pieces", []piece{text("a "), text(" b")}, []string{"a ", "b"}},
		{"blank piece keeps one space", []piece{text("a"), text("   "), text("b")}, []string{"a", " ", "b"}},
		{"space after break", []piece{text("a"), {kind: pieceBreak}, text(" b ")}, []string{"a", "", "b"}},
		{"only space", []piece{text(" \n ")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, pc := range collapse(tt.in) {
				got = append(got, pc.text)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("collapse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeadingStyle(t *testing.T) {
	doc := opendoc.NewDocument(nil)
	im := newImporter(doc, nil, "test")

	if id := im.headingStyle(2); id != "Heading2" {
		t.Errorf("headingStyle(2) = %q", id)
	}
	st := doc.Style("Heading 2")
	if st == nil {
		t.Fatal("Heading 2 not registered")
	}
	p := st.Properties()
	if p.Get("basedOn", nil) != "Normal" || p.Get("run.bold", nil) != true || p.Get("outline", nil) != 1 {
		t.Errorf("heading properties = %v", p.All())
	}
	if got := p.Get("run.size", nil); got != 14.0 {
		t.Errorf("run.size = %v", got)
	}

	custom := opendoc.NewParagraphStyle("Heading 1", opendoc.Props{"color": "FF0000"})
	if err := doc.AddStyle(custom); err != nil {
		t.Fatal(err)
	}
	im.headingStyle(1)
	if doc.Style("Heading 1") != custom {
		t.Error("an existing heading style was replaced")
	}

	if id := im.headingStyle(9); id != "Heading6" {
		t.Errorf("headingStyle(9) = %q, want clamped Heading6", id)
	}
	if len(doc.Styles()) != 3 {
		t.Errorf("styles = %d, want 3", len(doc.Styles()))
	}
}

func TestImageSource(t *testing.T) {
	im := newImporter(opendoc.NewDocument(nil), &Options{BaseDir: "/docs"}, "test")
	tests := map[string]string{
		"img/logo.png":              "/docs/img/logo.png",
		"/abs/logo.png":             "/abs/logo.png",
		"https://example.com/a.png": "https://example.com/a.png",
		"data:image/png;base64,AA":  "data:image/png;base64,AA",
	}
	for src, want := range tests {
		if got := im.imageSource(src); got != want {
			t.Errorf("imageSource(%q) = %q, want %q", src, got, want)
		}
	}
}
