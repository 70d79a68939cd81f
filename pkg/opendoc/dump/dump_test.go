package dump

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

func names(n *etree.Element) []string {
	var out []string
	for _, c := range n.ChildElements() {
		out = append(out, c.Tag)
	}
	return out
}

func attr(n *etree.Element, name string) string {
	return n.SelectAttrValue(name, "")
}

// textContent concatenates the character data below n.
func textContent(n *etree.Element) string {
	var sb strings.Builder
	for _, tok := range n.Child {
		switch v := tok.(type) {
		case *etree.CharData:
			sb.WriteString(v.Data)
		case *etree.Element:
			sb.WriteString(textContent(v))
		}
	}
	return sb.String()
}

func TestTree(t *testing.T) {
	doc := opendoc.NewDocument(opendoc.Props{"core": map[string]any{"title": "Dump"}})
	if err := doc.AddStyle(opendoc.NewParagraphStyle("Heading 1", opendoc.Props{"bold": true})); err != nil {
		t.Fatal(err)
	}
	section, err := doc.AddSection("main", opendoc.Props{"page": "A4"})
	if err != nil {
		t.Fatal(err)
	}
	header, err := section.AddHeader("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := header.Insert(opendoc.PageNumberField()); err != nil {
		t.Fatal(err)
	}

	para := opendoc.NewParagraph(opendoc.Props{"spacing": map[string]any{"after": 10}})
	start, end, _ := doc.Bookmark("top")
	if err := para.Insert(start, opendoc.NewText("Hello", opendoc.Props{"bold": true}), end, opendoc.PageBreak()); err != nil {
		t.Fatal(err)
	}
	table := opendoc.NewTableBuilder(nil).Grid(100, 200).Row(nil).Cell("A", nil).Colspan(2)
	list := doc.NewList(opendoc.ListDecimal, nil).Item("one", nil)
	if err := section.Insert(para, table, list, opendoc.NewLink("#top", "back", nil)); err != nil {
		t.Fatal(err)
	}

	root := Tree(doc)
	if diff := cmp.Diff([]string{"properties", "styles", "body"}, names(root)); diff != "" {
		t.Errorf("root children mismatch (-want +got):\n%s", diff)
	}
	if got := attr(root.SelectElement("properties"), "core.title"); got != "Dump" {
		t.Errorf("core.title = %q", got)
	}
	style := root.SelectElement("styles").SelectElement("style")
	if attr(style, "name") != "Heading 1" || attr(style, "bold") != "true" {
		t.Errorf("style attrs = %v", style.Attr)
	}

	sec := root.SelectElement("body").SelectElement("section")
	if attr(sec, "name") != "main" || attr(sec, "page") != "A4" {
		t.Errorf("section attrs = %v", sec.Attr)
	}
	want := []string{"header", "paragraph", "table", "listitems", "paragraph"}
	if diff := cmp.Diff(want, names(sec)); diff != "" {
		t.Errorf("section children mismatch (-want +got):\n%s", diff)
	}
	if f := sec.SelectElement("header").FindElement(".//field"); f == nil || attr(f, "instruction") != "PAGE" {
		t.Errorf("header field = %v", f)
	}

	p := sec.SelectElement("paragraph")
	if attr(p, "spacing.after") != "10" {
		t.Errorf("flattened spacing = %q", attr(p, "spacing.after"))
	}
	if diff := cmp.Diff([]string{"bookmark", "textrun", "bookmark", "textrun"}, names(p)); diff != "" {
		t.Errorf("paragraph children mismatch (-want +got):\n%s", diff)
	}
	if attr(p.ChildElements()[0], "mark") != "start" || attr(p.ChildElements()[2], "mark") != "end" {
		t.Error("bookmark marks out of order")
	}
	if run := p.ChildElements()[1]; attr(run, "bold") != "true" || textContent(run) != "Hello" {
		t.Errorf("run = %v %q", run.Attr, textContent(run))
	}
	if br := p.ChildElements()[3].SelectElement("break"); br == nil || attr(br, "type") != "page" {
		t.Errorf("break = %v", br)
	}

	tbl := sec.SelectElement("table")
	if attr(tbl, "grid") != "100,200" {
		t.Errorf("grid = %q", attr(tbl, "grid"))
	}
	if cell := tbl.FindElement(".//cell"); attr(cell, "colspan") != "2" || textContent(cell) != "A" {
		t.Errorf("cell = %v %q", cell.Attr, textContent(cell))
	}

	l := sec.SelectElement("listitems")
	if attr(l, "format") != "decimal" || attr(l, "numId") != "1" || attr(l, "level") != "0" {
		t.Errorf("list attrs = %v", l.Attr)
	}
	if link := sec.FindElement(".//link"); link == nil || attr(link, "target") != "#top" {
		t.Errorf("link = %v", link)
	}
}

func TestString(t *testing.T) {
	doc := opendoc.NewDocument(nil)
	section, _ := doc.AddSection("", nil)
	if err := section.Insert(opendoc.NewImage("data:image/gif;base64,"+strings.Repeat("A", 200), nil)); err != nil {
		t.Fatal(err)
	}

	out, err := String(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<?xml") {
		t.Errorf("missing header: %q", out[:min(len(out), 40)])
	}
	if !strings.Contains(out, "\n  <body>") {
		t.Errorf("output not indented:\n%s", out)
	}
	if !strings.Contains(out, "(222 bytes)") {
		t.Errorf("long image source not shortened:\n%s", out)
	}

	parsed := etree.NewDocument()
	if err := parsed.ReadFromString(out); err != nil {
		t.Fatalf("dump is not well-formed: %v", err)
	}
	if parsed.FindElement("//image") == nil {
		t.Error("image missing from parsed dump")
	}
}

func TestEmptyDocument(t *testing.T) {
	root := Tree(opendoc.NewDocument(nil))
	if diff := cmp.Diff([]string{"body"}, names(root)); diff != "" {
		t.Errorf("root children mismatch (-want +got):\n%s", diff)
	}
}
