package importer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

func importMarkdown(t *testing.T, src string) (*opendoc.Document, []opendoc.Element) {
	t.Helper()
	doc, section := newSection(t)
	if err := Markdown(doc, section, []byte(src), nil); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	return doc, section.Elements()
}

func findLink(elements []opendoc.Element) *opendoc.Link {
	for _, e := range elements {
		if link, ok := e.(*opendoc.Link); ok {
			return link
		}
		if link := findLink(e.Elements()); link != nil {
			return link
		}
	}
	return nil
}

func TestMarkdownInline(t *testing.T) {
	doc, elements := importMarkdown(t, "# Title\n\nSome *em* and **strong** `code` ~~del~~ [link](https://example.com).\n")

	paras := paragraphs(t, elements)
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	if got := paras[0].Properties().Get("style", nil); got != "Heading1" || doc.Style("Heading 1") == nil {
		t.Errorf("heading style = %v", got)
	}
	if got := paras[1].PlainText(); got != "Some em and strong code del link." {
		t.Errorf("PlainText() = %q", got)
	}

	children := paras[1].Elements()
	tests := []struct {
		text, key string
		want      any
	}{
		{"em", "italic", true},
		{"strong", "bold", true},
		{"code", "font", "Courier New"},
		{"del", "strike", true},
	}
	for _, tt := range tests {
		run := findRun(children, tt.text)
		if run == nil {
			t.Errorf("no run %q", tt.text)
			continue
		}
		if got := run.Properties().Get(tt.key, nil); got != tt.want {
			t.Errorf("run %q %s = %v, want %v", tt.text, tt.key, got, tt.want)
		}
	}

	link := findLink(children)
	if link == nil || link.Target() != "https://example.com" || link.PlainText() != "link" {
		t.Errorf("link = %v", link)
	}
}

func TestMarkdownLineBreaks(t *testing.T) {
	_, elements := importMarkdown(t, "line one\nline two  \nline three\n")

	paras := paragraphs(t, elements)
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paras))
	}
	text := paras[0].PlainText()
	if !strings.Contains(text, "line one line two") || !strings.Contains(text, "line three") {
		t.Errorf("PlainText() = %q", text)
	}
	breaks := 0
	for _, e := range paras[0].Elements() {
		for _, leaf := range e.Elements() {
			if _, ok := leaf.(*opendoc.Break); ok {
				breaks++
			}
		}
	}
	if breaks != 1 {
		t.Errorf("breaks = %d, want 1 for the hard line break", breaks)
	}
}

func TestMarkdownLists(t *testing.T) {
	_, elements := importMarkdown(t, "- one\n- two\n  1. a\n  2. b\n- three\n")

	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}
	list := elements[0].(*opendoc.ListItems)
	if list.Format() != opendoc.ListBullet {
		t.Errorf("format = %s", list.Format())
	}
	var shape []string
	for _, e := range list.Elements() {
		switch v := e.(type) {
		case *opendoc.Paragraph:
			shape = append(shape, v.PlainText())
		case *opendoc.ListItems:
			shape = append(shape, v.Format())
			if v.Level() != 1 || v.NumID() == list.NumID() || len(v.Elements()) != 2 {
				t.Errorf("nested list level %d numId %d items %d", v.Level(), v.NumID(), len(v.Elements()))
			}
		}
	}
	if diff := cmp.Diff([]string{"one", "two", opendoc.ListDecimal, "three"}, shape); diff != "" {
		t.Errorf("list shape mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownCodeBlock(t *testing.T) {
	_, elements := importMarkdown(t, "```go\nfmt.Println()\nx := 1\n```\n")

	paras := paragraphs(t, elements)
	if len(paras) != 1 || len(paras[0].Elements()) != 1 {
		t.Fatalf("code block shape = %d paragraphs", len(paras))
	}
	run := paras[0].Elements()[0].(*opendoc.TextRun)
	if run.Properties().Get("font", nil) != "Courier New" {
		t.Errorf("font = %v", run.Properties().Get("font", nil))
	}
	var got []string
	for _, e := range run.Elements() {
		switch v := e.(type) {
		case *opendoc.Text:
			got = append(got, v.Content())
		case *opendoc.Break:
			got = append(got, "<br>")
		}
	}
	if diff := cmp.Diff([]string{"fmt.Println()", "<br>", "x := 1"}, got); diff != "" {
		t.Errorf("code content mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownTable(t *testing.T) {
	_, elements := importMarkdown(t, "| Name | Qty |\n|:-----|----:|\n| a | 1 |\n| b | 2 |\n")

	if len(elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(elements))
	}
	table := elements[0].(*opendoc.Table)
	rows := table.Rows()
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Properties().Get("repeat", nil) != true {
		t.Error("header row does not repeat")
	}
	if run := findRun(rows[0].Cells()[0].Elements(), "Name"); run == nil || run.Properties().Get("bold", nil) != true {
		t.Error("header cell is not bold")
	}
	if run := findRun(rows[1].Cells()[0].Elements(), "a"); run == nil || run.Properties().Has("bold") {
		t.Error("body cell should be plain")
	}

	align := func(cell *opendoc.TableCell) any {
		return cell.Elements()[0].Properties().Get("align", nil)
	}
	if got := align(rows[2].Cells()[0]); got != "left" {
		t.Errorf("first column align = %v", got)
	}
	if got := align(rows[2].Cells()[1]); got != "right" {
		t.Errorf("second column align = %v", got)
	}
}

func TestMarkdownBlocks(t *testing.T) {
	_, elements := importMarkdown(t, "> quoted\n\n***\n\n<div>raw <b>html</b></div>\n\nafter\n")

	paras := paragraphs(t, elements)
	want := []string{"quoted", "", "raw html", "after"}
	if diff := cmp.Diff(want, plainTexts(paras)); diff != "" {
		t.Fatalf("paragraphs mismatch (-want +got):\n%s", diff)
	}
	if got := paras[0].Properties().Get("indent.left", nil); got != 0.5 {
		t.Errorf("quote indent = %v", got)
	}
	if !paras[1].Properties().Has("border.bottom") {
		t.Error("thematic break has no border")
	}
	if run := findRun(paras[2].Elements(), "html"); run == nil || run.Properties().Get("bold", nil) != true {
		t.Error("raw HTML formatting lost")
	}
}

func TestMarkdownLinksAndImages(t *testing.T) {
	_, elements := importMarkdown(t, "See <https://example.com> ![Alt text](img.png \"Title\") ![fallback](b.png)\n")

	para := elements[0].(*opendoc.Paragraph)
	link := findLink(para.Elements())
	if link == nil || link.Target() != "https://example.com" || link.PlainText() != "https://example.com" {
		t.Fatalf("autolink = %v", link)
	}

	var images []*opendoc.Image
	for _, e := range para.Elements() {
		for _, leaf := range e.Elements() {
			if img, ok := leaf.(*opendoc.Image); ok {
				images = append(images, img)
			}
		}
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	titles := []any{images[0].Properties().Get("title", nil), images[1].Properties().Get("title", nil)}
	if diff := cmp.Diff([]any{"Title", "fallback"}, titles); diff != "" {
		t.Errorf("image titles mismatch (-want +got):\n%s", diff)
	}
	if images[0].Source() != "img.png" {
		t.Errorf("Source() = %q", images[0].Source())
	}
}

func TestMarkdownIntoHeader(t *testing.T) {
	doc, section := newSection(t)
	header, err := section.AddHeader("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Markdown(doc, header, []byte("**Confidential**"), nil); err != nil {
		t.Fatal(err)
	}
	if run := findRun(header.Elements(), "Confidential"); run == nil || run.Properties().Get("bold", nil) != true {
		t.Error("header content missing")
	}
}
