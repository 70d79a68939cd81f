package importer

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

// Markdown parses src as CommonMark with GitHub tables and strikethrough
// and inserts the result into dst. Raw HTML blocks go through the HTML
// importer.
func Markdown(doc *opendoc.Document, dst Container, src []byte, opts *Options) error {
	w := &markdownWalker{importer: newImporter(doc, opts, "markdown"), src: src}
	blocks, err := w.document()
	if err != nil {
		return err
	}
	return dst.Insert(blocks...)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

type markdownWalker struct {
	*importer
	src []byte
}

// document parses the source and converts it to block level items.
func (w *markdownWalker) document() ([]any, error) {
	root := markdown.Parser().Parse(text.NewReader(w.src))
	return w.blocks(root, nil)
}

func (w *markdownWalker) blocks(parent ast.Node, pp opendoc.Props) ([]any, error) {
	var out []any
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		items, err := w.block(n, pp)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (w *markdownWalker) block(n ast.Node, pp opendoc.Props) ([]any, error) {
	var para *opendoc.Paragraph
	var err error
	switch v := n.(type) {
	case *ast.Heading:
		para, err = w.heading(v.Level, w.inlines(v, nil, ""))
	case *ast.Paragraph, *ast.TextBlock:
		para, err = w.paragraph(merged(pp, nil), w.inlines(v, nil, ""))
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		para, err = w.paragraph(merged(pp, nil), codeLines(w.lines(v), []string{"code"}))
	case *ast.Blockquote:
		return w.blocks(v, indented(pp, 0.5))
	case *ast.ThematicBreak:
		return []any{opendoc.NewParagraph(opendoc.Props{
			"border": map[string]any{"bottom": map[string]any{"sz": 1, "space": 1, "color": "auto"}},
		})}, nil
	case *ast.List:
		lb := w.doc.NewList(markdownListFormat(v), nil)
		if err := w.listItems(lb, v); err != nil {
			return nil, err
		}
		return []any{lb}, nil
	case *east.Table:
		return w.table(v)
	case *ast.HTMLBlock:
		hw := &htmlWalker{importer: w.importer}
		raw := []byte(w.lines(v))
		if v.HasClosure() {
			raw = append(raw, v.ClosureLine.Value(w.src)...)
		}
		return hw.fragment(raw)
	default:
		w.logger.Debug("skipping markdown node %s", n.Kind())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []any{para}, nil
}

// lines joins the raw lines of a code or HTML block without the final
// newline.
func (w *markdownWalker) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(w.src))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func markdownListFormat(l *ast.List) string {
	if l.IsOrdered() {
		return opendoc.ListDecimal
	}
	return opendoc.ListBullet
}

// listItems adds one entry per list item. The text blocks of an item are
// joined with line breaks; sub-lists become nested ListItems.
func (w *markdownWalker) listItems(lb *opendoc.ListBuilder, list *ast.List) error {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var pieces []piece
		var nested []*ast.List
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			var add []piece
			switch v := c.(type) {
			case *ast.List:
				nested = append(nested, v)
				continue
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				add = codeLines(w.lines(v), []string{"code"})
			default:
				add = w.inlines(v, nil, "")
			}
			if len(pieces) > 0 && len(add) > 0 {
				pieces = append(pieces, piece{kind: pieceBreak})
			}
			pieces = append(pieces, add...)
		}
		if len(pieces) > 0 || len(nested) == 0 {
			para, err := w.paragraph(nil, pieces)
			if err != nil {
				return err
			}
			lb.Item(para, nil)
		}
		for _, sub := range nested {
			if err := w.listItems(lb.ListItems(markdownListFormat(sub), nil), sub); err != nil {
				return err
			}
		}
	}
	return lb.Err()
}

// table converts a GitHub table. The header row repeats on every page and
// its cells are bold; column alignments apply to every cell paragraph.
func (w *markdownWalker) table(t *east.Table) ([]any, error) {
	tb := w.doc.NewTable(nil)
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		_, header := row.(*east.TableHeader)
		var path []string
		var rp opendoc.Props
		if header {
			path = []string{"b"}
			rp = opendoc.Props{"repeat": true}
		}
		tb.Row(rp)
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cell, ok := c.(*east.TableCell)
			if !ok {
				continue
			}
			var pp opendoc.Props
			if cell.Alignment != east.AlignNone {
				pp = opendoc.Props{"align": cell.Alignment.String()}
			}
			pieces := w.inlines(cell, path, "")
			var content any
			if len(pieces) > 0 {
				para, err := w.paragraph(pp, pieces)
				if err != nil {
					return nil, err
				}
				content = para
			}
			tb.Cell(content, nil)
		}
	}
	tb.End()
	if err := tb.Err(); err != nil {
		return nil, err
	}
	return []any{tb}, nil
}

// inlines collects the inline leaves below n.
func (w *markdownWalker) inlines(n ast.Node, path []string, href string) []piece {
	var acc []piece
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		acc = w.inline(c, path, href, acc)
	}
	return acc
}

func (w *markdownWalker) inline(n ast.Node, path []string, href string, acc []piece) []piece {
	switch v := n.(type) {
	case *ast.Text:
		acc = append(acc, piece{kind: pieceText, text: string(v.Segment.Value(w.src)), path: path, href: href})
		switch {
		case v.HardLineBreak():
			acc = append(acc, piece{kind: pieceBreak, path: path, href: href})
		case v.SoftLineBreak():
			acc = append(acc, piece{kind: pieceText, text: " ", path: path, href: href})
		}
		return acc
	case *ast.String:
		return append(acc, piece{kind: pieceText, text: string(v.Value), path: path, href: href})
	case *ast.CodeSpan:
		return append(acc, w.inlines(v, appendPath(path, "code"), href)...)
	case *ast.Emphasis:
		tag := "em"
		if v.Level >= 2 {
			tag = "strong"
		}
		return append(acc, w.inlines(v, appendPath(path, tag), href)...)
	case *east.Strikethrough:
		return append(acc, w.inlines(v, appendPath(path, "del"), href)...)
	case *ast.Link:
		return append(acc, w.inlines(v, path, string(v.Destination))...)
	case *ast.AutoLink:
		url := string(v.URL(w.src))
		return append(acc, piece{kind: pieceText, text: string(v.Label(w.src)), path: path, href: url})
	case *ast.Image:
		title := string(v.Title)
		if title == "" {
			title = plainText(w.inlines(v, nil, ""))
		}
		return append(acc, piece{kind: pieceImage, text: string(v.Destination), title: title, path: path, href: href})
	case *ast.RawHTML:
		// inline tags are dropped; their text siblings stay
		return acc
	}
	return append(acc, w.inlines(n, path, href)...)
}

func plainText(pieces []piece) string {
	var sb strings.Builder
	for _, pc := range pieces {
		if pc.kind == pieceText {
			sb.WriteString(pc.text)
		}
	}
	return sb.String()
}
