package importer

import (
	"bytes"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

// HTML parses src as an HTML document or fragment and inserts its body
// into dst.
func HTML(doc *opendoc.Document, dst Container, src []byte, opts *Options) error {
	w := &htmlWalker{importer: newImporter(doc, opts, "html")}
	blocks, err := w.fragment(src)
	if err != nil {
		return err
	}
	return dst.Insert(blocks...)
}

// fragment converts the body of src to block level items.
func (w *htmlWalker) fragment(src []byte) ([]any, error) {
	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	body := findBody(root)
	if body == nil {
		return nil, nil
	}
	return w.blocks(body, nil, nil)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

type htmlWalker struct {
	*importer
}

var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Head:     true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Button:   true,
	atom.Input:    true,
	atom.Select:   true,
	atom.Textarea: true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Table: true, atom.Pre: true, atom.Blockquote: true,
	atom.Hr: true, atom.Div: true, atom.Section: true, atom.Article: true, atom.Main: true, atom.Header: true,
	atom.Footer: true, atom.Nav: true, atom.Aside: true, atom.Figure: true, atom.Figcaption: true,
	atom.Center: true, atom.Form: true, atom.Address: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
}

// containers only group their children.
var containers = map[atom.Atom]bool{
	atom.Div: true, atom.Section: true, atom.Article: true, atom.Main: true, atom.Header: true,
	atom.Footer: true, atom.Nav: true, atom.Aside: true, atom.Figure: true, atom.Center: true,
	atom.Form: true, atom.Address: true, atom.Dl: true, atom.Li: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// blocks converts the children of parent to block level items. Inline
// content between blocks becomes implicit paragraphs with properties pp;
// path is the formatting inherited from enclosing elements.
func (w *htmlWalker) blocks(parent *html.Node, pp opendoc.Props, path []string) ([]any, error) {
	var out []any
	var inline []piece
	flush := func() error {
		pieces := collapse(inline)
		inline = nil
		if !hasContent(pieces) {
			return nil
		}
		para, err := w.paragraph(maps.Clone(pp), pieces)
		if err != nil {
			return err
		}
		out = append(out, para)
		return nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && skippedElements[c.DataAtom] {
			continue
		}
		if c.Type != html.ElementNode || !blockElements[c.DataAtom] {
			inline = w.inline(c, path, "", inline)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		items, err := w.block(c, pp, path)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *htmlWalker) block(n *html.Node, pp opendoc.Props, path []string) ([]any, error) {
	if level, ok := headingLevels[n.DataAtom]; ok {
		pieces := collapse(w.inline(n, path, "", nil))
		para, err := w.heading(level, pieces)
		if err != nil {
			return nil, err
		}
		return []any{para}, nil
	}

	switch n.DataAtom {
	case atom.P, atom.Figcaption, atom.Dt:
		p := path
		if n.DataAtom == atom.Dt {
			p = appendPath(path, "b")
		}
		pieces := collapse(w.inlineChildren(n, p, ""))
		if !hasContent(pieces) {
			return nil, nil
		}
		para, err := w.paragraph(merged(pp, paragraphAlign(n)), pieces)
		if err != nil {
			return nil, err
		}
		return []any{para}, nil
	case atom.Ul, atom.Ol:
		lb := w.doc.NewList(listFormat(n), nil)
		if err := w.listItems(lb, n, path); err != nil {
			return nil, err
		}
		return []any{lb}, nil
	case atom.Table:
		return w.table(n, path)
	case atom.Pre:
		para, err := w.paragraph(maps.Clone(pp), w.preformatted(n, appendPath(path, "code")))
		if err != nil {
			return nil, err
		}
		return []any{para}, nil
	case atom.Blockquote, atom.Dd:
		return w.blocks(n, indented(pp, 0.5), path)
	case atom.Hr:
		return []any{opendoc.NewParagraph(opendoc.Props{
			"border": map[string]any{"bottom": map[string]any{"sz": 1, "space": 1, "color": "auto"}},
		})}, nil
	}
	if containers[n.DataAtom] {
		return w.blocks(n, pp, path)
	}
	return nil, nil
}

func (w *htmlWalker) inlineChildren(n *html.Node, path []string, href string) []piece {
	var acc []piece
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		acc = w.inline(c, path, href, acc)
	}
	return acc
}

// inline appends the inline leaves of n to acc. Block elements met here
// are flattened, separated by line breaks.
func (w *htmlWalker) inline(n *html.Node, path []string, href string, acc []piece) []piece {
	switch n.Type {
	case html.TextNode:
		return append(acc, piece{kind: pieceText, text: n.Data, path: path, href: href})
	case html.ElementNode:
	default:
		return acc
	}
	if skippedElements[n.DataAtom] {
		return acc
	}

	switch n.DataAtom {
	case atom.Br:
		return append(acc, piece{kind: pieceBreak, path: path, href: href})
	case atom.Img:
		src := attrValue(n, "src")
		if src == "" {
			return acc
		}
		title := attrValue(n, "title")
		if title == "" {
			title = attrValue(n, "alt")
		}
		return append(acc, piece{kind: pieceImage, text: src, title: title, path: path, href: href})
	case atom.A:
		if target := attrValue(n, "href"); target != "" {
			href = target
		}
	}

	if blockElements[n.DataAtom] && len(acc) > 0 && acc[len(acc)-1].kind != pieceBreak {
		acc = append(acc, piece{kind: pieceBreak, path: path, href: href})
	}
	if w.runProps([]string{n.Data}) != nil {
		path = appendPath(path, n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		acc = w.inline(c, path, href, acc)
	}
	return acc
}

// preformatted keeps the text of n verbatim; newlines become breaks.
func (w *htmlWalker) preformatted(n *html.Node, path []string) []piece {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return codeLines(strings.TrimSuffix(sb.String(), "\n"), path)
}

// codeLines splits text into lines joined by breaks.
func codeLines(text string, path []string) []piece {
	var out []piece
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, piece{kind: pieceBreak, path: path})
		}
		if line != "" {
			out = append(out, piece{kind: pieceText, text: line, path: path})
		}
	}
	return out
}

// listItems adds the li children of list to lb. Lists inside an item
// become nested ListItems.
func (w *htmlWalker) listItems(lb *opendoc.ListBuilder, list *html.Node, path []string) error {
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		var pieces []piece
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			pieces = w.inline(c, path, "", pieces)
		}
		pieces = collapse(pieces)
		if hasContent(pieces) || len(nested) == 0 {
			para, err := w.paragraph(nil, pieces)
			if err != nil {
				return err
			}
			lb.Item(para, nil)
		}
		for _, sub := range nested {
			child := lb.ListItems(listFormat(sub), nil)
			if err := w.listItems(child, sub, path); err != nil {
				return err
			}
		}
	}
	return lb.Err()
}

func listFormat(n *html.Node) string {
	if n.DataAtom == atom.Ul {
		return opendoc.ListBullet
	}
	switch attrValue(n, "type") {
	case "a":
		return opendoc.ListLowerLetter
	case "A":
		return opendoc.ListUpperLetter
	case "i":
		return opendoc.ListLowerRoman
	case "I":
		return opendoc.ListUpperRoman
	}
	return opendoc.ListDecimal
}

// table converts a table element. A caption becomes a bold paragraph in
// front of it; rows of a thead repeat on every page.
func (w *htmlWalker) table(n *html.Node, path []string) ([]any, error) {
	var out []any
	tb := w.doc.NewTable(nil)
	var rows func(parent *html.Node, header bool) error
	rows = func(parent *html.Node, header bool) error {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Caption:
				pieces := collapse(w.inlineChildren(c, appendPath(path, "b"), ""))
				if hasContent(pieces) {
					para, err := w.paragraph(nil, pieces)
					if err != nil {
						return err
					}
					out = append(out, para)
				}
			case atom.Thead:
				if err := rows(c, true); err != nil {
					return err
				}
			case atom.Tbody, atom.Tfoot:
				if err := rows(c, false); err != nil {
					return err
				}
			case atom.Tr:
				if err := w.row(tb, c, header, path); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := rows(n, false); err != nil {
		return nil, err
	}
	tb.End()
	if err := tb.Err(); err != nil {
		return nil, err
	}
	return append(out, tb), nil
}

func (w *htmlWalker) row(tb *opendoc.TableBuilder, tr *html.Node, header bool, path []string) error {
	var rp opendoc.Props
	if header {
		rp = opendoc.Props{"repeat": true}
	}
	tb.Row(rp)
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cellPath := path
		if c.DataAtom == atom.Th {
			cellPath = appendPath(path, "b")
		}
		content, err := w.blocks(c, paragraphAlign(c), cellPath)
		if err != nil {
			return err
		}
		var cp opendoc.Props
		if bg := attrValue(c, "bgcolor"); bg != "" {
			cp = opendoc.Props{"bgColor": strings.TrimPrefix(bg, "#")}
		}
		tb.Cell(content, cp)
		if n := spanAttr(c, "colspan"); n > 1 {
			tb.Colspan(n)
		}
		if n := spanAttr(c, "rowspan"); n > 1 {
			tb.Rowspan(n)
		}
	}
	return tb.Err()
}

func spanAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attrValue(n, key)))
	if err != nil {
		return 1
	}
	return v
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// paragraphAlign maps the align attribute, or a text-align declaration in
// the style attribute, to paragraph properties.
func paragraphAlign(n *html.Node) opendoc.Props {
	align := attrValue(n, "align")
	for _, decl := range strings.Split(attrValue(n, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == "text-align" {
			align = strings.TrimSpace(value)
		}
	}
	switch strings.ToLower(align) {
	case "left", "right", "center", "start", "end":
		return opendoc.Props{"align": strings.ToLower(align)}
	case "justify":
		return opendoc.Props{"align": "both"}
	}
	return nil
}

// merged overlays extra onto a copy of base.
func merged(base, extra opendoc.Props) opendoc.Props {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := maps.Clone(base)
	if out == nil {
		out = opendoc.Props{}
	}
	maps.Copy(out, extra)
	return out
}

// indented adds inches to the left indentation of pp.
func indented(pp opendoc.Props, inches float64) opendoc.Props {
	left := inches
	if ind, ok := pp["indent"].(map[string]any); ok {
		if v, ok := ind["left"].(float64); ok {
			left += v
		}
	}
	return merged(pp, opendoc.Props{"indent": map[string]any{"left": left}})
}
