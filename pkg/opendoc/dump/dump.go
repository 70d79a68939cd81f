// Package dump renders a document's element tree as plain XML for
// debugging and tests. The output mirrors the builder model, not
// WordprocessingML: every element becomes a tag named after its kind and
// its properties become attributes with dotted names.
//
//	<document>
//	  <body>
//	    <section name="section1">
//	      <paragraph align="center">
//	        <textrun bold="true"><text>Hello</text></textrun>
//	      </paragraph>
//	    </section>
//	  </body>
//	</document>
package dump

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/xml"
)

// maxSource bounds image sources in the output; data URIs are long.
const maxSource = 64

// Tree converts doc into an element tree.
func Tree(doc *opendoc.Document) *etree.Element {
	root := xml.New("document")
	if !doc.Properties().IsEmpty() {
		root.AddChild(propsNode("properties", doc.Properties()))
	}

	if styles := styleNodes(doc); len(styles) > 0 {
		parent := xml.Add(root, "styles")
		for _, st := range styles {
			parent.AddChild(st)
		}
	}

	body := xml.Add(root, "body")
	for _, section := range doc.Sections() {
		node := xml.Add(body, "section", xml.A("name", section.Name()))
		setProps(node, section.Properties())
		for _, hf := range append(section.Headers(), section.Footers()...) {
			child := xml.Add(node, hf.Position(), xml.A("type", hf.Type()))
			setProps(child, hf.Properties())
			appendElements(child, hf.Elements())
		}
		appendElements(node, section.Elements())
	}
	return root
}

// Write writes the indented dump of doc to w.
func Write(w io.Writer, doc *opendoc.Document) error {
	data, err := xml.MarshalIndent(Tree(doc), 2)
	if err != nil {
		return fmt.Errorf("failed to marshal dump: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// String returns the indented dump of doc.
func String(doc *opendoc.Document) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func styleNodes(doc *opendoc.Document) []*etree.Element {
	var nodes []*etree.Element
	for _, typ := range []opendoc.StyleType{opendoc.ParagraphStyle, opendoc.TextStyle} {
		if st := doc.DefaultStyle(typ); st != nil {
			n := xml.New("default", xml.A("type", string(typ)))
			setProps(n, st.Properties())
			nodes = append(nodes, n)
		}
	}
	for _, st := range doc.Styles() {
		n := xml.New("style", xml.A("type", string(st.Type())), xml.A("name", st.Name()))
		setProps(n, st.Properties())
		nodes = append(nodes, n)
	}
	return nodes
}

func appendElements(parent *etree.Element, elements []opendoc.Element) {
	for _, e := range elements {
		parent.AddChild(element(e))
	}
}

// element converts one element and its subtree.
func element(e opendoc.Element) *etree.Element {
	var n *etree.Element
	switch v := e.(type) {
	case *opendoc.Text:
		n = xml.New("text")
		n.SetText(v.Content())
	case *opendoc.TextRun:
		n = xml.New("textrun")
	case *opendoc.Link:
		n = xml.New("link", xml.A("target", v.Target()))
	case *opendoc.Paragraph:
		n = xml.New("paragraph")
	case *opendoc.Image:
		n = xml.New("image", xml.A("source", shorten(v.Source())))
	case *opendoc.Break:
		n = xml.New("break")
		if v.Type() != "" {
			n.CreateAttr("type", v.Type())
		}
		if v.Clear() != "" {
			n.CreateAttr("clear", v.Clear())
		}
	case *opendoc.Cr:
		n = xml.New("cr")
	case *opendoc.BookmarkMark:
		kind := "end"
		if v.IsStart() {
			kind = "start"
		}
		n = xml.New("bookmark",
			xml.A("name", v.Name()),
			xml.A("id", strconv.Itoa(v.ID())),
			xml.A("mark", kind))
	case *opendoc.Field:
		n = xml.New("field", xml.A("instruction", v.Instruction()))
	case *opendoc.Table:
		n = xml.New("table")
		if grid := v.Grid(); len(grid) > 0 {
			cols := make([]string, len(grid))
			for i, w := range grid {
				cols[i] = strconv.Itoa(w)
			}
			n.CreateAttr("grid", strings.Join(cols, ","))
		}
	case *opendoc.TableRow:
		n = xml.New("row")
	case *opendoc.TableCell:
		n = xml.New("cell")
	case *opendoc.ListItems:
		n = xml.New("listitems",
			xml.A("format", v.Format()),
			xml.A("numId", strconv.Itoa(v.NumID())),
			xml.A("level", strconv.Itoa(v.Level())))
	default:
		n = xml.New("unknown", xml.A("type", fmt.Sprintf("%T", e)))
	}
	setProps(n, e.Properties())
	appendElements(n, e.Elements())
	return n
}

func propsNode(name string, p *props.Store) *etree.Element {
	n := xml.New(name)
	setProps(n, p)
	return n
}

// setProps adds every leaf of p as an attribute. Nested stores produce
// dotted names.
func setProps(n *etree.Element, p *props.Store) {
	flatten("", p, func(key, value string) {
		n.CreateAttr(key, value)
	})
}

func flatten(prefix string, p *props.Store, emit func(key, value string)) {
	for _, k := range p.Keys() {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub := p.Store(k); sub != nil {
			flatten(key, sub, emit)
			continue
		}
		emit(key, valueString(p.Get(k, nil)))
	}
}

func valueString(v any) string {
	switch list := v.(type) {
	case []string:
		return strings.Join(list, ",")
	case []any:
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = valueString(item)
		}
		return strings.Join(parts, ",")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func shorten(source string) string {
	if len(source) <= maxSource {
		return source
	}
	return fmt.Sprintf("%s...(%d bytes)", source[:maxSource-3], len(source))
}
