package opendoc

import (
	"fmt"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"
)

// Props is the property bundle accepted by every constructor. Nested maps
// become nested property stores; keys are added in sorted order. Use
// Properties().Set on the element when declaration order matters.
type Props = map[string]any

// Element is a node of the document tree. The set of implementations is
// closed: Text, TextRun, Paragraph, Link, Image, Break, Cr, BookmarkMark,
// Field, Table, TableRow, TableCell, ListItems, Section and HeaderFooter.
type Element interface {
	// Properties returns the element's property store. It is never nil.
	Properties() *props.Store
	// HasProperties reports whether any property is set.
	HasProperties() bool
	// Elements returns the child elements in order.
	Elements() []Element
	// HasElements reports whether the element has children.
	HasElements() bool

	base() *node
}

// node carries the state shared by every element.
type node struct {
	props    *props.Store
	children []Element
	attached bool
}

func newNode(p Props) node {
	return node{props: props.FromMap(p)}
}

func (n *node) base() *node { return n }

func (n *node) Properties() *props.Store {
	if n.props == nil {
		n.props = props.New()
	}
	return n.props
}

func (n *node) HasProperties() bool {
	return !n.props.IsEmpty()
}

func (n *node) Elements() []Element {
	return append([]Element(nil), n.children...)
}

func (n *node) HasElements() bool {
	return len(n.children) > 0
}

// attach adds e as the last child. An element can have only one parent.
func (n *node) attach(owner string, e Element) error {
	b := e.base()
	if b == n {
		return NewStructuralError(owner, "an element cannot contain itself")
	}
	if b.attached {
		return NewStructuralError(owner, fmt.Sprintf("%s is already attached to a parent", elementName(e)))
	}
	b.attached = true
	n.children = append(n.children, e)
	return nil
}

// elementName names an element variant in errors and debug output.
func elementName(e Element) string {
	switch e.(type) {
	case *Text:
		return "text"
	case *TextRun:
		return "textrun"
	case *Link:
		return "link"
	case *Paragraph:
		return "paragraph"
	case *Image:
		return "image"
	case *Break:
		return "break"
	case *Cr:
		return "cr"
	case *BookmarkMark:
		return "bookmark"
	case *Field:
		return "field"
	case *Table:
		return "table"
	case *TableRow:
		return "row"
	case *TableCell:
		return "cell"
	case *ListItems:
		return "listitems"
	case *HeaderFooter:
		return "headerfooter"
	case *Section:
		return "section"
	default:
		return fmt.Sprintf("%T", e)
	}
}

// insertables flattens []any arguments so Insert(a, []any{b, c}) and
// Insert(a, b, c) behave the same.
func insertables(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case []any:
			out = append(out, insertables(v)...)
		case []string:
			for _, s := range v {
				out = append(out, s)
			}
		case []Element:
			for _, e := range v {
				out = append(out, e)
			}
		default:
			out = append(out, item)
		}
	}
	return out
}

func unsupportedContent(owner string, item any) error {
	if e, ok := item.(Element); ok {
		return NewStructuralError(owner, fmt.Sprintf("%s cannot be inserted into a %s", elementName(e), owner))
	}
	return NewStructuralError(owner, fmt.Sprintf("unsupported content of type %T", item))
}
