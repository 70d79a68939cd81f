package xml

import (
	"github.com/beevik/etree"
)

// declaration is the content of the XML declaration of every part.
const declaration = `version="1.0" encoding="UTF-8" standalone="yes"`

// Header is the XML declaration written before the root element of every
// package part.
const Header = `<?xml ` + declaration + `?>`

// Attr is a prefixed attribute such as w:val.
type Attr struct {
	Name  string
	Value string
}

// A is shorthand for building an Attr.
func A(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// New creates a detached element. Names keep their conventional prefix
// ("w:p"), which etree stores as the element's space.
func New(tag string, attrs ...Attr) *etree.Element {
	e := etree.NewElement(tag)
	for _, a := range attrs {
		e.CreateAttr(a.Name, a.Value)
	}
	return e
}

// Add creates a child element of parent and returns it.
func Add(parent *etree.Element, tag string, attrs ...Attr) *etree.Element {
	e := parent.CreateElement(tag)
	for _, a := range attrs {
		e.CreateAttr(a.Name, a.Value)
	}
	return e
}

// AddIfAny appends child to parent when child has child elements, as
// required for optional property containers like w:pPr.
func AddIfAny(parent, child *etree.Element) {
	if len(child.ChildElements()) > 0 {
		parent.AddChild(child)
	}
}

// LastChild returns the last child element of e, or nil.
func LastChild(e *etree.Element) *etree.Element {
	children := e.ChildElements()
	if len(children) == 0 {
		return nil
	}
	return children[len(children)-1]
}

// NewDocument wraps root in a part document carrying the XML declaration.
func NewDocument(root *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", declaration)
	doc.SetRoot(root)
	return doc
}

// Marshal serializes root as a standalone part, header included.
func Marshal(root *etree.Element) ([]byte, error) {
	return NewDocument(root).WriteToBytes()
}

// MarshalIndent is Marshal with indentation, used for debug output.
func MarshalIndent(root *etree.Element, spaces int) ([]byte, error) {
	doc := NewDocument(root)
	doc.Indent(spaces)
	return doc.WriteToBytes()
}
