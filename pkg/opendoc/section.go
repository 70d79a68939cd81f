package opendoc

import "fmt"

// Header/footer positions.
const (
	PositionHeader = "header"
	PositionFooter = "footer"
)

// Page applicability types of a header or footer. "odd" is emitted in the
// default slot; the document then enables distinct even and odd headers.
const (
	HeaderDefault = "default"
	HeaderOdd     = "odd"
	HeaderEven    = "even"
	HeaderFirst   = "first"
)

// Section is a page-scoped run of block content with its own page
// properties and header/footer bindings.
type Section struct {
	blockContainer
	name    string
	headers []*HeaderFooter
	footers []*HeaderFooter
}

func newSection(name string, p Props) *Section {
	return &Section{blockContainer: blockContainer{node: newNode(p)}, name: name}
}

func (s *Section) Name() string { return s.name }

// Insert appends block content. Strings, text leaves and inline elements
// are wrapped in a new Paragraph; paragraphs, tables, lists and builders
// are attached as is.
func (s *Section) Insert(items ...any) error {
	return s.insertBlocks("section", items)
}

// AddHeader creates and binds a header of the given type.
func (s *Section) AddHeader(headerType string, p Props) (*HeaderFooter, error) {
	return s.add(PositionHeader, headerType, p)
}

// AddFooter creates and binds a footer of the given type.
func (s *Section) AddFooter(footerType string, p Props) (*HeaderFooter, error) {
	return s.add(PositionFooter, footerType, p)
}

func (s *Section) add(position, typ string, p Props) (*HeaderFooter, error) {
	hf, err := NewHeaderFooter(position, typ, p)
	if err != nil {
		return nil, err
	}
	if err := s.SetHeaderFooter(hf); err != nil {
		return nil, err
	}
	return hf, nil
}

// SetHeaderFooter binds hf to the section. Only one header and one footer
// may occupy each emitted slot.
func (s *Section) SetHeaderFooter(hf *HeaderFooter) error {
	list := &s.headers
	if hf.position == PositionFooter {
		list = &s.footers
	}
	for _, existing := range *list {
		if existing.slot() == hf.slot() {
			return NewStructuralError("section", fmt.Sprintf("duplicate %s of type %q in section %q", hf.position, hf.slot(), s.name))
		}
	}
	if hf.attached {
		return NewStructuralError("section", fmt.Sprintf("%s is already bound to a section", hf.position))
	}
	hf.attached = true
	*list = append(*list, hf)
	return nil
}

// Headers returns the bound headers in binding order.
func (s *Section) Headers() []*HeaderFooter {
	return append([]*HeaderFooter(nil), s.headers...)
}

// Footers returns the bound footers in binding order.
func (s *Section) Footers() []*HeaderFooter {
	return append([]*HeaderFooter(nil), s.footers...)
}

// Header returns the header in the given slot, or nil.
func (s *Section) Header(typ string) *HeaderFooter {
	return findSlot(s.headers, typ)
}

// Footer returns the footer in the given slot, or nil.
func (s *Section) Footer(typ string) *HeaderFooter {
	return findSlot(s.footers, typ)
}

func findSlot(list []*HeaderFooter, typ string) *HeaderFooter {
	slot := normalizeHeaderType(typ)
	if slot == HeaderOdd {
		slot = HeaderDefault
	}
	for _, hf := range list {
		if hf.slot() == slot {
			return hf
		}
	}
	return nil
}

// HeaderFooter is block content repeated at the top or bottom of the
// pages of a section.
type HeaderFooter struct {
	blockContainer
	position string
	typ      string
}

// NewHeaderFooter creates a detached header or footer. An empty type or
// "both" means "default".
func NewHeaderFooter(position, typ string, p Props) (*HeaderFooter, error) {
	if position != PositionHeader && position != PositionFooter {
		return nil, NewStructuralError("headerfooter", fmt.Sprintf("invalid position %q; must be %q or %q", position, PositionHeader, PositionFooter))
	}
	typ = normalizeHeaderType(typ)
	switch typ {
	case HeaderDefault, HeaderOdd, HeaderEven, HeaderFirst:
	default:
		return nil, &ValidationError{
			Family:   position,
			Property: "type",
			Value:    typ,
			Allowed:  []string{HeaderDefault, HeaderOdd, HeaderEven, HeaderFirst},
		}
	}
	return &HeaderFooter{
		blockContainer: blockContainer{node: newNode(p)},
		position:       position,
		typ:            typ,
	}, nil
}

func normalizeHeaderType(typ string) string {
	if typ == "" || typ == "both" {
		return HeaderDefault
	}
	return typ
}

func (h *HeaderFooter) Position() string { return h.position }
func (h *HeaderFooter) Type() string     { return h.typ }

// Insert appends block content; see Section.Insert.
func (h *HeaderFooter) Insert(items ...any) error {
	return h.insertBlocks(h.position, items)
}

// slot is the w:type emitted for the reference.
func (h *HeaderFooter) slot() string {
	if h.typ == HeaderOdd {
		return HeaderDefault
	}
	return h.typ
}
