package opendoc

import (
	"fmt"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"
)

// Document is the root of the element tree: ordered sections, named
// styles, default styles and document properties. Core package properties
// (title, creator, ...) live under the "core" key.
//
// A Document is not safe for concurrent mutation.
type Document struct {
	props     *props.Store
	sections  []*Section
	styles    []*Style
	styleIdx  map[string]*Style
	defaults  map[StyleType]*Style
	ids       IDGenerator
	bookmarks map[string]int
}

// NewDocument creates an empty document. The "defaultStyles" property,
// a map of "paragraph" and "text" property maps, sets the document-wide
// defaults; other properties are stored as document properties.
func NewDocument(p Props) *Document {
	d := &Document{
		props:     props.New(),
		styleIdx:  make(map[string]*Style),
		defaults:  make(map[StyleType]*Style),
		bookmarks: make(map[string]int),
	}
	all := props.FromMap(p)
	for _, key := range all.Keys() {
		if key != "defaultStyles" {
			d.props.Set(key, all.Get(key, nil))
			continue
		}
		defaults := all.Store(key)
		for _, family := range defaults.Keys() {
			typ := StyleType(family)
			if typ != ParagraphStyle && typ != TextStyle {
				Debug("ignoring default style for unknown family %q", family)
				continue
			}
			d.SetDefaultStyle(typ, defaults.Store(family).All())
		}
	}
	return d
}

// Properties returns the document property store.
func (d *Document) Properties() *props.Store {
	return d.props
}

// IDs returns the document's id generator.
func (d *Document) IDs() *IDGenerator {
	return &d.ids
}

// AddSection appends a new section. An empty name is replaced by
// "section{N}"; a duplicate name is a structural error.
func (d *Document) AddSection(name string, p Props) (*Section, error) {
	if name == "" {
		for n := len(d.sections) + 1; ; n++ {
			name = fmt.Sprintf("section%d", n)
			if d.indexOf(name) < 0 {
				break
			}
		}
	} else if d.indexOf(name) >= 0 {
		return nil, NewStructuralError("document", fmt.Sprintf("duplicate section name %q", name))
	}
	s := newSection(name, p)
	d.sections = append(d.sections, s)
	return s, nil
}

// Section returns the section with the given name.
func (d *Document) Section(name string) (*Section, error) {
	i := d.indexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	return d.sections[i], nil
}

// SectionAt returns the section at index i.
func (d *Document) SectionAt(i int) (*Section, error) {
	if i < 0 || i >= len(d.sections) {
		return nil, fmt.Errorf("%w: index %d out of bounds (%d sections)", ErrSectionNotFound, i, len(d.sections))
	}
	return d.sections[i], nil
}

// CurrentSection returns the last section.
func (d *Document) CurrentSection() (*Section, error) {
	return d.SectionAt(len(d.sections) - 1)
}

// Sections returns the sections in render order.
func (d *Document) Sections() []*Section {
	return append([]*Section(nil), d.sections...)
}

func (d *Document) HasSections() bool {
	return len(d.sections) > 0
}

// RemoveSection removes a section by name. Removing a missing section is
// a no-op.
func (d *Document) RemoveSection(name string) {
	if i := d.indexOf(name); i >= 0 {
		d.sections = append(d.sections[:i], d.sections[i+1:]...)
	}
}

func (d *Document) indexOf(name string) int {
	for i, s := range d.sections {
		if s.name == name {
			return i
		}
	}
	return -1
}

// AddStyle registers a style. A style with the same id replaces the
// earlier one in place.
func (d *Document) AddStyle(s *Style) error {
	if s.typ != ParagraphStyle && s.typ != TextStyle {
		return &ValidationError{
			Family:   "style",
			Property: "type",
			Value:    string(s.typ),
			Allowed:  []string{string(ParagraphStyle), string(TextStyle)},
		}
	}
	if s.ID() == "" {
		return NewStructuralError("document", "a style needs a name")
	}
	key := styleKey(s.name)
	if old, ok := d.styleIdx[key]; ok {
		for i, existing := range d.styles {
			if existing == old {
				d.styles[i] = s
			}
		}
	} else {
		d.styles = append(d.styles, s)
	}
	d.styleIdx[key] = s
	return nil
}

// Style looks a style up by name or id, case-insensitively.
func (d *Document) Style(name string) *Style {
	return d.styleIdx[styleKey(name)]
}

// Styles returns the registered styles in registration order.
func (d *Document) Styles() []*Style {
	return append([]*Style(nil), d.styles...)
}

// SetDefaultStyle sets the document-wide default properties of a family.
func (d *Document) SetDefaultStyle(typ StyleType, p Props) {
	d.defaults[typ] = NewStyle(typ, "default", p)
}

// DefaultStyle returns the default style of a family, or nil.
func (d *Document) DefaultStyle(typ StyleType) *Style {
	return d.defaults[typ]
}

// Bookmark creates the start and end marks of a named bookmark. Both
// marks share an id from the document's generator. Names are unique per
// document.
func (d *Document) Bookmark(name string) (*BookmarkMark, *BookmarkMark, error) {
	if name == "" {
		return nil, nil, NewStructuralError("bookmark", "a bookmark needs a name")
	}
	if _, exists := d.bookmarks[name]; exists {
		return nil, nil, NewStructuralError("bookmark", fmt.Sprintf("duplicate bookmark name %q", name))
	}
	id := d.ids.NextBookmark()
	d.bookmarks[name] = id
	start := &BookmarkMark{node: newNode(nil), id: id, name: name, start: true}
	end := &BookmarkMark{node: newNode(nil), id: id, name: name}
	return start, end, nil
}

// HasBookmark reports whether a bookmark of that name was created.
func (d *Document) HasBookmark(name string) bool {
	_, ok := d.bookmarks[name]
	return ok
}

// NewTable starts a table builder. The finished table is inserted with
// Section.Insert or TableCell.Insert.
func (d *Document) NewTable(p Props) *TableBuilder {
	return NewTableBuilder(p)
}

// NewList starts a list builder with a numbering id from the document's
// generator.
func (d *Document) NewList(listFormat string, p Props) *ListBuilder {
	return newListBuilder(&d.ids, listFormat, p)
}
