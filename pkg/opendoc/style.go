package opendoc

import (
	"strings"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"
)

// StyleType is the family a style applies to.
type StyleType string

const (
	ParagraphStyle StyleType = "paragraph"
	TextStyle      StyleType = "text"
)

// Style is a named set of paragraph or character properties.
type Style struct {
	typ   StyleType
	name  string
	props *props.Store
}

// NewStyle creates a style. Paragraph styles carry paragraph and run
// properties; text styles carry run properties.
func NewStyle(typ StyleType, name string, p Props) *Style {
	return &Style{typ: typ, name: name, props: props.FromMap(p)}
}

// NewParagraphStyle is shorthand for NewStyle(ParagraphStyle, ...).
func NewParagraphStyle(name string, p Props) *Style {
	return NewStyle(ParagraphStyle, name, p)
}

// NewTextStyle is shorthand for NewStyle(TextStyle, ...).
func NewTextStyle(name string, p Props) *Style {
	return NewStyle(TextStyle, name, p)
}

func (s *Style) Type() StyleType { return s.typ }
func (s *Style) Name() string    { return s.name }

// ID is the name without whitespace, as used in w:styleId and in
// "style" properties.
func (s *Style) ID() string {
	return strings.Join(strings.Fields(s.name), "")
}

func (s *Style) Properties() *props.Store {
	if s.props == nil {
		s.props = props.New()
	}
	return s.props
}

func styleKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}
