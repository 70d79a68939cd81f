package opendoc

import "strings"

// Text is a leaf holding a string. Its properties are run properties; they
// are hoisted onto the TextRun that receives it.
type Text struct {
	node
	content string
}

// NewText creates a text leaf.
func NewText(content string, p Props) *Text {
	return &Text{node: newNode(p), content: content}
}

func (t *Text) Content() string { return t.content }

func (t *Text) SetContent(content string) *Text {
	t.content = content
	return t
}

// Break types.
const (
	BreakPage         = "page"
	BreakColumn       = "column"
	BreakTextWrapping = "textWrapping"
)

// Break is a page, column or line break (w:br).
type Break struct {
	node
	breakType string
	clear     string
}

// NewBreak creates a break of the given type. An empty type is a plain
// line break.
func NewBreak(breakType string) *Break {
	return &Break{node: newNode(nil), breakType: breakType}
}

// PageBreak creates a page break.
func PageBreak() *Break { return NewBreak(BreakPage) }

// ColumnBreak creates a column break.
func ColumnBreak() *Break { return NewBreak(BreakColumn) }

// WithClear sets the text-wrapping restart location (none, left, right,
// all).
func (b *Break) WithClear(clear string) *Break {
	b.clear = clear
	return b
}

func (b *Break) Type() string  { return b.breakType }
func (b *Break) Clear() string { return b.clear }

// Cr is a carriage return inside a run.
type Cr struct {
	node
}

func NewCr() *Cr { return &Cr{node: newNode(nil)} }

// TextRun groups inline leaves sharing one set of character properties.
type TextRun struct {
	node
}

// NewTextRun creates an empty run.
func NewTextRun(p Props) *TextRun {
	return &TextRun{node: newNode(p)}
}

// Insert appends run content. Strings become Text leaves. A Text's
// properties are merged into the run's properties. Breaks, carriage
// returns and images are accepted as is; links and paragraph level
// elements are rejected.
func (r *TextRun) Insert(items ...any) error {
	for _, item := range insertables(items) {
		switch v := item.(type) {
		case string:
			if err := r.attach("textrun", NewText(v, nil)); err != nil {
				return err
			}
		case *Text:
			if err := r.attach("textrun", v); err != nil {
				return err
			}
			if v.HasProperties() {
				r.Properties().Merge(v.Properties())
			}
		case *Break, *Cr, *Image:
			if err := r.attach("textrun", v.(Element)); err != nil {
				return err
			}
		case *Link:
			return NewStructuralError("textrun", "a link may not be nested inside a text run")
		default:
			return unsupportedContent("textrun", item)
		}
	}
	return nil
}

// PlainText concatenates the run's text leaves.
func (r *TextRun) PlainText() string {
	var sb strings.Builder
	for _, c := range r.children {
		if t, ok := c.(*Text); ok {
			sb.WriteString(t.content)
		}
	}
	return sb.String()
}

// newRun wraps content in a fresh run.
func newRun(content any, p Props) (*TextRun, error) {
	run := NewTextRun(p)
	if err := run.Insert(content); err != nil {
		return nil, err
	}
	return run, nil
}
