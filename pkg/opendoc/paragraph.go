package opendoc

import "strings"

// Paragraph is a block of inline content.
type Paragraph struct {
	node
}

// NewParagraph creates an empty paragraph.
func NewParagraph(p Props) *Paragraph {
	return &Paragraph{node: newNode(p)}
}

// Insert appends inline content. Strings and Text leaves are wrapped in a
// new TextRun; breaks, carriage returns and images get a run of their own.
// Runs, links, fields and bookmark marks are attached directly. Block
// elements are rejected.
func (p *Paragraph) Insert(items ...any) error {
	return p.insertInline("paragraph", items)
}

func (p *Paragraph) insertInline(owner string, items []any) error {
	for _, item := range insertables(items) {
		switch v := item.(type) {
		case string, *Text, *Break, *Cr, *Image:
			run, err := newRun(v, nil)
			if err != nil {
				return err
			}
			if err := p.attach(owner, run); err != nil {
				return err
			}
		case *TextRun, *Link, *Field, *BookmarkMark:
			if err := p.attach(owner, v.(Element)); err != nil {
				return err
			}
		default:
			return unsupportedContent(owner, item)
		}
	}
	return nil
}

// PlainText concatenates the text of every run, link and field fallback.
func (p *Paragraph) PlainText() string {
	var sb strings.Builder
	collectText(&sb, p.children)
	return sb.String()
}

func collectText(sb *strings.Builder, elements []Element) {
	for _, e := range elements {
		switch v := e.(type) {
		case *Text:
			sb.WriteString(v.content)
		case *TextRun, *Link, *Field, *Paragraph:
			collectText(sb, e.base().children)
		}
	}
}

// Link is a paragraph specialization rendered as a hyperlink. A target
// starting with '#' refers to a bookmark in the same document.
type Link struct {
	Paragraph
	target string
}

// NewLink creates a hyperlink. An empty text defaults to the target.
func NewLink(target, text string, p Props) *Link {
	l := &Link{Paragraph: Paragraph{node: newNode(p)}, target: target}
	if text == "" {
		text = target
	}
	// a fresh run from a string cannot fail
	_ = l.insertInline("link", []any{text})
	return l
}

// NewEmptyLink creates a hyperlink without content. Fill it with Insert.
func NewEmptyLink(target string, p Props) *Link {
	return &Link{Paragraph: Paragraph{node: newNode(p)}, target: target}
}

// Insert appends inline content to the link. Links cannot nest.
func (l *Link) Insert(items ...any) error {
	for _, item := range insertables(items) {
		if _, ok := item.(*Link); ok {
			return NewStructuralError("link", "links cannot be nested")
		}
	}
	return l.insertInline("link", items)
}

func (l *Link) Target() string { return l.target }

// IsAnchor reports whether the link targets a bookmark.
func (l *Link) IsAnchor() bool {
	return strings.HasPrefix(l.target, "#")
}

// Anchor returns the bookmark name of an internal link.
func (l *Link) Anchor() string {
	return strings.TrimPrefix(l.target, "#")
}

// Field is a simple field: an instruction evaluated by the consumer plus
// fallback content shown until fields are updated.
type Field struct {
	node
	instruction string
	params      []string
}

// NewField creates a field such as NewField("DATE", `\@ "yyyy-MM-dd"`).
func NewField(instruction string, params ...string) *Field {
	return &Field{
		node:        newNode(nil),
		instruction: instruction,
		params:      append([]string(nil), params...),
	}
}

// PageNumberField is the current page number.
func PageNumberField() *Field { return NewField("PAGE") }

// PageCountField is the total page count.
func PageCountField() *Field { return NewField("NUMPAGES") }

// Instruction returns the full field code.
func (f *Field) Instruction() string {
	return strings.TrimSpace(strings.Join(append([]string{f.instruction}, f.params...), " "))
}

// Insert appends fallback content. Strings and text leaves become runs.
func (f *Field) Insert(items ...any) error {
	for _, item := range insertables(items) {
		switch v := item.(type) {
		case string, *Text:
			run, err := newRun(v, nil)
			if err != nil {
				return err
			}
			if err := f.attach("field", run); err != nil {
				return err
			}
		case *TextRun:
			if err := f.attach("field", v); err != nil {
				return err
			}
		default:
			return unsupportedContent("field", item)
		}
	}
	return nil
}

// BookmarkMark is the start or end of a named bookmark. Marks are created
// in pairs by Document.Bookmark.
type BookmarkMark struct {
	node
	id    int
	name  string
	start bool
}

func (b *BookmarkMark) ID() int       { return b.id }
func (b *BookmarkMark) Name() string  { return b.name }
func (b *BookmarkMark) IsStart() bool { return b.start }
