package opendoc

import "github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"

// List numbering formats.
const (
	ListBullet      = "bullet"
	ListDecimal     = "decimal"
	ListLowerLetter = "lowerLetter"
	ListUpperLetter = "upperLetter"
	ListLowerRoman  = "lowerRoman"
	ListUpperRoman  = "upperRoman"
)

var listFormats = []string{ListBullet, ListDecimal, ListLowerLetter, ListUpperLetter, ListLowerRoman, ListUpperRoman}

func validListFormat(f string) error {
	for _, v := range listFormats {
		if v == f {
			return nil
		}
	}
	return &ValidationError{Family: "list", Property: "format", Value: f, Allowed: listFormats}
}

// ListItems is a numbered or bulleted list. Entries are paragraphs or
// nested lists; nested lists sit one level deeper.
type ListItems struct {
	node
	numID  int
	level  int
	format string
}

func (l *ListItems) NumID() int     { return l.numID }
func (l *ListItems) Level() int     { return l.level }
func (l *ListItems) Format() string { return l.format }

// addItem appends content as one list entry.
func (l *ListItems) addItem(content any, p Props) error {
	var para *Paragraph
	switch v := content.(type) {
	case *Paragraph:
		para = v
		if len(p) > 0 {
			para.Properties().Merge(props.FromMap(p))
		}
	case *ListItems:
		return NewStructuralError("listitems", "nested lists are added with ListItems()")
	case *Table, *Section, *HeaderFooter, *TableRow, *TableCell:
		return unsupportedContent("listitems", content)
	default:
		para = NewParagraph(p)
		if err := para.Insert(content); err != nil {
			return err
		}
	}
	return l.attach("listitems", para)
}
