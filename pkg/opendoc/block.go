package opendoc

// blockContainer holds block level content: sections, headers, footers and
// table cells.
type blockContainer struct {
	node
}

// insertBlocks lifts content to block level. Strings, text leaves and
// inline elements are wrapped in a new Paragraph; paragraphs, tables and
// lists are attached directly. Builders contribute the element they build.
func (c *blockContainer) insertBlocks(owner string, items []any) error {
	for _, item := range insertables(items) {
		switch v := item.(type) {
		case string, *Text, *TextRun, *Link, *Image, *Break, *Cr, *Field, *BookmarkMark:
			para := NewParagraph(nil)
			if err := para.Insert(v); err != nil {
				return err
			}
			if err := c.attach(owner, para); err != nil {
				return err
			}
		case *Paragraph, *Table, *ListItems:
			if err := c.attach(owner, v.(Element)); err != nil {
				return err
			}
		case *TableBuilder:
			table, err := v.Table()
			if err != nil {
				return err
			}
			if err := c.attach(owner, table); err != nil {
				return err
			}
		case *ListBuilder:
			list, err := v.List()
			if err != nil {
				return err
			}
			if err := c.attach(owner, list); err != nil {
				return err
			}
		default:
			return unsupportedContent(owner, item)
		}
	}
	return nil
}
