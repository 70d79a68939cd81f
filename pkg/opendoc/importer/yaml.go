package importer

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

// Description is a whole document written as YAML:
//
//	properties:
//	  core: {title: Report, creator: Finance}
//	styles:
//	  - {name: Note, type: paragraph, properties: {italic: true}}
//	sections:
//	  - name: main
//	    properties: {page: A4}
//	    footers:
//	      - content: [{paragraph: {properties: {align: center}, content: [{field: PAGE}]}}]
//	    content:
//	      - heading: {level: 1, text: Report}
//	      - Plain text becomes a paragraph.
//	      - markdown: "Some *emphasis*."
//	      - table: {rows: [{cells: [A, {content: [B], colspan: 2}]}]}
type Description struct {
	Properties    map[string]any            `yaml:"properties"`
	DefaultStyles map[string]map[string]any `yaml:"defaultStyles"`
	Styles        []StyleSpec               `yaml:"styles"`
	Sections      []SectionSpec             `yaml:"sections"`
}

type StyleSpec struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Properties map[string]any `yaml:"properties"`
}

type SectionSpec struct {
	Name       string             `yaml:"name"`
	Properties map[string]any     `yaml:"properties"`
	Headers    []HeaderFooterSpec `yaml:"headers"`
	Footers    []HeaderFooterSpec `yaml:"footers"`
	Content    []Block            `yaml:"content"`
}

type HeaderFooterSpec struct {
	Type       string         `yaml:"type"`
	Properties map[string]any `yaml:"properties"`
	Content    []Block        `yaml:"content"`
}

// Block is one block level item. Exactly one field is expected; a plain
// scalar is shorthand for Text.
type Block struct {
	Text      string         `yaml:"text"`
	Heading   *HeadingSpec   `yaml:"heading"`
	Paragraph *ParagraphSpec `yaml:"paragraph"`
	Table     *TableSpec     `yaml:"table"`
	List      *ListSpec      `yaml:"list"`
	Image     *ImageSpec     `yaml:"image"`
	Markdown  string         `yaml:"markdown"`
	HTML      string         `yaml:"html"`
	PageBreak bool           `yaml:"pageBreak"`
}

func (b *Block) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		b.Text = value.Value
		return nil
	}
	type plain Block
	return value.Decode((*plain)(b))
}

type HeadingSpec struct {
	Level int    `yaml:"level"`
	Text  string `yaml:"text"`
}

type ParagraphSpec struct {
	Properties map[string]any `yaml:"properties"`
	Content    []Inline       `yaml:"content"`
}

// Inline is one piece of paragraph content; a plain scalar is shorthand
// for Text.
type Inline struct {
	Text       string         `yaml:"text"`
	Properties map[string]any `yaml:"properties"`
	Link       string         `yaml:"link"`
	Bookmark   string         `yaml:"bookmark"`
	Field      string         `yaml:"field"`
	Break      string         `yaml:"break"`
	Image      *ImageSpec     `yaml:"image"`
}

func (in *Inline) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		in.Text = value.Value
		return nil
	}
	type plain Inline
	return value.Decode((*plain)(in))
}

type ImageSpec struct {
	Source     string         `yaml:"source"`
	Properties map[string]any `yaml:"properties"`
}

type TableSpec struct {
	Properties map[string]any `yaml:"properties"`
	Grid       []int          `yaml:"grid"`
	Rows       []RowSpec      `yaml:"rows"`
}

type RowSpec struct {
	Properties map[string]any `yaml:"properties"`
	Cells      []CellSpec     `yaml:"cells"`
}

// CellSpec is a table cell; a plain scalar is a cell holding that text.
type CellSpec struct {
	Properties map[string]any `yaml:"properties"`
	Colspan    int            `yaml:"colspan"`
	Rowspan    int            `yaml:"rowspan"`
	Content    []Block        `yaml:"content"`
}

func (c *CellSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		c.Content = []Block{{Text: value.Value}}
		return nil
	}
	type plain CellSpec
	return value.Decode((*plain)(c))
}

type ListSpec struct {
	Format     string         `yaml:"format"`
	Properties map[string]any `yaml:"properties"`
	Items      []ListItemSpec `yaml:"items"`
}

// ListItemSpec is a list entry with an optional nested list; a plain
// scalar is an entry holding that text.
type ListItemSpec struct {
	Text       string         `yaml:"text"`
	Paragraph  *ParagraphSpec `yaml:"paragraph"`
	Properties map[string]any `yaml:"properties"`
	List       *ListSpec      `yaml:"list"`
}

func (li *ListItemSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		li.Text = value.Value
		return nil
	}
	type plain ListItemSpec
	return value.Decode((*plain)(li))
}

// ReadDescription decodes a YAML description.
func ReadDescription(r io.Reader) (*Description, error) {
	var desc Description
	if err := yaml.NewDecoder(r).Decode(&desc); err != nil {
		if errors.Is(err, io.EOF) {
			return &desc, nil
		}
		return nil, fmt.Errorf("failed to parse document description: %w", err)
	}
	return &desc, nil
}

// LoadYAML reads a YAML description from r and builds the document.
func LoadYAML(r io.Reader, opts *Options) (*opendoc.Document, error) {
	desc, err := ReadDescription(r)
	if err != nil {
		return nil, err
	}
	return desc.Build(opts)
}

// Build creates a document from the description.
func (d *Description) Build(opts *Options) (*opendoc.Document, error) {
	p := opendoc.Props{}
	for k, v := range d.Properties {
		p[k] = v
	}
	if len(d.DefaultStyles) > 0 {
		defaults := make(map[string]any, len(d.DefaultStyles))
		for family, props := range d.DefaultStyles {
			defaults[family] = props
		}
		p["defaultStyles"] = defaults
	}
	doc := opendoc.NewDocument(p)
	b := &yamlBuilder{importer: newImporter(doc, opts, "yaml")}

	for i, s := range d.Styles {
		typ := opendoc.StyleType(s.Type)
		if typ == "" {
			typ = opendoc.ParagraphStyle
		}
		if err := doc.AddStyle(opendoc.NewStyle(typ, s.Name, s.Properties)); err != nil {
			return nil, fmt.Errorf("styles[%d]: %w", i, err)
		}
	}

	for i, s := range d.Sections {
		if err := b.section(s); err != nil {
			return nil, fmt.Errorf("sections[%d]: %w", i, err)
		}
	}
	return doc, nil
}

type yamlBuilder struct {
	*importer
}

func (b *yamlBuilder) section(s SectionSpec) error {
	section, err := b.doc.AddSection(s.Name, s.Properties)
	if err != nil {
		return err
	}
	for i, h := range s.Headers {
		hf, err := section.AddHeader(h.Type, h.Properties)
		if err != nil {
			return fmt.Errorf("headers[%d]: %w", i, err)
		}
		if err := b.insert(hf, h.Content); err != nil {
			return fmt.Errorf("headers[%d]: %w", i, err)
		}
	}
	for i, f := range s.Footers {
		hf, err := section.AddFooter(f.Type, f.Properties)
		if err != nil {
			return fmt.Errorf("footers[%d]: %w", i, err)
		}
		if err := b.insert(hf, f.Content); err != nil {
			return fmt.Errorf("footers[%d]: %w", i, err)
		}
	}
	return b.insert(section, s.Content)
}

func (b *yamlBuilder) insert(dst Container, blocks []Block) error {
	items, err := b.items(blocks)
	if err != nil {
		return err
	}
	return dst.Insert(items...)
}

// items converts blocks to insertable items.
func (b *yamlBuilder) items(blocks []Block) ([]any, error) {
	var out []any
	for i, block := range blocks {
		items, err := b.block(block)
		if err != nil {
			return nil, fmt.Errorf("content[%d]: %w", i, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func (b *yamlBuilder) block(block Block) ([]any, error) {
	switch {
	case block.Heading != nil:
		para, err := b.heading(block.Heading.Level, []piece{{kind: pieceText, text: block.Heading.Text}})
		if err != nil {
			return nil, err
		}
		return []any{para}, nil
	case block.Paragraph != nil:
		para, err := b.paragraphSpec(block.Paragraph)
		if err != nil {
			return nil, err
		}
		return []any{para}, nil
	case block.Table != nil:
		tb, err := b.table(block.Table)
		if err != nil {
			return nil, err
		}
		return []any{tb}, nil
	case block.List != nil:
		lb := b.doc.NewList(block.List.Format, block.List.Properties)
		if err := b.listItems(lb, block.List.Items); err != nil {
			return nil, err
		}
		return []any{lb}, nil
	case block.Image != nil:
		return []any{opendoc.NewImage(b.imageSource(block.Image.Source), block.Image.Properties)}, nil
	case block.Markdown != "":
		src := []byte(block.Markdown)
		return (&markdownWalker{importer: b.importer, src: src}).document()
	case block.HTML != "":
		return (&htmlWalker{importer: b.importer}).fragment([]byte(block.HTML))
	case block.PageBreak:
		return []any{opendoc.PageBreak()}, nil
	default:
		return []any{block.Text}, nil
	}
}

func (b *yamlBuilder) paragraphSpec(spec *ParagraphSpec) (*opendoc.Paragraph, error) {
	para := opendoc.NewParagraph(spec.Properties)
	for i, in := range spec.Content {
		if err := b.inline(para, in); err != nil {
			return nil, fmt.Errorf("content[%d]: %w", i, err)
		}
	}
	return para, nil
}

func (b *yamlBuilder) inline(para *opendoc.Paragraph, in Inline) error {
	switch {
	case in.Link != "":
		return para.Insert(opendoc.NewLink(in.Link, in.Text, in.Properties))
	case in.Field != "":
		field := opendoc.NewField(in.Field)
		if in.Text != "" {
			if err := field.Insert(in.Text); err != nil {
				return err
			}
		}
		return para.Insert(field)
	case in.Break != "":
		brk := opendoc.NewBreak(in.Break)
		if in.Break == "line" {
			brk = opendoc.NewBreak("")
		}
		return para.Insert(brk)
	case in.Image != nil:
		return para.Insert(opendoc.NewImage(b.imageSource(in.Image.Source), in.Image.Properties))
	}

	run := opendoc.NewTextRun(in.Properties)
	if err := run.Insert(in.Text); err != nil {
		return err
	}
	if in.Bookmark == "" {
		return para.Insert(run)
	}
	start, end, err := b.doc.Bookmark(in.Bookmark)
	if err != nil {
		return err
	}
	return para.Insert(start, run, end)
}

func (b *yamlBuilder) table(spec *TableSpec) (*opendoc.TableBuilder, error) {
	tb := b.doc.NewTable(spec.Properties)
	if len(spec.Grid) > 0 {
		tb.Grid(spec.Grid...)
	}
	for i, row := range spec.Rows {
		tb.Row(row.Properties)
		for j, cell := range row.Cells {
			content, err := b.items(cell.Content)
			if err != nil {
				return nil, fmt.Errorf("rows[%d].cells[%d]: %w", i, j, err)
			}
			tb.Cell(content, cell.Properties)
			if cell.Colspan > 1 {
				tb.Colspan(cell.Colspan)
			}
			if cell.Rowspan > 1 {
				tb.Rowspan(cell.Rowspan)
			}
		}
	}
	tb.End()
	return tb, tb.Err()
}

func (b *yamlBuilder) listItems(lb *opendoc.ListBuilder, items []ListItemSpec) error {
	for _, item := range items {
		switch {
		case item.Paragraph != nil:
			para, err := b.paragraphSpec(item.Paragraph)
			if err != nil {
				return err
			}
			lb.Item(para, item.Properties)
		case item.Text != "" || item.List == nil:
			lb.Item(item.Text, item.Properties)
		}
		if item.List != nil {
			if err := b.listItems(lb.ListItems(item.List.Format, item.List.Properties), item.List.Items); err != nil {
				return err
			}
		}
	}
	return lb.Err()
}
