// Package importer fills a document from other formats: HTML fragments,
// Markdown and YAML document descriptions.
//
// HTML and Markdown map onto the element model the same way: headings
// become paragraphs with "Heading N" styles (registered on first use),
// lists become numbered or bulleted ListItems, tables go through the
// TableBuilder and inline formatting tags become run properties.
//
//	doc := opendoc.NewDocument(nil)
//	section, _ := doc.AddSection("", nil)
//	err := importer.Markdown(doc, section, []byte("# Title\n\nSome *text*."), nil)
package importer

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

// Container receives imported blocks: a Section, HeaderFooter or
// TableCell.
type Container interface {
	Insert(items ...any) error
}

// Options tune the mapping of imported content.
type Options struct {
	// BaseDir resolves relative image paths. Empty keeps paths as given.
	BaseDir string
	// CodeFont is the font of code spans and blocks.
	CodeFont string
}

func (o *Options) withDefaults() Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.CodeFont == "" {
		opts.CodeFont = "Courier New"
	}
	return opts
}

// importer carries the state shared by the HTML and Markdown walkers.
type importer struct {
	doc    *opendoc.Document
	opts   Options
	logger *opendoc.Logger
}

func newImporter(doc *opendoc.Document, opts *Options, format string) *importer {
	return &importer{
		doc:    doc,
		opts:   opts.withDefaults(),
		logger: opendoc.GetLogger().WithField("importer", format),
	}
}

// headingSizes are the run sizes (points) of Heading 1 to 6.
var headingSizes = []float64{16, 14, 13, 12, 11, 11}

// headingStyle returns the style id of "Heading level", registering the
// style when the document has none of that name.
func (im *importer) headingStyle(level int) string {
	level = min(max(level, 1), len(headingSizes))
	name := fmt.Sprintf("Heading %d", level)
	if im.doc.Style(name) == nil {
		st := opendoc.NewParagraphStyle(name, nil)
		st.Properties().
			Set("basedOn", "Normal").
			Set("next", "Normal").
			Set("qFormat", true).
			Set("keepNext", true).
			Set("outline", level-1).
			Set("spacing.before", 12).
			Set("spacing.after", 3).
			Set("run.bold", true).
			Set("run.size", headingSizes[level-1])
		// a named paragraph style is always accepted
		_ = im.doc.AddStyle(st)
		im.logger.Debug("registered style %q", name)
	}
	return im.doc.Style(name).ID()
}

func (im *importer) heading(level int, pieces []piece) (*opendoc.Paragraph, error) {
	return im.paragraph(opendoc.Props{"style": im.headingStyle(level)}, pieces)
}

func (im *importer) imageSource(src string) string {
	if im.opts.BaseDir == "" || strings.Contains(src, ":") || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(im.opts.BaseDir, filepath.FromSlash(src))
}

type pieceKind int

const (
	pieceText pieceKind = iota
	pieceBreak
	pieceImage
)

// piece is one inline leaf with the formatting tags that enclose it and
// the target of an enclosing link, if any.
type piece struct {
	kind  pieceKind
	text  string // text, or image source
	title string // image title
	path  []string
	href  string
}

// paragraph builds a paragraph from inline pieces.
func (im *importer) paragraph(p opendoc.Props, pieces []piece) (*opendoc.Paragraph, error) {
	para := opendoc.NewParagraph(p)
	if err := im.fill(para, pieces); err != nil {
		return nil, err
	}
	return para, nil
}

// fill groups consecutive pieces sharing a link target into one Link and
// the rest into runs.
func (im *importer) fill(para *opendoc.Paragraph, pieces []piece) error {
	for i := 0; i < len(pieces); {
		href := pieces[i].href
		j := i + 1
		for j < len(pieces) && pieces[j].href == href {
			j++
		}
		if href == "" {
			if err := im.runs(para, pieces[i:j]); err != nil {
				return err
			}
		} else {
			link := opendoc.NewEmptyLink(href, nil)
			if err := im.runs(link, pieces[i:j]); err != nil {
				return err
			}
			if err := para.Insert(link); err != nil {
				return err
			}
		}
		i = j
	}
	return nil
}

// runs groups consecutive text with the same formatting path into one
// TextRun. Breaks join the current run; images get a run of their own.
func (im *importer) runs(dst Container, pieces []piece) error {
	var run *opendoc.TextRun
	var path []string
	open := func(p []string) error {
		run = opendoc.NewTextRun(im.runProps(p))
		path = p
		return dst.Insert(run)
	}

	for _, pc := range pieces {
		switch pc.kind {
		case pieceImage:
			run = nil
			var p opendoc.Props
			if pc.title != "" {
				p = opendoc.Props{"title": pc.title}
			}
			if err := dst.Insert(opendoc.NewImage(im.imageSource(pc.text), p)); err != nil {
				return err
			}
		case pieceBreak:
			if run == nil {
				if err := open(pc.path); err != nil {
					return err
				}
			}
			if err := run.Insert(opendoc.NewBreak("")); err != nil {
				return err
			}
		default:
			if run == nil || !slices.Equal(path, pc.path) {
				if err := open(pc.path); err != nil {
					return err
				}
			}
			if err := run.Insert(pc.text); err != nil {
				return err
			}
		}
	}
	return nil
}

// runProps converts a formatting path to run properties.
func (im *importer) runProps(path []string) opendoc.Props {
	p := opendoc.Props{}
	for _, tag := range path {
		switch tag {
		case "b", "strong":
			p["bold"] = true
		case "i", "em", "cite", "var", "dfn":
			p["italic"] = true
		case "u", "ins":
			p["underline"] = "single"
		case "s", "strike", "del":
			p["strike"] = true
		case "sup":
			p["valign"] = "superscript"
		case "sub":
			p["valign"] = "subscript"
		case "code", "kbd", "samp", "tt":
			p["font"] = im.opts.CodeFont
		case "mark":
			p["highlight"] = "yellow"
		case "small":
			p["size"] = 8
		}
	}
	if len(p) == 0 {
		return nil
	}
	return p
}

// collapse applies HTML whitespace rules: runs of white space become one
// space, and space at the start and end of the paragraph is dropped.
func collapse(pieces []piece) []piece {
	out := make([]piece, 0, len(pieces))
	space := true
	for _, pc := range pieces {
		if pc.kind != pieceText {
			out = append(out, pc)
			space = pc.kind == pieceBreak
			continue
		}
		var sb strings.Builder
		for _, r := range pc.text {
			if unicode.IsSpace(r) {
				if !space {
					sb.WriteByte(' ')
					space = true
				}
				continue
			}
			sb.WriteRune(r)
			space = false
		}
		if sb.Len() > 0 {
			pc.text = sb.String()
			out = append(out, pc)
		}
	}
	for len(out) > 0 {
		last := &out[len(out)-1]
		if last.kind != pieceText {
			break
		}
		last.text = strings.TrimRight(last.text, " ")
		if last.text != "" {
			break
		}
		out = out[:len(out)-1]
	}
	return out
}

// hasContent reports whether pieces hold anything worth a paragraph.
func hasContent(pieces []piece) bool {
	for _, pc := range pieces {
		if pc.kind != pieceText || strings.TrimSpace(pc.text) != "" {
			return true
		}
	}
	return false
}

// appendPath returns path extended by tag without aliasing path.
func appendPath(path []string, tag string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, tag)
}
