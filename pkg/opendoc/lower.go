package opendoc

import (
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/format"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/xml"
)

// writeDocument lowers every section into word/document.xml together with
// the header and footer parts they reference.
func (s *saveState) writeDocument() error {
	root := xml.NewRoot("w:document", xml.DocumentNamespaces)
	body := xml.Add(root, "w:body")

	sections := s.doc.Sections()
	if len(sections) == 0 {
		xml.Add(body, "w:p")
		xml.Add(body, "w:sectPr")
	}
	for i, sec := range sections {
		if err := s.lowerSection(sec, body, i == len(sections)-1); err != nil {
			return err
		}
	}
	return s.addPart(mainPart, ctMain, root)
}

func (s *saveState) lowerSection(sec *Section, body *etree.Element, last bool) error {
	start := len(body.ChildElements())
	if err := s.lowerBlocks(sec.Elements(), body); err != nil {
		return err
	}
	if len(body.ChildElements()) == start {
		xml.Add(body, "w:p")
	}

	sectPr := xml.New("w:sectPr")
	titlePage := false
	for _, hf := range append(sec.Headers(), sec.Footers()...) {
		if err := s.lowerHeaderFooter(hf, sectPr); err != nil {
			return err
		}
		switch hf.Type() {
		case HeaderFirst:
			titlePage = true
		case HeaderEven, HeaderOdd:
			s.evenOdd = true
		}
	}
	if err := s.engine.Format(format.Section, sec.Properties(), sectPr); err != nil {
		return err
	}
	if titlePage && sectPr.SelectElement("w:titlePg") == nil {
		xml.Add(sectPr, "w:titlePg")
	}

	if last {
		body.AddChild(sectPr)
		return nil
	}

	// a section break lives in the pPr of the section's last paragraph
	p := xml.LastChild(body)
	if p == nil || p.FullTag() != "w:p" {
		p = xml.Add(body, "w:p")
	}
	pPr := p.SelectElement("w:pPr")
	if pPr == nil {
		pPr = xml.New("w:pPr")
		p.InsertChildAt(0, pPr)
	}
	pPr.AddChild(sectPr)
	return nil
}

// lowerHeaderFooter writes hf to its own part and adds its reference to
// sectPr.
func (s *saveState) lowerHeaderFooter(hf *HeaderFooter, sectPr *etree.Element) error {
	var name, rootName, contentType string
	if hf.Position() == PositionHeader {
		s.headers++
		name = fmt.Sprintf("word/header%d.xml", s.headers)
		rootName, contentType = "w:hdr", ctHeader
	} else {
		s.footers++
		name = fmt.Sprintf("word/footer%d.xml", s.footers)
		rootName, contentType = "w:ftr", ctFooter
	}

	id := s.rels.add(mainPart, hf.Position(), name, "", false)
	xml.Add(sectPr, "w:"+hf.Position()+"Reference", xml.A("r:id", id), xml.A("w:type", hf.slot()))

	prev := s.part
	s.part = name
	defer func() { s.part = prev }()

	root := xml.NewRoot(rootName, xml.DocumentNamespaces)
	if err := s.lowerBlocks(hf.Elements(), root); err != nil {
		return err
	}
	if len(root.ChildElements()) == 0 {
		xml.Add(root, "w:p")
	}
	return s.addPart(name, contentType, root)
}

func (s *saveState) lowerBlocks(elements []Element, parent *etree.Element) error {
	for _, e := range elements {
		if err := s.lowerBlock(e, parent); err != nil {
			return err
		}
	}
	return nil
}

func (s *saveState) lowerBlock(e Element, parent *etree.Element) error {
	switch v := e.(type) {
	case *Paragraph:
		return s.lowerParagraph(v, nil, parent)
	case *Table:
		return s.lowerTable(v, parent)
	case *ListItems:
		return s.lowerList(v, parent)
	case *Link:
		p := xml.Add(parent, "w:p")
		return s.lowerLink(v, p)
	default:
		return s.fail(NewStructuralError(elementName(e), "not allowed at block level"))
	}
}

// lowerParagraph emits a w:p. extra holds inherited paragraph properties
// that the paragraph's own properties override.
func (s *saveState) lowerParagraph(para *Paragraph, extra *props.Store, parent *etree.Element) error {
	p := xml.Add(parent, "w:p")
	pp := para.Properties()
	if extra != nil {
		pp = extra.Clone().Merge(pp)
	}
	pPr := xml.New("w:pPr")
	if err := s.engine.Format(format.Paragraph, pp, pPr); err != nil {
		return err
	}
	xml.AddIfAny(p, pPr)
	return s.lowerInlines(para.Elements(), nil, p)
}

func (s *saveState) lowerInlines(elements []Element, runProps *props.Store, parent *etree.Element) error {
	for _, e := range elements {
		if err := s.lowerInline(e, runProps, parent); err != nil {
			return err
		}
	}
	return nil
}

// lowerInline emits paragraph content. runProps are inherited run
// properties, set inside hyperlinks.
func (s *saveState) lowerInline(e Element, runProps *props.Store, parent *etree.Element) error {
	switch v := e.(type) {
	case *TextRun:
		return s.lowerRun(v, runProps, parent)
	case *Link:
		return s.lowerLink(v, parent)
	case *Field:
		fld := xml.Add(parent, "w:fldSimple", xml.A("w:instr", " "+v.Instruction()+" "))
		return s.lowerInlines(v.Elements(), runProps, fld)
	case *BookmarkMark:
		if v.IsStart() {
			xml.Add(parent, "w:bookmarkStart", xml.A("w:id", strconv.Itoa(v.ID())), xml.A("w:name", v.Name()))
		} else {
			xml.Add(parent, "w:bookmarkEnd", xml.A("w:id", strconv.Itoa(v.ID())))
		}
		return nil
	case *Text, *Break, *Cr, *Image:
		r := xml.Add(parent, "w:r")
		return s.lowerRunContent(e, r)
	default:
		return s.fail(NewStructuralError(elementName(e), "not allowed inside a paragraph"))
	}
}

func (s *saveState) lowerRun(run *TextRun, inherited *props.Store, parent *etree.Element) error {
	r := xml.Add(parent, "w:r")
	rp := run.Properties()
	if inherited != nil {
		rp = inherited.Clone().Merge(rp)
	}
	rPr := xml.New("w:rPr")
	if err := s.engine.Format(format.Run, rp, rPr); err != nil {
		return err
	}
	xml.AddIfAny(r, rPr)
	for _, child := range run.Elements() {
		if err := s.lowerRunContent(child, r); err != nil {
			return err
		}
	}
	return nil
}

// lowerRunContent emits a leaf inside a w:r.
func (s *saveState) lowerRunContent(e Element, r *etree.Element) error {
	switch v := e.(type) {
	case *Text:
		t := xml.Add(r, "w:t")
		t.SetText(v.Content())
		if needsPreserve(v.Content()) {
			t.CreateAttr("xml:space", "preserve")
		}
		return nil
	case *Break:
		return s.lowerBreak(v, r)
	case *Cr:
		xml.Add(r, "w:cr")
		return nil
	case *Image:
		return s.lowerImage(v, r)
	default:
		return s.fail(NewStructuralError(elementName(e), "not allowed inside a text run"))
	}
}

func needsPreserve(text string) bool {
	if text == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text)
	last, _ := utf8.DecodeLastRuneInString(text)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}

var (
	breakTypes  = []string{BreakPage, BreakColumn, BreakTextWrapping}
	breakClears = []string{"none", "left", "right", "all"}
)

func (s *saveState) lowerBreak(b *Break, r *etree.Element) error {
	br := xml.New("w:br")
	if typ := b.Type(); typ != "" && typ != BreakTextWrapping {
		if !slices.Contains(breakTypes, typ) {
			return s.fail(&ValidationError{Family: "break", Property: "type", Value: typ, Allowed: breakTypes})
		}
		br.CreateAttr("w:type", typ)
	}
	if clear := b.Clear(); clear != "" && clear != "none" {
		if !slices.Contains(breakClears, clear) {
			return s.fail(&ValidationError{Family: "break", Property: "clear", Value: clear, Allowed: breakClears})
		}
		br.CreateAttr("w:clear", clear)
	}
	r.AddChild(br)
	return nil
}

// lowerLink emits a w:hyperlink. External targets get a relationship of
// the current part; "#name" targets must name a bookmark of the document.
func (s *saveState) lowerLink(l *Link, parent *etree.Element) error {
	h := xml.New("w:hyperlink")
	if l.IsAnchor() {
		if !s.doc.HasBookmark(l.Anchor()) {
			return s.fail(NewStructuralError("link", fmt.Sprintf("undefined bookmark %q", l.Anchor())))
		}
		h.CreateAttr("w:anchor", l.Anchor())
	} else {
		h.CreateAttr("r:id", s.rels.add(s.part, "hyperlink", l.Target(), "", true))
	}
	parent.AddChild(h)

	var runProps *props.Store
	if l.HasProperties() {
		runProps = l.Properties()
	}
	return s.lowerInlines(l.Elements(), runProps, h)
}

// lowerTable emits a w:tbl. Rows without cells are skipped and cells
// without content get the paragraph a cell requires.
func (s *saveState) lowerTable(t *Table, parent *etree.Element) error {
	tbl := xml.Add(parent, "w:tbl")
	tblPr := xml.Add(tbl, "w:tblPr")
	if err := s.engine.Format(format.Table, t.Properties(), tblPr); err != nil {
		return err
	}

	grid := xml.Add(tbl, "w:tblGrid")
	if widths := t.Grid(); len(widths) > 0 {
		for _, w := range widths {
			xml.Add(grid, "w:gridCol", xml.A("w:w", strconv.Itoa(w)))
		}
	} else {
		for i, n := 0, tableColumns(t); i < n; i++ {
			xml.Add(grid, "w:gridCol")
		}
	}

	for _, row := range t.Rows() {
		if !row.HasElements() {
			continue
		}
		tr := xml.Add(tbl, "w:tr")
		trPr := xml.New("w:trPr")
		if err := s.engine.Format(format.Row, row.Properties(), trPr); err != nil {
			return err
		}
		xml.AddIfAny(tr, trPr)
		for _, cell := range row.Cells() {
			if err := s.lowerCell(cell, tr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *saveState) lowerCell(cell *TableCell, tr *etree.Element) error {
	tc := xml.Add(tr, "w:tc")
	tcPr := xml.New("w:tcPr")
	if err := s.engine.Format(format.Cell, cell.Properties(), tcPr); err != nil {
		return err
	}
	xml.AddIfAny(tc, tcPr)
	if err := s.lowerBlocks(cell.Elements(), tc); err != nil {
		return err
	}
	// a cell must end with a paragraph
	if last := xml.LastChild(tc); last == nil || last.FullTag() != "w:p" {
		xml.Add(tc, "w:p")
	}
	return nil
}

// tableColumns counts the grid columns used by the widest row.
func tableColumns(t *Table) int {
	widest := 0
	for _, row := range t.Rows() {
		n := intProp(row, "skipBefore") + intProp(row, "skipAfter")
		for _, cell := range row.Cells() {
			span := intProp(cell, "colspan")
			if span < 1 {
				span = 1
			}
			n += span
		}
		widest = max(widest, n)
	}
	return widest
}

// lowerList emits one paragraph per entry with a w:numPr naming the
// list's level and numbering id. List properties apply under each
// entry's own properties.
func (s *saveState) lowerList(l *ListItems, parent *etree.Element) error {
	if _, ok := s.numbering[l.NumID()]; !ok {
		s.numbering[l.NumID()] = l
		s.numOrder = append(s.numOrder, l.NumID())
	}
	for _, e := range l.Elements() {
		switch v := e.(type) {
		case *ListItems:
			if err := s.lowerList(v, parent); err != nil {
				return err
			}
		case *Paragraph:
			extra := l.Properties().Clone()
			extra.Set("numPr", Props{"ilvl": l.Level(), "numId": l.NumID()})
			if err := s.lowerParagraph(v, extra, parent); err != nil {
				return err
			}
		default:
			if err := s.fail(NewStructuralError(elementName(e), "not allowed inside a list")); err != nil {
				return err
			}
		}
	}
	return nil
}

// lowerImage adds the image to the media directory, relates it to the
// current part and emits the picture markup into r.
func (s *saveState) lowerImage(img *Image, r *etree.Element) error {
	target, err := s.addMedia(img)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}
	id := s.rels.add(s.part, "image", target, img.sourceKey(), false)

	width, err := img.Width(true)
	if err != nil {
		return s.fail(NewSaveError("image size", img.Source(), err))
	}
	height, err := img.Height(true)
	if err != nil {
		return s.fail(NewSaveError("image size", img.Source(), err))
	}
	title := img.Properties().String("title", "")

	if s.w.config.ImageMarkup == ImageMarkupDrawingML {
		s.drawings++
		r.AddChild(drawingML(id, s.drawings, width, height, title))
		return nil
	}
	pict := xml.Add(r, "w:pict")
	shape := xml.Add(pict, "v:shape",
		xml.A("type", "#_x0000_t75"),
		xml.A("style", fmt.Sprintf("width:%dpx;height:%dpx", width, height)),
	)
	xml.Add(shape, "v:imagedata", xml.A("r:id", id), xml.A("o:title", title))
	return nil
}

// addMedia stores the image content once per save and returns its part
// name. An empty name means the failure was degraded to a warning.
func (s *saveState) addMedia(img *Image) (string, error) {
	key := img.sourceKey()
	if target, ok := s.media[key]; ok {
		return target, nil
	}
	ext, err := img.Extension()
	if err != nil {
		return "", s.fail(NewSaveError("read image", img.Source(), err))
	}
	mime, _ := img.ContentType()

	s.images++
	target := path.Join(strings.Trim(s.w.config.MediaPath, "/"), fmt.Sprintf("image%d.%s", s.images, ext))
	if img.IsRemote() {
		tmp, err := s.tempFile("img_*." + ext)
		if err != nil {
			return "", s.fail(NewSaveError("create", s.w.config.TempDir, err))
		}
		if err := img.Save(tmp); err != nil {
			return "", s.fail(NewSaveError("read image", img.Source(), err))
		}
		s.archive.addFile(target, tmp)
	} else {
		data, err := img.Data()
		if err != nil {
			return "", s.fail(NewSaveError("read image", img.Source(), err))
		}
		s.archive.addBytes(target, data)
	}
	s.types.addDefault(ext, mime)
	s.media[key] = target
	s.w.logger.Debug("added media %s from %s", target, img.Source())
	return target, nil
}

func drawingML(relID string, id, width, height int, title string) *etree.Element {
	cx := strconv.FormatInt(format.PixelToEMU(float64(width)), 10)
	cy := strconv.FormatInt(format.PixelToEMU(float64(height)), 10)
	name := fmt.Sprintf("Picture %d", id)

	drawing := xml.New("w:drawing")
	inline := xml.Add(drawing, "wp:inline",
		xml.A("distT", "0"), xml.A("distB", "0"), xml.A("distL", "0"), xml.A("distR", "0"))
	xml.Add(inline, "wp:extent", xml.A("cx", cx), xml.A("cy", cy))
	xml.Add(inline, "wp:docPr", xml.A("id", strconv.Itoa(id)), xml.A("name", name), xml.A("descr", title))
	xml.Add(xml.Add(inline, "wp:cNvGraphicFramePr"), "a:graphicFrameLocks", xml.A("noChangeAspect", "1"))

	data := xml.Add(xml.Add(inline, "a:graphic"), "a:graphicData", xml.A("uri", xml.NSPicture))
	pic := xml.Add(data, "pic:pic")
	nv := xml.Add(pic, "pic:nvPicPr")
	xml.Add(nv, "pic:cNvPr", xml.A("id", "0"), xml.A("name", name))
	xml.Add(nv, "pic:cNvPicPr")

	fill := xml.Add(pic, "pic:blipFill")
	xml.Add(fill, "a:blip", xml.A("r:embed", relID))
	xml.Add(xml.Add(fill, "a:stretch"), "a:fillRect")

	sp := xml.Add(pic, "pic:spPr")
	xfrm := xml.Add(sp, "a:xfrm")
	xml.Add(xfrm, "a:off", xml.A("x", "0"), xml.A("y", "0"))
	xml.Add(xfrm, "a:ext", xml.A("cx", cx), xml.A("cy", cy))
	xml.Add(xml.Add(sp, "a:prstGeom", xml.A("prst", "rect")), "a:avLst")
	return drawing
}
