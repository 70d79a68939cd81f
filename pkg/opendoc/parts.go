package opendoc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/format"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/xml"
)

// Application is written to docProps/app.xml.
const Application = "go-opendoc"

// writeStyles emits word/styles.xml: the document defaults, a Normal
// paragraph style when none is registered, then every style in
// registration order.
func (s *saveState) writeStyles() error {
	root := xml.NewRoot("w:styles", xml.PartNamespaces)
	defaults := xml.Add(root, "w:docDefaults")

	if st := s.doc.DefaultStyle(TextStyle); st != nil {
		rPr := xml.Add(xml.Add(defaults, "w:rPrDefault"), "w:rPr")
		if err := s.engine.Format(format.Run, st.Properties(), rPr); err != nil {
			return err
		}
	}
	if st := s.doc.DefaultStyle(ParagraphStyle); st != nil {
		pPr := xml.Add(xml.Add(defaults, "w:pPrDefault"), "w:pPr")
		if err := s.engine.Format(format.Paragraph, st.Properties(), pPr); err != nil {
			return err
		}
	}

	styles := s.doc.Styles()
	if s.doc.Style("Normal") == nil {
		normal := NewParagraphStyle("Normal", nil)
		normal.Properties().Set("qFormat", true)
		styles = append([]*Style{normal}, styles...)
	}
	for _, st := range styles {
		node, err := s.style(st)
		if err != nil {
			return err
		}
		root.AddChild(node)
	}
	return s.addPart(stylesPart, ctStyles, root)
}

// style lowers one style. Style-level properties (basedOn, next, qFormat,
// ...) come first, then the paragraph and run properties. Run properties
// of a paragraph style may be grouped under "run".
func (s *saveState) style(st *Style) (*etree.Element, error) {
	typ := "paragraph"
	if st.Type() == TextStyle {
		typ = "character"
	}
	node := xml.New("w:style", xml.A("w:type", typ), xml.A("w:styleId", st.ID()))
	if styleKey(st.Name()) == "normal" && st.Type() == ParagraphStyle {
		node.CreateAttr("w:default", "1")
	}
	xml.Add(node, "w:name", xml.A("w:val", st.Name()))

	p := st.Properties().Clone()
	_ = p.Remove("name")
	if err := s.engine.Format(format.Style, p, node); err != nil {
		return nil, err
	}

	runProps := p
	if st.Type() == ParagraphStyle {
		if p.Has("run") {
			runProps = p.Store("run")
		}
		pp := p.Clone()
		_ = pp.Remove("run")
		_ = pp.Remove("rPr")
		pPr := xml.New("w:pPr")
		if err := s.engine.Format(format.Paragraph, pp, pPr); err != nil {
			return nil, err
		}
		xml.AddIfAny(node, pPr)
	}
	rPr := xml.New("w:rPr")
	if err := s.engine.Format(format.Run, runProps, rPr); err != nil {
		return nil, err
	}
	xml.AddIfAny(node, rPr)
	return node, nil
}

var listLevelText = map[string]string{
	ListBullet: "•",
}

// writeNumbering emits word/numbering.xml when the document contains
// lists: one abstract definition per numbering id, then the num entries
// pointing at them.
func (s *saveState) writeNumbering() error {
	if len(s.numOrder) == 0 {
		return nil
	}
	root := xml.NewRoot("w:numbering", xml.PartNamespaces)
	for _, id := range s.numOrder {
		l := s.numbering[id]
		abs := xml.Add(root, "w:abstractNum", xml.A("w:abstractNumId", strconv.Itoa(id)))
		xml.Add(abs, "w:multiLevelType", xml.A("w:val", "hybridMultilevel"))
		for lvl := 0; lvl < 9; lvl++ {
			level := xml.Add(abs, "w:lvl", xml.A("w:ilvl", strconv.Itoa(lvl)))
			xml.Add(level, "w:start", xml.A("w:val", "1"))
			xml.Add(level, "w:numFmt", xml.A("w:val", l.Format()))
			text, ok := listLevelText[l.Format()]
			if !ok {
				text = fmt.Sprintf("%%%d.", lvl+1)
			}
			xml.Add(level, "w:lvlText", xml.A("w:val", text))
			xml.Add(level, "w:lvlJc", xml.A("w:val", "left"))
			xml.Add(xml.Add(level, "w:pPr"), "w:ind",
				xml.A("w:left", strconv.Itoa(720*(lvl+1))),
				xml.A("w:hanging", "360"))
		}
	}
	for _, id := range s.numOrder {
		num := xml.Add(root, "w:num", xml.A("w:numId", strconv.Itoa(id)))
		xml.Add(num, "w:abstractNumId", xml.A("w:val", strconv.Itoa(id)))
	}
	s.rels.add(mainPart, "numbering", numberPart, "", false)
	return s.addPart(numberPart, ctNumbering, root)
}

// writeSettings emits word/settings.xml. Distinct even and odd headers are
// enabled when a section binds an even or odd header or footer.
func (s *saveState) writeSettings() error {
	root := xml.NewRoot("w:settings", xml.PartNamespaces)
	xml.Add(root, "w:zoom", xml.A("w:percent", "100"))
	xml.Add(root, "w:defaultTabStop", xml.A("w:val", "720"))
	if s.evenOdd {
		xml.Add(root, "w:evenAndOddHeaders")
	}
	xml.Add(root, "w:characterSpacingControl", xml.A("w:val", "doNotCompress"))
	return s.addPart(settingsPart, ctSettings, root)
}

// Core property elements and their namespace prefix.
var coreTags = map[string]string{
	"category":       "cp",
	"contentStatus":  "cp",
	"created":        "dcterms",
	"creator":        "dc",
	"description":    "dc",
	"identifier":     "dc",
	"keywords":       "cp",
	"language":       "dc",
	"lastModifiedBy": "cp",
	"lastPrinted":    "cp",
	"modified":       "dcterms",
	"revision":       "cp",
	"subject":        "dc",
	"title":          "dc",
	"version":        "cp",
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// writeCoreProperties emits docProps/core.xml from the document's "core"
// properties. "created" defaults to now and "creator" to the configured
// creator.
func (s *saveState) writeCoreProperties() error {
	root := xml.New("cp:coreProperties",
		xml.A("xmlns:cp", xml.NSCoreProperties),
		xml.A("xmlns:dc", xml.NSDublinCore),
		xml.A("xmlns:dcterms", xml.NSDublinCoreTerms),
		xml.A("xmlns:dcmitype", xml.NSDublinCoreType),
		xml.A("xmlns:xsi", xml.NSSchemaInstance),
	)

	core := s.doc.Properties().Store("core").Clone()
	if !core.Has("creator") && s.w.config.Creator != "" {
		core.Set("creator", s.w.config.Creator)
	}
	if !core.Has("created") {
		core.Set("created", time.Now())
	}

	for _, key := range core.Keys() {
		prefix, ok := coreTags[key]
		if !ok {
			s.w.logger.Debug("ignoring unknown core property %q", key)
			continue
		}
		value := core.Get(key, nil)
		node := xml.Add(root, prefix+":"+key)
		if prefix != "dcterms" {
			node.SetText(coreText(value))
			continue
		}
		ts, err := timestamp(value)
		if err != nil {
			root.RemoveChild(node)
			if err := s.fail(NewSaveError("core properties", corePart, fmt.Errorf("invalid timestamp for %q: %w", key, err))); err != nil {
				return err
			}
			continue
		}
		node.CreateAttr("xsi:type", "dcterms:W3CDTF")
		node.SetText(ts.UTC().Format(time.RFC3339))
	}
	return s.addPart(corePart, ctCore, root)
}

func coreText(v any) string {
	switch list := v.(type) {
	case []string:
		return strings.Join(list, ", ")
	case []any:
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func timestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case int:
		return time.Unix(int64(t), 0), nil
	case int64:
		return time.Unix(t, 0), nil
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized format %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported value %v", v)
	}
}

// writeAppProperties emits docProps/app.xml.
func (s *saveState) writeAppProperties() error {
	root := xml.New("Properties",
		xml.A("xmlns", xml.NSExtendedProps),
		xml.A("xmlns:vt", xml.NSDocPropsVTypes),
	)
	xml.Add(root, "Application").SetText(Application)
	xml.Add(root, "DocSecurity").SetText("0")
	if company := s.doc.Properties().String("app.company", ""); company != "" {
		xml.Add(root, "Company").SetText(company)
	}
	return s.addPart(appPart, ctApp, root)
}
