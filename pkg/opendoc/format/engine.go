// Package format translates element properties into WordprocessingML
// property elements.
//
// Each element family (paragraph, run, table, row, cell, section, style)
// has an alias table mapping friendly names to canonical names and a kind
// table mapping canonical names to a translation. Unknown names are
// skipped so documents can carry properties a given writer does not use.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/language"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/props"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/xml"
)

// Engine formats property stores into property nodes.
type Engine struct {
	Units *Translator
	// Report receives every translation error. Returning nil skips the
	// offending property and continues; a nil Report aborts on the first
	// error.
	Report func(err error) error
}

// NewEngine returns an engine using the given unit translator.
func NewEngine(units *Translator) *Engine {
	if units == nil {
		units = NewTranslator(DefaultDPI)
	}
	return &Engine{Units: units}
}

// Lookup resolves a property name to its canonical name and kind within a
// family.
func Lookup(f Family, name string) (string, Kind, bool) {
	fam, ok := families[f]
	if !ok {
		return name, 0, false
	}
	canonical := fam.canonical(name)
	kind, ok := fam.kinds[canonical]
	return canonical, kind, ok
}

// Format appends one property element to out for every recognized
// property in p, in insertion order.
func (e *Engine) Format(f Family, p *props.Store, out *etree.Element) error {
	fam, ok := families[f]
	if !ok || p == nil {
		return nil
	}
	for _, key := range p.Keys() {
		name := fam.canonical(key)
		kind, ok := fam.kinds[name]
		if !ok {
			continue
		}
		if err := e.apply(fam, kind, name, p.Get(key, nil), out); err != nil {
			if e.Report == nil {
				return err
			}
			if err := e.Report(err); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) apply(fam *family, kind Kind, name string, v any, out *etree.Element) error {
	switch kind {
	case KindBool:
		if tok, ok := OnOff(v); ok {
			simple(out, name, tok)
		}
	case KindDecimal:
		if f, ok := toFloat(v); ok {
			simple(out, name, strconv.Itoa(int(f)))
		}
	case KindText:
		simple(out, name, stringValue(v))
	case KindAliases:
		simple(out, name, joinValues(v))
	case KindAlign:
		return e.enumerated(fam, out, name, v, alignValues, map[string]string{"justify": "both"})
	case KindTextAlignment:
		return e.enumerated(fam, out, name, v, textAlignValues, map[string]string{"middle": "center"})
	case KindCellVAlign:
		return e.enumerated(fam, out, name, v, cellVAlignValues, map[string]string{"justify": "both", "middle": "center"})
	case KindTableLayout:
		return e.enumerated(fam, out, name, v, tableLayoutValues, map[string]string{"auto": "autofit"})
	case KindSectionType:
		return e.enumerated(fam, out, name, v, sectionTypeValues, map[string]string{"even": "evenPage", "odd": "oddPage", "next": "nextPage"})
	case KindUnderline:
		if b, ok := v.(bool); ok {
			v = "none"
			if b {
				v = "single"
			}
		}
		return e.enumerated(fam, out, name, v, underlineValues, nil)
	case KindEmphasis:
		if b, ok := v.(bool); ok {
			v = "none"
			if b {
				v = "dot"
			}
		}
		return e.enumerated(fam, out, name, v, emphasisValues, nil)
	case KindFont:
		e.font(out, name, v)
	case KindTableWidth:
		e.tableWidth(out, name, v)
	case KindShading:
		e.shading(out, name, v)
	case KindBorder:
		e.border(fam, out, name, v)
	case KindSpacing:
		e.spacing(out, name, v)
	case KindIndent:
		e.indent(out, name, v)
	case KindNumbering:
		e.numbering(out, name, v)
	case KindParagraphRun:
		if sub, ok := asStore(v); ok {
			rPr := xml.New("w:rPr")
			if err := e.Format(Run, sub, rPr); err != nil {
				return err
			}
			xml.AddIfAny(out, rPr)
		}
	case KindSize, KindHalfPoint:
		if f, ok := toFloat(v); ok {
			simple(out, name, strconv.Itoa(PointToHalfPoint(f)))
		}
	case KindRunSpacing:
		if f, ok := toFloat(v); ok {
			simple(out, name, strconv.Itoa(PointToTwip(f)))
		}
	case KindLang:
		return e.lang(fam, out, name, v)
	case KindHeight:
		e.height(out, name, v)
	case KindVMerge:
		node := xml.Add(out, "w:"+name)
		if _, numeric := toFloat(v); numeric || v == "restart" {
			node.CreateAttr("w:val", "restart")
		}
	case KindMargin:
		e.cellMargin(out, name, v)
	case KindPageMargin:
		e.pageMargin(out, name, v)
	case KindPageSize:
		e.pageSize(out, name, v)
	case KindColumns:
		e.columns(out, name, v)
	case KindAttrs:
		e.attrs(fam, out, name, v)
	}
	return nil
}

// simple appends <w:name w:val="val"/> unless val is empty.
func simple(out *etree.Element, name, val string) {
	if val == "" {
		return
	}
	xml.Add(out, "w:"+name, xml.A("w:val", val))
}

func joinValues(v any) string {
	switch list := v.(type) {
	case []string:
		return strings.Join(list, ",")
	case []any:
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, stringValue(item))
		}
		return strings.Join(parts, ",")
	}
	return stringValue(v)
}

func (e *Engine) enumerated(fam *family, out *etree.Element, name string, v any, valid []string, synonyms map[string]string) error {
	val := stringValue(v)
	if mapped, ok := synonyms[val]; ok {
		val = mapped
	}
	if !contains(valid, val) {
		return &ValueError{Family: fam.name.String(), Property: name, Value: v, Allowed: valid}
	}
	simple(out, name, val)
	return nil
}

func (e *Engine) font(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		font := stringValue(v)
		node.CreateAttr("w:ascii", font)
		node.CreateAttr("w:cs", font)
		node.CreateAttr("w:hAnsi", font)
		return
	}
	for _, k := range sub.Keys() {
		node.CreateAttr("w:"+k, sub.String(k, ""))
	}
}

// tableWidth handles the w:w/w:type pair used by tblW, tcW, tblInd and
// tblCellSpacing: "nil", "N%" (fiftieths of a percent), "Npt", "Npx",
// "Nin", or a bare number of twips.
func (e *Engine) tableWidth(out *etree.Element, name string, v any) {
	typ := "dxa"
	var w float64
	s := strings.TrimSpace(stringValue(v))
	switch {
	case v == nil || s == "nil" || s == "null":
		typ = "nil"
	case strings.HasSuffix(s, "%"):
		typ = "pct"
		f, _ := leadingFloat(s)
		w = f * 50
	case strings.HasSuffix(s, "pt"):
		f, _ := leadingFloat(s)
		w = float64(PointToTwip(f))
	case strings.HasSuffix(s, "px"):
		f, _ := leadingFloat(s)
		w = float64(PixelToTwip(f))
	case strings.HasSuffix(s, "in"):
		f, _ := leadingFloat(s)
		w = float64(e.Units.InchToTwip(f))
	default:
		w, _ = leadingFloat(s)
	}
	xml.Add(out, "w:"+name,
		xml.A("w:w", strconv.Itoa(int(math.Round(w)))),
		xml.A("w:type", typ),
	)
}

var shadingAttrs = []string{"val", "color", "fill", "themeFill", "themeColor"}

func (e *Engine) shading(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		node.CreateAttr("w:val", "clear")
		node.CreateAttr("w:color", "auto")
		node.CreateAttr("w:fill", stringValue(v))
		return
	}
	for _, k := range sub.Keys() {
		if contains(shadingAttrs, k) {
			node.CreateAttr("w:"+k, sub.String(k, ""))
		}
	}
}

func (e *Engine) border(fam *family, out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sides, ok := asStore(v)
	if !ok {
		sides = props.New()
		for _, side := range fam.broadcastSides {
			sides.Set(side, v)
		}
	}
	for _, side := range sides.Keys() {
		if !contains(fam.borderSides, side) {
			continue
		}
		spec, ok := asStore(sides.Get(side, nil))
		if !ok {
			spec = props.New().Set("sz", sides.Get(side, nil))
		}
		bdr := xml.Add(node, "w:"+side)
		bdr.CreateAttr("w:val", spec.String("val", "single"))
		for _, k := range spec.Keys() {
			if k == "val" || !contains(borderAttrs, k) {
				continue
			}
			val := spec.Get(k, nil)
			switch k {
			case "sz":
				f, _ := toFloat(val)
				bdr.CreateAttr("w:sz", strconv.Itoa(int(math.Round(f*8))))
			case "shadow", "frame":
				if tok, ok := OnOff(val); ok {
					bdr.CreateAttr("w:"+k, tok)
				}
			default:
				bdr.CreateAttr("w:"+k, stringValue(val))
			}
		}
	}
}

var spacingAttrs = []string{"after", "afterAutospacing", "afterLines", "before", "beforeAutospacing", "beforeLines", "line", "lineRule"}

// spacing takes points for before/after; a scalar applies to both with
// single line spacing.
func (e *Engine) spacing(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		f, _ := toFloat(v)
		tw := strconv.Itoa(PointToTwip(f))
		node.CreateAttr("w:after", tw)
		node.CreateAttr("w:before", tw)
		node.CreateAttr("w:line", "240")
		node.CreateAttr("w:lineRule", "auto")
		return
	}
	for _, k := range sub.Keys() {
		if !contains(spacingAttrs, k) {
			continue
		}
		val := sub.Get(k, nil)
		switch k {
		case "after", "before":
			f, _ := toFloat(val)
			node.CreateAttr("w:"+k, strconv.Itoa(PointToTwip(f)))
		default:
			node.CreateAttr("w:"+k, stringValue(val))
		}
	}
}

var (
	indentDimensions = []string{"left", "right", "start", "end", "hanging", "firstLine"}
	indentChars      = []string{"leftChars", "rightChars", "startChars", "endChars", "hangingChars", "firstLineChars"}
)

// indent takes inches; a scalar indents both left and right.
func (e *Engine) indent(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		f, _ := toFloat(v)
		tw := strconv.Itoa(e.Units.InchToTwip(f))
		node.CreateAttr("w:left", tw)
		node.CreateAttr("w:right", tw)
		return
	}
	for _, k := range sub.Keys() {
		f, _ := toFloat(sub.Get(k, nil))
		switch {
		case contains(indentDimensions, k):
			node.CreateAttr("w:"+k, strconv.Itoa(e.Units.InchToTwip(f)))
		case contains(indentChars, k):
			node.CreateAttr("w:"+k, strconv.Itoa(int(f)))
		}
	}
}

func (e *Engine) numbering(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		id, _ := toFloat(v)
		simple(node, "ilvl", "0")
		simple(node, "numId", strconv.Itoa(int(id)))
		return
	}
	for _, k := range []string{"ilvl", "numId"} {
		if f, ok := toFloat(sub.Get(k, nil)); ok {
			simple(node, k, strconv.Itoa(int(f)))
		}
	}
}

func (e *Engine) lang(fam *family, out *etree.Element, name string, v any) error {
	node := xml.New("w:"+name)
	canonical := func(attr string, raw any) error {
		tag, err := language.Parse(stringValue(raw))
		if err != nil {
			return &ValueError{Family: fam.name.String(), Property: name, Value: raw, Allowed: []string{"BCP 47 language tag"}}
		}
		node.CreateAttr(attr, tag.String())
		return nil
	}
	if sub, ok := asStore(v); ok {
		for _, k := range []string{"val", "eastAsia", "bidi"} {
			if sub.Has(k) {
				if err := canonical("w:"+k, sub.Get(k, nil)); err != nil {
					return err
				}
			}
		}
	} else if err := canonical("w:val", v); err != nil {
		return err
	}
	out.AddChild(node)
	return nil
}

// height takes points; a map may carry the rule ("atLeast", "exact",
// "auto").
func (e *Engine) height(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	val, rule := v, "atLeast"
	if sub, ok := asStore(v); ok {
		val = sub.Get("val", 0)
		rule = sub.String("rule", sub.String("hRule", rule))
	}
	f, _ := toFloat(val)
	node.CreateAttr("w:val", strconv.Itoa(PointToTwip(f)))
	node.CreateAttr("w:hRule", rule)
}

var marginSides = []string{"top", "left", "start", "bottom", "right", "end"}

// cellMargin takes points per side; a scalar applies to all four sides.
func (e *Engine) cellMargin(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		sub = props.New()
		for _, side := range []string{"top", "left", "bottom", "right"} {
			sub.Set(side, v)
		}
	}
	for _, side := range sub.Keys() {
		if !contains(marginSides, side) {
			continue
		}
		f, _ := toFloat(sub.Get(side, nil))
		xml.Add(node, "w:"+side, xml.A("w:w", strconv.Itoa(PointToTwip(f))), xml.A("w:type", "dxa"))
	}
}

var pageMarginAttrs = []string{"top", "right", "bottom", "left", "header", "footer", "gutter"}

// pageMargin takes inches. A scalar sets the four sides, puts header and
// footer at half the margin and zeroes the gutter.
func (e *Engine) pageMargin(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		f, _ := toFloat(v)
		sub = props.New().
			Set("top", f).Set("right", f).Set("bottom", f).Set("left", f).
			Set("header", f/2).Set("footer", f/2).Set("gutter", 0)
	}
	for _, k := range sub.Keys() {
		if !contains(pageMarginAttrs, k) {
			continue
		}
		f, _ := toFloat(sub.Get(k, nil))
		node.CreateAttr("w:"+k, strconv.Itoa(e.Units.InchToTwip(f)))
	}
}

var pageSizeAliases = map[string]string{"width": "w", "height": "h", "orientation": "orient"}

// pageSize takes inches. A scalar is the orientation of a letter page.
func (e *Engine) pageSize(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		orient := stringValue(v)
		sub = props.New()
		if orient == "landscape" {
			sub.Set("w", 11).Set("h", 8.5)
		} else {
			sub.Set("w", 8.5).Set("h", 11)
		}
		sub.Set("orient", orient)
	}
	for _, k := range sub.Keys() {
		attr := k
		if alias, ok := pageSizeAliases[k]; ok {
			attr = alias
		}
		val := sub.Get(k, nil)
		switch attr {
		case "w", "h":
			f, _ := toFloat(val)
			node.CreateAttr("w:"+attr, strconv.Itoa(e.Units.InchToTwip(f)))
		case "orient", "code":
			if s := stringValue(val); s != "" {
				node.CreateAttr("w:"+attr, s)
			}
		}
	}
}

// columns takes a column count or a map of num, space (inches),
// equalWidth and sep.
func (e *Engine) columns(out *etree.Element, name string, v any) {
	node := xml.Add(out, "w:"+name)
	sub, ok := asStore(v)
	if !ok {
		f, _ := toFloat(v)
		node.CreateAttr("w:num", strconv.Itoa(int(f)))
		return
	}
	for _, k := range sub.Keys() {
		val := sub.Get(k, nil)
		switch k {
		case "num":
			f, _ := toFloat(val)
			node.CreateAttr("w:num", strconv.Itoa(int(f)))
		case "space":
			f, _ := toFloat(val)
			node.CreateAttr("w:space", strconv.Itoa(e.Units.InchToTwip(f)))
		case "equalWidth", "sep":
			if tok, ok := OnOff(val); ok {
				node.CreateAttr("w:"+k, tok)
			}
		}
	}
}

// attrs copies the recognized keys of a map onto a single element.
func (e *Engine) attrs(fam *family, out *etree.Element, name string, v any) {
	sub, ok := asStore(v)
	if !ok {
		return
	}
	node := xml.Add(out, "w:"+name)
	allowed := fam.attrs[name]
	for _, k := range sub.Keys() {
		if contains(allowed, k) {
			node.CreateAttr("w:"+k, sub.String(k, ""))
		}
	}
}
