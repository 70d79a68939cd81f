package format

// Family selects the alias and kind tables for one element type.
type Family int

const (
	Paragraph Family = iota
	Run
	Table
	Row
	Cell
	Section
	Style
)

func (f Family) String() string {
	switch f {
	case Paragraph:
		return "paragraph"
	case Run:
		return "run"
	case Table:
		return "table"
	case Row:
		return "row"
	case Cell:
		return "cell"
	case Section:
		return "section"
	case Style:
		return "style"
	default:
		return "unknown"
	}
}

// Kind is the translation applied to a canonical property.
type Kind int

const (
	KindBool Kind = iota + 1
	KindDecimal
	KindText
	KindAlign
	KindFont
	KindTableWidth
	KindShading
	KindBorder
	KindSpacing
	KindIndent
	KindNumbering
	KindTextAlignment
	KindParagraphRun
	KindSize
	KindHalfPoint
	KindRunSpacing
	KindUnderline
	KindEmphasis
	KindLang
	KindHeight
	KindCellVAlign
	KindVMerge
	KindMargin
	KindTableLayout
	KindPageMargin
	KindPageSize
	KindSectionType
	KindColumns
	KindAttrs
	KindAliases
)

type family struct {
	name    Family
	aliases map[string]string
	kinds   map[string]Kind
	// sides accepted by border specs, and the sides a scalar broadcasts to
	borderSides    []string
	broadcastSides []string
	// keys passed through unchanged by KindAttrs, per property
	attrs map[string][]string
}

func (f *family) canonical(name string) string {
	if alias, ok := f.aliases[name]; ok {
		return alias
	}
	return name
}

var borderAttrs = []string{"val", "color", "themeColor", "themeTint", "themeShade", "sz", "space", "shadow", "frame"}

var (
	alignValues       = []string{"both", "justify", "left", "right", "center", "distribute", "highKashida", "lowKashida", "mediumKashida", "thaiDistribute", "start", "end"}
	cellVAlignValues  = []string{"both", "bottom", "center", "top"}
	textAlignValues   = []string{"top", "center", "baseline", "bottom", "auto"}
	underlineValues   = []string{"single", "words", "double", "thick", "dotted", "dottedHeavy", "dash", "dashedHeavy", "dashLong", "dashLongHeavy", "dotDash", "dashDotHeavy", "dotDotDash", "dashDotDotHeavy", "wave", "wavyHeavy", "wavyDouble", "none"}
	emphasisValues    = []string{"none", "dot", "comma", "circle", "underDot"}
	sectionTypeValues = []string{"continuous", "evenPage", "oddPage", "nextPage", "nextColumn"}
	tableLayoutValues = []string{"fixed", "autofit"}
)

func boolKinds(m map[string]Kind, names ...string) map[string]Kind {
	for _, n := range names {
		m[n] = KindBool
	}
	return m
}

var families = map[Family]*family{
	Paragraph: {
		name: Paragraph,
		aliases: map[string]string{
			"align":   "jc",
			"justify": "jc",
			"border":  "pBdr",
			"indent":  "ind",
			"outline": "outlineLvl",
			"style":   "pStyle",
			"bgColor": "shd",
			"shading": "shd",
			"run":     "rPr",
		},
		kinds: boolKinds(map[string]Kind{
			"ind":           KindIndent,
			"jc":            KindAlign,
			"numPr":         KindNumbering,
			"outlineLvl":    KindDecimal,
			"pBdr":          KindBorder,
			"pFonts":        KindFont,
			"pStyle":        KindText,
			"rPr":           KindParagraphRun,
			"shd":           KindShading,
			"spacing":       KindSpacing,
			"textAlignment": KindTextAlignment,
			"textDirection": KindText,
		},
			"adjustRightInd", "autoSpaceDE", "autoSpaceDN", "bidi", "contextualSpacing",
			"keepLines", "keepNext", "kinsoku", "mirrorIndents", "overflowPunct",
			"pageBreakBefore", "snapToGrid", "suppressAutoHyphens", "suppressLineNumbers",
			"suppressOverlap", "topLinePunct", "widowControl", "wordWrap",
		),
		borderSides:    []string{"top", "right", "bottom", "left", "between", "bar"},
		broadcastSides: []string{"top", "right", "bottom", "left"},
	},
	Run: {
		name: Run,
		aliases: map[string]string{
			"size":          "sz",
			"bold":          "b",
			"emphasis":      "em",
			"italic":        "i",
			"underline":     "u",
			"doublestrike":  "dstrike",
			"double-strike": "dstrike",
			"style":         "rStyle",
			"valign":        "vertAlign",
			"font":          "rFonts",
			"border":        "bdr",
			"bgColor":       "shd",
			"shading":       "shd",
			"language":      "lang",
		},
		kinds: boolKinds(map[string]Kind{
			"bdr":       KindBorder,
			"color":     KindText,
			"effect":    KindText,
			"em":        KindEmphasis,
			"highlight": KindText,
			"kern":      KindHalfPoint,
			"lang":      KindLang,
			"position":  KindHalfPoint,
			"rFonts":    KindFont,
			"rStyle":    KindText,
			"shd":       KindShading,
			"spacing":   KindRunSpacing,
			"sz":        KindSize,
			"u":         KindUnderline,
			"vertAlign": KindText,
			"w":         KindDecimal,
		},
			"b", "caps", "dstrike", "emboss", "i", "imprint", "noProof", "outline", "rtl",
			"shadow", "smallCaps", "snapToGrid", "specVanish", "strike", "vanish", "webHidden",
		),
		borderSides:    []string{"top", "right", "bottom", "left"},
		broadcastSides: []string{"top", "right", "bottom", "left"},
	},
	Table: {
		name: Table,
		aliases: map[string]string{
			"align":   "jc",
			"justify": "jc",
			"width":   "tblW",
			"border":  "tblBorders",
			"bgColor": "shd",
			"shading": "shd",
			"style":   "tblStyle",
			"layout":  "tblLayout",
			"indent":  "tblInd",
			"margin":  "tblCellMar",
			"spacing": "tblCellSpacing",
		},
		kinds: map[string]Kind{
			"bidiVisual":     KindBool,
			"jc":             KindAlign,
			"shd":            KindShading,
			"tblBorders":     KindBorder,
			"tblCellMar":     KindMargin,
			"tblCellSpacing": KindTableWidth,
			"tblInd":         KindTableWidth,
			"tblLayout":      KindTableLayout,
			"tblStyle":       KindText,
			"tblW":           KindTableWidth,
		},
		borderSides:    []string{"top", "right", "bottom", "left", "insideH", "insideV"},
		broadcastSides: []string{"top", "right", "bottom", "left", "insideH", "insideV"},
	},
	Row: {
		name: Row,
		aliases: map[string]string{
			"align":      "jc",
			"justify":    "jc",
			"height":     "trHeight",
			"spacing":    "tblCellSpacing",
			"skipBefore": "gridBefore",
			"skipAfter":  "gridAfter",
			"repeat":     "tblHeader",
		},
		kinds: map[string]Kind{
			"cantSplit":      KindBool,
			"gridAfter":      KindDecimal,
			"gridBefore":     KindDecimal,
			"hidden":         KindBool,
			"jc":             KindAlign,
			"tblCellSpacing": KindTableWidth,
			"tblHeader":      KindBool,
			"trHeight":       KindHeight,
		},
	},
	Cell: {
		name: Cell,
		aliases: map[string]string{
			"width":   "tcW",
			"valign":  "vAlign",
			"border":  "tcBorders",
			"colspan": "gridSpan",
			"rowspan": "vMerge",
			"bgColor": "shd",
			"shading": "shd",
			"margin":  "tcMar",
		},
		kinds: map[string]Kind{
			"gridSpan":      KindDecimal,
			"hideMark":      KindBool,
			"noWrap":        KindBool,
			"shd":           KindShading,
			"tcBorders":     KindBorder,
			"tcFitText":     KindBool,
			"tcMar":         KindMargin,
			"tcW":           KindTableWidth,
			"textDirection": KindText,
			"vAlign":        KindCellVAlign,
			"vMerge":        KindVMerge,
		},
		borderSides:    []string{"top", "right", "bottom", "left", "insideH", "insideV", "tl2br", "tr2bl"},
		broadcastSides: []string{"top", "right", "bottom", "left", "insideH", "insideV"},
	},
	Section: {
		name: Section,
		aliases: map[string]string{
			"page":        "pgSz",
			"pageSize":    "pgSz",
			"pgsz":        "pgSz",
			"grid":        "docGrid",
			"valign":      "vAlign",
			"margin":      "pgMar",
			"break":       "type",
			"columns":     "cols",
			"border":      "pgBorders",
			"titlePage":   "titlePg",
			"numbering":   "pgNumType",
			"lineNumbers": "lnNumType",
		},
		kinds: map[string]Kind{
			"bidi":          KindBool,
			"cols":          KindColumns,
			"docGrid":       KindAttrs,
			"formProt":      KindBool,
			"lnNumType":     KindAttrs,
			"pgBorders":     KindBorder,
			"pgMar":         KindPageMargin,
			"pgNumType":     KindAttrs,
			"pgSz":          KindPageSize,
			"rtlGutter":     KindBool,
			"textDirection": KindText,
			"titlePg":       KindBool,
			"type":          KindSectionType,
			"vAlign":        KindText,
		},
		borderSides:    []string{"top", "left", "bottom", "right"},
		broadcastSides: []string{"top", "left", "bottom", "right"},
		attrs: map[string][]string{
			"docGrid":   {"type", "linePitch", "charSpace"},
			"lnNumType": {"countBy", "start", "distance", "restart"},
			"pgNumType": {"fmt", "start", "chapStyle", "chapSep"},
		},
	},
	Style: {
		name: Style,
		aliases: map[string]string{
			"alias":   "aliases",
			"primary": "qFormat",
			"quick":   "qFormat",
			"unhide":  "unhideWhenUsed",
		},
		kinds: boolKinds(map[string]Kind{
			"aliases":    KindAliases,
			"basedOn":    KindText,
			"link":       KindText,
			"name":       KindText,
			"next":       KindText,
			"uiPriority": KindDecimal,
		},
			"autoRedefine", "hidden", "locked", "personal", "personalCompose",
			"personalReply", "qFormat", "semiHidden", "unhideWhenUsed",
		),
	},
}
