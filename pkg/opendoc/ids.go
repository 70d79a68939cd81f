package opendoc

// IDGenerator hands out the numeric ids shared by bookmark marks and list
// numbering definitions. Each Document owns one; sequences start at 1.
type IDGenerator struct {
	bookmark  int
	numbering int
}

// NextBookmark returns the next bookmark id.
func (g *IDGenerator) NextBookmark() int {
	g.bookmark++
	return g.bookmark
}

// NextNumbering returns the next numbering definition id.
func (g *IDGenerator) NextNumbering() int {
	g.numbering++
	return g.numbering
}
