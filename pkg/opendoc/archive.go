package opendoc

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/xml"
)

// Part names and content types of the generated package.
const (
	mainPart     = "word/document.xml"
	stylesPart   = "word/styles.xml"
	settingsPart = "word/settings.xml"
	numberPart   = "word/numbering.xml"
	corePart     = "docProps/core.xml"
	appPart      = "docProps/app.xml"

	contentTypesPart = "[Content_Types].xml"

	ctRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML           = "application/xml"
	ctMain          = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctSettings      = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
	ctNumbering     = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ctHeader        = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter        = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctCore          = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp           = "application/vnd.openxmlformats-officedocument.extended-properties+xml"

	relCoreProperties = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
)

// partRels holds the relationships owned by one part. Ids are numbered
// from rId1 independently for every part.
type partRels struct {
	list []xml.Relationship
	memo map[string]string
}

// relationships tracks the relationship parts of a package in creation
// order. The package root is the part "".
type relationships struct {
	parts map[string]*partRels
	order []string
}

func newRelationships() *relationships {
	return &relationships{parts: make(map[string]*partRels)}
}

// relType expands a short relationship type ("image", "header") to its
// URI. Full URIs are kept.
func relType(typ string) string {
	if strings.Contains(typ, "://") {
		return typ
	}
	return xml.RelationshipPrefix + typ
}

func relKey(typ, source string) string {
	return relType(typ) + "|" + source
}

// lookup returns the id of an existing relationship of part for source.
func (r *relationships) lookup(part, typ, source string) (string, bool) {
	pr, ok := r.parts[part]
	if !ok {
		return "", false
	}
	id, ok := pr.memo[relKey(typ, source)]
	return id, ok
}

// add registers a relationship from part to target and returns its id. A
// relationship already registered for the same part, type and source is
// reused. Internal targets are package paths made relative to the
// directory of part.
func (r *relationships) add(part, typ, target, source string, external bool) string {
	if source == "" {
		source = target
	}
	if id, ok := r.lookup(part, typ, source); ok {
		return id
	}
	pr, ok := r.parts[part]
	if !ok {
		pr = &partRels{memo: make(map[string]string)}
		r.parts[part] = pr
		r.order = append(r.order, part)
	}

	id := "rId" + strconv.Itoa(len(pr.list)+1)
	rel := xml.Relationship{ID: id, Type: relType(typ), Target: target}
	if external {
		rel.TargetMode = "External"
	} else {
		rel.Target = relativeTarget(path.Dir(part), target)
	}
	pr.list = append(pr.list, rel)
	pr.memo[relKey(typ, source)] = id
	return id
}

// relsPartName is the name of the relationships part belonging to part.
func relsPartName(part string) string {
	if part == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// relativeTarget expresses target relative to dir. Both are package paths
// without a leading slash; "." is the package root.
func relativeTarget(dir, target string) string {
	target = strings.TrimPrefix(target, "/")
	if dir == "." || dir == "" {
		return target
	}
	from := strings.Split(dir, "/")
	to := strings.Split(target, "/")
	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}
	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	return strings.Join(parts, "/")
}

// contentTypes collects the defaults and overrides of the manifest. A
// later registration of the same key replaces the type in place.
type contentTypes struct {
	defaults  []xml.DefaultType
	overrides []xml.OverrideType
}

func (c *contentTypes) addDefault(ext, contentType string) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for i := range c.defaults {
		if c.defaults[i].Extension == ext {
			c.defaults[i].ContentType = contentType
			return
		}
	}
	c.defaults = append(c.defaults, xml.DefaultType{Extension: ext, ContentType: contentType})
}

func (c *contentTypes) addOverride(part, contentType string) {
	name := "/" + strings.TrimPrefix(part, "/")
	for i := range c.overrides {
		if c.overrides[i].PartName == name {
			c.overrides[i].ContentType = contentType
			return
		}
	}
	c.overrides = append(c.overrides, xml.OverrideType{PartName: name, ContentType: contentType})
}

func (c *contentTypes) manifest() *xml.ContentTypes {
	return &xml.ContentTypes{
		Namespace: xml.NSContentTypes,
		Defaults:  c.defaults,
		Overrides: c.overrides,
	}
}

// archiveEntry is one file of the package: in-memory content or a local
// file copied at finalization.
type archiveEntry struct {
	name string
	data []byte
	file string
}

// archive accumulates package entries and writes them as a ZIP stream. The
// manifest and the root relationships come first.
type archive struct {
	entries []archiveEntry
	index   map[string]int
}

func newArchive() *archive {
	return &archive{index: make(map[string]int)}
}

func (a *archive) put(e archiveEntry) {
	if i, ok := a.index[e.name]; ok {
		a.entries[i] = e
		return
	}
	a.index[e.name] = len(a.entries)
	a.entries = append(a.entries, e)
}

func (a *archive) addBytes(name string, data []byte) {
	a.put(archiveEntry{name: name, data: data})
}

func (a *archive) addFile(name, file string) {
	a.put(archiveEntry{name: name, file: file})
}

func (a *archive) has(name string) bool {
	_, ok := a.index[name]
	return ok
}

func (a *archive) writeTo(out io.Writer) error {
	w := zip.NewWriter(out)
	first := []string{contentTypesPart, relsPartName("")}
	written := make(map[string]bool, len(a.entries))
	write := func(e archiveEntry) error {
		written[e.name] = true
		fw, err := w.Create(e.name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", e.name, err)
		}
		if e.file == "" {
			if _, err := fw.Write(e.data); err != nil {
				return fmt.Errorf("failed to write %s: %w", e.name, err)
			}
			return nil
		}
		f, err := os.Open(e.file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", e.file, err)
		}
		defer f.Close()
		if _, err := io.Copy(fw, f); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.name, err)
		}
		return nil
	}

	for _, name := range first {
		if i, ok := a.index[name]; ok {
			if err := write(a.entries[i]); err != nil {
				return err
			}
		}
	}
	for _, e := range a.entries {
		if written[e.name] {
			continue
		}
		if err := write(e); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}
