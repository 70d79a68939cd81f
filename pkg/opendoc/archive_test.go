package opendoc

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/xml"
)

func TestRelativeTarget(t *testing.T) {
	tests := []struct {
		dir, target, want string
	}{
		{".", "word/document.xml", "word/document.xml"},
		{"", "/docProps/core.xml", "docProps/core.xml"},
		{"word", "word/styles.xml", "styles.xml"},
		{"word", "word/media/image1.png", "media/image1.png"},
		{"word", "docProps/app.xml", "../docProps/app.xml"},
		{"word/glossary", "word/media/image1.png", "../media/image1.png"},
		{"word/media", "word", "../../word"},
	}
	for _, tt := range tests {
		t.Run(tt.dir+"->"+tt.target, func(t *testing.T) {
			if got := relativeTarget(tt.dir, tt.target); got != tt.want {
				t.Errorf("relativeTarget(%q, %q) = %q, want %q", tt.dir, tt.target, got, tt.want)
			}
		})
	}
}

func TestRelsPartName(t *testing.T) {
	tests := map[string]string{
		"":                  "_rels/.rels",
		"word/document.xml": "word/_rels/document.xml.rels",
		"word/header1.xml":  "word/_rels/header1.xml.rels",
	}
	for part, want := range tests {
		if got := relsPartName(part); got != want {
			t.Errorf("relsPartName(%q) = %q, want %q", part, got, want)
		}
	}
}

func TestRelationships(t *testing.T) {
	r := newRelationships()

	styles := r.add(mainPart, "styles", stylesPart, "", false)
	img := r.add(mainPart, "image", "word/media/image1.png", "logo.png", false)
	again := r.add(mainPart, "image", "word/media/image1.png", "logo.png", false)
	link := r.add(mainPart, "hyperlink", "https://example.com", "", true)
	header := r.add("word/header1.xml", "image", "word/media/image1.png", "logo.png", false)
	root := r.add("", relCoreProperties, corePart, "", false)

	if styles != "rId1" || img != "rId2" || link != "rId3" {
		t.Errorf("main ids = %s %s %s, want rId1 rId2 rId3", styles, img, link)
	}
	if again != img {
		t.Errorf("same source got a new relationship %s", again)
	}
	if header != "rId1" || root != "rId1" {
		t.Errorf("ids of other parts = %s %s, want rId1", header, root)
	}
	if diff := cmp.Diff([]string{mainPart, "word/header1.xml", ""}, r.order); diff != "" {
		t.Errorf("part order mismatch (-want +got):\n%s", diff)
	}

	want := []xml.Relationship{
		{ID: "rId1", Type: xml.RelationshipPrefix + "styles", Target: "styles.xml"},
		{ID: "rId2", Type: xml.RelationshipPrefix + "image", Target: "media/image1.png"},
		{ID: "rId3", Type: xml.RelationshipPrefix + "hyperlink", Target: "https://example.com", TargetMode: "External"},
	}
	if diff := cmp.Diff(want, r.parts[mainPart].list); diff != "" {
		t.Errorf("relationships mismatch (-want +got):\n%s", diff)
	}
	if got := r.parts[""].list[0].Type; got != relCoreProperties {
		t.Errorf("full URI type rewritten to %s", got)
	}

	if _, ok := r.lookup(mainPart, "image", "other.png"); ok {
		t.Error("lookup found an unregistered source")
	}
}

func TestContentTypes(t *testing.T) {
	var c contentTypes
	c.addDefault("png", "image/png")
	c.addDefault(".XML", "application/xml")
	c.addDefault("png", "image/x-png")
	c.addOverride(mainPart, ctMain)
	c.addOverride("/"+mainPart, ctHeader)

	m := c.manifest()
	wantDefaults := []xml.DefaultType{
		{Extension: "png", ContentType: "image/x-png"},
		{Extension: "xml", ContentType: "application/xml"},
	}
	if diff := cmp.Diff(wantDefaults, m.Defaults); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	wantOverrides := []xml.OverrideType{{PartName: "/word/document.xml", ContentType: ctHeader}}
	if diff := cmp.Diff(wantOverrides, m.Overrides); diff != "" {
		t.Errorf("overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestArchiveWriteOrder(t *testing.T) {
	file := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(file, []byte("from disk"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := newArchive()
	a.addBytes(mainPart, []byte("first"))
	a.addFile("word/media/image1.bin", file)
	a.addBytes(relsPartName(""), []byte("rels"))
	a.addBytes(contentTypesPart, []byte("types"))
	a.addBytes(mainPart, []byte("replaced"))

	if !a.has(mainPart) || a.has(stylesPart) {
		t.Error("has() mismatch")
	}

	var buf bytes.Buffer
	if err := a.writeTo(&buf); err != nil {
		t.Fatalf("writeTo() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	contents := make(map[string]string)
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		contents[f.Name] = string(data)
	}

	wantNames := []string{contentTypesPart, "_rels/.rels", mainPart, "word/media/image1.bin"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("entry order mismatch (-want +got):\n%s", diff)
	}
	if contents[mainPart] != "replaced" {
		t.Errorf("document entry = %q, want the later write", contents[mainPart])
	}
	if contents["word/media/image1.bin"] != "from disk" {
		t.Errorf("file entry = %q", contents["word/media/image1.bin"])
	}
}

func TestArchiveMissingFile(t *testing.T) {
	a := newArchive()
	a.addFile("word/media/image1.png", filepath.Join(t.TempDir(), "gone.png"))
	if err := a.writeTo(io.Discard); err == nil {
		t.Error("expected an error for a vanished file")
	}
}
