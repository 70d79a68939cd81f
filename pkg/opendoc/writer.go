package opendoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/format"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/xml"
)

// Writer lowers a Document into a DOCX package. A Writer may be reused for
// several saves but not concurrently; use one Writer per goroutine.
type Writer struct {
	config *Config
	logger *Logger

	mu       sync.Mutex
	warnings *MultiError
}

// NewWriter creates a writer. A nil config uses the global configuration.
func NewWriter(config *Config) *Writer {
	if config == nil {
		config = GetGlobalConfig()
	} else {
		config = NewConfigWithDefaults(config)
	}
	return &Writer{
		config:   config,
		logger:   GetLogger().WithField("component", "writer"),
		warnings: NewMultiError(),
	}
}

// SaveDocument saves doc to output with the global configuration.
func SaveDocument(doc *Document, output string) error {
	return NewWriter(nil).Save(doc, output)
}

// Warnings returns the failures degraded to warnings by the last save in
// no-throw mode.
func (w *Writer) Warnings() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.warnings.Errors()
}

// Save writes doc to the file output. The package is assembled in a
// temporary file, then moved into place by rename, falling back to a copy
// when the rename crosses devices. Temporary files are removed on every
// exit path, and output is left untouched when the package could not be
// written completely.
func (w *Writer) Save(doc *Document, output string) error {
	w.reset()
	if doc == nil {
		return w.fail(NewSaveError("save", output, ErrNoDocument))
	}
	if err := w.save(doc, output); err != nil {
		return w.fail(err)
	}
	w.logger.Info("saved document to %s", output)
	return nil
}

// Write streams the package of doc to out.
func (w *Writer) Write(doc *Document, out io.Writer) error {
	w.reset()
	if doc == nil {
		return w.fail(NewSaveError("write", "", ErrNoDocument))
	}
	return w.fail(w.write(doc, out))
}

func (w *Writer) save(doc *Document, output string) error {
	tmp, err := os.CreateTemp(w.config.TempDir, w.config.TempPrefix+"*.docx")
	if err != nil {
		return NewSaveError("create", w.config.TempDir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	w.logger.Debug("assembling %s in %s", output, tmpName)

	if err := w.write(doc, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return NewSaveError("close", tmpName, err)
	}
	// CreateTemp opens with 0600
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return NewSaveError("chmod", tmpName, err)
	}
	return persist(tmpName, output)
}

func (w *Writer) reset() {
	w.mu.Lock()
	w.warnings = NewMultiError()
	w.mu.Unlock()
}

// fail reports err. In no-throw mode the error is logged, collected and
// swallowed.
func (w *Writer) fail(err error) error {
	if err == nil || !w.config.NoThrow {
		return err
	}
	w.logger.Warn("%v", err)
	w.mu.Lock()
	w.warnings.Add(err)
	w.mu.Unlock()
	return nil
}

func (w *Writer) write(doc *Document, out io.Writer) error {
	s := newSaveState(w, doc)
	defer s.cleanup()

	if err := s.build(); err != nil {
		return err
	}
	if err := s.archive.writeTo(out); err != nil {
		return NewSaveError("write", "", err)
	}
	return nil
}

// persist moves the assembled package to its destination.
func persist(tmpName, output string) error {
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewSaveError("create", dir, err)
		}
	}
	if err := os.Rename(tmpName, output); err == nil {
		return nil
	}
	if err := copyFile(tmpName, output); err != nil {
		return NewSaveError("copy", output, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// saveState is the bookkeeping of one save call.
type saveState struct {
	w       *Writer
	doc     *Document
	engine  *format.Engine
	archive *archive
	rels    *relationships
	types   *contentTypes

	// part receives the relationships created while lowering
	part string

	headers   int
	footers   int
	images    int
	drawings  int
	media     map[string]string
	numbering map[int]*ListItems
	numOrder  []int
	evenOdd   bool
	temps     []string
}

func newSaveState(w *Writer, doc *Document) *saveState {
	s := &saveState{
		w:         w,
		doc:       doc,
		engine:    format.NewEngine(format.NewTranslator(w.config.DPI)),
		archive:   newArchive(),
		rels:      newRelationships(),
		types:     &contentTypes{},
		part:      mainPart,
		media:     make(map[string]string),
		numbering: make(map[int]*ListItems),
	}
	s.engine.Report = w.fail
	return s
}

func (s *saveState) fail(err error) error {
	return s.w.fail(err)
}

func (s *saveState) cleanup() {
	for _, name := range s.temps {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.w.logger.Debug("failed to remove %s: %v", name, err)
		}
	}
}

// tempFile creates an empty temporary file removed when the save ends.
func (s *saveState) tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp(s.w.config.TempDir, s.w.config.TempPrefix+pattern)
	if err != nil {
		return "", err
	}
	s.temps = append(s.temps, f.Name())
	return f.Name(), f.Close()
}

// addPart marshals root as part name and registers its content type.
func (s *saveState) addPart(name, contentType string, root *etree.Element) error {
	data, err := xml.Marshal(root)
	if err != nil {
		return s.fail(NewSaveError("marshal", name, err))
	}
	s.archive.addBytes(name, data)
	if contentType != "" {
		s.types.addOverride(name, contentType)
	}
	s.w.logger.Debug("created part %s", name)
	return nil
}

func (s *saveState) build() error {
	s.types.addDefault("rels", ctRelationships)
	s.types.addDefault("xml", ctXML)

	s.rels.add("", "officeDocument", mainPart, "", false)
	s.rels.add("", relCoreProperties, corePart, "", false)
	s.rels.add("", "extended-properties", appPart, "", false)
	s.rels.add(mainPart, "styles", stylesPart, "", false)
	s.rels.add(mainPart, "settings", settingsPart, "", false)

	steps := []struct {
		name string
		run  func() error
	}{
		{"styles", s.writeStyles},
		{"document", s.writeDocument},
		{"numbering", s.writeNumbering},
		{"settings", s.writeSettings},
		{"core properties", s.writeCoreProperties},
		{"app properties", s.writeAppProperties},
	}
	for _, step := range steps {
		s.w.logger.Debug("writing %s", step.name)
		if err := step.run(); err != nil {
			return err
		}
	}
	return s.finalize()
}

// finalize writes the relationship parts and the content type manifest.
func (s *saveState) finalize() error {
	for _, part := range s.rels.order {
		name := relsPartName(part)
		data, err := xml.MarshalPart(&xml.Relationships{
			Namespace:    xml.NSPackageRels,
			Relationship: s.rels.parts[part].list,
		})
		if err != nil {
			return s.fail(NewSaveError("marshal", name, fmt.Errorf("failed to marshal relationships: %w", err)))
		}
		s.archive.addBytes(name, data)
	}

	data, err := xml.MarshalPart(s.types.manifest())
	if err != nil {
		return s.fail(NewSaveError("marshal", contentTypesPart, err))
	}
	s.archive.addBytes(contentTypesPart, data)
	return nil
}
