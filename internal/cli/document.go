package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/importer"
)

// Input formats.
const (
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

var errTerminal = errors.New("refusing to write a binary package to a terminal; use --output")

// detectFormat picks the input format from the file extension.
func detectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".md", ".markdown":
		return formatMarkdown, nil
	case ".html", ".htm", ".xhtml":
		return formatHTML, nil
	}
	return "", fmt.Errorf("unsupported input format: %q", filepath.Ext(path))
}

// loadDocument builds a document from a YAML description, or from a
// Markdown or HTML file placed in a single section. Relative image paths
// resolve against the input's directory; "-" reads standard input.
func loadDocument(path, format string, stdin io.Reader, title string) (*opendoc.Document, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if format == "" {
		if format, err = detectFormat(path); err != nil {
			return nil, err
		}
	}

	opts := &importer.Options{}
	if path != "-" {
		opts.BaseDir = filepath.Dir(path)
	}

	if format == formatYAML {
		doc, err := importer.LoadYAML(bytes.NewReader(data), opts)
		if err != nil {
			return nil, err
		}
		if title != "" {
			doc.Properties().Set("core.title", title)
		}
		return doc, nil
	}

	var p opendoc.Props
	if title != "" {
		p = opendoc.Props{"core": map[string]any{"title": title}}
	}
	doc := opendoc.NewDocument(p)
	section, err := doc.AddSection("", nil)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatMarkdown:
		err = importer.Markdown(doc, section, data, opts)
	case formatHTML:
		err = importer.HTML(doc, section, data, opts)
	default:
		err = fmt.Errorf("unsupported input format: %q", format)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// writeDocument saves doc to output, or streams it to out when output is
// empty or "-". Warnings collected in no-throw mode go to errOut.
func writeDocument(doc *opendoc.Document, config *opendoc.Config, output string, out, errOut io.Writer) error {
	w := opendoc.NewWriter(config)
	var err error
	if output == "" || output == "-" {
		if isTerminal(out) {
			return errTerminal
		}
		err = w.Write(doc, out)
	} else {
		err = w.Save(doc, output)
	}
	for _, warning := range w.Warnings() {
		fmt.Fprintf(errOut, "warning: %v\n", warning)
	}
	return err
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func defaultOutput(input string) string {
	if input == "-" {
		return ""
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".docx"
}
