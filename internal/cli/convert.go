package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	convertOutput string
	convertFormat string
	convertTitle  string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a Markdown or HTML file",
	Long: `Convert a Markdown or HTML file into a single-section .docx package.

The input format follows the file extension (.md, .markdown, .html, .htm)
unless --from is given. Headings map to "Heading N" styles; lists, tables,
links and images are kept.

Examples:
  docbuild convert README.md
  docbuild convert page.html -o page.docx --title "Release notes"
  docbuild convert --from markdown - < notes.md > notes.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output file (default: input name with .docx, or stdout for -)")
	convertCmd.Flags().StringVar(&convertFormat, "from", "", "input format (markdown, html)")
	convertCmd.Flags().StringVar(&convertTitle, "title", "", "document title")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	switch convertFormat {
	case "", formatMarkdown, formatHTML:
	case "md":
		convertFormat = formatMarkdown
	default:
		return fmt.Errorf("unsupported --from %q; use markdown or html", convertFormat)
	}
	if convertFormat == "" && args[0] == "-" {
		return fmt.Errorf("--from is required when reading standard input")
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadDocument(args[0], convertFormat, cmd.InOrStdin(), convertTitle)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", args[0], err)
	}

	output := convertOutput
	if output == "" {
		output = defaultOutput(args[0])
	}
	if err := writeDocument(doc, config, output, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return err
	}
	if output != "" && output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
	}
	return nil
}
