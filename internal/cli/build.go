package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	buildOutput string
	buildTitle  string
)

var buildCmd = &cobra.Command{
	Use:   "build <description.yaml>",
	Short: "Build a document from a YAML description",
	Long: `Build a .docx package from a YAML document description.

The description lists document properties, styles and sections; section
content may embed Markdown and HTML blocks. Use "-" to read standard input.

Examples:
  docbuild build report.yaml
  docbuild build report.yaml -o out/report.docx
  cat report.yaml | docbuild build - > report.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output file (default: input name with .docx, or stdout for -)")
	buildCmd.Flags().StringVar(&buildTitle, "title", "", "document title, overriding the description")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadDocument(args[0], formatYAML, cmd.InOrStdin(), buildTitle)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", args[0], err)
	}

	output := buildOutput
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
