package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/dump"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the element tree of a document as XML",
	Long: `Print the element tree built from a YAML description, Markdown or
HTML file. The output mirrors the builder model rather than
WordprocessingML and is meant for debugging.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "from", "", "input format (yaml, markdown, html)")

	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	doc, err := loadDocument(args[0], dumpFormat, cmd.InOrStdin(), "")
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	if err := dump.Write(cmd.OutOrStdout(), doc); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
