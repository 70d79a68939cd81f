// Package cli implements the docbuild command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	noThrow    bool
	drawingML  bool
)

var rootCmd = &cobra.Command{
	Use:   "docbuild",
	Short: "Build WordprocessingML packages from YAML, Markdown and HTML",
	Long: `docbuild writes .docx packages.

Commands:
  build     build a document from a YAML description
  convert   convert a Markdown or HTML file
  dump      print the element tree of a document as XML
  version   print the version

Configuration is read from OPENDOC_* environment variables and an
optional YAML file given with --config. Flags override both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, off)")
	flags.BoolVar(&noThrow, "no-throw", false, "log save failures as warnings instead of failing")
	flags.BoolVar(&drawingML, "drawingml", false, "write DrawingML pictures instead of VML")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Main runs the command line and exits with a non-zero status on error.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docbuild: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the configuration file, the environment and the
// command line flags, then installs the result globally so the logger
// follows it.
func loadConfig(cmd *cobra.Command) (*opendoc.Config, error) {
	config := opendoc.ConfigFromEnvironment()
	if configPath != "" {
		var err error
		if config, err = opendoc.LoadConfigFile(configPath); err != nil {
			return nil, err
		}
	}
	config = opendoc.NewConfigWithDefaults(config)

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		config.LogLevel = logLevel
	}
	if flags.Changed("no-throw") {
		config.NoThrow = noThrow
	}
	if flags.Changed("drawingml") && drawingML {
		config.ImageMarkup = opendoc.ImageMarkupDrawingML
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	opendoc.SetGlobalConfig(config)
	return config, nil
}
