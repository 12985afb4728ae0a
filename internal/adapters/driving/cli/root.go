// Package cli implements the ansera command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansera/internal/config"
	"github.com/custodia-labs/ansera/internal/logger"
)

// version is set from main at build time.
var version = "dev"

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ansera",
	Short: "Retrieval-augmented question answering",
	Long: `Ansera answers questions from an embedding-based document index.

Knowledge comes from curated training pairs and from external sources
(Wikipedia, arXiv, PubMed, Stack Overflow, Open Library, OpenStreetMap).
Run "ansera serve" for the HTTP API or "ansera chat" for an interactive
session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command. A non-empty v overrides the build
// version shown by the version command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "ansera.toml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}
