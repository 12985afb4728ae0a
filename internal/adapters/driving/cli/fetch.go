package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

var fetchSources []string

var fetchCmd = &cobra.Command{
	Use:   "fetch [topics...]",
	Short: "Fetch topics from external sources into the index",
	Long: `Queries the given topics against external sources and indexes the
results. Unknown source names are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchSources, "sources", nil, "sources to query (default: configured defaults)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	sources := domain.ParseSourceNames(fetchSources)
	if len(sources) == 0 {
		sources = cfg.DefaultSourceNames()
	}

	if err := a.knowledge.BuildFromSources(cmd.Context(), args, sources); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	cmd.Printf("Index now holds %d documents\n", a.index.Stats().DocumentCount)
	return nil
}
