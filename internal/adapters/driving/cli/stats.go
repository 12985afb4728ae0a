package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	stats := a.index.Stats()
	cmd.Printf("Documents:           %d\n", stats.DocumentCount)
	cmd.Printf("Embedding dimension: %d\n", stats.EmbeddingDimension)
	cmd.Printf("Embedding model:     %s\n", stats.ModelName)
	cmd.Printf("Training pairs:      %d\n", len(a.training.List()))
	cmd.Printf("Unanswered:          %d\n", len(a.unanswered.List()))
	return nil
}
