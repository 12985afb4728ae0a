package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Rebuild the knowledge base from training data",
	Long: `Embeds every training pair into the index and persists it.

When auto preload is enabled in the configuration, the preload topics
are fetched from external sources as part of the build.`,
	RunE: runTrain,
}

var trainAddCmd = &cobra.Command{
	Use:   "add [question] [answer]",
	Short: "Add a training pair and rebuild",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrainAdd,
}

func init() {
	trainCmd.AddCommand(trainAddCmd)
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	stats, err := a.knowledge.Train(cmd.Context())
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	cmd.Printf("Trained: %d documents, embedding dimension %d\n",
		stats.DocumentCount, stats.EmbeddingDimension)
	return nil
}

func runTrainAdd(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	pair := domain.TrainingPair{Input: args[0], Output: args[1]}
	if err := a.training.Add(pair); err != nil {
		return err
	}
	if err := a.unanswered.RemoveMatching(pair.Input); err != nil {
		return err
	}

	if err := a.index.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	stats, err := a.knowledge.Train(cmd.Context())
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	cmd.Printf("Added pair; index now holds %d documents\n", stats.DocumentCount)
	return nil
}
