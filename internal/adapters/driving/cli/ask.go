package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

var (
	askFetch   bool
	askSources []string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question",
	Long: `Answers one question against the indexed knowledge base and exits.

With --fetch the configured sources are queried first and the results
are indexed before retrieval, so fresh material can be part of the
answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askFetch, "fetch", false, "pull fresh documents from external sources first")
	askCmd.Flags().StringSliceVar(&askSources, "sources", nil, "sources to fetch from (default: configured defaults)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the raw result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	question := strings.Join(args, " ")
	sources := domain.ParseSourceNames(askSources)

	result, err := a.qa.Answer(cmd.Context(), question, askFetch, sources)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(a.qa.FormatResponse(result))
	if result.Answered() {
		cmd.Printf("\n(score %.2f)\n", result.Score)
	}
	return nil
}
