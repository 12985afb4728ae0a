package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansera/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Opens a terminal chat interface against the knowledge base.

Controls:
  Enter   - Send message
  Ctrl+C  - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	return tui.Run(a.qa, cfg.Behavior.FetchNewData, cfg.Server.ChatThreshold)
}
