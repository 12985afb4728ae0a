package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ansera/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ansera/internal/logger"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API on the configured host and port.

The index is loaded from disk on startup. With --watch the training
data file is monitored and a background retrain runs after edits.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "retrain when the training data file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.index.Load(); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		go func() {
			if err := a.knowledge.WatchTrainingData(ctx, cfg.Storage.TrainingFile); err != nil {
				logger.Warn("Training data watcher stopped: %v", err)
			}
		}()
	}

	server := httpapi.New(httpapi.Config{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ChatThreshold:     cfg.Server.ChatThreshold,
		FetchNewData:      cfg.Behavior.FetchNewData,
		TrackUnanswered:   cfg.Behavior.TrackUnanswered,
		SaveConversations: cfg.Behavior.SaveConversations,
	}, a.qa, a.knowledge, a.index, a.training, a.unanswered, a.memory)

	cmd.Printf("Listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	return server.ListenAndServe(ctx)
}
