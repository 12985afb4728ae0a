package services

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ansera/internal/logger"
)

// watchDebounce coalesces bursts of file events into one retrain.
const watchDebounce = 2 * time.Second

// WatchTrainingData watches the training data file and kicks off a
// background retrain shortly after it changes. Editors and the HTTP
// admin surface both rewrite the file via rename, so the watch is on
// the parent directory and filters events down to the file itself.
// The method blocks until ctx is cancelled.
func (k *Knowledge) WatchTrainingData(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	retrain := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case retrain <- struct{}{}:
				default:
				}
			})

		case <-retrain:
			logger.Info("Training data changed, retraining")
			if !k.RetrainInBackground() {
				logger.Debug("Retrain already in progress, skipping")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Training data watcher: %v", err)
		}
	}
}
