package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/core/ports/driving"
	"github.com/custodia-labs/ansera/internal/logger"
)

// TrainingStore supplies the curated question/answer pairs the index
// is trained from.
type TrainingStore interface {
	List() []domain.TrainingPair
}

// Knowledge builds and maintains the document index: training from
// curated pairs, ingesting fetched documents and rebuilding in the
// background.
type Knowledge struct {
	index      driven.DocumentIndex
	training   TrainingStore
	aggregator *Aggregator

	preloadTopics  []string
	preloadSources []domain.SourceName
	autoPreload    bool

	retrainMu sync.Mutex
}

var _ driving.KnowledgeService = (*Knowledge)(nil)

// KnowledgeConfig wires a Knowledge service.
type KnowledgeConfig struct {
	Index      driven.DocumentIndex
	Training   TrainingStore
	Aggregator *Aggregator

	// PreloadTopics are fetched into the index during Train when
	// AutoPreload is set.
	PreloadTopics  []string
	PreloadSources []domain.SourceName
	AutoPreload    bool
}

func NewKnowledge(cfg KnowledgeConfig) *Knowledge {
	sources := cfg.PreloadSources
	if len(sources) == 0 {
		sources = domain.DefaultSources()
	}
	return &Knowledge{
		index:          cfg.Index,
		training:       cfg.Training,
		aggregator:     cfg.Aggregator,
		preloadTopics:  cfg.PreloadTopics,
		preloadSources: sources,
		autoPreload:    cfg.AutoPreload,
	}
}

// Train ingests every stored training pair into the index, optionally
// preloads the configured topics, and persists the result. At most one
// build runs at a time; a call overlapping a background retrain fails
// fast with ErrRetrainInProgress instead of queuing.
func (k *Knowledge) Train(ctx context.Context) (driving.TrainStats, error) {
	if !k.retrainMu.TryLock() {
		return driving.TrainStats{}, domain.ErrRetrainInProgress
	}
	defer k.retrainMu.Unlock()
	return k.train(ctx)
}

func (k *Knowledge) train(ctx context.Context) (driving.TrainStats, error) {
	logger.Section("Building knowledge base")

	pairs := k.training.List()
	if len(pairs) > 0 {
		logger.Info("Adding %d curated Q&A pairs", len(pairs))
		records := make([]domain.RawDocument, len(pairs))
		for i, pair := range pairs {
			records[i] = pair.Record()
		}
		if err := k.index.Add(ctx, records, false); err != nil {
			return driving.TrainStats{}, fmt.Errorf("ingest training pairs: %w", err)
		}
	}

	if k.autoPreload && len(k.preloadTopics) > 0 {
		if err := k.BuildFromSources(ctx, k.preloadTopics, k.preloadSources); err != nil {
			return driving.TrainStats{}, err
		}
	} else if len(k.preloadTopics) > 0 {
		logger.Debug("Auto-preload disabled, %d topics not fetched", len(k.preloadTopics))
	}

	if err := k.index.Save(); err != nil {
		return driving.TrainStats{}, fmt.Errorf("persist index: %w", err)
	}

	stats := k.index.Stats()
	logger.Info("Knowledge base built: %d documents", stats.DocumentCount)
	return driving.TrainStats{
		DocumentCount:      stats.DocumentCount,
		EmbeddingDimension: stats.EmbeddingDimension,
	}, nil
}

// RetrainInBackground starts Train on a fresh goroutine. At most one
// retrain runs at a time; it returns false without starting anything
// when one is already in flight.
func (k *Knowledge) RetrainInBackground() bool {
	if !k.retrainMu.TryLock() {
		return false
	}

	go func() {
		defer k.retrainMu.Unlock()
		if _, err := k.train(context.Background()); err != nil {
			logger.Warn("Background retrain failed: %v", err)
		}
	}()
	return true
}

// IngestDocuments chunks, embeds and persists fetched documents.
func (k *Knowledge) IngestDocuments(ctx context.Context, docs []domain.RawDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if err := k.index.Add(ctx, docs, true); err != nil {
		return fmt.Errorf("ingest documents: %w", err)
	}
	if err := k.index.Save(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

// BuildFromSources fetches each query across the given sources and
// ingests everything found, persisting once at the end.
func (k *Knowledge) BuildFromSources(ctx context.Context, queries []string, sources []domain.SourceName) error {
	if len(sources) == 0 {
		sources = domain.DefaultSources()
	}

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs := k.aggregator.SearchAll(ctx, query, sources)
		if len(docs) == 0 {
			logger.Warn("No documents found for topic %q", query)
			continue
		}
		if err := k.index.Add(ctx, docs, true); err != nil {
			return fmt.Errorf("ingest topic %q: %w", query, err)
		}
	}

	if err := k.index.Save(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}
