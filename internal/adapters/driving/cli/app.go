package cli

import (
	"fmt"
	"os"

	"github.com/custodia-labs/ansera/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/ansera/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/ansera/internal/adapters/driven/extractor/hf"
	"github.com/custodia-labs/ansera/internal/chunker"
	"github.com/custodia-labs/ansera/internal/config"
	"github.com/custodia-labs/ansera/internal/connectors/arxiv"
	"github.com/custodia-labs/ansera/internal/connectors/openlibrary"
	"github.com/custodia-labs/ansera/internal/connectors/osm"
	"github.com/custodia-labs/ansera/internal/connectors/pubmed"
	"github.com/custodia-labs/ansera/internal/connectors/stackexchange"
	"github.com/custodia-labs/ansera/internal/connectors/wikipedia"
	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/core/services"
	"github.com/custodia-labs/ansera/internal/index"
	"github.com/custodia-labs/ansera/internal/journal"
)

// app is the assembled service graph. Every command that touches the
// index or the QA pipeline builds one from the loaded configuration.
type app struct {
	cfg config.Config

	embedder   driven.EmbeddingService
	index      *index.Index
	aggregator *services.Aggregator
	knowledge  *services.Knowledge
	qa         *services.QA

	training   *journal.TrainingLog
	unanswered *journal.UnansweredLog
	memory     *journal.ConversationLog
}

func buildApp(cfg config.Config) (*app, error) {
	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	ch := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	idx := index.New(embedder, ch, cfg.Storage.DataDir,
		index.WithMinSimilarity(cfg.Search.MinSimilarity))

	agg := services.NewAggregator(cfg.SourceLimits())
	agg.Register(wikipedia.New())
	agg.Register(arxiv.New())
	agg.Register(pubmed.New())
	agg.Register(stackexchange.New())
	agg.Register(openlibrary.New())
	agg.Register(osm.New())

	training := journal.NewTrainingLog(cfg.Storage.TrainingFile)
	unanswered := journal.NewUnansweredLog(cfg.Storage.UnansweredFile)
	memory := journal.NewConversationLog(cfg.Storage.MemoryFile, cfg.Storage.MaxMemoryEntries)

	knowledge := services.NewKnowledge(services.KnowledgeConfig{
		Index:          idx,
		Training:       training,
		Aggregator:     agg,
		PreloadTopics:  cfg.Knowledge.PreloadTopics,
		PreloadSources: domain.ParseSourceNames(cfg.Knowledge.PreloadSources),
		AutoPreload:    cfg.Knowledge.AutoPreload,
	})

	backend := hf.NewExtractor(hf.Config{
		APIKey:  os.Getenv("HF_API_TOKEN"),
		BaseURL: cfg.Extractor.BaseURL,
		Model:   cfg.Extractor.Model,
	})
	extractor := services.NewExtractor(backend, cfg.Search.MaxContextChars, cfg.Search.MaxAnswerLength)

	qa := services.NewQA(services.QAConfig{
		Index:          idx,
		Extractor:      extractor,
		Aggregator:     agg,
		Knowledge:      knowledge,
		TopK:           cfg.Search.TopK,
		MinScore:       cfg.Search.MinScore,
		DefaultSources: cfg.DefaultSourceNames(),
	})

	return &app{
		cfg:        cfg,
		embedder:   embedder,
		index:      idx,
		aggregator: agg,
		knowledge:  knowledge,
		qa:         qa,
		training:   training,
		unanswered: unanswered,
		memory:     memory,
	}, nil
}

func newEmbedder(cfg config.Embedding) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "ollama", "":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func (a *app) Close() {
	if err := a.embedder.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing embedder: %v\n", err)
	}
}
