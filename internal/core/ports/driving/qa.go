package driving

import (
	"context"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

// AnswerService answers user questions against the document index.
type AnswerService interface {
	// Answer runs the retrieval and extraction pipeline. When
	// fetchNew is true, the named sources are queried first and any
	// results are indexed before retrieval, so fresh material is
	// searchable within the same request. Nil sources fall back to
	// the configured defaults.
	Answer(ctx context.Context, question string, fetchNew bool, sources []domain.SourceName) (*domain.AnswerResult, error)

	// Reply is the conversational entry point. It tries the existing
	// knowledge base first and fetches fresh data only when the
	// first pass scores below threshold and fetching is allowed.
	// Returns the formatted response, the score, and the sources
	// consulted; an empty response means no confident answer.
	Reply(ctx context.Context, input string, fetchNew bool, threshold float64) (string, float64, []domain.SourceRef, error)

	// FormatResponse renders a result for the end user, appending up
	// to three distinct source names after the answer.
	FormatResponse(result *domain.AnswerResult) string
}

// TrainStats summarizes a knowledge base build.
type TrainStats struct {
	// DocumentCount is the total records in the index after the
	// build.
	DocumentCount int `json:"n_docs"`

	// EmbeddingDimension is the vector width of the index.
	EmbeddingDimension int `json:"embedding_dimension"`
}

// KnowledgeService owns every index-mutating path: training-pair
// ingestion, source fetching, background retrains and persistence.
type KnowledgeService interface {
	// Train rebuilds knowledge from the training journal: every pair
	// becomes an unchunked record, the optional preload topics are
	// fetched when enabled, and the index is persisted.
	Train(ctx context.Context) (TrainStats, error)

	// RetrainInBackground starts Train on a separate goroutine under
	// a non-blocking single-flight guard. Returns false immediately
	// when a build is already running; the second job is rejected,
	// never queued.
	RetrainInBackground() bool

	// IngestDocuments chunks, embeds, indexes and persists fetched
	// documents. This is the request-triggered mutating path; it
	// shares the index's internal serialization with Train.
	IngestDocuments(ctx context.Context, docs []domain.RawDocument) error

	// BuildFromSources fetches each query from the given sources and
	// indexes the combined results.
	BuildFromSources(ctx context.Context, queries []string, sources []domain.SourceName) error
}
