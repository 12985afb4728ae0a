package driven

import (
	"context"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

// DocumentIndex stores document records alongside their embedding
// vectors and serves similarity search over them.
//
// Implementations keep documents and embedding rows in lockstep: row
// i of the matrix always embeds record i, rows are appended only
// together with their record, and neither side is reordered or
// removed independently.
type DocumentIndex interface {
	// Add chunks (when chunk is true and a text exceeds the chunk
	// size), embeds and appends the given documents. Records with
	// empty text are dropped. The append is all-or-nothing: an
	// embedding failure leaves the index unchanged.
	Add(ctx context.Context, docs []domain.RawDocument, chunk bool) error

	// Search returns up to topK records ranked by cosine similarity
	// to the query, descending, filtered by minSimilarity. Ties keep
	// insertion order. Empty index yields no results and no error.
	Search(ctx context.Context, query string, topK int, minSimilarity float64) ([]domain.ScoredDocument, error)

	// ContextForQA joins the top results into one labeled context
	// block and also returns the ranked documents for fallback use.
	ContextForQA(ctx context.Context, query string, topK int) (string, []domain.ScoredDocument, error)

	// Save persists the document list and embedding matrix.
	Save() error

	// Load restores persisted state. Missing or corrupt artifacts
	// reset the index to empty; Load never fails the caller for
	// those.
	Load() error

	// Clear drops all in-memory state and deletes the on-disk
	// artifacts.
	Clear() error

	// Stats reports document count, embedding width and model name.
	Stats() domain.IndexStats
}
