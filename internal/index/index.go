// Package index implements the in-memory document index backing
// semantic retrieval: an ordered list of document records paired with
// a row-aligned embedding matrix, persisted to disk as two sibling
// artifacts.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ansera/internal/chunker"
	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.DocumentIndex = (*Index)(nil)

// Index pairs document records with their embedding vectors.
//
// The two slices move in lockstep: row i embeds documents[i], rows
// are appended only together with their record, and existing entries
// are never reordered or removed except by Clear. All mutation runs
// under the write lock; reads tolerate concurrent appends because a
// reader always observes a consistent prefix.
type Index struct {
	embedder driven.EmbeddingService
	chunker  *chunker.Chunker

	docsPath   string
	matrixPath string

	minSimilarity float64

	mu         sync.RWMutex
	documents  []domain.DocumentRecord
	embeddings [][]float32

	// saveMu serializes whole Save calls so two writers can never
	// interleave their artifact pairs on disk.
	saveMu sync.Mutex
}

// Option adjusts index construction.
type Option func(*Index)

// WithMinSimilarity sets the retrieval floor applied when assembling
// QA context.
func WithMinSimilarity(min float64) Option {
	return func(idx *Index) {
		idx.minSimilarity = min
	}
}

// New creates an empty index rooted at dir. The embedding service
// supplies vectors for both documents and queries; the chunker splits
// oversized texts before embedding.
func New(embedder driven.EmbeddingService, ch *chunker.Chunker, dir string, opts ...Option) *Index {
	idx := &Index{
		embedder:      embedder,
		chunker:       ch,
		minSimilarity: defaultMinSimilarity,
	}
	idx.docsPath, idx.matrixPath = artifactPaths(dir)
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// defaultMinSimilarity is the retrieval floor applied when assembling
// QA context unless overridden.
const defaultMinSimilarity = 0.3

// Add expands, embeds and appends the given raw documents.
//
// Records with empty text are dropped. When chunk is true, texts
// longer than the chunk size are split into part-records whose titles
// carry a part suffix and whose FullText keeps the original. All
// resulting chunk texts are embedded in one batch call; an embedding
// failure leaves the index unchanged.
func (idx *Index) Add(ctx context.Context, docs []domain.RawDocument, chunk bool) error {
	if idx.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	records := idx.expand(docs, chunk)
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}

	logger.Debug("Embedding %d document chunks", len(texts))
	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embed batch: got %d vectors for %d chunks", len(vectors), len(records))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.checkWidths(vectors); err != nil {
		return err
	}

	idx.documents = append(idx.documents, records...)
	idx.embeddings = append(idx.embeddings, vectors...)

	logger.Info("Index now holds %d documents", len(idx.documents))
	return nil
}

// expand converts raw documents into index records, chunking
// oversized texts when requested.
func (idx *Index) expand(docs []domain.RawDocument, chunk bool) []domain.DocumentRecord {
	var records []domain.DocumentRecord

	for _, doc := range docs {
		if doc.Text == "" {
			continue
		}

		if chunk && len(doc.Text) > idx.chunker.ChunkSize() {
			for i, part := range idx.chunker.Split(doc.Text) {
				if part == "" {
					continue
				}
				records = append(records, domain.DocumentRecord{
					Title:    fmt.Sprintf("%s (Part %d)", doc.Title, i+1),
					Text:     part,
					FullText: doc.Text,
					Source:   doc.Source,
					URL:      doc.URL,
				})
			}
			continue
		}

		records = append(records, domain.DocumentRecord{
			Title:    doc.Title,
			Text:     doc.Text,
			FullText: doc.Text,
			Source:   doc.Source,
			URL:      doc.URL,
		})
	}

	return records
}

// checkWidths verifies the new vectors are rectangular and match the
// width of the existing matrix. Caller must hold the write lock.
func (idx *Index) checkWidths(vectors [][]float32) error {
	width := len(vectors[0])
	for _, v := range vectors {
		if len(v) != width {
			return fmt.Errorf("embedding batch is not rectangular")
		}
	}
	if len(idx.embeddings) > 0 && len(idx.embeddings[0]) != width {
		return fmt.Errorf("embedding width %d does not match index width %d", width, len(idx.embeddings[0]))
	}
	return nil
}

// Search embeds the query and ranks all stored documents by cosine
// similarity. Results are sorted descending, capped at topK, and
// filtered by minSimilarity; ties keep insertion order.
func (idx *Index) Search(ctx context.Context, query string, topK int, minSimilarity float64) ([]domain.ScoredDocument, error) {
	idx.mu.RLock()
	empty := len(idx.embeddings) == 0
	idx.mu.RUnlock()
	if empty {
		return nil, nil
	}

	queryVec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scores := make([]float64, len(idx.embeddings))
	for i, row := range idx.embeddings {
		scores[i] = cosineSimilarity(queryVec, row)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}

	results := make([]domain.ScoredDocument, 0, topK)
	for _, i := range order[:topK] {
		if scores[i] < minSimilarity {
			continue
		}
		results = append(results, domain.ScoredDocument{
			DocumentRecord: idx.documents[i],
			Score:          scores[i],
		})
	}

	return results, nil
}

// ContextForQA joins the top search results into one context block
// with per-document source headers, preserving the ranking order.
// The ranked documents are returned alongside for per-document
// fallback extraction.
func (idx *Index) ContextForQA(ctx context.Context, query string, topK int) (string, []domain.ScoredDocument, error) {
	results, err := idx.Search(ctx, query, topK, idx.minSimilarity)
	if err != nil {
		return "", nil, err
	}
	if len(results) == 0 {
		return "", nil, nil
	}

	parts := make([]string, len(results))
	for i, doc := range results {
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, doc.Source, doc.Text)
	}

	return strings.Join(parts, "\n\n"), results, nil
}

// Clear drops all in-memory state and deletes both on-disk artifacts.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	idx.documents = nil
	idx.embeddings = nil
	idx.mu.Unlock()

	if err := idx.removeArtifacts(); err != nil {
		return err
	}
	logger.Info("Cleared document index")
	return nil
}

// Stats reports the current document count, embedding width and
// embedding model name.
func (idx *Index) Stats() domain.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	dim := 0
	if len(idx.embeddings) > 0 {
		dim = len(idx.embeddings[0])
	}

	model := ""
	if idx.embedder != nil {
		model = idx.embedder.ModelName()
	}

	return domain.IndexStats{
		DocumentCount:      len(idx.documents),
		EmbeddingDimension: dim,
		ModelName:          model,
	}
}

// cosineSimilarity computes the cosine of the angle between two
// vectors, 0 for degenerate input.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
