package domain

// RawDocument is an unprocessed document as returned by a knowledge
// source connector, before chunking and embedding.
type RawDocument struct {
	// Title is the human-readable title.
	Title string `json:"title"`

	// Text is the full text content fetched from the source.
	Text string `json:"text"`

	// Source is the provenance label, e.g. "Wikipedia: Apollo 11".
	Source string `json:"source"`

	// URL is the provenance link, empty if unavailable.
	URL string `json:"url"`
}

// DocumentRecord is one indexed unit of text. Long raw documents are
// split into several records, one per chunk; short ones map 1:1.
// Records are immutable after creation and removed only by a full
// index clear.
type DocumentRecord struct {
	// Title is the display label. Chunked records carry a part
	// suffix, e.g. "Apollo 11 (Part 2)".
	Title string `json:"title"`

	// Text is the chunk that was embedded and is searched.
	// Never empty; records with empty text are dropped before
	// indexing.
	Text string `json:"text"`

	// FullText is the original, unchunked source text. Equals Text
	// for records that were not chunked.
	FullText string `json:"full_text"`

	// Source is the provenance label carried over from the raw
	// document.
	Source string `json:"source"`

	// URL is the provenance link, empty string if unavailable.
	URL string `json:"url"`
}

// ScoredDocument is a DocumentRecord with its cosine similarity to a
// query, as returned by index search.
type ScoredDocument struct {
	DocumentRecord

	// Score is the cosine similarity in [0, 1] for non-degenerate
	// vectors.
	Score float64 `json:"score"`
}

// IndexStats describes the current state of the document index.
type IndexStats struct {
	// DocumentCount is the number of indexed records.
	DocumentCount int `json:"total_documents"`

	// EmbeddingDimension is the vector width, 0 when the index holds
	// no embeddings.
	EmbeddingDimension int `json:"embedding_dimension"`

	// ModelName identifies the embedding model that produced the
	// matrix.
	ModelName string `json:"model_name"`
}
