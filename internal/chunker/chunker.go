// Package chunker splits long documents into overlapping,
// sentence-boundary-aware windows for embedding.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 50

// Chunker splits text into overlapping chunks, preferring to end a
// chunk on a sentence terminator or newline when one falls in the
// second half of the window.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Keep the per-iteration advance positive even when a chunk is
	// truncated at a boundary just past the window midpoint.
	if 2*c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured window size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Split cuts text into chunks of at most the configured size. Text
// that fits in one window is returned unchanged as a single chunk.
// Consecutive chunks share the configured overlap, and every emitted
// chunk is trimmed of surrounding whitespace.
func (c *Chunker) Split(text string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.chunkSize
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		window := text[start:end]

		// Prefer a sentence boundary in the second half of the
		// window so chunks end on natural breaks when possible.
		breakPoint := strings.LastIndexByte(window, '.')
		if nl := strings.LastIndexByte(window, '\n'); nl > breakPoint {
			breakPoint = nl
		}
		if breakPoint > c.chunkSize/2 {
			window = window[:breakPoint+1]
			end = start + breakPoint + 1
		}

		chunks = append(chunks, strings.TrimSpace(window))
		start = end - c.overlap
	}

	return chunks
}
