package driven

import (
	"context"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

// Fetcher retrieves documents from one external knowledge source.
// Each source (wikipedia, arxiv, pubmed, ...) implements this
// interface and is bound to its domain.SourceName through the
// aggregator's registration point.
type Fetcher interface {
	// Name returns the source this fetcher serves.
	Name() domain.SourceName

	// Search queries the source and returns up to limit documents.
	// Zero results is a valid, non-error outcome. Implementations
	// handle their own rate limiting and timeouts.
	Search(ctx context.Context, query string, limit int) ([]domain.RawDocument, error)
}
