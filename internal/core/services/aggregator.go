package services

import (
	"context"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/logger"
)

// defaultFetchLimit applies to sources with no configured limit.
const defaultFetchLimit = 2

// Aggregator fans a query out to the registered source fetchers and
// collects whatever they return. Only explicitly registered fetchers
// participate; asking for an unregistered source is a no-op rather
// than an error, and a failing source degrades to an empty
// contribution.
type Aggregator struct {
	fetchers map[domain.SourceName]driven.Fetcher
	limits   map[domain.SourceName]int
}

// NewAggregator creates an aggregator with per-source result limits.
func NewAggregator(limits map[domain.SourceName]int) *Aggregator {
	return &Aggregator{
		fetchers: make(map[domain.SourceName]driven.Fetcher),
		limits:   limits,
	}
}

// Register adds a fetcher under its own name, replacing any previous
// registration for that source.
func (a *Aggregator) Register(f driven.Fetcher) {
	a.fetchers[f.Name()] = f
}

// Registered reports whether a fetcher exists for the given source.
func (a *Aggregator) Registered(name domain.SourceName) bool {
	_, ok := a.fetchers[name]
	return ok
}

// SearchAll queries the given sources in order and concatenates their
// results. Unregistered sources are skipped; a source error is logged
// and contributes nothing.
func (a *Aggregator) SearchAll(ctx context.Context, query string, sources []domain.SourceName) []domain.RawDocument {
	var docs []domain.RawDocument

	for _, name := range sources {
		fetcher, ok := a.fetchers[name]
		if !ok {
			logger.Debug("No fetcher registered for source %q", name)
			continue
		}

		limit := a.limits[name]
		if limit <= 0 {
			limit = defaultFetchLimit
		}

		results, err := fetcher.Search(ctx, query, limit)
		if err != nil {
			logger.Warn("Source %q failed: %v", name, err)
			continue
		}

		logger.Debug("Source %q returned %d documents", name, len(results))
		docs = append(docs, results...)
	}

	return docs
}
