// Package arxiv fetches paper abstracts through the arXiv Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the arXiv export API endpoint.
	DefaultBaseURL = "http://export.arxiv.org/api/query"

	// DefaultTimeout is the HTTP request timeout; the export API is
	// slow.
	DefaultTimeout = 15 * time.Second
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher searches arXiv across all fields.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// Option adjusts fetcher construction.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at a different API endpoint.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the source identifier.
func (f *Fetcher) Name() domain.SourceName {
	return domain.SourceArxiv
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
}

// Search queries arXiv and returns one document per paper, titled by
// the paper and carrying the abstract as text. The source label tags
// each with the arXiv identifier.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]domain.RawDocument, error) {
	params := url.Values{
		"search_query": {"all:" + query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv search: unexpected status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arxiv search: decode feed: %w", err)
	}

	var docs []domain.RawDocument
	for _, entry := range feed.Entries {
		title := flatten(entry.Title)
		summary := flatten(entry.Summary)
		if title == "" || summary == "" {
			continue
		}
		docs = append(docs, domain.RawDocument{
			Title:  title,
			Text:   summary,
			Source: "arXiv: " + idTail(entry.ID),
			URL:    entry.ID,
		})
	}
	return docs, nil
}

// flatten trims an Atom text field and folds its line breaks, which
// the export API inserts for wrapping.
func flatten(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}

// idTail extracts the bare arXiv identifier from the entry URL.
func idTail(id string) string {
	if id == "" {
		return "N/A"
	}
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}
