// Package openlibrary fetches book metadata through the Open Library
// search API.
package openlibrary

import (
	"context"
	"encoding/json"
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
	// DefaultBaseURL is the Open Library search endpoint.
	DefaultBaseURL = "https://openlibrary.org/search.json"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 10 * time.Second
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher searches Open Library.
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
	return domain.SourceOpenLibrary
}

type searchResponse struct {
	Docs []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		FirstSentence    []string `json:"first_sentence"`
	} `json:"docs"`
}

// Search returns one document per matching book, its text composed
// from author, publication year and the opening sentence.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]domain.RawDocument, error) {
	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary search: unexpected status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("openlibrary search: decode response: %w", err)
	}

	var docs []domain.RawDocument
	for _, book := range sr.Docs {
		title := book.Title
		if title == "" {
			title = "Unknown Title"
		}

		docs = append(docs, domain.RawDocument{
			Title:  title,
			Text:   describe(book.AuthorName, book.FirstPublishYear, book.FirstSentence),
			Source: "OpenLibrary: " + title,
			URL:    "https://openlibrary.org" + book.Key,
		})
	}
	return docs, nil
}

func describe(authors []string, year int, firstSentence []string) string {
	if len(authors) == 0 {
		authors = []string{"Unknown"}
	}

	published := "N/A"
	if year != 0 {
		published = strconv.Itoa(year)
	}

	description := "No description available"
	if len(firstSentence) > 0 && firstSentence[0] != "" {
		description = firstSentence[0]
	}

	return fmt.Sprintf("Author: %s\nPublished: %s\nDescription: %s",
		strings.Join(authors, ", "), published, description)
}
