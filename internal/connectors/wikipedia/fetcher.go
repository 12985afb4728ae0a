// Package wikipedia fetches article summaries through the MediaWiki
// API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/logger"
)

const (
	// DefaultBaseURL is the MediaWiki API endpoint.
	DefaultBaseURL = "https://en.wikipedia.org/w/api.php"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// MaxRetries is the maximum number of attempts per request.
	MaxRetries = 3

	// userAgent identifies us to the API; anonymous defaults get 403.
	userAgent = "ansera/1.0 (https://github.com/custodia-labs/ansera)"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher searches Wikipedia and returns article intro extracts.
type Fetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
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

// New creates a Wikipedia fetcher. Requests are spaced at least one
// second apart per the API's etiquette guidelines.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the source identifier.
func (f *Fetcher) Name() domain.SourceName {
	return domain.SourceWikipedia
}

type searchResponse struct {
	Query struct {
		Search []struct {
			PageID int    `json:"pageid"`
			Title  string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Search finds up to limit articles for the query and fetches the
// plain-text intro extract of each. Articles with an empty extract
// are skipped.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]domain.RawDocument, error) {
	params := url.Values{
		"action":   {"query"},
		"format":   {"json"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(limit)},
		"srprop":   {"snippet"},
	}

	var sr searchResponse
	if err := f.get(ctx, params, &sr); err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}

	var docs []domain.RawDocument
	for _, item := range sr.Query.Search {
		content, err := f.pageExtract(ctx, item.PageID)
		if err != nil {
			logger.Warn("Wikipedia extract for page %d failed: %v", item.PageID, err)
			continue
		}
		if content == "" {
			continue
		}
		docs = append(docs, domain.RawDocument{
			Title:  item.Title,
			Text:   content,
			Source: "Wikipedia: " + item.Title,
			URL:    fmt.Sprintf("https://en.wikipedia.org/?curid=%d", item.PageID),
		})
	}
	return docs, nil
}

// pageExtract fetches the plain-text intro of one page.
func (f *Fetcher) pageExtract(ctx context.Context, pageID int) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"pageids":     {strconv.Itoa(pageID)},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
	}

	var er extractResponse
	if err := f.get(ctx, params, &er); err != nil {
		return "", err
	}
	return er.Query.Pages[strconv.Itoa(pageID)].Extract, nil
}

// get performs one API call with retries and exponential backoff.
// A 403 aborts immediately: the API is refusing us and retrying only
// digs the hole deeper.
func (f *Fetcher) get(ctx context.Context, params url.Values, out any) error {
	var lastErr error

	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			return fmt.Errorf("%w: access forbidden", domain.ErrSourceUnavailable)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode response: %w", err)
			continue
		}
		return nil
	}

	return lastErr
}
