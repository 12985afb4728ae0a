// Package osm fetches geographic data through the Nominatim geocoding
// API.
package osm

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
)

const (
	// DefaultBaseURL is the Nominatim search endpoint.
	DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// userAgent identifies us per the Nominatim usage policy, which
	// requires one and allows at most one request per second.
	userAgent = "ansera/1.0 (https://github.com/custodia-labs/ansera)"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher searches OpenStreetMap locations.
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
	return domain.SourceOSM
}

type place struct {
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search geocodes the query and returns one document per matching
// place, describing its name, type and coordinates.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]domain.RawDocument, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"limit":          {strconv.Itoa(limit)},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osm search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osm search: unexpected status %d", resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("osm search: decode response: %w", err)
	}

	var docs []domain.RawDocument
	for _, p := range places {
		title := p.DisplayName
		if title == "" {
			title = "Location"
		}
		placeType := p.Type
		if placeType == "" {
			placeType = "N/A"
		}

		docs = append(docs, domain.RawDocument{
			Title: title,
			Text: fmt.Sprintf("Location: %s\nType: %s\nCoordinates: %s, %s",
				p.DisplayName, placeType, p.Lat, p.Lon),
			Source: "OpenStreetMap",
			URL:    fmt.Sprintf("https://www.openstreetmap.org/?mlat=%s&mlon=%s", p.Lat, p.Lon),
		})
	}
	return docs, nil
}
