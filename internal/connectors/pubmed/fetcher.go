// Package pubmed fetches article abstracts through the NCBI E-utilities
// API: an esearch call resolves the query to PMIDs, an efetch call
// pulls the abstracts.
package pubmed

import (
	"context"
	"encoding/json"
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
	// DefaultBaseURL is the E-utilities endpoint prefix.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 15 * time.Second
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher searches PubMed.
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
	return domain.SourcePubMed
}

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type articleSet struct {
	Articles []struct {
		PMID     string `xml:"MedlineCitation>PMID"`
		Title    string `xml:"MedlineCitation>Article>ArticleTitle"`
		Abstract string `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	} `xml:"PubmedArticle"`
}

// Search resolves the query to article IDs and fetches title and
// abstract for each. Articles without an abstract are skipped.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]domain.RawDocument, error) {
	ids, err := f.searchIDs(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/efetch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pubmed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pubmed fetch: unexpected status %d", resp.StatusCode)
	}

	var set articleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("pubmed fetch: decode articles: %w", err)
	}

	var docs []domain.RawDocument
	for _, article := range set.Articles {
		if article.Title == "" || article.Abstract == "" {
			continue
		}
		pmid := article.PMID
		if pmid == "" {
			pmid = "N/A"
		}
		doc := domain.RawDocument{
			Title:  article.Title,
			Text:   article.Abstract,
			Source: "PubMed: " + pmid,
		}
		if article.PMID != "" {
			doc.URL = fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", article.PMID)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (f *Fetcher) searchIDs(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(limit)},
		"retmode": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var sr esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	return sr.Result.IDList, nil
}
