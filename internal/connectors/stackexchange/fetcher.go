// Package stackexchange fetches questions and their accepted answers
// through the Stack Exchange API.
package stackexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/logger"
)

const (
	// DefaultBaseURL is the Stack Exchange API endpoint prefix.
	DefaultBaseURL = "https://api.stackexchange.com/2.3"

	// DefaultSite is the network site queried.
	DefaultSite = "stackoverflow"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// maxBodyChars caps stripped question and answer bodies.
	maxBodyChars = 500
)

// tagPattern matches HTML tags for stripping.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher searches a Stack Exchange site by title.
type Fetcher struct {
	baseURL string
	site    string
	client  *http.Client
}

// Option adjusts fetcher construction.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at a different API endpoint.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = u }
}

// WithSite selects a different network site.
func WithSite(site string) Option {
	return func(f *Fetcher) { f.site = site }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL: DefaultBaseURL,
		site:    DefaultSite,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the source identifier.
func (f *Fetcher) Name() domain.SourceName {
	return domain.SourceStackOverflow
}

type questionList struct {
	Items []struct {
		Title            string `json:"title"`
		Body             string `json:"body"`
		Link             string `json:"link"`
		AnswerCount      int    `json:"answer_count"`
		AcceptedAnswerID int    `json:"accepted_answer_id"`
	} `json:"items"`
}

type answerList struct {
	Items []struct {
		Body string `json:"body"`
	} `json:"items"`
}

// Search finds questions whose title matches the query and pairs each
// with its accepted answer when one exists. Bodies are stripped of
// HTML and truncated.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]domain.RawDocument, error) {
	params := url.Values{
		"order":    {"desc"},
		"sort":     {"relevance"},
		"intitle":  {query},
		"site":     {f.site},
		"pagesize": {strconv.Itoa(limit)},
		"filter":   {"withbody"},
	}

	var questions questionList
	if err := f.get(ctx, "/search?"+params.Encode(), &questions); err != nil {
		return nil, fmt.Errorf("stackexchange search: %w", err)
	}

	var docs []domain.RawDocument
	for _, item := range questions.Items {
		answer := ""
		if item.AnswerCount > 0 && item.AcceptedAnswerID != 0 {
			text, err := f.acceptedAnswer(ctx, item.AcceptedAnswerID)
			if err != nil {
				logger.Warn("Stack Exchange answer %d failed: %v", item.AcceptedAnswerID, err)
			} else {
				answer = text
			}
		}

		docs = append(docs, domain.RawDocument{
			Title:  item.Title,
			Text:   fmt.Sprintf("Question: %s\n\nAnswer: %s", cleanHTML(item.Body), answer),
			Source: "Stack Overflow: " + item.Title,
			URL:    item.Link,
		})
	}
	return docs, nil
}

func (f *Fetcher) acceptedAnswer(ctx context.Context, answerID int) (string, error) {
	params := url.Values{
		"site":   {f.site},
		"filter": {"withbody"},
	}

	var answers answerList
	if err := f.get(ctx, fmt.Sprintf("/answers/%d?%s", answerID, params.Encode()), &answers); err != nil {
		return "", err
	}
	if len(answers.Items) == 0 {
		return "", nil
	}
	return cleanHTML(answers.Items[0].Body), nil
}

func (f *Fetcher) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// cleanHTML strips tags and truncates, good enough for markup-light
// Q&A bodies.
func cleanHTML(s string) string {
	clean := strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
	if len(clean) > maxBodyChars {
		clean = clean[:maxBodyChars]
	}
	return clean
}
