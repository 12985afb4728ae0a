// Package hf provides an answer-extraction adapter backed by the
// Hugging Face inference API's question-answering pipeline.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.AnswerExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultModel   = "deepset/roberta-base-squad2"
	DefaultTimeout = 30 * time.Second

	// maxRetries covers the API's cold-start 503s while the model
	// container spins up.
	maxRetries = 3
	retryDelay = 2 * time.Second
)

// Config holds configuration for the Hugging Face extractor.
type Config struct {
	// APIKey is the Hugging Face API token. Optional; anonymous
	// requests are allowed at a lower rate.
	APIKey string

	// BaseURL is the inference API base URL.
	BaseURL string

	// Model is the question-answering model to query.
	Model string

	// Timeout is the request timeout.
	Timeout time.Duration
}

// Extractor extracts answer spans from context passages.
type Extractor struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewExtractor creates a Hugging Face QA extractor.
func NewExtractor(cfg Config) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// qaRequest is the inference API request format.
type qaRequest struct {
	Inputs struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	} `json:"inputs"`
}

// qaResponse is the inference API response format.
type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Error  string  `json:"error"`
}

// Extract asks the model for an answer span within the passage. An
// empty span comes back as NoAnswer rather than an error; answers
// longer than maxAnswerLength are truncated.
func (e *Extractor) Extract(ctx context.Context, question, passage string, maxAnswerLength int) (driven.Extraction, error) {
	var req qaRequest
	req.Inputs.Question = question
	req.Inputs.Context = passage

	body, err := json.Marshal(req)
	if err != nil {
		return driven.Extraction{}, fmt.Errorf("marshal request: %w", err)
	}

	var resp qaResponse
	if err := e.post(ctx, body, &resp); err != nil {
		return driven.Extraction{}, fmt.Errorf("huggingface qa: %w", err)
	}
	if resp.Error != "" {
		return driven.Extraction{}, fmt.Errorf("huggingface qa: %s", resp.Error)
	}

	answer := strings.TrimSpace(resp.Answer)
	if answer == "" {
		return driven.Extraction{NoAnswer: true}, nil
	}
	if maxAnswerLength > 0 && len(answer) > maxAnswerLength {
		answer = strings.TrimSpace(answer[:maxAnswerLength])
	}

	return driven.Extraction{Answer: answer, Score: resp.Score}, nil
}

func (e *Extractor) post(ctx context.Context, body []byte, out *qaResponse) error {
	url := e.baseURL + "/models/" + e.model

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying Hugging Face request, model may be loading")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if e.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.apiKey)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// 503 means the model container is still warming up.
		if resp.StatusCode == http.StatusServiceUnavailable {
			resp.Body.Close()
			lastErr = fmt.Errorf("model unavailable (status %d)", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(payload))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	// Transport failures and persistent warm-up 503s mean the
	// extraction backend cannot be reached at all.
	return fmt.Errorf("%w: %v", domain.ErrExtractorUnavailable, lastErr)
}

// ModelName returns the name of the QA model being used.
func (e *Extractor) ModelName() string {
	return e.model
}

// Close releases resources.
func (e *Extractor) Close() error {
	return nil
}
