package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/ansera/internal/core/ports/driven"
)

// ExtractResult is the outcome of one extraction attempt. Found is
// false when the model declined to answer or produced nothing usable.
type ExtractResult struct {
	Answer string
	Score  float64
	Found  bool
}

// Extractor wraps an answer-extraction backend with the input hygiene
// the backend should never have to care about: trimming, empty-input
// short circuits and context truncation.
type Extractor struct {
	backend      driven.AnswerExtractor
	maxContext   int
	maxAnswerLen int
}

func NewExtractor(backend driven.AnswerExtractor, maxContext, maxAnswerLen int) *Extractor {
	return &Extractor{
		backend:      backend,
		maxContext:   maxContext,
		maxAnswerLen: maxAnswerLen,
	}
}

// Extract runs the backend over one passage. An empty question or
// passage returns an absent result without touching the backend.
// Contexts longer than the configured cap are truncated first.
func (e *Extractor) Extract(ctx context.Context, question, passage string) (ExtractResult, error) {
	question = strings.TrimSpace(question)
	passage = strings.TrimSpace(passage)
	if question == "" || passage == "" {
		return ExtractResult{}, nil
	}

	if e.maxContext > 0 && len(passage) > e.maxContext {
		passage = passage[:e.maxContext]
	}

	ext, err := e.backend.Extract(ctx, question, passage, e.maxAnswerLen)
	if err != nil {
		return ExtractResult{}, err
	}

	answer := strings.TrimSpace(ext.Answer)
	if ext.NoAnswer || answer == "" {
		return ExtractResult{}, nil
	}

	return ExtractResult{Answer: answer, Score: ext.Score, Found: true}, nil
}
