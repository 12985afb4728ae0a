package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/core/ports/driving"
	"github.com/custodia-labs/ansera/internal/logger"
)

const (
	// fallbackDocs is how many of the top-ranked documents get an
	// individual extraction pass when the combined context yields
	// nothing.
	fallbackDocs = 2

	// displayContextCap bounds the context snippet echoed back in
	// results.
	displayContextCap = 500

	// maxFormattedSources bounds the source names appended by
	// FormatResponse.
	maxFormattedSources = 3
)

// QA answers questions over the document index, optionally pulling
// fresh documents from external sources first.
type QA struct {
	index      driven.DocumentIndex
	extractor  *Extractor
	aggregator *Aggregator
	knowledge  driving.KnowledgeService

	topK           int
	minScore       float64
	defaultSources []domain.SourceName
}

var _ driving.AnswerService = (*QA)(nil)

// QAConfig wires a QA service.
type QAConfig struct {
	Index      driven.DocumentIndex
	Extractor  *Extractor
	Aggregator *Aggregator
	Knowledge  driving.KnowledgeService

	// TopK is how many documents feed the combined QA context.
	TopK int
	// MinScore is the extraction confidence floor below which an
	// answer is treated as absent.
	MinScore float64
	// DefaultSources are queried when the caller passes none.
	DefaultSources []domain.SourceName
}

func NewQA(cfg QAConfig) *QA {
	sources := cfg.DefaultSources
	if len(sources) == 0 {
		sources = domain.DefaultSources()
	}
	return &QA{
		index:          cfg.Index,
		extractor:      cfg.Extractor,
		aggregator:     cfg.Aggregator,
		knowledge:      cfg.Knowledge,
		topK:           cfg.TopK,
		minScore:       cfg.MinScore,
		defaultSources: sources,
	}
}

// Answer retrieves context for the question and extracts an answer
// from it. When fetchNew is set, the given sources (or the defaults)
// are queried first and their results ingested before retrieval, so
// the fresh documents are searchable for this very question.
func (s *QA) Answer(ctx context.Context, question string, fetchNew bool, sources []domain.SourceName) (*domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question: %w", domain.ErrInvalidInput)
	}

	if fetchNew {
		s.fetchAndIngest(ctx, question, sources)
	}

	contextText, docs, err := s.index.ContextForQA(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if len(docs) == 0 {
		return &domain.AnswerResult{Message: domain.MsgNoInformation}, nil
	}

	result := &domain.AnswerResult{
		Sources: sourceRefs(docs),
		Context: truncateForDisplay(contextText),
	}

	extracted, err := s.extractor.Extract(ctx, question, contextText)
	if err != nil {
		logger.Warn("Extraction over combined context failed: %v", err)
	}

	if extracted.Found && extracted.Score >= s.minScore {
		result.Answer = extracted.Answer
		result.Score = extracted.Score
		return result, nil
	}

	// The combined context can bury the answer under competing
	// passages; retry against the best documents one at a time.
	if best, ok := s.fallbackExtract(ctx, question, docs); ok {
		result.Answer = best.Answer
		result.Score = best.Score
		return result, nil
	}

	result.Message = domain.MsgNoClearAnswer
	return result, nil
}

func (s *QA) fetchAndIngest(ctx context.Context, question string, sources []domain.SourceName) {
	if len(sources) == 0 {
		sources = s.defaultSources
	}

	logger.Info("Fetching fresh documents from %d sources", len(sources))
	docs := s.aggregator.SearchAll(ctx, question, sources)
	if len(docs) == 0 {
		return
	}

	if err := s.knowledge.IngestDocuments(ctx, docs); err != nil {
		logger.Warn("Ingesting fetched documents failed: %v", err)
	}
}

func (s *QA) fallbackExtract(ctx context.Context, question string, docs []domain.ScoredDocument) (ExtractResult, bool) {
	n := fallbackDocs
	if n > len(docs) {
		n = len(docs)
	}

	// Documents are tried in similarity order; the first confident
	// extraction wins even if a lower-ranked document would score
	// higher.
	for i := 0; i < n; i++ {
		extracted, err := s.extractor.Extract(ctx, question, docs[i].Text)
		if err != nil {
			logger.Warn("Extraction over document %d failed: %v", i+1, err)
			continue
		}
		if extracted.Found && extracted.Score >= s.minScore {
			return extracted, true
		}
	}
	return ExtractResult{}, false
}

// Reply answers in one call, for chat-style callers. It first tries
// the existing index; when the result is absent or scores below the
// threshold and fetchNew is set, it retries with fresh documents and
// returns that second result either way.
func (s *QA) Reply(ctx context.Context, input string, fetchNew bool, threshold float64) (string, float64, []domain.SourceRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", 0, nil, fmt.Errorf("input: %w", domain.ErrInvalidInput)
	}

	result, err := s.Answer(ctx, input, false, nil)
	if err != nil {
		return "", 0, nil, err
	}

	if fetchNew && (!result.Answered() || result.Score < threshold) {
		logger.Info("No confident answer in knowledge base, fetching new data")
		result, err = s.Answer(ctx, input, true, nil)
		if err != nil {
			return "", 0, nil, err
		}
	}

	return s.FormatResponse(result), result.Score, result.Sources, nil
}

// FormatResponse renders a result as one chat message: the answer
// followed by up to three distinct source names, or the result's
// message when there is no answer.
func (s *QA) FormatResponse(result *domain.AnswerResult) string {
	if result == nil {
		return domain.MsgNoInformation
	}
	if !result.Answered() {
		if result.Message != "" {
			return result.Message
		}
		return domain.MsgNoInformation
	}

	names := distinctSourceNames(result.Sources, maxFormattedSources)
	if len(names) == 0 {
		return result.Answer
	}
	return fmt.Sprintf("%s\n\n[Sources: %s]", result.Answer, strings.Join(names, ", "))
}

func sourceRefs(docs []domain.ScoredDocument) []domain.SourceRef {
	refs := make([]domain.SourceRef, len(docs))
	for i, doc := range docs {
		refs[i] = domain.SourceRef{
			Source:    doc.Source,
			URL:       doc.URL,
			Relevance: doc.Score,
		}
	}
	return refs
}

func distinctSourceNames(refs []domain.SourceRef, limit int) []string {
	seen := make(map[string]bool, len(refs))
	var names []string
	for _, ref := range refs {
		if ref.Source == "" || seen[ref.Source] {
			continue
		}
		seen[ref.Source] = true
		names = append(names, ref.Source)
		if len(names) == limit {
			break
		}
	}
	return names
}

func truncateForDisplay(text string) string {
	if len(text) <= displayContextCap {
		return text
	}
	return text[:displayContextCap] + "..."
}
