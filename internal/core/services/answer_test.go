package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockIndex implements driven.DocumentIndex for testing.
type mockIndex struct {
	contextText string
	contextDocs []domain.ScoredDocument
	contextErr  error

	added     [][]domain.RawDocument
	addChunk  []bool
	addErr    error
	saveCalls int
	saveErr   error
	stats     domain.IndexStats
}

func (m *mockIndex) Add(_ context.Context, docs []domain.RawDocument, chunk bool) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, docs)
	m.addChunk = append(m.addChunk, chunk)
	m.stats.DocumentCount += len(docs)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ string, topK int, _ float64) ([]domain.ScoredDocument, error) {
	if m.contextErr != nil {
		return nil, m.contextErr
	}
	if topK > len(m.contextDocs) {
		topK = len(m.contextDocs)
	}
	return m.contextDocs[:topK], nil
}

func (m *mockIndex) ContextForQA(_ context.Context, _ string, _ int) (string, []domain.ScoredDocument, error) {
	return m.contextText, m.contextDocs, m.contextErr
}

func (m *mockIndex) Save() error {
	m.saveCalls++
	return m.saveErr
}

func (m *mockIndex) Load() error  { return nil }
func (m *mockIndex) Clear() error { return nil }

func (m *mockIndex) Stats() domain.IndexStats { return m.stats }

// mockExtractorBackend implements driven.AnswerExtractor for testing.
type mockExtractorBackend struct {
	// results are consumed in call order; the last one repeats.
	results []driven.Extraction
	err     error
	calls   []string
}

func (m *mockExtractorBackend) Extract(_ context.Context, _ string, passage string, _ int) (driven.Extraction, error) {
	m.calls = append(m.calls, passage)
	if m.err != nil {
		return driven.Extraction{}, m.err
	}
	if len(m.results) == 0 {
		return driven.Extraction{NoAnswer: true}, nil
	}
	res := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return res, nil
}

func (m *mockExtractorBackend) ModelName() string { return "mock-extractor" }
func (m *mockExtractorBackend) Close() error      { return nil }

// mockFetcher implements driven.Fetcher for testing.
type mockFetcher struct {
	name    domain.SourceName
	docs    []domain.RawDocument
	err     error
	queries []string
	limits  []int
}

func (m *mockFetcher) Name() domain.SourceName { return m.name }

func (m *mockFetcher) Search(_ context.Context, query string, limit int) ([]domain.RawDocument, error) {
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.docs) {
		return m.docs, nil
	}
	return m.docs[:limit], nil
}

// mockKnowledge implements driving.KnowledgeService for testing.
type mockKnowledge struct {
	ingested  [][]domain.RawDocument
	ingestErr error
}

func (m *mockKnowledge) Train(_ context.Context) (driving.TrainStats, error) {
	return driving.TrainStats{}, nil
}

func (m *mockKnowledge) IngestDocuments(_ context.Context, docs []domain.RawDocument) error {
	if m.ingestErr != nil {
		return m.ingestErr
	}
	m.ingested = append(m.ingested, docs)
	return nil
}

func (m *mockKnowledge) RetrainInBackground() bool { return true }

func (m *mockKnowledge) BuildFromSources(_ context.Context, _ []string, _ []domain.SourceName) error {
	return nil
}

// --- Helpers ---

func scoredDoc(title, text, source string, score float64) domain.ScoredDocument {
	return domain.ScoredDocument{
		DocumentRecord: domain.DocumentRecord{
			Title:    title,
			Text:     text,
			FullText: text,
			Source:   source,
		},
		Score: score,
	}
}

func newTestQA(idx *mockIndex, backend driven.AnswerExtractor, knowledge *mockKnowledge, agg *Aggregator) *QA {
	if agg == nil {
		agg = NewAggregator(nil)
	}
	return NewQA(QAConfig{
		Index:      idx,
		Extractor:  NewExtractor(backend, 4000, 200),
		Aggregator: agg,
		Knowledge:  knowledge,
		TopK:       3,
		MinScore:   0.01,
	})
}

// --- Tests ---

func TestQA_AnswerFromCombinedContext(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: Wikipedia: Cat]\nCats are small carnivorous mammals.",
		contextDocs: []domain.ScoredDocument{
			scoredDoc("Cats", "Cats are small carnivorous mammals.", "Wikipedia: Cat", 0.9),
		},
	}
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "small carnivorous mammals", Score: 0.8}},
	}

	qa := newTestQA(idx, backend, &mockKnowledge{}, nil)
	result, err := qa.Answer(context.Background(), "What are cats?", false, nil)
	require.NoError(t, err)

	assert.True(t, result.Answered())
	assert.Equal(t, "small carnivorous mammals", result.Answer)
	assert.InDelta(t, 0.8, result.Score, 1e-9)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Wikipedia: Cat", result.Sources[0].Source)
	assert.InDelta(t, 0.9, result.Sources[0].Relevance, 1e-9)
}

func TestQA_AnswerEmptyQuestion(t *testing.T) {
	qa := newTestQA(&mockIndex{}, &mockExtractorBackend{}, &mockKnowledge{}, nil)

	_, err := qa.Answer(context.Background(), "   ", false, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQA_AnswerNoDocuments(t *testing.T) {
	backend := &mockExtractorBackend{}
	qa := newTestQA(&mockIndex{}, backend, &mockKnowledge{}, nil)

	result, err := qa.Answer(context.Background(), "anything", false, nil)
	require.NoError(t, err)

	assert.False(t, result.Answered())
	assert.Equal(t, domain.MsgNoInformation, result.Message)
	assert.Empty(t, backend.calls, "extractor must not run without context")
}

func TestQA_AnswerFallbackToIndividualDocs(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: A]\nfirst\n\n[Source 2: B]\nsecond\n\n[Source 3: C]\nthird",
		contextDocs: []domain.ScoredDocument{
			scoredDoc("A", "first", "A", 0.9),
			scoredDoc("B", "second", "B", 0.8),
			scoredDoc("C", "third", "C", 0.7),
		},
	}
	// Combined context yields nothing; the second document does.
	backend := &mockExtractorBackend{
		results: []driven.Extraction{
			{NoAnswer: true},
			{NoAnswer: true},
			{Answer: "from the second doc", Score: 0.6},
		},
	}

	qa := newTestQA(idx, backend, &mockKnowledge{}, nil)
	result, err := qa.Answer(context.Background(), "question", false, nil)
	require.NoError(t, err)

	assert.Equal(t, "from the second doc", result.Answer)
	// Combined pass plus the top two documents, never the third.
	require.Len(t, backend.calls, 3)
	assert.Equal(t, "first", backend.calls[1])
	assert.Equal(t, "second", backend.calls[2])
}

func TestQA_AnswerFallbackStopsAtFirstConfidentDoc(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: A]\nfirst\n\n[Source 2: B]\nsecond",
		contextDocs: []domain.ScoredDocument{
			scoredDoc("A", "first", "A", 0.9),
			scoredDoc("B", "second", "B", 0.8),
		},
	}
	// The top document already yields a confident answer; the lower
	// ranked document would score higher but must never be asked.
	backend := &mockExtractorBackend{
		results: []driven.Extraction{
			{NoAnswer: true},
			{Answer: "from the top doc", Score: 0.2},
			{Answer: "would score higher", Score: 0.95},
		},
	}

	qa := newTestQA(idx, backend, &mockKnowledge{}, nil)
	result, err := qa.Answer(context.Background(), "question", false, nil)
	require.NoError(t, err)

	assert.Equal(t, "from the top doc", result.Answer)
	assert.InDelta(t, 0.2, result.Score, 1e-9)
	require.Len(t, backend.calls, 2)
	assert.Equal(t, "first", backend.calls[1])
}

func TestQA_AnswerNoClearAnswer(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: A]\nsome text",
		contextDocs: []domain.ScoredDocument{scoredDoc("A", "some text", "A", 0.5)},
	}
	backend := &mockExtractorBackend{} // declines everything

	qa := newTestQA(idx, backend, &mockKnowledge{}, nil)
	result, err := qa.Answer(context.Background(), "question", false, nil)
	require.NoError(t, err)

	assert.False(t, result.Answered())
	assert.Equal(t, domain.MsgNoClearAnswer, result.Message)
	assert.NotEmpty(t, result.Sources, "relevant documents are still reported")
}

func TestQA_AnswerLowScoreTreatedAsAbsent(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: A]\nsome text",
		contextDocs: []domain.ScoredDocument{scoredDoc("A", "some text", "A", 0.5)},
	}
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "noise", Score: 0.001}},
	}

	qa := newTestQA(idx, backend, &mockKnowledge{}, nil)
	result, err := qa.Answer(context.Background(), "question", false, nil)
	require.NoError(t, err)
	assert.False(t, result.Answered())
}

func TestQA_AnswerFetchNewIngestsBeforeRetrieval(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: Wikipedia: Topic]\nfetched text",
		contextDocs: []domain.ScoredDocument{
			scoredDoc("Topic", "fetched text", "Wikipedia: Topic", 0.7),
		},
	}
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "fetched answer", Score: 0.5}},
	}
	knowledge := &mockKnowledge{}

	fetcher := &mockFetcher{
		name: domain.SourceWikipedia,
		docs: []domain.RawDocument{{Title: "Topic", Text: "fetched text", Source: "Wikipedia: Topic"}},
	}
	agg := NewAggregator(map[domain.SourceName]int{domain.SourceWikipedia: 3})
	agg.Register(fetcher)

	qa := newTestQA(idx, backend, knowledge, agg)
	result, err := qa.Answer(context.Background(), "question", true, []domain.SourceName{domain.SourceWikipedia})
	require.NoError(t, err)

	assert.Equal(t, "fetched answer", result.Answer)
	require.Len(t, knowledge.ingested, 1)
	assert.Equal(t, "Topic", knowledge.ingested[0][0].Title)
	assert.Equal(t, []string{"question"}, fetcher.queries)
}

func TestQA_AnswerContextDisplayTruncated(t *testing.T) {
	long := strings.Repeat("x", 800)
	idx := &mockIndex{
		contextText: long,
		contextDocs: []domain.ScoredDocument{scoredDoc("A", long, "A", 0.5)},
	}
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "answer", Score: 0.5}},
	}

	qa := newTestQA(idx, backend, &mockKnowledge{}, nil)
	result, err := qa.Answer(context.Background(), "question", false, nil)
	require.NoError(t, err)

	assert.Len(t, result.Context, 503)
	assert.True(t, strings.HasSuffix(result.Context, "..."))
}

func TestQA_Reply(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: Wikipedia: Go]\nGo is a programming language.",
		contextDocs: []domain.ScoredDocument{
			scoredDoc("Go", "Go is a programming language.", "Wikipedia: Go", 0.9),
		},
	}
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "a programming language", Score: 0.8}},
	}

	qa := newTestQA(idx, backend, &mockKnowledge{}, nil)
	reply, score, sources, err := qa.Reply(context.Background(), "what is go", false, 0.1)
	require.NoError(t, err)

	assert.Contains(t, reply, "a programming language")
	assert.Contains(t, reply, "[Sources: Wikipedia: Go]")
	assert.InDelta(t, 0.8, score, 1e-9)
	require.Len(t, sources, 1)
}

func TestQA_ReplyEmptyInput(t *testing.T) {
	qa := newTestQA(&mockIndex{}, &mockExtractorBackend{}, &mockKnowledge{}, nil)

	_, _, _, err := qa.Reply(context.Background(), "", false, 0.1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQA_ReplyRetriesWithFetch(t *testing.T) {
	idx := &mockIndex{
		contextText: "[Source 1: A]\ntext",
		contextDocs: []domain.ScoredDocument{scoredDoc("A", "text", "A", 0.5)},
	}
	// First pass scores below threshold, the post-fetch pass above.
	backend := &mockExtractorBackend{
		results: []driven.Extraction{
			{Answer: "weak", Score: 0.05},
			{Answer: "strong", Score: 0.9},
		},
	}
	knowledge := &mockKnowledge{}
	fetcher := &mockFetcher{
		name: domain.SourceWikipedia,
		docs: []domain.RawDocument{{Title: "T", Text: "text", Source: "Wikipedia: T"}},
	}
	agg := NewAggregator(nil)
	agg.Register(fetcher)

	qa := newTestQA(idx, backend, knowledge, agg)
	reply, score, _, err := qa.Reply(context.Background(), "question", true, 0.35)
	require.NoError(t, err)

	assert.Contains(t, reply, "strong")
	assert.InDelta(t, 0.9, score, 1e-9)
	assert.Len(t, knowledge.ingested, 1)
}

func TestQA_FormatResponse(t *testing.T) {
	qa := newTestQA(&mockIndex{}, &mockExtractorBackend{}, &mockKnowledge{}, nil)

	t.Run("answer with distinct sources capped at three", func(t *testing.T) {
		result := &domain.AnswerResult{
			Answer: "the answer",
			Score:  0.8,
			Sources: []domain.SourceRef{
				{Source: "Wikipedia: A"},
				{Source: "Wikipedia: A"},
				{Source: "arXiv: B"},
				{Source: "PubMed: C"},
				{Source: "Stack Overflow: D"},
			},
		}
		assert.Equal(t,
			"the answer\n\n[Sources: Wikipedia: A, arXiv: B, PubMed: C]",
			qa.FormatResponse(result))
	})

	t.Run("no answer falls back to the message", func(t *testing.T) {
		result := &domain.AnswerResult{Message: domain.MsgNoClearAnswer}
		assert.Equal(t, domain.MsgNoClearAnswer, qa.FormatResponse(result))
	})

	t.Run("nil result", func(t *testing.T) {
		assert.Equal(t, domain.MsgNoInformation, qa.FormatResponse(nil))
	})

	t.Run("answer without sources", func(t *testing.T) {
		result := &domain.AnswerResult{Answer: "bare", Score: 0.5}
		assert.Equal(t, "bare", qa.FormatResponse(result))
	})
}

func TestQA_AnswerRetrievalError(t *testing.T) {
	idx := &mockIndex{contextErr: errors.New("embedding backend down")}
	qa := newTestQA(idx, &mockExtractorBackend{}, &mockKnowledge{}, nil)

	_, err := qa.Answer(context.Background(), "question", false, nil)
	assert.Error(t, err)
}
