package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansera/internal/core/ports/driven"
)

func TestExtractor_Extract(t *testing.T) {
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "  42  ", Score: 0.9}},
	}
	e := NewExtractor(backend, 4000, 200)

	res, err := e.Extract(context.Background(), "what is the answer", "The answer is 42.")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Equal(t, "42", res.Answer, "answers come back trimmed")
	assert.InDelta(t, 0.9, res.Score, 1e-9)
}

func TestExtractor_EmptyInputsSkipBackend(t *testing.T) {
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "should never appear", Score: 1}},
	}
	e := NewExtractor(backend, 4000, 200)

	for _, tc := range []struct{ question, passage string }{
		{"", "some context"},
		{"   ", "some context"},
		{"a question", ""},
		{"a question", "  \n  "},
	} {
		res, err := e.Extract(context.Background(), tc.question, tc.passage)
		require.NoError(t, err)
		assert.False(t, res.Found)
	}
	assert.Empty(t, backend.calls, "empty inputs must never reach the backend")
}

func TestExtractor_TruncatesLongContext(t *testing.T) {
	backend := &mockExtractorBackend{
		results: []driven.Extraction{{Answer: "x", Score: 0.5}},
	}
	e := NewExtractor(backend, 100, 200)

	_, err := e.Extract(context.Background(), "q", strings.Repeat("y", 500))
	require.NoError(t, err)

	require.Len(t, backend.calls, 1)
	assert.Len(t, backend.calls[0], 100)
}

func TestExtractor_NoAnswerAndBlankAnswer(t *testing.T) {
	e := NewExtractor(&mockExtractorBackend{
		results: []driven.Extraction{{NoAnswer: true, Score: 0.9}},
	}, 4000, 200)
	res, err := e.Extract(context.Background(), "q", "c")
	require.NoError(t, err)
	assert.False(t, res.Found)

	e = NewExtractor(&mockExtractorBackend{
		results: []driven.Extraction{{Answer: "   ", Score: 0.9}},
	}, 4000, 200)
	res, err = e.Extract(context.Background(), "q", "c")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestExtractor_BackendError(t *testing.T) {
	e := NewExtractor(&mockExtractorBackend{err: errors.New("model offline")}, 4000, 200)

	_, err := e.Extract(context.Background(), "q", "c")
	assert.Error(t, err)
}
