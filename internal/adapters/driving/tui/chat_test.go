package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

type stubQA struct {
	reply string
	score float64
	err   error
	asked []string
}

func (s *stubQA) Answer(context.Context, string, bool, []domain.SourceName) (*domain.AnswerResult, error) {
	return nil, nil
}

func (s *stubQA) Reply(_ context.Context, input string, _ bool, _ float64) (string, float64, []domain.SourceRef, error) {
	s.asked = append(s.asked, input)
	return s.reply, s.score, nil, s.err
}

func (s *stubQA) FormatResponse(*domain.AnswerResult) string { return s.reply }

func TestUpdate_EnterSendsQuestion(t *testing.T) {
	qa := &stubQA{reply: "42", score: 0.9}
	m := New(qa, false, 0.35)
	m.input.SetValue("  meaning of life  ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(Model)

	assert.True(t, model.waiting)
	assert.Empty(t, model.input.Value())
	require.NotNil(t, cmd)

	msg := cmd()
	reply, ok := msg.(replyMsg)
	require.True(t, ok)
	assert.Equal(t, "meaning of life", reply.question)
	assert.Equal(t, "42", reply.reply)
	assert.Equal(t, []string{"meaning of life"}, qa.asked)
}

func TestUpdate_EmptyInputIgnored(t *testing.T) {
	m := New(&stubQA{}, false, 0.35)
	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestUpdate_ReplyAppendsToTranscript(t *testing.T) {
	m := New(&stubQA{}, false, 0.35)
	m.waiting = true

	updated, _ := m.Update(replyMsg{question: "q", reply: "a", score: 0.7})
	model := updated.(Model)

	assert.False(t, model.waiting)
	require.Len(t, model.history, 1)
	assert.Equal(t, "q", model.history[0].question)

	transcript := model.renderTranscript()
	assert.Contains(t, transcript, "q")
	assert.Contains(t, transcript, "a")
	assert.Contains(t, transcript, "0.70")
}

func TestUpdate_ReplyError(t *testing.T) {
	m := New(&stubQA{}, false, 0.35)
	m.waiting = true

	updated, _ := m.Update(replyMsg{err: errors.New("backend down")})
	model := updated.(Model)

	assert.False(t, model.waiting)
	assert.Empty(t, model.history)
	assert.Contains(t, model.status, "backend down")
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := New(&stubQA{}, false, 0.35)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
