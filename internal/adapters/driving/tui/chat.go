// Package tui implements the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/core/ports/driving"
)

const replyTimeout = 2 * time.Minute

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	scoreStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// replyMsg carries one completed exchange back into the update loop.
type replyMsg struct {
	question string
	reply    string
	score    float64
	sources  []domain.SourceRef
	err      error
}

type exchange struct {
	question string
	reply    string
	score    float64
	sources  []domain.SourceRef
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	qa        driving.AnswerService
	fetchNew  bool
	threshold float64

	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	status   string
	waiting  bool
	ready    bool
}

// New creates a chat model. Replies are fetched asynchronously so the
// interface stays responsive while sources are queried.
func New(qa driving.AnswerService, fetchNew bool, threshold float64) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask me anything"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		qa:        qa,
		fetchNew:  fetchNew,
		threshold: threshold,
		input:     ti,
		viewport:  vp,
		status:    "Ready. Type a question and press Enter; Ctrl+C quits.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, spacer, input frame, status
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(q)
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.history = append(m.history, exchange{
			question: msg.question,
			reply:    msg.reply,
			score:    msg.score,
			sources:  msg.sources,
		})
		m.status = fmt.Sprintf("Answered with score %.2f", msg.score)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs one question through the QA pipeline off the update loop.
func (m Model) ask(question string) tea.Cmd {
	qa, fetchNew, threshold := m.qa, m.fetchNew, m.threshold
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		reply, score, sources, err := qa.Reply(ctx, question, fetchNew, threshold)
		return replyMsg{question: question, reply: reply, score: score, sources: sources, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Ansera Chat")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(userStyle.Render("You: ") + ex.question + "\n")
		b.WriteString(botStyle.Render("Bot: ") + ex.reply)
		if ex.score > 0 {
			b.WriteString("\n" + scoreStyle.Render(fmt.Sprintf("(score %.2f)", ex.score)))
		}
	}
	return b.String()
}

// Run starts the chat session and blocks until the user quits.
func Run(qa driving.AnswerService, fetchNew bool, threshold float64) error {
	p := tea.NewProgram(New(qa, fetchNew, threshold), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
