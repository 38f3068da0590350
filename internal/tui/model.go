package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"contractqa/internal/adapter/analyzer"
	"contractqa/internal/domain"
)

// Asker is the TUI-facing subset of the pipeline.
type Asker interface {
	Ask(ctx context.Context, question string, k int) domain.Answer
}

// answerMsg carries a finished answer back into Update.
type answerMsg struct {
	answer domain.Answer
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	asker     Asker
	topK      int
	timeout   time.Duration
	tokenizer *analyzer.Tokenizer
	input     textinput.Model
	viewport  viewport.Model
	answer    domain.Answer
	asked     bool
	status    string
	title     string
	cursor    int
	waiting   bool
	ready     bool
}

// New creates a chat model asking asker with top-k chunks per question.
func New(asker Asker, title string, topK int, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the contract and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		asker:     asker,
		topK:      topK,
		timeout:   timeout,
		tokenizer: analyzer.NewTokenizer(),
		input:     ti,
		viewport:  vp,
		title:     title,
		status:    "Ready. The index is built on the first question.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, title, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case answerMsg:
		m.waiting = false
		m.asked = true
		m.answer = msg.answer
		m.cursor = 0
		switch {
		case msg.answer.Err != nil:
			m.status = "Request failed."
		case msg.answer.Guidance:
			m.status = "Nothing asked."
		default:
			m.status = fmt.Sprintf("Answered from %d chunks. Up/down to browse sources.", len(msg.answer.Sources))
		}
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.waiting {
				return m, nil
			}
			q := m.input.Value()
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(q)
		case "down":
			if n := len(m.answer.Sources); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if n := len(m.answer.Sources); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	asker, topK, timeout := m.asker, m.topK, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return answerMsg{answer: asker.Ask(ctx, question, topK)}
	}
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Contract Q&A")
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.title)
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + title + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if !m.asked {
		return "No question yet."
	}
	if m.answer.Err != nil {
		return errorStyle.Render(m.answer.String())
	}

	var sb strings.Builder
	sb.WriteString(m.answer.Text)

	if n := len(m.answer.Sources); n > 0 {
		s := m.answer.Sources[m.cursor]
		sb.WriteString("\n\n")
		sb.WriteString(sourceTitleStyle.Render(fmt.Sprintf("Source %d/%d  chunk %d  chars %d-%d  score=%.3f",
			m.cursor+1, n, s.Chunk.Index, s.Chunk.StartOffset, s.Chunk.EndOffset(), s.Score)))
		sb.WriteString("\n")
		sb.WriteString(m.highlightBestSentence(s.Chunk.Text, m.answer.Question))
	}
	return sb.String()
}

var (
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sentenceRe       = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence sharing the most terms with
// the question.
func (m Model) highlightBestSentence(text, question string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTerms := m.termSet(question)
	if len(qTerms) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := 0
		for t := range m.termSet(s) {
			if _, ok := qTerms[t]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func (m Model) termSet(s string) map[string]struct{} {
	terms := m.tokenizer.Tokenize(s)
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}
