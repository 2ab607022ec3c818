package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
	"docqa/internal/repl"
)

// Model is the Bubble Tea model for the full-screen front end.
type Model struct {
	ctx      context.Context
	asker    repl.Asker
	input    textinput.Model
	viewport viewport.Model
	answer   *domain.Answer
	overview string
	status   string
	cursor   int
	ready    bool
	err      error
}

// New creates a new TUI model instance. overview is shown under the title.
func New(ctx context.Context, asker repl.Asker, overview string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter (q to quit)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, asker: asker, input: ti, viewport: vp, overview: overview, status: "Index ready."}
}

// Err returns the failure that ended the program, if any.
func (m Model) Err() error { return m.err }

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+overview, status, input frame, input line
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if repl.IsExit(q) {
				return m, tea.Quit
			}
			if q == "" {
				return m, nil
			}
			answer, err := m.asker.Ask(m.ctx, q)
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.answer = &answer
			m.cursor = 0
			m.status = fmt.Sprintf("Answered %q from %d excerpt(s)", q, len(answer.Sources))
			m.input.SetValue("")
			m.viewport.SetContent(m.render())
			m.viewport.GotoTop()
			return m, nil
		case "down":
			if m.answer != nil && len(m.answer.Sources) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Sources)
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.Sources) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Sources)) % len(m.answer.Sources)
				m.viewport.SetContent(m.render())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Document Q&A")
	overview := mutedStyle.Render(m.overview)
	body := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + overview + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if m.answer == nil {
		return "No question yet."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Answer"))
	b.WriteString("\n")
	b.WriteString(m.answer.Text)
	b.WriteString("\n\n")
	if len(m.answer.Sources) == 0 {
		b.WriteString(mutedStyle.Render("No excerpts retrieved."))
		return b.String()
	}
	src := m.answer.Sources[m.cursor]
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Excerpt %d/%d  score=%.3f  %s @%d  (up/down to browse)",
		m.cursor+1, len(m.answer.Sources), src.Score, src.Chunk.Source, src.Chunk.Offset)))
	b.WriteString("\n")
	b.WriteString(highlightBestSentence(src.Chunk.Text, m.answer.Question))
	return b.String()
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
)

// highlightBestSentence emphasises the sentence sharing the most words with the question.
func highlightBestSentence(text, question string) string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return text
	}
	qTokens := tokenSet(question)
	bestIdx, bestScore := -1, 0
	for i, s := range sentences {
		score := 0
		for t := range tokenSet(s) {
			if _, ok := qTokens[t]; ok {
				score++
			}
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sent = highlightStyle.Render(sent)
		}
		sentences[i] = sent
	}
	return strings.Join(sentences, " ")
}

func tokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
