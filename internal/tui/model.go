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

	"coursetutor/internal/domain"
	"coursetutor/internal/session"
)

// TutorPort is the TUI-facing subset of the pipeline.
type TutorPort interface {
	Ask(ctx context.Context, sess *session.Session, question string, k int) (domain.Answer, error)
}

// Model is the Bubble Tea model for the interactive tutor.
type Model struct {
	tutor    TutorPort
	sess     *session.Session
	topK     int
	input    textinput.Model
	viewport viewport.Model
	answer   *domain.Answer
	summary  string
	status   string
	cursor   int
	ready    bool
	lastQ    string
}

// New creates a new TUI model instance.
func New(tutor TutorPort, summary string, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a question about the course materials"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		tutor:    tutor,
		sess:     session.New(),
		topK:     topK,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Knowledge base loaded. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := questionBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				ans, err := m.tutor.Ask(context.Background(), m.sess, q, m.topK)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = nil
				} else {
					m.status = fmt.Sprintf("Answered %q (%d citations)", q, len(ans.Citations))
					m.answer = &ans
					m.cursor = 0
					m.lastQ = q
					m.input.SetValue("")
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "down":
			if m.answer != nil && len(m.answer.Citations) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Citations)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.Citations) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Citations)) % len(m.answer.Citations)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout with the current answer and citations.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Course Tutor")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := questionBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	answer := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		if n := m.sess.Len(); n > 0 {
			return fmt.Sprintf("%d earlier exchanges in this session. Ask another question.", n)
		}
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(m.answer.Text)
	if len(m.answer.Citations) == 0 {
		return b.String()
	}
	b.WriteString("\n\n")
	b.WriteString(citationHeadStyle.Render("Sources"))
	b.WriteString("\n")
	for i, c := range m.answer.Citations {
		line := fmt.Sprintf("%d. %s #%d  score=%.3f", i+1, c.Chunk.Source, c.Chunk.Index, c.Score)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	sel := m.answer.Citations[m.cursor]
	b.WriteString("\n")
	b.WriteString(highlightBestSentence(sel.Chunk.Text, m.lastQ))
	return b.String()
}

var (
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	citationHeadStyle = lipgloss.NewStyle().Bold(true)
	selectedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	highlightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe        = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasizes the citation sentence that shares the most
// tokens with the question.
func highlightBestSentence(text, question string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(question)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
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

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(questionTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := questionTokens[t]; ok {
			score++
		}
	}
	return score
}
