// Package tui provides a terminal chat over the question-answering service,
// for working without a browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"santerag/internal/domain"
)

// QAPort is the TUI-facing subset of the QA service.
type QAPort interface {
	Ask(question string) (domain.Answer, error)
	Documents() []domain.Document
}

// Model is the Bubble Tea model for the terminal chat.
type Model struct {
	service QAPort
	input   textinput.Model
	view    viewport.Model
	status  string
	ready   bool
}

// New creates a new TUI model instance.
func New(service QAPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Votre question (en français)..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{service: service, input: ti, view: vp, status: "Index chargé. Posez une question."}
	m.view.SetContent(m.renderBrochures())
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// header + input box + status take a fixed number of rows
		reserved := 7
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.view.Width = max(20, msg.Width-4)
		m.view.Height = vh
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				break
			}
			answer, err := m.service.Ask(q)
			if err != nil {
				m.status = "Erreur : " + err.Error()
				return m, nil
			}
			m.status = fmt.Sprintf("Réponse pour %q", q)
			m.view.SetContent(renderAnswer(answer))
			m.view.GotoTop()
			m.input.SetValue("")
			return m, nil
		case "up":
			m.view.LineUp(1)
			return m, nil
		case "down":
			m.view.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current answer.
func (m Model) View() string {
	if !m.ready {
		return "Chargement..."
	}
	header := headerStyle.Render("Chatbot santé (brochures patients)")
	body := answerBoxStyle.Render(m.view.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sectionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderAnswer(answer domain.Answer) string {
	if answer.NoInformation {
		return "Aucune information pertinente trouvée dans les brochures chargées."
	}
	var b strings.Builder
	for _, label := range domain.SectionOrder {
		text, ok := answer.Sections[label]
		if !ok {
			continue
		}
		b.WriteString(sectionStyle.Render(domain.SectionTitle(label)))
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	if len(answer.Sections) == 0 {
		b.WriteString("Aucune section n'a pu être extraite ; voir les sources ci-dessous.\n\n")
	}
	if len(answer.Sources) > 0 {
		b.WriteString(sectionStyle.Render("Sources"))
		b.WriteString("\n")
		for i, src := range answer.Sources {
			b.WriteString(sourceStyle.Render(fmt.Sprintf("%d. %s (score %.3f, chunk %d)", i+1, src.Filename, src.Score, src.ChunkIndex)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderBrochures() string {
	docs := m.service.Documents()
	if len(docs) == 0 {
		return "Aucune brochure indexée."
	}
	var b strings.Builder
	b.WriteString("Brochures chargées :\n")
	for _, d := range docs {
		b.WriteString("  • " + d.Title + "\n")
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
