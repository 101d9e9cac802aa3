package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recommender/internal/domain"
)

// RecommenderPort is the TUI-facing subset of the recommendation service.
type RecommenderPort interface {
	Recommend(ctx context.Context, id string, k int) ([]domain.Recommendation, error)
}

// Model is the Bubble Tea model for the recommendation browser.
type Model struct {
	service  RecommenderPort
	input    textinput.Model
	viewport viewport.Model
	results  []domain.Recommendation
	header   string
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model instance. The header line names the wired
// embedder and engine so it is obvious what a session is talking to.
func New(service RecommenderPort, header string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "learner-id [k], then Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, header: header, status: "Ready. Enter a learner id."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 1
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			learnerID, k := parseQuery(m.input.Value())
			if learnerID != "" {
				res, err := m.service.Recommend(context.Background(), learnerID, k)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.results = nil
				} else if len(res) == 0 {
					m.status = fmt.Sprintf("No recommendations for %q", learnerID)
					m.results = nil
				} else {
					m.status = fmt.Sprintf("Top %d for %q", len(res), learnerID)
					m.results = res
					m.cursor = 0
				}
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current result list.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Exercise Recommender") + "  " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.header)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No recommendations yet."
	}
	var b strings.Builder
	for i, r := range m.results {
		line := fmt.Sprintf("%2d. %-14s score=%.3f  lang=%s  difficulty=%d  tags=%s",
			i+1, r.ExerciseID, r.Score, r.Language, r.Difficulty, strings.Join(r.SkillTags, ","))
		if i == m.cursor {
			line = highlightStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(m.results)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// parseQuery splits "learner-id [k]"; k defaults to 5.
func parseQuery(raw string) (string, int) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return "", 0
	}
	k := 5
	if len(fields) > 1 {
		if parsed, err := strconv.Atoi(fields[1]); err == nil && parsed > 0 {
			k = parsed
		}
	}
	return fields[0], k
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
