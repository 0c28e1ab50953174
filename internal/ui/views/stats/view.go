package stats

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	statsdto "trackboard/internal/modules/stats/dto"
	"trackboard/internal/ui/theme"
)

type Port interface {
	Report(ctx context.Context) (statsdto.ReportOutput, error)
}

type LoadedMsg struct {
	Report statsdto.ReportOutput
	Err    error
}

type Model struct {
	port     Port
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	report   statsdto.ReportOutput
	err      error
	loading  bool
	width    int
	height   int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Foreground(theme.Text)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, viewport: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height
		if r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(msg.Width),
		); err == nil {
			m.renderer = r
		}
		m.viewport.SetContent(m.render())
		return m, nil

	case LoadedMsg:
		m.loading = false
		m.report = msg.Report
		m.err = msg.Err
		m.viewport.SetContent(m.render())
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Crunching sessions…")
	}
	return m.viewport.View()
}

// Reload recomputes the report from the saved sessions.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		report, err := m.port.Report(context.Background())
		return LoadedMsg{Report: report, Err: err}
	}
}

func (m Model) render() string {
	if m.err != nil {
		return theme.Error.Render("stats: " + m.err.Error())
	}
	if m.renderer == nil {
		return m.report.Markdown
	}
	out, err := m.renderer.Render(m.report.Markdown)
	if err != nil {
		return m.report.Markdown
	}
	return out
}
