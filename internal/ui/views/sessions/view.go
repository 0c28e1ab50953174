package sessions

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	sessiondto "trackboard/internal/modules/session/dto"
	"trackboard/internal/platform/markdown"
	"trackboard/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	List(ctx context.Context) []sessiondto.SessionOutput
	Get(ctx context.Context, name string) (sessiondto.SessionDetailOutput, error)
	Select(ctx context.Context, name string) error
	Deselect(ctx context.Context) error
	Delete(ctx context.Context, name string) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Sessions []sessiondto.SessionOutput
}

type DetailLoadedMsg struct {
	Detail sessiondto.SessionDetailOutput
	Err    error
}

// ActionMsg reports the outcome of select, deselect or delete.
type ActionMsg struct {
	Status string
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sessionItem struct {
	session sessiondto.SessionOutput
}

func (i sessionItem) Title() string {
	if i.session.Active {
		return "● " + i.session.Name
	}
	return i.session.Name
}

func (i sessionItem) Description() string {
	desc := fmt.Sprintf("%d pts  %d done  %s", i.session.Score, i.session.Completed, i.session.CreatedAt.Local().Format("Jan 2 15:04"))
	if i.session.Imported {
		desc += "  imported"
	}
	return desc
}

func (i sessionItem) FilterValue() string { return i.session.Name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	list     list.Model
	preview  viewport.Model
	renderer *glamour.TermRenderer
	detail   sessiondto.SessionDetailOutput
	pending  string
	width    int
	height   int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("session", "sessions")

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Model{port: port, list: l, preview: vp, renderer: r}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.preview.SetContent(m.renderDetail())
		return m, nil

	case LoadedMsg:
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = sessionItem{session: s}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if name := m.SelectedName(); name != "" {
			cmds = append(cmds, m.loadDetailCmd(name))
		} else {
			m.detail = sessiondto.SessionDetailOutput{}
			m.preview.SetContent(m.renderDetail())
		}
		return m, tea.Batch(cmds...)

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
			m.preview.GotoTop()
		}
		return m, nil

	case tea.KeyMsg:
		if !m.Filtering() {
			if cmd, ok := m.handleKey(msg); ok {
				return m, cmd
			}
		}
		if msg.String() != "D" {
			m.pending = ""
		}
	}

	prev := m.list.Index()
	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prev {
		m.pending = ""
		if name := m.SelectedName(); name != "" {
			cmds = append(cmds, m.loadDetailCmd(name))
		}
	}

	var vCmd tea.Cmd
	m.preview, vCmd = m.preview.Update(msg)
	cmds = append(cmds, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(max(0, detailW-2)).
		Height(max(0, m.height-2)).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedName is the session under the cursor.
func (m Model) SelectedName() string {
	if item, ok := m.list.SelectedItem().(sessionItem); ok {
		return item.session.Name
	}
	return ""
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Reload refreshes the session list.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Sessions: m.port.List(context.Background())}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

// handleKey consumes the keys the list does not own. Delete needs a second D
// on the same row.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	name := m.SelectedName()
	if name == "" {
		return nil, false
	}
	switch msg.String() {
	case "enter":
		if item, ok := m.list.SelectedItem().(sessionItem); ok && item.session.Active {
			return m.actionCmd("stopped editing "+name, func(ctx context.Context) error { return m.port.Deselect(ctx) }), true
		}
		return m.actionCmd("editing "+name, func(ctx context.Context) error { return m.port.Select(ctx, name) }), true
	case "D":
		if m.pending != name {
			m.pending = name
			return func() tea.Msg { return ActionMsg{Status: "press D again to delete " + name} }, true
		}
		m.pending = ""
		return m.actionCmd("deleted "+name, func(ctx context.Context) error { return m.port.Delete(ctx, name) }), true
	}
	return nil, false
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = max(0, detailW-4)
	m.preview.Height = max(0, m.height-4)
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.preview.Width),
	); err == nil {
		m.renderer = r
	}
}

func (m Model) renderDetail() string {
	if m.detail.Name == "" {
		return theme.Muted.Render("No saved sessions yet. Use :session:new to save one.")
	}
	body := markdown.Body(m.detail.Markdown)
	if m.renderer == nil {
		return body
	}
	out, err := m.renderer.Render(body)
	if err != nil {
		return body
	}
	return out
}

func (m Model) loadDetailCmd(name string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.Get(context.Background(), name)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}

func (m Model) actionCmd(status string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return ActionMsg{Err: err}
		}
		return ActionMsg{Status: status}
	}
}
