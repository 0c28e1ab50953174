package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "trackboard/internal/modules/catalog/dto"
	sessiondto "trackboard/internal/modules/session/dto"
	"trackboard/internal/ui/components"
	"trackboard/internal/ui/theme"
	sessionsview "trackboard/internal/ui/views/sessions"
	statsview "trackboard/internal/ui/views/stats"
	tracksview "trackboard/internal/ui/views/tracks"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	State(ctx context.Context) sessiondto.StateOutput
	Toggle(ctx context.Context, track string) (sessiondto.CompletionOutput, error)
	Place(ctx context.Context, track string, placement int) (sessiondto.PlacementOutput, error)
	Clear(ctx context.Context, track string) (string, error)
	Star(ctx context.Context, track string) (sessiondto.FavoriteOutput, error)
	Note(ctx context.Context, track, note string) (string, error)
	Reset(ctx context.Context) error
	Sort(ctx context.Context, mode string) (string, error)

	Create(ctx context.Context, name string, overwrite, selectIt bool) (sessiondto.SessionOutput, error)
	Select(ctx context.Context, name string) error
	Deselect(ctx context.Context) error
	Rename(ctx context.Context, oldName, newName string) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) []sessiondto.SessionOutput
	Get(ctx context.Context, name string) (sessiondto.SessionDetailOutput, error)
	Export(ctx context.Context, name, format string) (sessiondto.ExportOutput, error)
	Import(ctx context.Context, blob []byte) (sessiondto.SessionOutput, error)

	Subscribe(fn func(sessiondto.ChangeOutput)) func()
}

type catalogPort interface {
	Ordered(ctx context.Context, mode string, favorites []string) (catalogdto.OrderOutput, error)
	Codes(ctx context.Context, completionOrder []string) string
	Progress(completed int) int
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTracks tabID = iota
	tabSessions
	tabStats
	tabCount
)

var tabLabels = [tabCount]string{
	"Tracks", "Sessions", "Stats",
}

// sortCycle is the order the s key walks through.
var sortCycle = []string{"alphabetical", "starred", "catalog"}

// ─── async messages ───────────────────────────────────────────────────────────

type changeMsg sessiondto.ChangeOutput

type statusMsg struct {
	status       string
	err          error
	reloadTracks bool
}

// copyCodes is swapped in tests; the system clipboard is not always present.
var copyCodes = clipboard.WriteAll

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Sort    key.Binding
	Codes   key.Binding
	Move    key.Binding
	Done    key.Binding
	Place   key.Binding
	Clear   key.Binding
	Star    key.Binding
	Note    key.Binding
	Fit     key.Binding
	Zoom    key.Binding
	Select  key.Binding
	Delete  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Codes:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy codes")),
		Move:    key.NewBinding(key.WithKeys("h", "j", "k", "l"), key.WithHelp("hjkl/←↓↑→", "move")),
		Done:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done/undo")),
		Place:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1-9 0 - =", "place 1st-12th")),
		Clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear placement")),
		Star:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "star")),
		Note:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "note")),
		Fit:     key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "auto-fit")),
		Zoom:    key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[ ]", "zoom")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit/stop session")),
		Delete:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D D", "delete session")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Done, k.Place, k.Clear},
		{k.Star, k.Note, k.Fit, k.Zoom},
		{k.Select, k.Delete, k.Sort, k.Codes},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// subscription is shared by every copy of the Model so the listener is
// registered exactly once and can be released on quit.
type subscription struct {
	changes chan sessiondto.ChangeOutput
	cancel  func()
}

// Model is the root Bubble Tea model. It owns tab routing, the status bar,
// the global help overlay, and the command palette. Track and session edits
// go through ports; the views reload whenever a change notification arrives.
type Model struct {
	dir string

	session sessionPort
	catalog catalogPort
	sub     *subscription

	tracksView   tracksview.Model
	sessionsView sessionsview.Model
	statsView    statsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	state     sessiondto.StateOutput
	status    string
	celebrate string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(dir string, session sessionPort, catalog catalogPort, stats statsview.Port) Model {
	sub := &subscription{changes: make(chan sessiondto.ChangeOutput, 64)}
	sub.cancel = session.Subscribe(func(c sessiondto.ChangeOutput) {
		// Never block the tracker; a dropped event only delays a redraw
		// until the next one.
		select {
		case sub.changes <- c:
		default:
		}
	})

	return Model{
		dir:          dir,
		session:      session,
		catalog:      catalog,
		sub:          sub,
		tracksView:   tracksview.New(tracksPortBridge{s: session, c: catalog}),
		sessionsView: sessionsview.New(sessionsPortBridge{s: session}),
		statsView:    statsview.New(stats),
		activeTab:    tabTracks,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tracksView.Init(),
		m.sessionsView.Init(),
		m.statsView.Init(),
		m.waitForChange(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Background messages go to their owning view whatever tab is showing.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		return m, m.propagateSize()

	case tracksview.FitTickMsg:
		var cmd tea.Cmd
		m.tracksView, cmd = m.tracksView.Update(msg)
		return m, cmd

	case tracksview.LoadedMsg:
		if msg.Err == nil {
			m.state = msg.State
		}
		var cmd tea.Cmd
		m.tracksView, cmd = m.tracksView.Update(msg)
		return m, cmd

	case sessionsview.LoadedMsg, sessionsview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.sessionsView, cmd = m.sessionsView.Update(msg)
		return m, cmd

	case statsview.LoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case changeMsg:
		if msg.Celebrate {
			m.celebrate = msg.Track
		}
		return m, tea.Batch(
			m.tracksView.Reload(),
			m.sessionsView.Reload(),
			m.statsView.Reload(),
			m.waitForChange(),
		)

	case tracksview.ActionMsg:
		m.setStatus(msg.Status, msg.Err)
		return m, nil

	case sessionsview.ActionMsg:
		m.setStatus(msg.Status, msg.Err)
		return m, nil

	case statusMsg:
		m.setStatus(msg.status, msg.err)
		if msg.reloadTracks {
			return m, m.tracksView.Reload()
		}
		return m, nil
	}

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		m.celebrate = ""
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the sub-view while it is capturing text.
		if m.subViewCapturing() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.sub.cancel()
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "s":
			return m, m.sortCmd(nextSortMode(m.state.SortMode))
		case "c":
			return m, m.copyCodesCmd()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTracks:
		m.tracksView, tabCmd = m.tracksView.Update(msg)
	case tabSessions:
		m.sessionsView, tabCmd = m.sessionsView.Update(msg)
	case tabStats:
		m.statsView, tabCmd = m.statsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTracks:
		return m.tracksView.View()
	case tabSessions:
		return m.sessionsView.View()
	case tabStats:
		return m.statsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "trackboard  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	session := theme.Muted.Render("○ scratch")
	if m.state.Current != "" {
		session = theme.Hot.Render("● " + m.state.Current)
	}
	progress := m.catalog.Progress(len(m.state.Completed))
	status := m.status
	if m.celebrate != "" {
		status = theme.Star.Render("🏆 1st place on " + m.celebrate + "!")
	}
	left := fmt.Sprintf("%s  %d pts  %d%%  %s", session, m.state.Score, progress, status)
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	command, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg := strings.TrimSpace(rest)

	switch command {
	case "session:new":
		return m, m.run(func(ctx context.Context) (string, error) {
			out, err := m.session.Create(ctx, arg, false, false)
			if err != nil {
				return "", err
			}
			return "saved " + out.Name, nil
		})

	case "session:select":
		name := m.targetSession(arg)
		if name == "" {
			m.status = "usage: session:select <name>"
			return m, nil
		}
		return m, m.run(func(ctx context.Context) (string, error) {
			return "editing " + name, m.session.Select(ctx, name)
		})

	case "session:deselect":
		return m, m.run(func(ctx context.Context) (string, error) {
			return "back to scratch", m.session.Deselect(ctx)
		})

	case "session:rename":
		from := m.targetSession("")
		if from == "" || arg == "" {
			m.status = "usage: session:rename <new name> (select a session first)"
			return m, nil
		}
		return m, m.run(func(ctx context.Context) (string, error) {
			return "renamed to " + arg, m.session.Rename(ctx, from, arg)
		})

	case "session:delete":
		name := m.targetSession(arg)
		if name == "" {
			m.status = "usage: session:delete <name>"
			return m, nil
		}
		return m, m.run(func(ctx context.Context) (string, error) {
			return "deleted " + name, m.session.Delete(ctx, name)
		})

	case "session:export":
		name := m.targetSession("")
		if name == "" {
			m.status = "no session to export"
			return m, nil
		}
		return m, m.run(func(ctx context.Context) (string, error) {
			out, err := m.session.Export(ctx, name, arg)
			if err != nil {
				return "", err
			}
			path := filepath.Join(m.dir, out.Filename)
			if err := os.WriteFile(path, out.Content, 0o644); err != nil {
				return "", fmt.Errorf("write export: %w", err)
			}
			return "exported " + path, nil
		})

	case "session:import":
		if arg == "" {
			m.status = "usage: session:import <path>"
			return m, nil
		}
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.dir, path)
		}
		return m, m.run(func(ctx context.Context) (string, error) {
			blob, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("read import: %w", err)
			}
			out, err := m.session.Import(ctx, blob)
			if err != nil {
				return "", err
			}
			return "imported " + out.Name, nil
		})

	case "sort":
		if arg == "" {
			m.status = "usage: sort <alphabetical|starred|catalog>"
			return m, nil
		}
		return m, m.sortCmd(arg)

	case "reset":
		return m, m.run(func(ctx context.Context) (string, error) {
			return "cleared completed tracks", m.session.Reset(ctx)
		})

	case "codes":
		return m, m.copyCodesCmd()

	case "fit":
		cmd := m.tracksView.ToggleAutoFit()
		if m.tracksView.AutoFit() {
			m.status = "auto-fit on"
		} else {
			m.status = "auto-fit off"
		}
		return m, cmd

	default:
		m.status = "unknown command: " + command
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewCapturing reports whether the active tab is taking free text, in
// which case global key bindings must yield.
func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabTracks:
		return m.tracksView.Editing()
	case tabSessions:
		return m.sessionsView.Filtering()
	}
	return false
}

// targetSession picks the explicit argument, then the row under the cursor
// on the Sessions tab, then the session being edited.
func (m Model) targetSession(arg string) string {
	if arg != "" {
		return arg
	}
	if m.activeTab == tabSessions {
		if name := m.sessionsView.SelectedName(); name != "" {
			return name
		}
	}
	return m.state.Current
}

func (m *Model) setStatus(status string, err error) {
	if err != nil {
		m.status = theme.Error.Render(err.Error())
		return
	}
	if status != "" {
		m.status = status
	}
}

func (m *Model) propagateSize() tea.Cmd {
	sz := tea.WindowSizeMsg{Width: m.width, Height: max(0, m.height-4)}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.tracksView, cmd = m.tracksView.Update(sz)
	cmds = append(cmds, cmd)
	m.sessionsView, cmd = m.sessionsView.Update(sz)
	cmds = append(cmds, cmd)
	m.statsView, cmd = m.statsView.Update(sz)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func nextSortMode(current string) string {
	for i, mode := range sortCycle {
		if mode == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[1]
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) waitForChange() tea.Cmd {
	ch := m.sub.changes
	return func() tea.Msg {
		return changeMsg(<-ch)
	}
}

// run executes fn off the update loop and reports its outcome in the status
// bar. Views refresh through the change notification fn triggers.
func (m Model) run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn(context.Background())
		return statusMsg{status: status, err: err}
	}
}

// sortCmd persists the mode and reloads the grid; sort changes are not
// broadcast as session changes.
func (m Model) sortCmd(mode string) tea.Cmd {
	return func() tea.Msg {
		normalized, err := m.session.Sort(context.Background(), mode)
		if err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{status: "sort: " + normalized, reloadTracks: true}
	}
}

func (m Model) copyCodesCmd() tea.Cmd {
	return m.run(func(ctx context.Context) (string, error) {
		codes := m.catalog.Codes(ctx, m.session.State(ctx).Completed)
		if codes == "" {
			return "no codes to copy", nil
		}
		if err := copyCodes(codes); err != nil {
			return "", fmt.Errorf("copy codes: %w", err)
		}
		return "copied " + codes, nil
	})
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view.

type tracksPortBridge struct {
	s sessionPort
	c catalogPort
}

func (b tracksPortBridge) State(ctx context.Context) sessiondto.StateOutput {
	return b.s.State(ctx)
}
func (b tracksPortBridge) Ordered(ctx context.Context, mode string, favorites []string) (catalogdto.OrderOutput, error) {
	return b.c.Ordered(ctx, mode, favorites)
}
func (b tracksPortBridge) Toggle(ctx context.Context, track string) (sessiondto.CompletionOutput, error) {
	return b.s.Toggle(ctx, track)
}
func (b tracksPortBridge) Place(ctx context.Context, track string, placement int) (sessiondto.PlacementOutput, error) {
	return b.s.Place(ctx, track, placement)
}
func (b tracksPortBridge) Clear(ctx context.Context, track string) (string, error) {
	return b.s.Clear(ctx, track)
}
func (b tracksPortBridge) Star(ctx context.Context, track string) (sessiondto.FavoriteOutput, error) {
	return b.s.Star(ctx, track)
}
func (b tracksPortBridge) Note(ctx context.Context, track, note string) (string, error) {
	return b.s.Note(ctx, track, note)
}

type sessionsPortBridge struct{ s sessionPort }

func (b sessionsPortBridge) List(ctx context.Context) []sessiondto.SessionOutput {
	return b.s.List(ctx)
}
func (b sessionsPortBridge) Get(ctx context.Context, name string) (sessiondto.SessionDetailOutput, error) {
	return b.s.Get(ctx, name)
}
func (b sessionsPortBridge) Select(ctx context.Context, name string) error {
	return b.s.Select(ctx, name)
}
func (b sessionsPortBridge) Deselect(ctx context.Context) error {
	return b.s.Deselect(ctx)
}
func (b sessionsPortBridge) Delete(ctx context.Context, name string) error {
	return b.s.Delete(ctx, name)
}
