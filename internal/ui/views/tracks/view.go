package tracks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "trackboard/internal/modules/catalog/dto"
	sessiondomain "trackboard/internal/modules/session/domain"
	sessiondto "trackboard/internal/modules/session/dto"
	"trackboard/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	State(ctx context.Context) sessiondto.StateOutput
	Ordered(ctx context.Context, mode string, favorites []string) (catalogdto.OrderOutput, error)
	Toggle(ctx context.Context, track string) (sessiondto.CompletionOutput, error)
	Place(ctx context.Context, track string, placement int) (sessiondto.PlacementOutput, error)
	Clear(ctx context.Context, track string) (string, error)
	Star(ctx context.Context, track string) (sessiondto.FavoriteOutput, error)
	Note(ctx context.Context, track, note string) (string, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	State  sessiondto.StateOutput
	Tracks []catalogdto.TrackOutput
	Err    error
}

// ActionMsg reports the outcome of a keypress on the grid.
type ActionMsg struct {
	Status string
	Err    error
}

// FitTickMsg drives the auto-fit loop. Ticks from a superseded loop carry a
// stale Gen and are dropped.
type FitTickMsg struct{ Gen int }

// placementKeys maps a single key to a finishing position.
var placementKeys = map[string]int{
	"1": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6,
	"7": 7, "8": 8, "9": 9, "0": 10, "-": 11, "=": 12,
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   Port
	state  sessiondto.StateOutput
	tracks []catalogdto.TrackOutput
	cursor int
	offset int

	layout     Layout
	autoFit    bool
	zoom       int
	fitGen     int
	lastChange time.Time
	now        func() time.Time

	note    textinput.Model
	editing bool

	width  int
	height int
}

func New(port Port) Model {
	ti := textinput.New()
	ti.Placeholder = "note…"
	ti.CharLimit = 500
	return Model{
		port:    port,
		autoFit: true,
		layout:  layoutFor(0, cellWidths[0]),
		note:    ti,
		now:     time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.lastChange = m.now()
		if m.autoFit {
			m.layout = Fit(m.gridWidth(), m.gridHeight(), len(m.tracks))
			return m, m.restartFit()
		}
		m.layout = layoutFor(m.gridWidth(), cellWidths[m.zoom])
		m.scrollToCursor()

	case FitTickMsg:
		if msg.Gen != m.fitGen || !m.autoFit {
			return m, nil
		}
		if next := Fit(m.gridWidth(), m.gridHeight(), len(m.tracks)); next != m.layout {
			m.layout = next
			m.lastChange = m.now()
			m.scrollToCursor()
		}
		return m, fitTick(msg.Gen, nextInterval(m.now().Sub(m.lastChange)))

	case LoadedMsg:
		if msg.Err != nil {
			return m, actionCmd("", msg.Err)
		}
		selected := m.SelectedTrack()
		m.state = msg.State
		m.tracks = msg.Tracks
		m.cursor = 0
		for i, t := range m.tracks {
			if t.Name == selected {
				m.cursor = i
			}
		}
		if m.autoFit {
			m.layout = Fit(m.gridWidth(), m.gridHeight(), len(m.tracks))
		}
		m.scrollToCursor()

	case tea.KeyMsg:
		if m.editing {
			return m.updateNote(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	track := m.SelectedTrack()
	switch key := msg.String(); key {
	case "left", "h":
		m.move(-1)
	case "right", "l":
		m.move(1)
	case "up", "k":
		m.move(-m.layout.Columns)
	case "down", "j":
		m.move(m.layout.Columns)
	case " ", "enter":
		if track != "" {
			return m, m.toggleCmd(track)
		}
	case "f":
		if track != "" {
			return m, m.starCmd(track)
		}
	case "x", "backspace":
		if track != "" {
			return m, m.clearCmd(track)
		}
	case "n":
		if track != "" {
			m.editing = true
			m.note.SetValue(m.state.Notes[track])
			m.note.CursorEnd()
			return m, m.note.Focus()
		}
	case "z":
		return m, m.ToggleAutoFit()
	case "[", "]":
		m.autoFit = false
		m.fitGen++
		if key == "[" {
			m.zoom = min(m.zoom+1, len(cellWidths)-1)
		} else {
			m.zoom = max(m.zoom-1, 0)
		}
		m.layout = layoutFor(m.gridWidth(), cellWidths[m.zoom])
		m.scrollToCursor()
	default:
		if p, ok := placementKeys[key]; ok && track != "" {
			if !m.isCompleted(track) {
				return m, actionCmd("complete "+track+" before placing it", nil)
			}
			return m, m.placeCmd(track, p)
		}
	}
	return m, nil
}

func (m Model) updateNote(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.note.Blur()
		return m, nil
	case "enter":
		m.editing = false
		m.note.Blur()
		return m, m.noteCmd(m.SelectedTrack(), m.note.Value())
	}
	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.tracks) == 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.Muted.Render("No tracks"))
	}
	header := m.renderHeader()
	visible := max(1, m.gridHeight()/cellHeight)
	cols := m.layout.Columns

	var rows []string
	for r := m.offset; r < m.offset+visible; r++ {
		start := r * cols
		if start >= len(m.tracks) {
			break
		}
		end := min(start+cols, len(m.tracks))
		cells := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCell(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	footer := theme.Muted.Render("space:done  1-9 0 - =:place  x:clear  f:star  n:note  z:auto-fit  [ ]:zoom")
	if m.editing {
		footer = theme.Hot.Render("note for "+m.SelectedTrack()+": ") + m.note.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, grid, footer)
}

// SelectedTrack is the track under the cursor.
func (m Model) SelectedTrack() string {
	if m.cursor < 0 || m.cursor >= len(m.tracks) {
		return ""
	}
	return m.tracks[m.cursor].Name
}

// Editing reports whether the note input has focus; global keys must yield.
func (m Model) Editing() bool { return m.editing }

func (m Model) Layout() Layout { return m.layout }

func (m Model) AutoFit() bool { return m.autoFit }

// Reload fetches state and the ordered catalog.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		state := m.port.State(ctx)
		order, err := m.port.Ordered(ctx, state.SortMode, state.Favorites)
		return LoadedMsg{State: state, Tracks: order.Tracks, Err: err}
	}
}

// ToggleAutoFit switches between the auto-fit loop and manual zoom. Turning
// it on starts a fresh loop; turning it off leaves the old loop to die on its
// next tick.
func (m *Model) ToggleAutoFit() tea.Cmd {
	m.autoFit = !m.autoFit
	if !m.autoFit {
		m.fitGen++
		return nil
	}
	m.lastChange = m.now()
	return m.restartFit()
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) restartFit() tea.Cmd {
	m.fitGen++
	return fitTick(m.fitGen, fitFast)
}

func fitTick(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return FitTickMsg{Gen: gen} })
}

func (m *Model) move(delta int) {
	if len(m.tracks) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.tracks) {
		return
	}
	m.cursor = next
	m.scrollToCursor()
}

func (m *Model) scrollToCursor() {
	visible := max(1, m.gridHeight()/cellHeight)
	row := m.cursor / max(1, m.layout.Columns)
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+visible {
		m.offset = row - visible + 1
	}
	if m.offset > 0 && m.layout.rows(len(m.tracks)) <= visible {
		m.offset = 0
	}
}

func (m Model) gridWidth() int { return m.width }

// gridHeight leaves room for the header and footer lines.
func (m Model) gridHeight() int { return max(0, m.height-2) }

func (m Model) isCompleted(track string) bool {
	for _, c := range m.state.Completed {
		if c == track {
			return true
		}
	}
	return false
}

func (m Model) isStarred(track string) bool {
	for _, f := range m.state.Favorites {
		if f == track {
			return true
		}
	}
	return false
}

func (m Model) renderHeader() string {
	fit := "auto-fit"
	if !m.autoFit {
		fit = fmt.Sprintf("zoom %d/%d", len(cellWidths)-m.zoom, len(cellWidths))
	}
	return theme.Title.Render("Tracks") + theme.Muted.Render(fmt.Sprintf("  %d completed · sort: %s · %s",
		len(m.state.Completed), sortLabel(m.state.SortMode), fit))
}

func sortLabel(mode string) string {
	if mode == "" {
		return "alphabetical"
	}
	return mode
}

func (m Model) renderCell(i int) string {
	t := m.tracks[i]
	inner := m.layout.CellWidth - 4

	star := "☆ "
	if m.isStarred(t.Name) {
		star = theme.Star.Render("★ ")
	}
	name := star + truncate(t.Name, inner-2)

	status := theme.Muted.Render("·")
	if m.isCompleted(t.Name) {
		status = theme.Hot.Render("✓")
		if p, ok := m.state.Placements[t.Name]; ok {
			status += " " + theme.Placement(p).Render(sessiondomain.Ordinal(p))
		}
	}
	note := ""
	if strings.TrimSpace(m.state.Notes[t.Name]) != "" {
		note = theme.Muted.Render("✎ " + truncate(strings.TrimSpace(m.state.Notes[t.Name]), inner-2))
	}

	style := theme.Pane
	if m.isCompleted(t.Name) {
		style = theme.PaneDone
	}
	if i == m.cursor {
		style = theme.PaneActive
	}
	return style.Width(m.layout.CellWidth - 2).Render(name + "\n" + status + "\n" + note)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}


func actionCmd(status string, err error) tea.Cmd {
	return func() tea.Msg { return ActionMsg{Status: status, Err: err} }
}

func (m Model) toggleCmd(track string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Toggle(context.Background(), track)
		if err != nil {
			return ActionMsg{Err: err}
		}
		if out.Completed {
			return ActionMsg{Status: "completed " + out.Track}
		}
		return ActionMsg{Status: "reopened " + out.Track}
	}
}

func (m Model) placeCmd(track string, p int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Place(context.Background(), track, p)
		if err != nil {
			return ActionMsg{Err: err}
		}
		return ActionMsg{Status: fmt.Sprintf("%s: %s (+%d)", out.Track, sessiondomain.Ordinal(out.Placement), out.Points)}
	}
}

func (m Model) clearCmd(track string) tea.Cmd {
	return func() tea.Msg {
		name, err := m.port.Clear(context.Background(), track)
		if err != nil {
			return ActionMsg{Err: err}
		}
		return ActionMsg{Status: "cleared placement for " + name}
	}
}

func (m Model) starCmd(track string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Star(context.Background(), track)
		if err != nil {
			return ActionMsg{Err: err}
		}
		if out.Favorite {
			return ActionMsg{Status: "starred " + out.Track}
		}
		return ActionMsg{Status: "unstarred " + out.Track}
	}
}

func (m Model) noteCmd(track, note string) tea.Cmd {
	return func() tea.Msg {
		name, err := m.port.Note(context.Background(), track, note)
		if err != nil {
			return ActionMsg{Err: err}
		}
		return ActionMsg{Status: "saved note for " + name}
	}
}
