package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	catalogdto "trackboard/internal/modules/catalog/dto"
	sessiondto "trackboard/internal/modules/session/dto"
	statsdto "trackboard/internal/modules/stats/dto"
	"trackboard/internal/ui/components"
	tracksview "trackboard/internal/ui/views/tracks"
)

type fakeSession struct {
	state    sessiondto.StateOutput
	listener func(sessiondto.ChangeOutput)
	sorted   []string
	exported string
	imported []byte
	renamed  [2]string
}

func (f *fakeSession) State(context.Context) sessiondto.StateOutput { return f.state }
func (f *fakeSession) Toggle(_ context.Context, track string) (sessiondto.CompletionOutput, error) {
	return sessiondto.CompletionOutput{Track: track, Completed: true}, nil
}
func (f *fakeSession) Place(_ context.Context, track string, p int) (sessiondto.PlacementOutput, error) {
	return sessiondto.PlacementOutput{Track: track, Placement: p}, nil
}
func (f *fakeSession) Clear(_ context.Context, track string) (string, error) { return track, nil }
func (f *fakeSession) Star(_ context.Context, track string) (sessiondto.FavoriteOutput, error) {
	return sessiondto.FavoriteOutput{Track: track}, nil
}
func (f *fakeSession) Note(_ context.Context, track, _ string) (string, error) { return track, nil }
func (f *fakeSession) Reset(context.Context) error                             { return nil }
func (f *fakeSession) Sort(_ context.Context, mode string) (string, error) {
	if mode == "bogus" {
		return "", errors.New("invalid input: unknown sort mode \"bogus\"")
	}
	f.sorted = append(f.sorted, mode)
	return mode, nil
}
func (f *fakeSession) Create(_ context.Context, name string, _, _ bool) (sessiondto.SessionOutput, error) {
	return sessiondto.SessionOutput{Name: name}, nil
}
func (f *fakeSession) Select(context.Context, string) error { return nil }
func (f *fakeSession) Deselect(context.Context) error       { return nil }
func (f *fakeSession) Rename(_ context.Context, oldName, newName string) error {
	f.renamed = [2]string{oldName, newName}
	return nil
}
func (f *fakeSession) Delete(context.Context, string) error { return nil }
func (f *fakeSession) List(context.Context) []sessiondto.SessionOutput {
	return nil
}
func (f *fakeSession) Get(_ context.Context, name string) (sessiondto.SessionDetailOutput, error) {
	return sessiondto.SessionDetailOutput{SessionOutput: sessiondto.SessionOutput{Name: name}}, nil
}
func (f *fakeSession) Export(_ context.Context, name, _ string) (sessiondto.ExportOutput, error) {
	f.exported = name
	return sessiondto.ExportOutput{Filename: "Cup_A_session.json", Content: []byte(`{"name":"Cup A"}`)}, nil
}
func (f *fakeSession) Import(_ context.Context, blob []byte) (sessiondto.SessionOutput, error) {
	f.imported = blob
	return sessiondto.SessionOutput{Name: "Cup A (1)", Imported: true}, nil
}
func (f *fakeSession) Subscribe(fn func(sessiondto.ChangeOutput)) func() {
	f.listener = fn
	return func() { f.listener = nil }
}

type fakeCatalog struct{}

func (fakeCatalog) Ordered(context.Context, string, []string) (catalogdto.OrderOutput, error) {
	return catalogdto.OrderOutput{Tracks: []catalogdto.TrackOutput{{Name: "Crown City"}, {Name: "DK Pass"}}}, nil
}
func (fakeCatalog) Codes(_ context.Context, order []string) string { return strings.Join(order, " ") }
func (fakeCatalog) Progress(completed int) int                     { return completed * 100 / 12 }

type fakeStats struct{}

func (fakeStats) Report(context.Context) (statsdto.ReportOutput, error) {
	return statsdto.ReportOutput{Markdown: "# Stats\n"}, nil
}

func newTestModel(t *testing.T) (Model, *fakeSession) {
	t.Helper()
	session := &fakeSession{}
	m := NewModel(t.TempDir(), session, fakeCatalog{}, fakeStats{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), session
}

// feed runs cmd and feeds its message back, the way the runtime would.
func feed(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func submit(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(components.PaletteSubmitMsg{Input: input})
	return next.(Model), cmd
}

func TestChangesArriveThroughSubscription(t *testing.T) {
	t.Parallel()
	m, session := newTestModel(t)
	if session.listener == nil {
		t.Fatalf("model must subscribe on construction")
	}

	session.listener(sessiondto.ChangeOutput{Kind: "placement", Track: "Crown City", Placement: 1, Celebrate: true})
	msg := m.waitForChange()()
	change, ok := msg.(changeMsg)
	if !ok || change.Track != "Crown City" {
		t.Fatalf("unexpected message %#v", msg)
	}

	next, cmd := m.Update(change)
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("a change must trigger reloads")
	}
	if !strings.Contains(m.renderStatusBar(), "1st place on Crown City") {
		t.Fatalf("celebration missing from status bar: %q", m.renderStatusBar())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if strings.Contains(next.(Model).renderStatusBar(), "1st place") {
		t.Fatalf("celebration should clear on the next key")
	}
}

func TestListenerNeverBlocks(t *testing.T) {
	t.Parallel()
	_, session := newTestModel(t)
	for range 200 {
		session.listener(sessiondto.ChangeOutput{Kind: "note"})
	}
}

func TestSortPaletteCommand(t *testing.T) {
	t.Parallel()
	m, session := newTestModel(t)

	m, cmd := submit(t, m, "sort")
	if cmd != nil || !strings.Contains(m.status, "usage") {
		t.Fatalf("expected usage, got %q", m.status)
	}

	m, cmd = submit(t, m, "sort bogus")
	m = feed(t, m, cmd)
	if !strings.Contains(m.status, "unknown sort mode") {
		t.Fatalf("expected error in status, got %q", m.status)
	}

	m, cmd = submit(t, m, "sort starred")
	next, reload := m.Update(cmd())
	m = next.(Model)
	if len(session.sorted) != 1 || session.sorted[0] != "starred" || m.status != "sort: starred" {
		t.Fatalf("unexpected sort result %v %q", session.sorted, m.status)
	}
	if _, ok := reload().(tracksview.LoadedMsg); !ok {
		t.Fatalf("sorting must reload the grid")
	}
}

func TestSortKeyCycles(t *testing.T) {
	t.Parallel()
	for current, want := range map[string]string{"": "starred", "alphabetical": "starred", "starred": "catalog", "catalog": "alphabetical"} {
		if got := nextSortMode(current); got != want {
			t.Fatalf("nextSortMode(%q) = %q, want %q", current, got, want)
		}
	}
}

func TestExportAndImportUseDataDir(t *testing.T) {
	t.Parallel()
	m, session := newTestModel(t)
	m.state.Current = "Cup A"

	m, cmd := submit(t, m, "session:export json")
	m = feed(t, m, cmd)
	if session.exported != "Cup A" {
		t.Fatalf("export targeted %q", session.exported)
	}
	path := filepath.Join(m.dir, "Cup_A_session.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export not written: %v", err)
	}

	m, cmd = submit(t, m, "session:import Cup_A_session.json")
	m = feed(t, m, cmd)
	if string(session.imported) != `{"name":"Cup A"}` || m.status != "imported Cup A (1)" {
		t.Fatalf("unexpected import %q %q", session.imported, m.status)
	}

	m, cmd = submit(t, m, "session:import missing.json")
	m = feed(t, m, cmd)
	if !strings.Contains(m.status, "read import") {
		t.Fatalf("expected read error, got %q", m.status)
	}
}

func TestRenameTargetsCurrentSession(t *testing.T) {
	t.Parallel()
	m, session := newTestModel(t)

	m, _ = submit(t, m, "session:rename Friday Cup")
	if !strings.Contains(m.status, "usage") {
		t.Fatalf("rename without a session should print usage, got %q", m.status)
	}

	m.state.Current = "Cup A"
	m, cmd := submit(t, m, "session:rename Friday Cup")
	m = feed(t, m, cmd)
	if session.renamed != [2]string{"Cup A", "Friday Cup"} {
		t.Fatalf("unexpected rename %v", session.renamed)
	}
}

func TestCodesCopiedToClipboard(t *testing.T) {
	var copied string
	old := copyCodes
	copyCodes = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyCodes = old })

	m, session := newTestModel(t)
	session.state.Completed = []string{"DK Pass", "Crown City"}
	m = feed(t, m, m.copyCodesCmd())
	if copied != "DK Pass Crown City" || !strings.HasPrefix(m.status, "copied ") {
		t.Fatalf("unexpected copy %q status %q", copied, m.status)
	}

	copyCodes = func(string) error { return errors.New("no clipboard") }
	m = feed(t, m, m.copyCodesCmd())
	if !strings.Contains(m.status, "no clipboard") {
		t.Fatalf("expected clipboard error, got %q", m.status)
	}
}

func TestGlobalKeysYieldWhileEditingNote(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	next, _ := m.Update(tracksview.LoadedMsg{Tracks: []catalogdto.TrackOutput{{Name: "Crown City"}}})
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = next.(Model)
	if !m.tracksView.Editing() {
		t.Fatalf("n should open the note editor")
	}
	for _, r := range "qs:" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	if !m.tracksView.Editing() || m.palette.Visible() {
		t.Fatalf("global keys must not fire while editing")
	}
	if !strings.Contains(m.View(), "qs:") {
		t.Fatalf("typed text missing from the note editor")
	}
}

func TestTabCycles(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	for _, want := range []tabID{tabSessions, tabStats, tabTracks} {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(Model)
		if m.activeTab != want {
			t.Fatalf("expected tab %d, got %d", want, m.activeTab)
		}
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if next.(Model).activeTab != tabStats {
		t.Fatalf("shift+tab should go back")
	}
}

func TestUnknownPaletteCommand(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m, _ = submit(t, m, "warp 9")
	if m.status != "unknown command: warp" {
		t.Fatalf("unexpected status %q", m.status)
	}
}
