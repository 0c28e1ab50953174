package tracks

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	catalogdto "trackboard/internal/modules/catalog/dto"
	sessiondto "trackboard/internal/modules/session/dto"
)

type fakePort struct {
	placed  []string
	toggled []string
}

func (f *fakePort) State(context.Context) sessiondto.StateOutput { return sessiondto.StateOutput{} }
func (f *fakePort) Ordered(context.Context, string, []string) (catalogdto.OrderOutput, error) {
	return catalogdto.OrderOutput{}, nil
}
func (f *fakePort) Toggle(_ context.Context, track string) (sessiondto.CompletionOutput, error) {
	f.toggled = append(f.toggled, track)
	return sessiondto.CompletionOutput{Track: track, Completed: true}, nil
}
func (f *fakePort) Place(_ context.Context, track string, p int) (sessiondto.PlacementOutput, error) {
	f.placed = append(f.placed, track)
	return sessiondto.PlacementOutput{Track: track, Placement: p, Points: 15}, nil
}
func (f *fakePort) Clear(_ context.Context, track string) (string, error) { return track, nil }
func (f *fakePort) Star(_ context.Context, track string) (sessiondto.FavoriteOutput, error) {
	return sessiondto.FavoriteOutput{Track: track, Favorite: true}, nil
}
func (f *fakePort) Note(_ context.Context, track, _ string) (string, error) { return track, nil }

func loaded(t *testing.T, port Port) Model {
	t.Helper()
	m := New(port)
	clock := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	var tracks []catalogdto.TrackOutput
	for _, n := range []string{"Boo Cinema", "Crown City", "DK Pass", "Peach Beach"} {
		tracks = append(tracks, catalogdto.TrackOutput{Name: n})
	}
	m, _ = m.Update(LoadedMsg{
		State:  sessiondto.StateOutput{Completed: []string{"Crown City"}, Placements: map[string]int{"Crown City": 1}},
		Tracks: tracks,
	})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStaleFitTicksAreDropped(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakePort{})
	gen := m.fitGen

	if _, cmd := m.Update(FitTickMsg{Gen: gen - 1}); cmd != nil {
		t.Fatalf("stale tick must not reschedule")
	}
	if _, cmd := m.Update(FitTickMsg{Gen: gen}); cmd == nil {
		t.Fatalf("current tick must reschedule")
	}

	cmd := m.ToggleAutoFit()
	if cmd != nil || m.AutoFit() {
		t.Fatalf("turning auto-fit off must not schedule")
	}
	if _, cmd := m.Update(FitTickMsg{Gen: gen}); cmd != nil {
		t.Fatalf("loop must stop once auto-fit is off")
	}
	if cmd := m.ToggleAutoFit(); cmd == nil || m.fitGen == gen {
		t.Fatalf("turning auto-fit on must start a new generation")
	}
}

func TestResizeRefitsImmediately(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakePort{})
	want := Fit(80, 22, 4)
	if m.Layout() != want {
		t.Fatalf("expected %+v, got %+v", want, m.Layout())
	}
}

func TestManualZoomDisablesAutoFit(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakePort{})
	m, _ = m.Update(key("["))
	if m.AutoFit() || m.Layout().CellWidth != cellWidths[1] {
		t.Fatalf("unexpected zoom state %+v auto=%v", m.Layout(), m.AutoFit())
	}
}

func TestPlacementRequiresCompletion(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := loaded(t, port)

	_, cmd := m.Update(key("1"))
	msg, ok := cmd().(ActionMsg)
	if !ok || !strings.Contains(msg.Status, "complete Boo Cinema") || len(port.placed) != 0 {
		t.Fatalf("expected refusal, got %+v", msg)
	}

	m, _ = m.Update(key("right"))
	if m.SelectedTrack() != "Crown City" {
		t.Fatalf("cursor did not move, at %q", m.SelectedTrack())
	}
	_, cmd = m.Update(key("0"))
	msg = cmd().(ActionMsg)
	if len(port.placed) != 1 || msg.Status != "Crown City: 10th (+15)" {
		t.Fatalf("unexpected placement result %+v %v", msg, port.placed)
	}
}

func TestNoteEditingCapturesKeys(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := loaded(t, port)
	m, _ = m.Update(key("n"))
	if !m.Editing() {
		t.Fatalf("expected note editor open")
	}
	m, _ = m.Update(key(" "))
	if len(port.toggled) != 0 {
		t.Fatalf("space inside the editor must not toggle")
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Editing() || cmd == nil {
		t.Fatalf("enter should close the editor and save")
	}
	if msg := cmd().(ActionMsg); msg.Status != "saved note for Boo Cinema" {
		t.Fatalf("unexpected status %q", msg.Status)
	}
}

func TestViewRendersPlacementAndStar(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakePort{})
	out := m.View()
	for _, want := range []string{"Tracks", "Crown City", "1st", "☆"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}
