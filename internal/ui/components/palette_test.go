package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPaletteSubmitTrimsInput(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.OpenWith("  sort starred ")
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() {
		t.Fatalf("palette should close on enter")
	}
	msg, ok := cmd().(PaletteSubmitMsg)
	if !ok || msg.Input != "sort starred" {
		t.Fatalf("unexpected submit %#v", msg)
	}
}

func TestPaletteCompletesCommandName(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.OpenWith("session:ex")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := p.input.Value(); got != "session:export " {
		t.Fatalf("unexpected completion %q", got)
	}
	if !strings.Contains(p.View(), "session:export [json|markdown]") {
		t.Fatalf("hint missing from view")
	}
}

func TestPaletteEscCancels(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.Visible() {
		t.Fatalf("palette should close on esc")
	}
	if _, ok := cmd().(PaletteCancelMsg); !ok {
		t.Fatalf("expected cancel message")
	}
}
