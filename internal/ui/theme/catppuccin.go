package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Red      = lipgloss.Color("#f38ba8")
	Flamingo = lipgloss.Color("#f2cdcd")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(0, 1)

	PaneActive = Pane.BorderForeground(Lavender)
	PaneDone   = Pane.BorderForeground(Green)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Star  = lipgloss.NewStyle().Foreground(Yellow)
	Error = lipgloss.NewStyle().Foreground(Red)
)

// Placement colours a finishing position: gold, silver and bronze for the
// podium, green for the rest of the top half, red below it.
func Placement(p int) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch {
	case p == 1:
		return s.Foreground(Yellow)
	case p == 2:
		return s.Foreground(Flamingo)
	case p == 3:
		return s.Foreground(Peach)
	case p <= 6:
		return s.Foreground(Green)
	default:
		return s.Foreground(Red)
	}
}
