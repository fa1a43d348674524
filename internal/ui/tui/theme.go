package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = lipgloss.Color("63")
	colorPass   = lipgloss.Color("42")
	colorFail   = lipgloss.Color("196")
	colorWarn   = lipgloss.Color("214")
)

type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style
	Pass     lipgloss.Style
	Fail     lipgloss.Style
	Toast    lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent),
		Pass:  lipgloss.NewStyle().Bold(true).Foreground(colorPass),
		Fail:  lipgloss.NewStyle().Bold(true).Foreground(colorFail),
		Toast: lipgloss.NewStyle().Foreground(colorWarn),
	}
}

// Outcome renders label in the pass or fail style.
func (t Theme) Outcome(label string, failed bool) string {
	if failed {
		return t.Fail.Render("✗ " + label)
	}
	return t.Pass.Render("✓ " + label)
}
