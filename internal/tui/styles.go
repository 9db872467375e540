package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the browser's lipgloss styles.
type Styles struct {
	Title    lipgloss.Style
	Status   lipgloss.Style
	Match    lipgloss.Style
	Context  lipgloss.Style
	Section  lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default browser styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E8C872")).
			MarginBottom(1),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		Match: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#E8C872")),
		Context: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BBBBBB")),
		Section: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7AA2F7")),
		Selected: lipgloss.NewStyle().
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#E8C872")).
			PaddingLeft(1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1),
	}
}
