package cli

import "github.com/charmbracelet/lipgloss"

// NO_COLOR (https://no-color.org/) is respected automatically by lipgloss.
var (
	promptStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"})
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"})
	hintStyle = lipgloss.NewStyle().Faint(true)
	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#ce93d8"})
)
