package render

import "github.com/charmbracelet/lipgloss"

// theme holds the color values for terminal output.
type theme struct {
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Dim     lipgloss.Color
}

var defaultTheme = theme{
	Accent:  lipgloss.Color("#38bdf8"),
	Success: lipgloss.Color("#22c55e"),
	Warning: lipgloss.Color("#eab308"),
	Error:   lipgloss.Color("#ef4444"),
	Dim:     lipgloss.Color("#888888"),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(defaultTheme.Accent)
	successStyle = lipgloss.NewStyle().Foreground(defaultTheme.Success)
	warningStyle = lipgloss.NewStyle().Foreground(defaultTheme.Warning)
	errorStyle   = lipgloss.NewStyle().Foreground(defaultTheme.Error)
	dimStyle     = lipgloss.NewStyle().Foreground(defaultTheme.Dim)
)
