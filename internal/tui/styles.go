package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan, the bot
	colorAccent  = lipgloss.Color("#FFD700") // Gold, the user
	colorDanger  = lipgloss.Color("#FF5252") // Red, errors
	colorMuted   = lipgloss.Color("#636363") // Gray, hints
	colorWhite   = lipgloss.Color("#EEEEEE") // Off-white, text
	colorSurface = lipgloss.Color("#1E1E2E") // Dark surface, header bg
)

var (
	styleHeader = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleUser = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleBot = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger)

	styleHint = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleText = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleInput = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorMuted)
)
