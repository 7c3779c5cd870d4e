package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorBlue  = lipgloss.Color("39")
	ColorWhite = lipgloss.Color("15")
	ColorGray  = lipgloss.Color("244")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(ColorGray).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).Underline(true).Padding(0, 1)
	subtleStyle    = lipgloss.NewStyle().Foreground(ColorGray)
	sectionStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)
