package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("214")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// RenderPanel draws body in a rounded box under a bold title.
func RenderPanel(title, body string, width int) string {
	if width < 24 {
		width = 24
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(header + "\n" + body)
}
