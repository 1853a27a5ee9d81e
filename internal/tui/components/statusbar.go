package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bukodent/presu/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: total on the left, the
// latest status message (if any) on the right.
func RenderStatusBar(width int, total, status string, statusErr bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	totalStyle := lipgloss.NewStyle().
		Foreground(t.Green).
		Bold(true)

	msgStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	if statusErr {
		msgStyle = lipgloss.NewStyle().Foreground(t.Red)
	}

	left := " [?]ayuda  [q]salir   TOTAL " + totalStyle.Render(total)
	right := ""
	if status != "" {
		right = msgStyle.Render(status) + " "
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
