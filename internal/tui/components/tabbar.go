package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bukodent/presu/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Presupuesto", Key: 'p', KeyPos: 0},
	{Name: "Catálogo", Key: 'c', KeyPos: 0},
	{Name: "Historial", Key: 'h', KeyPos: 0},
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	var parts []string
	for i, tab := range Tabs {
		var rendered string
		if i == activeIdx {
			rendered = activeStyle.Render(tab.Name)
		} else {
			// Render with highlighted shortcut key
			runes := []rune(tab.Name)
			if tab.KeyPos >= 0 && tab.KeyPos < len(runes) {
				before := string(runes[:tab.KeyPos])
				key := string(runes[tab.KeyPos])
				after := string(runes[tab.KeyPos+1:])
				rendered = inactiveStyle.Render(before) +
					dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
					inactiveStyle.Render(after)
			} else {
				rendered = inactiveStyle.Render(tab.Name) +
					dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
			}
		}
		parts = append(parts, rendered)
	}

	bar := " " + strings.Join(parts, "  ")
	gap := width - lipgloss.Width(bar)
	if gap > 0 {
		bar += strings.Repeat(" ", gap)
	}
	return bar
}

// TabVisualWidth returns the rendered width of a tab, for mouse hitboxes.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name)
	if !active {
		w += 2 // bracket pair around the shortcut key
		if tab.KeyPos < 0 {
			w++ // key appended after the name
		}
	}
	return w
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
