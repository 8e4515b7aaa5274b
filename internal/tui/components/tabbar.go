package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

// Tab is one entry of the tab bar.
type Tab struct {
	Name string
	Key  string
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Projects", Key: "1"},
	{Name: "Alerts", Key: "2"},
	{Name: "Reports", Key: "3"},
	{Name: "History", Key: "4"},
	{Name: "Settings", Key: "5"},
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().
			Foreground(t.TextPrimary).
			Background(t.Accent).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}
	name := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1).
		Render(tab.Name)
	key := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("[") +
		lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render(tab.Key) +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("]")
	return name + key
}

// TabVisualWidth returns the rendered width of a tab. Mouse hit testing
// relies on it matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders a single-row tab bar padded to width.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, renderTab(tab, i == activeIdx))
	}
	row := strings.Join(parts, sep)

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab bound to key, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
