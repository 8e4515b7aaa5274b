package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

// Status is what the bottom bar reports.
type Status struct {
	User    string
	SavedAt time.Time // last successful write, zero if none this session
	Message string
	IsError bool
	Busy    string // spinner frame while an operation runs
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := dimStyle.Render(" ") +
		keyStyle.Render("?") + dimStyle.Render(" help  ") +
		keyStyle.Render("q") + dimStyle.Render(" quit")

	var mid string
	switch {
	case st.Busy != "":
		mid = mutedStyle.Render("  " + st.Busy + " saving...")
	case st.Message != "":
		msgStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
		if st.IsError {
			msgStyle = msgStyle.Foreground(t.Red)
		}
		mid = msgStyle.Render("  " + st.Message)
	}

	var rightParts []string
	if st.User != "" {
		rightParts = append(rightParts, st.User)
	}
	if !st.SavedAt.IsZero() {
		rightParts = append(rightParts, "saved "+humanize.Time(st.SavedAt))
	}
	right := mutedStyle.Render(strings.Join(rightParts, " · ") + " ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + mid + lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap)) + right

	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(bar)
}
