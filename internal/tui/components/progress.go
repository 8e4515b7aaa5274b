package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

// ColorForUsage grades a budget usage percentage with the health bands.
func ColorForUsage(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 95:
		return t.Red
	case pct > 85:
		return t.Orange
	case pct > 70:
		return t.Yellow
	default:
		return t.Green
	}
}

// BudgetBar renders a labeled budget usage bar. pct is a percentage and may
// exceed 100; the bar is clamped but the label is not.
func BudgetBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForUsage(pct)

	frac := pct / 100
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	out := bar.ViewAs(frac) + space + pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
	if label == "" {
		return out
	}
	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + space + out
}
