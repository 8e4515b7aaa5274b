package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/archifinance/internal/model"
)

// Palette for plain CLI output (matches the archi-blue TUI theme).
var (
	ColorBorder    = lipgloss.Color("#334155")
	ColorTextDim   = lipgloss.Color("#64748B")
	ColorTextMuted = lipgloss.Color("#94A3B8")
	ColorText      = lipgloss.Color("#F1F5F9")
	ColorAccent    = lipgloss.Color("#3B82F6")
	ColorGreen     = lipgloss.Color("#22C55E")
	ColorOrange    = lipgloss.Color("#F97316")
	ColorRed       = lipgloss.Color("#EF4444")
	ColorYellow    = lipgloss.Color("#EAB308")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dangerStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title    string
	Headers  []string
	Rows     [][]string
	Widths   []int // optional column widths, auto-calculated if nil
	TextCols int   // leading left-aligned columns; defaults to 1
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 60
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
// A row holding the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	textCols := t.TextCols
	if textCols <= 0 {
		textCols = 1
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], i < textCols) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i < textCols) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")

	return b.String()
}

// pad aligns s within w visible columns. Cells may already carry ANSI styling.
func pad(s string, w int, left bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if left {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}

// RenderUsageBar renders a budget-consumption bar colored by how close it is to the limit.
// pct is a percentage and may exceed 100; the bar is capped but the label is not.
func RenderUsageBar(pct float64, width int) string {
	frac := pct / 100
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	filled := int(frac * float64(width))

	style := goodStyle
	switch {
	case pct > 95:
		style = dangerStyle
	case pct > 80:
		style = warnStyle
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", style.Render(bar), FormatPct(pct))
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders one labeled bar of a horizontal bar chart.
func RenderHorizontalBar(label string, value, maxValue float64, labelW, maxWidth int) string {
	barLen := 0
	if maxValue > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	barLen = max(barLen, 0)
	return fmt.Sprintf("  %s %s", mutedStyle.Render(pad(label, labelW, true)), headerStyle.Render(strings.Repeat("█", barLen)))
}

// StatusLabel renders a project status with its color.
func StatusLabel(s model.Status) string {
	if s == model.StatusAtRisk {
		return dangerStyle.Render("at-risk")
	}
	return goodStyle.Render("profitable")
}

// SeverityLabel renders an alert severity with its color.
func SeverityLabel(s model.Severity) string {
	if s == model.SeverityDanger {
		return dangerStyle.Render("danger")
	}
	return warnStyle.Render("warning")
}

// HealthLabel renders a health level with its color.
func HealthLabel(h model.HealthLevel) string {
	switch h {
	case model.HealthExcellent, model.HealthGood:
		return goodStyle.Render(string(h))
	case model.HealthWarning:
		return warnStyle.Render(string(h))
	default:
		return dangerStyle.Render(string(h))
	}
}

// MoneyLabel colors an amount green when non-negative and red otherwise.
func MoneyLabel(amount int64) string {
	if amount < 0 {
		return dangerStyle.Render(FormatCOP(amount))
	}
	return goodStyle.Render(FormatCOP(amount))
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}
