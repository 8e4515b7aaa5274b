package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a one-line unicode chart. Values are scaled
// between their minimum and maximum, so negative series work too.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := len(sparkBlocks) - 1
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(b.String())
}

// ColumnChart renders non-negative values as vertical bars, height rows
// tall, with the maximum on the y axis and labels under the bars. Narrow
// widths fall back to a sparkline.
func ColumnChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	axisW := len(ShortAmount(peak)) + 1
	n := len(values)
	barW := (width - axisW - 1 - (n - 1)) / n
	if barW > 8 {
		barW = 8
	}
	if barW < 1 {
		return Sparkline(values, color)
	}

	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := peak * float64(row) / float64(height)
		bottom := peak * float64(row-1) / float64(height)

		label := ""
		if row == height {
			label = ShortAmount(peak)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))
		for i, v := range values {
			if i > 0 {
				b.WriteString(bg.Render(" "))
			}
			switch {
			case v >= top:
				b.WriteString(bar.Render(strings.Repeat("█", barW)))
			case v > bottom:
				frac := (v - bottom) / (top - bottom)
				idx := int(frac * float64(len(sparkBlocks)-1))
				b.WriteString(bar.Render(strings.Repeat(string(sparkBlocks[idx]), barW)))
			default:
				b.WriteString(bg.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	axisLen := n*barW + n - 1
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.Repeat(" ", axisW+1)))
		for i, l := range labels {
			if i > 0 {
				b.WriteString(bg.Render(" "))
			}
			b.WriteString(axis.Render(fitLabel(l, barW)))
		}
	}
	return b.String()
}

func fitLabel(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}

// ShortAmount abbreviates a peso amount for chart axes: 35M, 1.5M, 800k.
func ShortAmount(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return trimZero(v/1e9) + "B"
	case abs >= 1e6:
		return trimZero(v/1e6) + "M"
	case abs >= 1e3:
		return trimZero(v/1e3) + "k"
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func trimZero(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
