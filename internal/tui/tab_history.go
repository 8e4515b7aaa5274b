package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui/components"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

type historyState struct {
	cursor int
	filter pipeline.HistoryFilter
}

func (a App) updateHistoryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		return a.moveCursor(1), nil
	case "k", "up":
		return a.moveCursor(-1), nil
	case "f":
		a.histState.filter = a.histState.filter.Next()
		a.histState.cursor = 0
		a.recompute()
	}
	return a, nil
}

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selected := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var filters []string
	for _, f := range pipeline.HistoryFilters {
		if f == a.histState.filter {
			filters = append(filters, head.Render("["+string(f)+"]"))
		} else {
			filters = append(filters, dim.Render(string(f)))
		}
	}
	selector := label.Render("Filter ") + strings.Join(filters, dim.Render(" ")) + dim.Render("   [f] cycle")

	st := pipeline.HistoryTotals(a.history)
	profitColor := t.GreenBright
	if st.TotalProfit < 0 {
		profitColor = t.Red
	}
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Completed", Value: cli.FormatNumber(int64(st.Projects))},
		{Label: "Historical profit", Value: cli.FormatSignedCOP(st.TotalProfit), Color: profitColor},
		{Label: "Revenue", Value: cli.FormatCOP(st.TotalRevenue)},
		{Label: "Avg profitability", Value: cli.FormatPct(st.AvgProfitability)},
	}, cw)

	var b strings.Builder
	b.WriteString(selector + "\n\n")
	if len(a.history) == 0 {
		b.WriteString(label.Render("No completed projects match."))
		return metrics + "\n" + components.ContentCard("History", b.String(), cw)
	}

	nameW := components.CardInnerWidth(cw) - 70
	if nameW < 16 {
		nameW = 16
	}
	b.WriteString(head.Render(fmt.Sprintf("%-9s %-*s %-12s %14s %14s %8s", "ID", nameW, "Project", "Completed", "Budget", "Profit", "Margin")) + "\n")
	for i, c := range a.history {
		style := value
		if i == a.histState.cursor {
			style = selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%-9s %-*s %-12s %14s %14s %8s",
			c.ID, nameW, truncStr(c.Name+" · "+c.Client, nameW), cli.FormatDate(c.CompletedAt),
			cli.FormatCOP(c.TotalBudget), cli.FormatSignedCOP(c.Profit), cli.FormatPct(c.Profitability))) + "\n")
	}
	return metrics + "\n" + components.ContentCard("History", strings.TrimRight(b.String(), "\n"), cw)
}
