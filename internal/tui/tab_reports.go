package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui/components"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

// reportTransactions gathers the transactions of the visible projects.
func (a App) reportTransactions() []model.Transaction {
	var txs []model.Transaction
	for _, s := range a.summaries {
		txs = append(txs, a.ledger.Transactions(s.Project.ID)...)
	}
	return txs
}

func (a App) renderReportsTab(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	money := func(v int64) string {
		c := t.GreenBright
		if v < 0 {
			c = t.Red
		}
		return lipgloss.NewStyle().Foreground(c).Background(t.Surface).Render(fmt.Sprintf("%14s", cli.FormatSignedCOP(v)))
	}

	var periods []string
	for _, p := range pipeline.Periods {
		if p == a.period {
			periods = append(periods, head.Render("["+string(p)+"]"))
		} else {
			periods = append(periods, dim.Render(string(p)))
		}
	}
	selector := label.Render("Period ") + strings.Join(periods, dim.Render(" ")) + dim.Render("   [p] cycle")

	buckets := pipeline.AggregatePeriods(a.reportTransactions(), a.period)
	if len(buckets) == 0 {
		return components.ContentCard("Reports", selector+"\n\n"+label.Render("No transactions to report."), cw)
	}

	var table strings.Builder
	table.WriteString(head.Render(fmt.Sprintf("%-10s %14s %14s %14s", "Period", "Income", "Expenses", "Profit")) + "\n")
	incomes := make([]float64, 0, len(buckets))
	nets := make([]float64, 0, len(buckets))
	labels := make([]string, 0, len(buckets))
	for _, b := range buckets {
		table.WriteString(value.Render(fmt.Sprintf("%-10s %14s %14s ", b.Label, cli.FormatCOP(b.Income), cli.FormatCOP(b.Expenses))) + money(b.Net) + "\n")
		incomes = append(incomes, float64(b.Income))
		nets = append(nets, float64(b.Net))
		labels = append(labels, b.Label)
	}
	total := pipeline.PeriodTotals(buckets)
	table.WriteString(dim.Render(strings.Repeat("─", 55)) + "\n")
	table.WriteString(head.Render(fmt.Sprintf("%-10s %14s %14s ", total.Label, cli.FormatCOP(total.Income), cli.FormatCOP(total.Expenses))) + money(total.Net) + "\n\n")
	table.WriteString(label.Render("Profit trend ") + components.Sparkline(nets, t.AccentBright))

	leftW := cw
	var chart string
	if !a.isCompactLayout() {
		leftW = cw * 11 / 20
		rightW := cw - leftW
		chart = components.ContentCard("Income by "+string(a.period),
			components.ColumnChart(incomes, labels, t.Green, components.CardInnerWidth(rightW), 8), rightW)
	}
	top := components.ContentCard("Reports", selector+"\n\n"+table.String(), leftW)
	if chart != "" {
		top = components.CardRow([]string{top, chart})
	}

	var cmp strings.Builder
	cmp.WriteString(head.Render(fmt.Sprintf("%-28s %14s %14s %14s", "Project", "Income", "Expenses", "Profit")) + "\n")
	for _, c := range pipeline.CompareProjects(a.summaries) {
		cmp.WriteString(value.Render(fmt.Sprintf("%-28s %14s %14s ", truncStr(c.Name, 28), cli.FormatCOP(c.Income), cli.FormatCOP(c.Expenses))) + money(c.Profit) + "\n")
	}
	return top + "\n" + components.ContentCard("By project", strings.TrimRight(cmp.String(), "\n"), cw)
}
