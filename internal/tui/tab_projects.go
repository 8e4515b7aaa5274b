package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui/components"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

// projectsState holds the projects tab state. The zero value is the split
// list/detail view.
type projectsState struct {
	cursor int
	offset int
	detail bool // full-width detail
}

func (a App) selectedSummary() (model.ProjectSummary, bool) {
	if len(a.summaries) == 0 {
		return model.ProjectSummary{}, false
	}
	return a.summaries[a.projState.cursor], true
}

func (a App) updateProjectsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		return a.moveCursor(1), nil
	case "k", "up":
		return a.moveCursor(-1), nil
	case "g":
		a.projState.cursor = 0
		return a, nil
	case "G":
		a.projState.cursor = clamp(len(a.summaries)-1, len(a.summaries))
		return a, nil
	case "enter":
		if !a.isCompactLayout() {
			a.projState.detail = !a.projState.detail
		}
		return a, nil
	case "esc":
		a.projState.detail = false
		return a, nil
	case "n":
		in := &TxInput{}
		var picker []model.Project
		if sel, ok := a.selectedSummary(); ok {
			in.ProjectID = sel.Project.ID
		} else {
			picker = a.ledger.Projects()
			if len(picker) == 0 {
				return a.fail(errors.New("create a project first (N)")), nil
			}
		}
		a.txIn = in
		return a.openForm(formNewTx, NewTransactionForm(in, picker))
	case "N":
		in := &ProjectInput{}
		a.projectIn = in
		return a.openForm(formNewProject, NewProjectForm(in))
	case "C":
		sel, ok := a.selectedSummary()
		if !ok {
			return a, nil
		}
		confirmed := false
		a.confirm = &confirmed
		a.target = sel.Project
		return a.openForm(formComplete, NewConfirmForm(
			fmt.Sprintf("Complete %s?", sel.Project.Name),
			fmt.Sprintf("It moves to history with net profit %s.", cli.FormatSignedCOP(sel.Financials.NetProfit)),
			a.confirm,
		))
	}
	return a, nil
}

func (a App) renderProjectsTab(cw, h int) string {
	t := theme.Active
	p := a.portfolio

	netColor := t.GreenBright
	if p.NetProfit < 0 {
		netColor = t.Red
	}
	riskColor := t.TextPrimary
	if p.AtRisk > 0 {
		riskColor = t.Orange
	}
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Total budget", Value: cli.FormatCOP(p.TotalBudget), Note: fmt.Sprintf("%d active projects", p.Projects)},
		{Label: "Income", Value: cli.FormatCOP(p.TotalIncome), Color: t.Green},
		{Label: "Expenses", Value: cli.FormatCOP(p.TotalExpenses), Note: cli.FormatPct(p.BudgetUsed) + " of budget"},
		{Label: "Net profit", Value: cli.FormatSignedCOP(p.NetProfit), Color: netColor, Note: "avg " + cli.FormatPct(p.AvgProfitability)},
		{Label: "At risk", Value: fmt.Sprintf("%d", p.AtRisk), Color: riskColor, Note: fmt.Sprintf("%d active alerts", p.ActiveAlerts)},
	}, cw)

	bodyH := h - lipgloss.Height(metrics)
	sel, ok := a.selectedSummary()
	if !ok {
		msg := "No active projects. Press N to create one."
		if a.project != "" {
			msg = fmt.Sprintf("No projects match %q.", a.project)
		}
		empty := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg)
		return metrics + "\n" + components.ContentCard("Projects", empty, cw)
	}

	if a.projState.detail && !a.isCompactLayout() {
		return metrics + "\n" + components.FocusedCard(sel.Project.Name, a.projectDetailBody(sel, cw), cw)
	}

	if a.isCompactLayout() {
		list := components.ContentCard("Projects", a.projectListBody(cw, 6), cw)
		detail := components.ContentCard(sel.Project.Name, a.projectDetailBody(sel, cw), cw)
		return metrics + "\n" + list + "\n" + detail
	}

	leftW := cw * 2 / 5
	rightW := cw - leftW
	left := components.FocusedCard("Projects", a.projectListBody(leftW, bodyH-4), leftW)
	right := components.ContentCard(sel.Project.Name, a.projectDetailBody(sel, rightW), rightW)
	return metrics + "\n" + components.CardRow([]string{left, right})
}

// projectListBody renders up to visible rows around the cursor.
func (a App) projectListBody(outerW, visible int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outerW)
	if visible < 3 {
		visible = 3
	}

	offset := a.projState.offset
	if a.projState.cursor < offset {
		offset = a.projState.cursor
	}
	if a.projState.cursor >= offset+visible {
		offset = a.projState.cursor - visible + 1
	}
	end := min(offset+visible, len(a.summaries))

	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selected := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	netW := 14
	nameW := inner - netW - 3
	var b strings.Builder
	for i := offset; i < end; i++ {
		s := a.summaries[i]
		dot := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render("●")
		if s.Status == model.StatusAtRisk {
			dot = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("●")
		}
		line := fmt.Sprintf("%-*s %*s", nameW, truncStr(s.Project.Name, nameW), netW, cli.FormatSignedCOP(s.Financials.NetProfit))
		style := row
		if i == a.projState.cursor {
			style = selected
		}
		b.WriteString(dot + " " + style.Render(line) + "\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
		Render("[n] transaction  [N] project  [C] complete"))
	return b.String()
}

func (a App) projectDetailBody(s model.ProjectSummary, outerW int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outerW)
	f := s.Financials
	d := finance.ComputeDetail(f, s.Project.Budget)

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	money := func(v int64) string {
		c := t.GreenBright
		if v < 0 {
			c = t.Red
		}
		return lipgloss.NewStyle().Foreground(c).Background(t.Surface).Render(cli.FormatSignedCOP(v))
	}
	kv := func(k, v string) string { return label.Render(fmt.Sprintf("%-22s", k)) + v + "\n" }

	var b strings.Builder
	b.WriteString(kv("Client", value.Render(s.Project.Client)))
	b.WriteString(kv("Budget", value.Render(cli.FormatCOP(s.Project.Budget))))
	b.WriteString(kv("Started", value.Render(cli.FormatDate(s.Project.CreatedAt))))
	b.WriteString(kv("Income", value.Render(cli.FormatCOP(f.TotalIncome))))
	b.WriteString(kv("Expenses", value.Render(cli.FormatCOP(f.TotalExpenses))))
	b.WriteString(kv("Net profit", money(f.NetProfit)))
	b.WriteString(kv("Profitability", value.Render(cli.FormatPct(f.Profitability))))
	b.WriteString(kv("ROI", value.Render(cli.FormatPct(d.ROI))))
	b.WriteString(kv("Remaining budget", money(d.RemainingBudget)))
	b.WriteString(kv("Efficiency", value.Render(cli.FormatPct(d.Efficiency))))
	b.WriteString(kv("Projected completion", value.Render(cli.FormatPct(d.ProjectedCompletion))))
	b.WriteString(label.Render(fmt.Sprintf("%-22s", "Budget used")) + components.BudgetBar("", f.BudgetUsed, 0, inner-30) + "\n")

	healthColor := map[model.HealthLevel]lipgloss.Color{
		model.HealthExcellent: t.GreenBright,
		model.HealthGood:      t.Green,
		model.HealthWarning:   t.Orange,
		model.HealthCritical:  t.Red,
	}[s.Health.Level]
	b.WriteString(kv("Health", lipgloss.NewStyle().Foreground(healthColor).Background(t.Surface).Bold(true).
		Render(string(s.Health.Level))+value.Render("  "+s.Health.Message)))

	if alerts := a.ledger.ProjectAlerts(s.Project.ID); len(alerts) > 0 {
		b.WriteString("\n" + head.Render(finance.AssistantName) + "\n")
		for _, al := range alerts {
			b.WriteString(severityDot(al.Severity) + " " + value.Render(truncStr(al.Message, inner-2)) + "\n")
		}
	}

	txs := a.ledger.Transactions(s.Project.ID)
	if months := pipeline.AggregatePeriods(txs, pipeline.PeriodMonth); len(months) > 0 {
		b.WriteString("\n" + head.Render("Monthly") + "\n")
		for _, m := range months {
			b.WriteString(label.Render(fmt.Sprintf("%-8s", m.Label)) +
				value.Render(fmt.Sprintf("in %-12s out %-12s ", cli.FormatCOP(m.Income), cli.FormatCOP(m.Expenses))) +
				money(m.Net) + "\n")
		}
	}

	if cats := pipeline.ExpenseBreakdown(txs); len(cats) > 0 {
		b.WriteString("\n" + head.Render("Expense breakdown") + "\n")
		barW := inner - 34
		for _, c := range cats {
			filled := int(c.Share / 100 * float64(barW))
			bar := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render(strings.Repeat("█", max(filled, 0)))
			b.WriteString(label.Render(fmt.Sprintf("%-10s", c.Category)) +
				value.Render(fmt.Sprintf("%12s %6s ", cli.FormatCOP(c.Amount), cli.FormatPct(c.Share))) + bar + "\n")
		}
	}

	if recent := pipeline.RecentTransactions(txs, 5); len(recent) > 0 {
		b.WriteString("\n" + head.Render("Recent transactions") + "\n")
		for _, tx := range recent {
			amt := tx.Amount
			if tx.Kind == model.Expense {
				amt = -amt
			}
			b.WriteString(label.Render(cli.FormatDate(tx.Date)+"  ") +
				value.Render(fmt.Sprintf("%-*s ", max(inner-30, 10), truncStr(tx.Description, max(inner-30, 10)))) +
				money(amt) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func severityDot(s model.Severity) string {
	t := theme.Active
	c := t.Orange
	if s == model.SeverityDanger {
		c = t.Red
	}
	return lipgloss.NewStyle().Foreground(c).Background(t.Surface).Render("▲")
}
