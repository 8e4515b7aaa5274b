package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Portfolio summary across active projects",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()

	sums := pipeline.FilterByProject(l.Summaries(), flagProject)
	if len(sums) == 0 {
		fmt.Println("\n  No active projects.")
		fmt.Println("  Create one with `archifinance project new`.")
		return nil
	}
	alerts := alertsFor(l.ActiveAlerts(), sums)
	stats := pipeline.AggregatePortfolio(sums, len(alerts))

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PORTFOLIO  %d active projects", stats.Projects)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Active projects", cli.FormatNumber(int64(stats.Projects))},
			{"At risk", cli.FormatNumber(int64(stats.AtRisk))},
			{"Active alerts", cli.FormatNumber(int64(stats.ActiveAlerts))},
			{"---"},
			{"Total budget", cli.FormatCOP(stats.TotalBudget)},
			{"Income", cli.FormatCOP(stats.TotalIncome)},
			{"Expenses", cli.FormatCOP(stats.TotalExpenses)},
			{"Net profit", cli.MoneyLabel(stats.NetProfit)},
			{"---"},
			{"Avg profitability", cli.FormatPct(stats.AvgProfitability)},
			{"Budget used", cli.FormatPct(stats.BudgetUsed)},
		},
	}))

	fmt.Println()
	fmt.Print(projectTable(sums))

	if len(alerts) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.Muted(finance.AssistantName))
		for _, al := range alerts {
			fmt.Printf("  %s  %s\n", cli.SeverityLabel(al.Severity), al.Message)
		}
	}
	return nil
}

func projectTable(sums []model.ProjectSummary) string {
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		rows = append(rows, []string{
			s.Project.ID,
			truncate(s.Project.Name, 24),
			truncate(s.Project.Client, 16),
			cli.FormatCOP(s.Project.Budget),
			cli.MoneyLabel(s.Financials.NetProfit),
			cli.FormatPct(s.Financials.Profitability),
			cli.FormatPct(s.Financials.BudgetUsed),
			cli.StatusLabel(s.Status),
		})
	}
	return cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Project", "Client", "Budget", "Net", "Profit %", "Used", "Status"},
		Rows:     rows,
		TextCols: 3,
	})
}

// alertsFor keeps the alerts that belong to one of sums' projects.
func alertsFor(alerts []model.Alert, sums []model.ProjectSummary) []model.Alert {
	ids := make(map[string]struct{}, len(sums))
	for _, s := range sums {
		ids[s.Project.ID] = struct{}{}
	}
	var out []model.Alert
	for _, al := range alerts {
		if _, ok := ids[al.ProjectID]; ok {
			out = append(out, al)
		}
	}
	return out
}
