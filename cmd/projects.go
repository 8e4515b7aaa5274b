package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui"
)

var (
	flagNewName    string
	flagNewClient  string
	flagNewBudget  string
	flagNewInitial string
	flagYes        bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Active projects with their financial status",
	RunE:  runProjects,
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Show, create or complete a project",
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Project detail: metrics, health, alerts and activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a project",
	RunE:  runProjectNew,
}

var projectCompleteCmd = &cobra.Command{
	Use:   "complete <id|name>",
	Short: "Move a project to history",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectComplete,
}

func init() {
	projectNewCmd.Flags().StringVar(&flagNewName, "name", "", "Project name")
	projectNewCmd.Flags().StringVar(&flagNewClient, "client", "", "Client name")
	projectNewCmd.Flags().StringVar(&flagNewBudget, "budget", "", "Budget, e.g. 50000000 or 50M")
	projectNewCmd.Flags().StringVar(&flagNewInitial, "initial", "", "Initial payment (optional)")
	projectCompleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip the confirmation")

	projectCmd.AddCommand(projectShowCmd, projectNewCmd, projectCompleteCmd)
	rootCmd.AddCommand(projectsCmd, projectCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sums := pipeline.FilterByProject(a.ledger().Summaries(), flagProject)
	if len(sums) == 0 {
		fmt.Println("\n  No active projects.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTS"))
	fmt.Println()
	fmt.Print(projectTable(sums))
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()

	p, err := l.FindProject(args[0])
	if err != nil {
		return err
	}
	txs := l.Transactions(p.ID)
	sum := finance.Summarize(p, txs)
	f := sum.Financials
	d := finance.ComputeDetail(f, p.Budget)

	title := p.Name
	if !p.Active() {
		title += "  (completed " + cli.FormatDate(p.CompletedAt) + ")"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Printf("  %s  %s\n\n", cli.Muted("Client"), p.Client)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Budget", cli.FormatCOP(p.Budget)},
			{"Income", cli.FormatCOP(f.TotalIncome)},
			{"Expenses", cli.FormatCOP(f.TotalExpenses)},
			{"Net profit", cli.MoneyLabel(f.NetProfit)},
			{"---"},
			{"Profitability", cli.FormatPct(f.Profitability)},
			{"ROI", cli.FormatPct(d.ROI)},
			{"Budget used", cli.RenderUsageBar(f.BudgetUsed, 20)},
			{"Remaining budget", cli.MoneyLabel(d.RemainingBudget)},
			{"Efficiency", cli.FormatPct(d.Efficiency)},
			{"Projected completion", cli.FormatPct(d.ProjectedCompletion)},
			{"---"},
			{"Status", cli.StatusLabel(sum.Status)},
			{"Health", cli.HealthLabel(sum.Health.Level) + "  " + sum.Health.Message},
		},
	}))

	if alerts := l.ProjectAlerts(p.ID); len(alerts) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.Muted(finance.AssistantName))
		for _, al := range alerts {
			fmt.Printf("  %s  %s  %s\n", cli.SeverityLabel(al.Severity), al.Message, cli.Muted(al.ID))
		}
	}

	if months := pipeline.AggregatePeriods(txs, pipeline.PeriodMonth); len(months) > 0 {
		rows := make([][]string, 0, len(months))
		for _, m := range months {
			rows = append(rows, []string{m.Label, cli.FormatCOP(m.Income), cli.FormatCOP(m.Expenses), cli.MoneyLabel(m.Net)})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Monthly",
			Headers: []string{"Month", "Income", "Expenses", "Net"},
			Rows:    rows,
		}))
	}

	if cats := pipeline.ExpenseBreakdown(txs); len(cats) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.Muted("Expenses by category"))
		for _, c := range cats {
			fmt.Printf("%s %s  %s\n",
				cli.RenderHorizontalBar(c.Category, c.Share, 100, 10, 30),
				cli.FormatCOP(c.Amount), cli.Muted(cli.FormatPct(c.Share)))
		}
	}

	if recent := pipeline.RecentTransactions(txs, 5); len(recent) > 0 {
		fmt.Println()
		fmt.Print(txTable("Recent transactions", recent, false))
	}
	return nil
}

func runProjectNew(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	in := tui.ProjectInput{
		Name:           flagNewName,
		Client:         flagNewClient,
		Budget:         flagNewBudget,
		InitialPayment: flagNewInitial,
	}
	if (in.Name == "" || in.Client == "" || in.Budget == "") && interactive() {
		if err := tui.NewProjectForm(&in).Run(); err != nil {
			return err
		}
	}
	req, err := in.Parse()
	if err != nil {
		return err
	}
	p, err := a.ledger().AddProject(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Printf("\n  Created project %s  %s (%s)  budget %s\n", p.ID, p.Name, p.Client, cli.FormatCOP(p.Budget))
	return nil
}

func runProjectComplete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()

	p, err := l.FindProject(args[0])
	if err != nil {
		return err
	}
	if !flagYes {
		if !interactive() {
			return errors.New("refusing to complete without --yes when not interactive")
		}
		ok := false
		if err := tui.NewConfirmForm("Complete "+p.Name+"?", "It moves to history and stops taking transactions.", &ok).Run(); err != nil {
			return err
		}
		if !ok {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	c, err := l.CompleteProject(cmd.Context(), p.ID)
	if err != nil {
		return err
	}
	fmt.Printf("\n  Completed %s  profit %s (%s)\n", c.Name, cli.MoneyLabel(c.Profit), cli.FormatPct(c.Profitability))
	return nil
}
