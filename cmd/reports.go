package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

var flagPeriod string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Income, expenses and profit by period",
	RunE:  runReports,
}

func init() {
	reportsCmd.Flags().StringVar(&flagPeriod, "period", "", "Bucket size: month, quarter or year (default from config)")
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()

	name := flagPeriod
	if name == "" {
		name = a.cfg.General.DefaultPeriod
	}
	period, err := pipeline.ParsePeriod(name)
	if err != nil {
		return err
	}

	sums := pipeline.FilterByProject(l.Summaries(), flagProject)
	var txs []model.Transaction
	for _, s := range sums {
		txs = append(txs, l.Transactions(s.Project.ID)...)
	}
	buckets := pipeline.AggregatePeriods(txs, period)
	if len(buckets) == 0 {
		fmt.Println("\n  No transactions to report.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("REPORTS  by " + string(period)))
	fmt.Println()

	rows := make([][]string, 0, len(buckets)+2)
	nets := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{b.Label, cli.FormatCOP(b.Income), cli.FormatCOP(b.Expenses), cli.MoneyLabel(b.Net)})
		nets = append(nets, float64(b.Net))
	}
	total := pipeline.PeriodTotals(buckets)
	rows = append(rows, []string{"---"}, []string{total.Label, cli.FormatCOP(total.Income), cli.FormatCOP(total.Expenses), cli.MoneyLabel(total.Net)})
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Income", "Expenses", "Profit"},
		Rows:    rows,
	}))
	fmt.Printf("  %s %s\n", cli.Muted("Profit trend"), cli.RenderSparkline(nets))

	cmp := pipeline.CompareProjects(sums)
	crows := make([][]string, 0, len(cmp))
	for _, c := range cmp {
		crows = append(crows, []string{truncate(c.Name, 24), cli.FormatCOP(c.Income), cli.FormatCOP(c.Expenses), cli.MoneyLabel(c.Profit)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By project",
		Headers: []string{"Project", "Income", "Expenses", "Profit"},
		Rows:    crows,
	}))
	return nil
}
