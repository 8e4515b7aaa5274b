package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

var flagHistoryFilter string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Completed projects",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryFilter, "filter", "all", "all, profitable or recent")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	filter, err := pipeline.ParseHistoryFilter(flagHistoryFilter)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	hist := pipeline.FilterHistory(a.ledger().History(), filter)
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HISTORY  %s", filter)))
	fmt.Println()
	if len(hist) == 0 {
		fmt.Println("  No completed projects match.")
		return nil
	}

	rows := make([][]string, 0, len(hist))
	for _, c := range hist {
		rows = append(rows, []string{
			c.ID,
			truncate(c.Name, 28),
			truncate(c.Client, 18),
			cli.FormatDate(c.CompletedAt),
			cli.FormatCOP(c.TotalBudget),
			cli.MoneyLabel(c.Profit),
			cli.FormatPct(c.Profitability),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Project", "Client", "Completed", "Budget", "Profit", "Margin"},
		Rows:     rows,
		TextCols: 4,
	}))

	st := pipeline.HistoryTotals(hist)
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Totals", "Value"},
		Rows: [][]string{
			{"Projects", cli.FormatNumber(int64(st.Projects))},
			{"Historical profit", cli.MoneyLabel(st.TotalProfit)},
			{"Revenue", cli.FormatCOP(st.TotalRevenue)},
			{"Avg profitability", cli.FormatPct(st.AvgProfitability)},
		},
	}))
	return nil
}
