package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui"
)

var (
	flagTxKind   string
	flagTxAmount string
	flagTxDesc   string
	flagTxDate   string
	flagTxLimit  int

	flagImportDryRun  bool
	flagImportWorkers int
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and list income and expenses",
}

var txAddCmd = &cobra.Command{
	Use:   "add [project]",
	Short: "Record an income or expense",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTxAdd,
}

var txListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List transactions, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTxList,
}

var txImportCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Import transactions from JSON Lines files",
	Long: `Import transactions from JSON Lines files. Each line holds one object:

  {"type":"expense","ref":"bank-0042","project":"Casa Moderna Laureles","amount":"2.500.000","description":"Material delivery","date":"2024-03-04"}

When "project" is missing, the file name names the project
(casa-moderna-laureles.jsonl, or 2.jsonl for project 2). Lines sharing a ref
import once, with the last one winning.`,
	Args: cobra.ExactArgs(1),
	RunE: runTxImport,
}

func init() {
	txAddCmd.Flags().StringVar(&flagTxKind, "kind", "", "income or expense")
	txAddCmd.Flags().StringVar(&flagTxAmount, "amount", "", "Amount, e.g. 5000000 or 5M")
	txAddCmd.Flags().StringVar(&flagTxDesc, "desc", "", "Description")
	txAddCmd.Flags().StringVar(&flagTxDate, "date", "", "Date as YYYY-MM-DD (default today)")
	txListCmd.Flags().IntVarP(&flagTxLimit, "limit", "n", 0, "Show only the newest n entries")

	txImportCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and resolve projects without recording anything")
	txImportCmd.Flags().IntVar(&flagImportWorkers, "workers", 4, "Files parsed in parallel")

	txCmd.AddCommand(txAddCmd, txListCmd, txImportCmd)
	rootCmd.AddCommand(txCmd)
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()

	in := tui.TxInput{
		Kind:        flagTxKind,
		Amount:      flagTxAmount,
		Description: flagTxDesc,
		Date:        flagTxDate,
	}
	if len(args) == 1 {
		p, err := l.FindProject(args[0])
		if err != nil {
			return err
		}
		in.ProjectID = p.ID
	}

	if in.ProjectID == "" || in.Kind == "" || in.Amount == "" || in.Description == "" {
		if !interactive() {
			return errors.New("project, --kind, --amount and --desc are required")
		}
		if err := tui.NewTransactionForm(&in, l.Projects()).Run(); err != nil {
			return err
		}
	}

	req, err := in.Parse()
	if err != nil {
		return err
	}
	tx, err := l.AddTransaction(cmd.Context(), req)
	if err != nil {
		return err
	}
	p, _ := l.Project(tx.ProjectID)
	fmt.Printf("\n  Recorded %s of %s for %s on %s\n", tx.Kind, cli.FormatCOP(tx.Amount), p.Name, cli.FormatDate(tx.Date))

	f, err := l.Financials(tx.ProjectID)
	if err == nil {
		fmt.Printf("  Net %s  profitability %s  budget used %s\n",
			cli.MoneyLabel(f.NetProfit), cli.FormatPct(f.Profitability), cli.FormatPct(f.BudgetUsed))
	}
	for _, al := range l.ProjectAlerts(tx.ProjectID) {
		fmt.Printf("  %s  %s\n", cli.SeverityLabel(al.Severity), al.Message)
	}
	return nil
}

func runTxList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()

	var (
		txs   []model.Transaction
		title = "TRANSACTIONS"
	)
	if len(args) == 1 {
		p, err := l.FindProject(args[0])
		if err != nil {
			return err
		}
		txs = l.Transactions(p.ID)
		title += "  " + p.Name
	} else {
		for _, s := range pipeline.FilterByProject(l.Summaries(), flagProject) {
			txs = append(txs, l.Transactions(s.Project.ID)...)
		}
	}
	if len(txs) == 0 {
		fmt.Println("\n  No transactions.")
		return nil
	}

	n := len(txs)
	if flagTxLimit > 0 {
		n = flagTxLimit
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	fmt.Print(txTable("", pipeline.RecentTransactions(txs, n), len(args) == 0))
	return nil
}

func txTable(title string, txs []model.Transaction, withProject bool) string {
	headers := []string{"Date", "Description", "Type", "Amount"}
	textCols := 3
	if withProject {
		headers = append([]string{"Project"}, headers...)
		textCols++
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		amount := cli.MoneyLabel(tx.Amount)
		if tx.Kind == model.Expense {
			amount = cli.MoneyLabel(-tx.Amount)
		}
		row := []string{cli.FormatDate(tx.Date), truncate(tx.Description, 28), string(tx.Kind), amount}
		if withProject {
			row = append([]string{tx.ProjectID}, row...)
		}
		rows = append(rows, row)
	}
	return cli.RenderTable(cli.Table{Title: title, Headers: headers, Rows: rows, TextCols: textCols})
}
