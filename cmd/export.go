package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/export"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write projects, transactions, alerts and history to an Excel workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default archifinance-YYYY-MM-DD.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := flagExportOut
	if out == "" {
		out = "archifinance-" + time.Now().Format("2006-01-02") + ".xlsx"
	}
	d := export.FromLedger(a.ledger())
	if err := export.WriteFile(out, d); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s (%d projects, %d transactions, %d alerts, %d completed)\n",
		out, len(d.Summaries), len(d.Transactions), len(d.Alerts), len(d.History))
	return nil
}
