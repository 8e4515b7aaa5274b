// Package export writes the ledger to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/model"
)

// Sheet names, in workbook order.
const (
	SheetProjects     = "Projects"
	SheetTransactions = "Transactions"
	SheetAlerts       = "Alerts"
	SheetHistory      = "History"
)

// Data is everything a workbook contains.
type Data struct {
	Summaries    []model.ProjectSummary
	Transactions []model.Transaction
	Alerts       []model.Alert
	History      []model.CompletedProject
}

// FromLedger collects the active portfolio, its alerts and the archive.
func FromLedger(l *ledger.Ledger) Data {
	return Data{
		Summaries:    l.Summaries(),
		Transactions: l.AllTransactions(),
		Alerts:       l.ActiveAlerts(),
		History:      l.History(),
	}
}

type sheet struct {
	name    string
	headers []any
	widths  []float64
	rows    [][]any
}

func buildSheets(d Data) []sheet {
	names := make(map[string]string, len(d.Summaries))
	projects := sheet{
		name:    SheetProjects,
		headers: []any{"ID", "Name", "Client", "Budget", "Income", "Expenses", "Net Profit", "Profitability %", "Budget Used %", "Status", "Health"},
		widths:  []float64{38, 28, 22, 14, 14, 14, 14, 15, 15, 12, 12},
	}
	for _, s := range d.Summaries {
		names[s.Project.ID] = s.Project.Name
		f := s.Financials
		projects.rows = append(projects.rows, []any{
			s.Project.ID, s.Project.Name, s.Project.Client, s.Project.Budget,
			f.TotalIncome, f.TotalExpenses, f.NetProfit,
			round1(f.Profitability), round1(f.BudgetUsed),
			string(s.Status), string(s.Health.Level),
		})
	}

	txs := sheet{
		name:    SheetTransactions,
		headers: []any{"Date", "Project", "Kind", "Description", "Amount"},
		widths:  []float64{12, 28, 10, 30, 14},
	}
	for _, tx := range d.Transactions {
		txs.rows = append(txs.rows, []any{
			tx.Date.Format("2006-01-02"), nameOr(names, tx.ProjectID), string(tx.Kind), tx.Description, tx.Amount,
		})
	}

	alerts := sheet{
		name:    SheetAlerts,
		headers: []any{"ID", "Project", "Kind", "Severity", "Message"},
		widths:  []float64{24, 28, 18, 10, 90},
	}
	for _, a := range d.Alerts {
		alerts.rows = append(alerts.rows, []any{
			a.ID, nameOr(names, a.ProjectID), string(a.Kind), string(a.Severity), a.Message,
		})
	}

	hist := sheet{
		name:    SheetHistory,
		headers: []any{"ID", "Name", "Client", "Completed", "Budget", "Expenses", "Profit", "Profitability %"},
		widths:  []float64{14, 28, 22, 12, 16, 16, 14, 15},
	}
	for _, c := range d.History {
		hist.rows = append(hist.rows, []any{
			c.ID, c.Name, c.Client, c.CompletedAt.Format("2006-01-02"),
			c.TotalBudget, c.TotalExpenses, c.Profit, round1(c.Profitability),
		})
	}

	return []sheet{projects, txs, alerts, hist}
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Write renders d as an .xlsx workbook to w.
func Write(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, sh := range buildSheets(d) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sh.name, err)
		}

		if err := f.SetSheetRow(sh.name, "A1", &sh.headers); err != nil {
			return fmt.Errorf("writing %s header: %w", sh.name, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(sh.headers), 1)
		if err := f.SetCellStyle(sh.name, "A1", last, bold); err != nil {
			return fmt.Errorf("styling %s header: %w", sh.name, err)
		}

		for r, row := range sh.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", sh.name, r+2, err)
			}
		}

		for c, width := range sh.widths {
			col, _ := excelize.ColumnNumberToName(c + 1)
			if err := f.SetColWidth(sh.name, col, col, width); err != nil {
				return fmt.Errorf("sizing %s column %s: %w", sh.name, col, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteFile writes the workbook to path.
func WriteFile(path string, d Data) error {
	out, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(out, d); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
