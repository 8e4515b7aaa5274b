// Package finance derives project metrics, status labels and advisory alerts
// from raw transactions. Every function here is pure.
package finance

import (
	"math"

	"github.com/theirongolddev/archifinance/internal/model"
)

// ComputeFinancials sums a project's transactions and derives its ratios.
// Division by zero is guarded: profitability is 0 without income and
// budgetUsed is 0 without a budget.
func ComputeFinancials(txs []model.Transaction, budget int64) model.Financials {
	var f model.Financials
	for _, tx := range txs {
		switch tx.Kind {
		case model.Income:
			f.TotalIncome += tx.Amount
		case model.Expense:
			f.TotalExpenses += tx.Amount
		}
	}

	f.NetProfit = f.TotalIncome - f.TotalExpenses
	f.Profitability = Profitability(f.NetProfit, f.TotalIncome)
	f.BudgetUsed = BudgetUsage(f.TotalExpenses, budget)
	return f
}

// Profitability is net profit as a percentage of income.
func Profitability(netProfit, income int64) float64 {
	if income == 0 {
		return 0
	}
	return float64(netProfit) / float64(income) * 100
}

// BudgetUsage is expenses as a percentage of budget. It is not capped at 100.
func BudgetUsage(expenses, budget int64) float64 {
	if budget == 0 {
		return 0
	}
	return float64(expenses) / float64(budget) * 100
}

// ROI is net profit as a percentage of the allocated budget.
func ROI(netProfit, budget int64) float64 {
	if budget == 0 {
		return 0
	}
	return float64(netProfit) / float64(budget) * 100
}

// Efficiency is the share of budget left unspent, floored at zero.
func Efficiency(budgetUsed float64) float64 {
	return math.Max(0, 100-budgetUsed)
}

// ComputeDetail derives the project detail metrics from financials.
func ComputeDetail(f model.Financials, budget int64) model.DetailMetrics {
	d := model.DetailMetrics{
		ProfitMargin:    Profitability(f.NetProfit, f.TotalIncome),
		ROI:             ROI(f.NetProfit, budget),
		RemainingBudget: budget - f.TotalExpenses,
		Efficiency:      Efficiency(f.BudgetUsed),
	}
	if f.BudgetUsed > 0 {
		d.ProjectedCompletion = 100 / f.BudgetUsed * 100
	}
	return d
}
