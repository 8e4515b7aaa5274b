package finance

import "github.com/theirongolddev/archifinance/internal/model"

// BudgetWarningPct is the budget consumption above which a project is at risk.
const BudgetWarningPct = 80

// ClassifyStatus labels a project "at-risk" when it loses money or has used
// more than 80% of its budget, and "profitable" otherwise.
// profitability does not influence the label.
func ClassifyStatus(profitability, budgetUsed float64, netProfit int64) model.Status {
	if netProfit < 0 || budgetUsed > BudgetWarningPct {
		return model.StatusAtRisk
	}
	return model.StatusProfitable
}

// StatusOf classifies a Financials record.
func StatusOf(f model.Financials) model.Status {
	return ClassifyStatus(f.Profitability, f.BudgetUsed, f.NetProfit)
}

// Health grades a project on profitability and budget consumption.
func Health(profitability, budgetUsed float64) model.Health {
	switch {
	case profitability >= 20 && budgetUsed <= 70:
		return model.Health{Level: model.HealthExcellent, Message: "Project performing excellently"}
	case profitability >= 10 && budgetUsed <= 85:
		return model.Health{Level: model.HealthGood, Message: "Project on track"}
	case profitability >= 0 && budgetUsed <= 95:
		return model.Health{Level: model.HealthWarning, Message: "Monitor closely"}
	default:
		return model.Health{Level: model.HealthCritical, Message: "Immediate attention required"}
	}
}

// Summarize joins a project with its derived financials, status and health.
func Summarize(p model.Project, txs []model.Transaction) model.ProjectSummary {
	f := ComputeFinancials(txs, p.Budget)
	return model.ProjectSummary{
		Project:      p,
		Financials:   f,
		Status:       StatusOf(f),
		Health:       Health(f.Profitability, f.BudgetUsed),
		Transactions: len(txs),
	}
}
