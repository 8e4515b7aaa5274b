package model

import "time"

// Status is the derived display label for an active project.
type Status string

const (
	StatusProfitable Status = "profitable"
	StatusAtRisk     Status = "at-risk"
)

// Financials holds the metrics derived from a project's transactions.
type Financials struct {
	TotalIncome   int64
	TotalExpenses int64
	NetProfit     int64
	Profitability float64 // percent of income
	BudgetUsed    float64 // percent of budget, uncapped
}

// DetailMetrics are the extra views shown on the project detail screen.
type DetailMetrics struct {
	ProfitMargin        float64
	ROI                 float64
	RemainingBudget     int64
	Efficiency          float64
	ProjectedCompletion float64
}

// HealthLevel grades a project from excellent to critical.
type HealthLevel string

const (
	HealthExcellent HealthLevel = "excellent"
	HealthGood      HealthLevel = "good"
	HealthWarning   HealthLevel = "warning"
	HealthCritical  HealthLevel = "critical"
)

// Health pairs a level with its human-readable summary.
type Health struct {
	Level   HealthLevel
	Message string
}

// ProjectSummary is a project joined with everything derived from it.
type ProjectSummary struct {
	Project      Project
	Financials   Financials
	Status       Status
	Health       Health
	Transactions int
}

// PortfolioStats holds the totals across all active projects.
type PortfolioStats struct {
	Projects         int
	AtRisk           int
	ActiveAlerts     int
	TotalBudget      int64
	TotalIncome      int64
	TotalExpenses    int64
	NetProfit        int64
	AvgProfitability float64
	BudgetUsed       float64
}

// PeriodStats holds income and expense totals for one reporting bucket.
type PeriodStats struct {
	Label    string
	Start    time.Time
	Income   int64
	Expenses int64
	Net      int64
}

// CategoryTotal is one slice of an expense breakdown.
type CategoryTotal struct {
	Category string
	Amount   int64
	Share    float64 // percent of total expenses
}

// HistoryStats summarizes the completed-project archive.
type HistoryStats struct {
	Projects         int
	TotalProfit      int64
	TotalRevenue     int64
	AvgProfitability float64
}
