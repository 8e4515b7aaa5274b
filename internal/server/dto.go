package server

import (
	"time"

	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

// Snapshot is a compact portfolio state for status and event payloads.
type Snapshot struct {
	At               time.Time `json:"at"`
	Projects         int       `json:"projects"`
	AtRisk           int       `json:"at_risk"`
	ActiveAlerts     int       `json:"active_alerts"`
	TotalBudget      int64     `json:"total_budget"`
	TotalIncome      int64     `json:"total_income"`
	TotalExpenses    int64     `json:"total_expenses"`
	NetProfit        int64     `json:"net_profit"`
	AvgProfitability float64   `json:"avg_profitability"`
}

func snapshotFromStats(st model.PortfolioStats, at time.Time) Snapshot {
	return Snapshot{
		At:               at,
		Projects:         st.Projects,
		AtRisk:           st.AtRisk,
		ActiveAlerts:     st.ActiveAlerts,
		TotalBudget:      st.TotalBudget,
		TotalIncome:      st.TotalIncome,
		TotalExpenses:    st.TotalExpenses,
		NetProfit:        st.NetProfit,
		AvgProfitability: st.AvgProfitability,
	}
}

// sameFigures compares two snapshots ignoring their timestamps.
func sameFigures(a, b Snapshot) bool {
	a.At, b.At = time.Time{}, time.Time{}
	return a == b
}

// AlertJSON is the wire form of an alert.
type AlertJSON struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Kind      string    `json:"kind"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func alertJSON(a model.Alert) AlertJSON {
	return AlertJSON{
		ID:        a.ID,
		ProjectID: a.ProjectID,
		Kind:      string(a.Kind),
		Severity:  string(a.Severity),
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

func alertsJSON(alerts []model.Alert) []AlertJSON {
	out := make([]AlertJSON, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertJSON(a))
	}
	return out
}

// ProjectJSON is one active project with its derived figures.
type ProjectJSON struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Client        string    `json:"client"`
	Budget        int64     `json:"budget"`
	CreatedAt     time.Time `json:"created_at"`
	TotalIncome   int64     `json:"total_income"`
	TotalExpenses int64     `json:"total_expenses"`
	NetProfit     int64     `json:"net_profit"`
	Profitability float64   `json:"profitability"`
	BudgetUsed    float64   `json:"budget_used"`
	Status        string    `json:"status"`
	Health        string    `json:"health"`
}

func projectJSON(s model.ProjectSummary) ProjectJSON {
	return ProjectJSON{
		ID:            s.Project.ID,
		Name:          s.Project.Name,
		Client:        s.Project.Client,
		Budget:        s.Project.Budget,
		CreatedAt:     s.Project.CreatedAt,
		TotalIncome:   s.Financials.TotalIncome,
		TotalExpenses: s.Financials.TotalExpenses,
		NetProfit:     s.Financials.NetProfit,
		Profitability: s.Financials.Profitability,
		BudgetUsed:    s.Financials.BudgetUsed,
		Status:        string(s.Status),
		Health:        string(s.Health.Level),
	}
}

// TransactionJSON is the wire form of a transaction.
type TransactionJSON struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// PeriodJSON is one reporting bucket.
type PeriodJSON struct {
	Label    string `json:"label"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Net      int64  `json:"net"`
}

// CategoryJSON is one expense category.
type CategoryJSON struct {
	Category string  `json:"category"`
	Amount   int64   `json:"amount"`
	Share    float64 `json:"share"`
}

// ProjectDetailJSON is served at /v1/projects/:id.
type ProjectDetailJSON struct {
	ProjectJSON
	Active              bool              `json:"active"`
	ROI                 float64           `json:"roi"`
	RemainingBudget     int64             `json:"remaining_budget"`
	Efficiency          float64           `json:"efficiency"`
	ProjectedCompletion float64           `json:"projected_completion"`
	HealthMessage       string            `json:"health_message"`
	Alerts              []AlertJSON       `json:"alerts"`
	Monthly             []PeriodJSON      `json:"monthly"`
	Expenses            []CategoryJSON    `json:"expense_breakdown"`
	Recent              []TransactionJSON `json:"recent_transactions"`
}

func detailJSON(s model.ProjectSummary, d model.DetailMetrics, alerts []model.Alert, txs []model.Transaction) ProjectDetailJSON {
	out := ProjectDetailJSON{
		ProjectJSON:         projectJSON(s),
		Active:              s.Project.Active(),
		ROI:                 d.ROI,
		RemainingBudget:     d.RemainingBudget,
		Efficiency:          d.Efficiency,
		ProjectedCompletion: d.ProjectedCompletion,
		HealthMessage:       s.Health.Message,
		Alerts:              alertsJSON(alerts),
		Monthly:             []PeriodJSON{},
		Expenses:            []CategoryJSON{},
		Recent:              []TransactionJSON{},
	}
	for _, p := range pipeline.AggregatePeriods(txs, pipeline.PeriodMonth) {
		out.Monthly = append(out.Monthly, PeriodJSON{Label: p.Label, Income: p.Income, Expenses: p.Expenses, Net: p.Net})
	}
	for _, c := range pipeline.ExpenseBreakdown(txs) {
		out.Expenses = append(out.Expenses, CategoryJSON{Category: c.Category, Amount: c.Amount, Share: c.Share})
	}
	for _, tx := range pipeline.RecentTransactions(txs, 5) {
		out.Recent = append(out.Recent, TransactionJSON{
			ID: tx.ID, Kind: string(tx.Kind), Amount: tx.Amount, Description: tx.Description, Date: tx.Date,
		})
	}
	return out
}
