// Package pipeline loads ledger state and aggregates it into the portfolio,
// report and history views.
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/model"
)

// Period is a reporting bucket size.
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// Periods lists the bucket sizes in cycling order.
var Periods = []Period{PeriodMonth, PeriodQuarter, PeriodYear}

// ParsePeriod accepts month, quarter or year. Empty means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodQuarter:
		return PeriodQuarter, nil
	case PeriodYear:
		return PeriodYear, nil
	}
	return PeriodMonth, fmt.Errorf("unknown period %q (want month, quarter or year)", s)
}

// Next returns the period after p in Periods, wrapping around.
func (p Period) Next() Period {
	for i, q := range Periods {
		if q == p {
			return Periods[(i+1)%len(Periods)]
		}
	}
	return PeriodMonth
}

var monthAbbr = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// bucketStart truncates t to the start of its period.
func bucketStart(t time.Time, p Period) time.Time {
	switch p {
	case PeriodQuarter:
		m := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), m, 1, 0, 0, 0, 0, t.Location())
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
}

// PeriodLabel renders a bucket start as "Ene 24", "T1 2024" or "2024".
func PeriodLabel(start time.Time, p Period) string {
	switch p {
	case PeriodQuarter:
		return fmt.Sprintf("T%d %d", (int(start.Month())-1)/3+1, start.Year())
	case PeriodYear:
		return fmt.Sprintf("%d", start.Year())
	default:
		return fmt.Sprintf("%s %02d", monthAbbr[start.Month()-1], start.Year()%100)
	}
}

// AggregatePeriods buckets transactions by period, oldest bucket first.
// Only periods that contain at least one transaction are returned.
func AggregatePeriods(txs []model.Transaction, p Period) []model.PeriodStats {
	buckets := make(map[string]*model.PeriodStats)
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		start := bucketStart(tx.Date, p)
		key := start.Format("2006-01")
		ps, ok := buckets[key]
		if !ok {
			ps = &model.PeriodStats{Label: PeriodLabel(start, p), Start: start}
			buckets[key] = ps
		}
		switch tx.Kind {
		case model.Income:
			ps.Income += tx.Amount
		case model.Expense:
			ps.Expenses += tx.Amount
		}
		ps.Net = ps.Income - ps.Expenses
	}

	out := make([]model.PeriodStats, 0, len(buckets))
	for _, ps := range buckets {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// PeriodTotals sums a set of buckets into one.
func PeriodTotals(periods []model.PeriodStats) model.PeriodStats {
	var total model.PeriodStats
	total.Label = "Total"
	for _, ps := range periods {
		total.Income += ps.Income
		total.Expenses += ps.Expenses
	}
	total.Net = total.Income - total.Expenses
	return total
}

// AggregatePortfolio computes totals across the given active projects.
// AvgProfitability is the plain mean of each project's profitability.
func AggregatePortfolio(sums []model.ProjectSummary, activeAlerts int) model.PortfolioStats {
	stats := model.PortfolioStats{
		Projects:     len(sums),
		ActiveAlerts: activeAlerts,
	}
	var profSum float64
	for _, s := range sums {
		stats.TotalBudget += s.Project.Budget
		stats.TotalIncome += s.Financials.TotalIncome
		stats.TotalExpenses += s.Financials.TotalExpenses
		profSum += s.Financials.Profitability
		if s.Status == model.StatusAtRisk {
			stats.AtRisk++
		}
	}
	stats.NetProfit = stats.TotalIncome - stats.TotalExpenses
	if len(sums) > 0 {
		stats.AvgProfitability = profSum / float64(len(sums))
	}
	stats.BudgetUsed = finance.BudgetUsage(stats.TotalExpenses, stats.TotalBudget)
	return stats
}

// Expense categories.
const (
	CategoryMaterials = "Materials"
	CategoryLabor     = "Labor"
	CategoryPermits   = "Permits"
	CategoryOther     = "Other"
)

// Categorize maps an expense description to a category by keyword.
// Matching is case-sensitive and checked in the order Material, Labor or
// Contractor, Permit.
func Categorize(description string) string {
	switch {
	case strings.Contains(description, "Material"):
		return CategoryMaterials
	case strings.Contains(description, "Labor"), strings.Contains(description, "Contractor"):
		return CategoryLabor
	case strings.Contains(description, "Permit"):
		return CategoryPermits
	default:
		return CategoryOther
	}
}

// ExpenseBreakdown groups expenses by category in first-seen order.
func ExpenseBreakdown(txs []model.Transaction) []model.CategoryTotal {
	var (
		order  []string
		totals = make(map[string]int64)
		sum    int64
	)
	for _, tx := range txs {
		if tx.Kind != model.Expense {
			continue
		}
		cat := Categorize(tx.Description)
		if _, ok := totals[cat]; !ok {
			order = append(order, cat)
		}
		totals[cat] += tx.Amount
		sum += tx.Amount
	}

	out := make([]model.CategoryTotal, 0, len(order))
	for _, cat := range order {
		ct := model.CategoryTotal{Category: cat, Amount: totals[cat]}
		if sum > 0 {
			ct.Share = float64(ct.Amount) / float64(sum) * 100
		}
		out = append(out, ct)
	}
	return out
}

// RecentTransactions returns the last n entries, newest entry first.
func RecentTransactions(txs []model.Transaction, n int) []model.Transaction {
	if n <= 0 {
		return nil
	}
	start := max(len(txs)-n, 0)
	out := make([]model.Transaction, 0, len(txs)-start)
	for i := len(txs) - 1; i >= start; i-- {
		out = append(out, txs[i])
	}
	return out
}

// ProjectComparison is one row of the per-project report.
type ProjectComparison struct {
	Name     string
	Income   int64
	Expenses int64
	Profit   int64
}

// CompareProjects builds the per-project rows, most profitable first.
func CompareProjects(sums []model.ProjectSummary) []ProjectComparison {
	out := make([]ProjectComparison, 0, len(sums))
	for _, s := range sums {
		out = append(out, ProjectComparison{
			Name:     s.Project.Name,
			Income:   s.Financials.TotalIncome,
			Expenses: s.Financials.TotalExpenses,
			Profit:   s.Financials.NetProfit,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Profit > out[j].Profit
	})
	return out
}

// FilterByProject returns summaries whose name or client contains the
// substring, case-insensitively.
func FilterByProject(sums []model.ProjectSummary, project string) []model.ProjectSummary {
	if project == "" {
		return sums
	}
	var result []model.ProjectSummary
	for _, s := range sums {
		if containsIgnoreCase(s.Project.Name, project) || containsIgnoreCase(s.Project.Client, project) {
			result = append(result, s)
		}
	}
	return result
}

// FilterTransactions keeps transactions dated within [since, until).
// Zero bounds are open.
func FilterTransactions(txs []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txs
	}
	var result []model.Transaction
	for _, tx := range txs {
		if !since.IsZero() && tx.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !tx.Date.Before(until) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
