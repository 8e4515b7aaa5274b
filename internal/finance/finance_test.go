package finance

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/archifinance/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func txs(kinds string, amounts ...int64) []model.Transaction {
	out := make([]model.Transaction, len(amounts))
	for i, amt := range amounts {
		kind := model.Expense
		if kinds[i] == 'i' {
			kind = model.Income
		}
		out[i] = model.Transaction{ProjectID: "p", Kind: kind, Amount: amt}
	}
	return out
}

func TestComputeFinancials_ProfitableProject(t *testing.T) {
	f := ComputeFinancials(txs("iee", 35_000_000, 18_500_000, 5_000_000), 50_000_000)

	if f.TotalIncome != 35_000_000 {
		t.Fatalf("TotalIncome = %d, want 35000000", f.TotalIncome)
	}
	if f.TotalExpenses != 23_500_000 {
		t.Fatalf("TotalExpenses = %d, want 23500000", f.TotalExpenses)
	}
	if f.NetProfit != 11_500_000 {
		t.Fatalf("NetProfit = %d, want 11500000", f.NetProfit)
	}
	if !approx(f.Profitability, 11.5/35*100) {
		t.Fatalf("Profitability = %.4f, want ~32.86", f.Profitability)
	}
	if !approx(f.BudgetUsed, 47) {
		t.Fatalf("BudgetUsed = %.4f, want 47", f.BudgetUsed)
	}
	if got := StatusOf(f); got != model.StatusProfitable {
		t.Fatalf("status = %s, want profitable", got)
	}

	p := model.Project{ID: "1", Name: "Casa Moderna Laureles", Client: "María González", Budget: 50_000_000}
	if alerts := GenerateAlerts(p, f); len(alerts) != 0 {
		t.Fatalf("got %d alerts, want none: %+v", len(alerts), alerts)
	}
}

func TestComputeFinancials_LossProject(t *testing.T) {
	f := ComputeFinancials(txs("iee", 15_000_000, 22_000_000, 3_500_000), 30_000_000)

	if f.NetProfit != -10_500_000 {
		t.Fatalf("NetProfit = %d, want -10500000", f.NetProfit)
	}
	if !approx(f.BudgetUsed, 85) {
		t.Fatalf("BudgetUsed = %.4f, want 85", f.BudgetUsed)
	}
	if got := StatusOf(f); got != model.StatusAtRisk {
		t.Fatalf("status = %s, want at-risk", got)
	}

	p := model.Project{ID: "2", Name: "Remodelación Oficina", Client: "Empresas SAS", Budget: 30_000_000}
	alerts := GenerateAlerts(p, f)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(alerts), alerts)
	}
	if alerts[0].Kind != model.AlertBudgetWarning || alerts[0].Severity != model.SeverityWarning {
		t.Fatalf("alerts[0] = %s/%s, want budget-warning/warning", alerts[0].Kind, alerts[0].Severity)
	}
	if alerts[1].Kind != model.AlertLoss || alerts[1].Severity != model.SeverityDanger {
		t.Fatalf("alerts[1] = %s/%s, want loss-alert/danger", alerts[1].Kind, alerts[1].Severity)
	}
	if !strings.Contains(alerts[0].Message, "85.0%") || !strings.Contains(alerts[0].Message, "Empresas SAS") {
		t.Fatalf("budget message missing usage or client: %q", alerts[0].Message)
	}
	if !strings.Contains(alerts[1].Message, "$10.5M") {
		t.Fatalf("loss message missing amount: %q", alerts[1].Message)
	}
}

func TestComputeFinancials_ZeroGuards(t *testing.T) {
	f := ComputeFinancials(txs("e", 1_000_000), 0)
	if f.Profitability != 0 {
		t.Fatalf("Profitability without income = %f, want 0", f.Profitability)
	}
	if f.BudgetUsed != 0 {
		t.Fatalf("BudgetUsed without budget = %f, want 0", f.BudgetUsed)
	}
	if f.NetProfit != -1_000_000 {
		t.Fatalf("NetProfit = %d, want -1000000", f.NetProfit)
	}

	empty := ComputeFinancials(nil, 10_000_000)
	if empty != (model.Financials{}) {
		t.Fatalf("empty financials = %+v, want zero value", empty)
	}
}

func TestComputeFinancials_BudgetOverrunIsUncapped(t *testing.T) {
	f := ComputeFinancials(txs("e", 15_000_000), 10_000_000)
	if !approx(f.BudgetUsed, 150) {
		t.Fatalf("BudgetUsed = %f, want 150", f.BudgetUsed)
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		prof, used float64
		net        int64
		want       model.Status
	}{
		{50, 10, -1, model.StatusAtRisk},
		{5, 81, 0, model.StatusAtRisk},
		{5, 80, 0, model.StatusProfitable},
		{0, 0, 0, model.StatusProfitable},
		{30, 47, 11_500_000, model.StatusProfitable},
	}
	for _, c := range cases {
		if got := ClassifyStatus(c.prof, c.used, c.net); got != c.want {
			t.Fatalf("ClassifyStatus(%v, %v, %d) = %s, want %s", c.prof, c.used, c.net, got, c.want)
		}
	}
}

func TestGenerateAlerts_BudgetThresholdIsStrict(t *testing.T) {
	p := model.Project{ID: "x", Name: "X", Client: "C"}
	base := model.Financials{TotalIncome: 100, TotalExpenses: 50, NetProfit: 50, Profitability: 50}

	base.BudgetUsed = 80
	if got := GenerateAlerts(p, base); len(got) != 0 {
		t.Fatalf("budgetUsed=80 produced %d alerts, want 0", len(got))
	}

	base.BudgetUsed = 80.01
	got := GenerateAlerts(p, base)
	if len(got) != 1 || got[0].Kind != model.AlertBudgetWarning {
		t.Fatalf("budgetUsed=80.01 produced %+v, want one budget-warning", got)
	}
}

func TestGenerateAlerts_LowProfitabilityBand(t *testing.T) {
	p := model.Project{ID: "x", Name: "X", Client: "C"}

	for _, prof := range []float64{0, 15, 20, -5} {
		f := model.Financials{Profitability: prof}
		for _, a := range GenerateAlerts(p, f) {
			if a.Kind == model.AlertLowProfitability {
				t.Fatalf("profitability=%v fired low-profitability", prof)
			}
		}
	}

	f := ComputeFinancials(txs("ie", 100_000_000, 90_000_000), 200_000_000)
	alerts := GenerateAlerts(p, f)
	if len(alerts) != 1 || alerts[0].Kind != model.AlertLowProfitability {
		t.Fatalf("10%% profitability produced %+v, want one low-profitability", alerts)
	}
	if !strings.Contains(alerts[0].Message, "10.0%") {
		t.Fatalf("low-profitability message = %q, want 10.0%%", alerts[0].Message)
	}
}

func TestGenerateAlerts_IDsAreStableAcrossEvaluations(t *testing.T) {
	p := model.Project{ID: "2", Name: "Remodelación Oficina", Client: "Empresas SAS"}
	f := model.Financials{NetProfit: -1, BudgetUsed: 90, Profitability: -1}

	first := GenerateAlertsAt(p, f, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	second := GenerateAlertsAt(p, f, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	if len(first) != len(second) {
		t.Fatalf("alert count changed between evaluations: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("alert %d id changed: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID != "budget-warning-2" || first[1].ID != "loss-alert-2" {
		t.Fatalf("ids = %q, %q", first[0].ID, first[1].ID)
	}
}

func TestFilterDismissed(t *testing.T) {
	alerts := []model.Alert{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := FilterDismissed(alerts, map[string]struct{}{"b": {}})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("FilterDismissed = %+v, want [a c]", got)
	}
	if len(alerts) != 3 || alerts[1].ID != "b" {
		t.Fatal("FilterDismissed mutated its input")
	}
}

func TestComputeDetail(t *testing.T) {
	f := ComputeFinancials(txs("iee", 35_000_000, 18_500_000, 5_000_000), 50_000_000)
	d := ComputeDetail(f, 50_000_000)

	if !approx(d.ProfitMargin, f.Profitability) {
		t.Fatalf("ProfitMargin = %f, want %f", d.ProfitMargin, f.Profitability)
	}
	if !approx(d.ROI, 23) {
		t.Fatalf("ROI = %f, want 23", d.ROI)
	}
	if d.RemainingBudget != 26_500_000 {
		t.Fatalf("RemainingBudget = %d, want 26500000", d.RemainingBudget)
	}
	if !approx(d.Efficiency, 53) {
		t.Fatalf("Efficiency = %f, want 53", d.Efficiency)
	}
	if !approx(d.ProjectedCompletion, 100/f.BudgetUsed*100) {
		t.Fatalf("ProjectedCompletion = %f", d.ProjectedCompletion)
	}

	over := ComputeDetail(model.Financials{TotalExpenses: 12, BudgetUsed: 120}, 10)
	if over.Efficiency != 0 {
		t.Fatalf("Efficiency over budget = %f, want 0", over.Efficiency)
	}
	if over.RemainingBudget != -2 {
		t.Fatalf("RemainingBudget over budget = %d, want -2", over.RemainingBudget)
	}
	if ComputeDetail(model.Financials{}, 0).ROI != 0 {
		t.Fatal("ROI with zero budget should be 0")
	}
}

func TestHealth(t *testing.T) {
	cases := []struct {
		prof, used float64
		want       model.HealthLevel
	}{
		{25, 60, model.HealthExcellent},
		{25, 75, model.HealthGood},
		{12, 85, model.HealthGood},
		{5, 90, model.HealthWarning},
		{0, 95, model.HealthWarning},
		{-1, 10, model.HealthCritical},
		{30, 96, model.HealthCritical},
	}
	for _, c := range cases {
		if got := Health(c.prof, c.used); got.Level != c.want {
			t.Fatalf("Health(%v, %v) = %s, want %s", c.prof, c.used, got.Level, c.want)
		}
	}
}
