package finance

import (
	"fmt"
	"time"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/model"
)

// AssistantName signs the alert advice shown to the user.
const AssistantName = "Andrés · Asistente IA"

// LowProfitabilityPct is the ceiling of the low-profitability band (exclusive).
const LowProfitabilityPct = 15

// AlertID is the stable identifier for a (project, rule) pair.
func AlertID(projectID string, kind model.AlertKind) string {
	return string(kind) + "-" + projectID
}

// GenerateAlerts evaluates every advisory rule against a project's financials.
func GenerateAlerts(p model.Project, f model.Financials) []model.Alert {
	return GenerateAlertsAt(p, f, time.Now())
}

// GenerateAlertsAt is GenerateAlerts with an explicit evaluation time.
// Rules are independent; zero, one or several may fire, always in the order
// budget warning, loss, low profitability.
func GenerateAlertsAt(p model.Project, f model.Financials, at time.Time) []model.Alert {
	var alerts []model.Alert

	if f.BudgetUsed > BudgetWarningPct {
		alerts = append(alerts, model.Alert{
			ID:        AlertID(p.ID, model.AlertBudgetWarning),
			ProjectID: p.ID,
			Kind:      model.AlertBudgetWarning,
			Severity:  model.SeverityWarning,
			CreatedAt: at,
			Message: fmt.Sprintf(
				"¡Atención! El proyecto \"%s\" ha utilizado %s%% del presupuesto. "+
					"Te recomiendo revisar los gastos restantes y considerar renegociar con %s si es necesario.",
				p.Name, cli.Fixed1(f.BudgetUsed), p.Client),
		})
	}

	if f.NetProfit < 0 {
		alerts = append(alerts, model.Alert{
			ID:        AlertID(p.ID, model.AlertLoss),
			ProjectID: p.ID,
			Kind:      model.AlertLoss,
			Severity:  model.SeverityDanger,
			CreatedAt: at,
			Message: fmt.Sprintf(
				"⚠️ El proyecto \"%s\" está generando pérdidas de %s. "+
					"Sugiero analizar los costos y buscar formas de optimizar el presupuesto con urgencia.",
				p.Name, cli.FormatCOP(-f.NetProfit)),
		})
	}

	if f.Profitability > 0 && f.Profitability < LowProfitabilityPct {
		alerts = append(alerts, model.Alert{
			ID:        AlertID(p.ID, model.AlertLowProfitability),
			ProjectID: p.ID,
			Kind:      model.AlertLowProfitability,
			Severity:  model.SeverityWarning,
			CreatedAt: at,
			Message: fmt.Sprintf(
				"El proyecto \"%s\" tiene una rentabilidad baja del %s%%. "+
					"Para proyectos futuros, considera aumentar tus honorarios o reducir costos operativos.",
				p.Name, cli.Fixed1(f.Profitability)),
		})
	}

	return alerts
}

// FilterDismissed drops alerts whose IDs are in the dismissed set.
func FilterDismissed(alerts []model.Alert, dismissed map[string]struct{}) []model.Alert {
	if len(dismissed) == 0 {
		return alerts
	}
	out := alerts[:0:0]
	for _, a := range alerts {
		if _, ok := dismissed[a.ID]; !ok {
			out = append(out, a)
		}
	}
	return out
}
