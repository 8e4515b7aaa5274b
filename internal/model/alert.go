package model

import "time"

// AlertKind identifies which advisory rule fired.
type AlertKind string

const (
	AlertBudgetWarning    AlertKind = "budget-warning"
	AlertLoss             AlertKind = "loss-alert"
	AlertLowProfitability AlertKind = "low-profitability"
)

// AlertKinds lists every rule in evaluation order.
var AlertKinds = []AlertKind{AlertBudgetWarning, AlertLoss, AlertLowProfitability}

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Alert is an advisory message regenerated from current financials.
// ID depends only on ProjectID and Kind, so it is stable across evaluations.
type Alert struct {
	ID        string
	ProjectID string
	Kind      AlertKind
	Message   string
	Severity  Severity
	CreatedAt time.Time
}
