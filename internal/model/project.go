// Package model defines domain types for archifinance projects and metrics.
package model

import "time"

// TxKind distinguishes money coming in from money going out.
type TxKind string

const (
	Income  TxKind = "income"
	Expense TxKind = "expense"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TxKind) Valid() bool {
	return k == Income || k == Expense
}

// Project is an architecture engagement with an allocated budget.
// Its display status is never stored; see finance.ClassifyStatus.
type Project struct {
	ID          string
	Name        string
	Client      string
	Budget      int64 // whole pesos
	CreatedAt   time.Time
	CompletedAt time.Time // zero while active
}

// Active reports whether the project has not been completed yet.
func (p Project) Active() bool {
	return p.CompletedAt.IsZero()
}

// Transaction is an append-only income or expense entry for a project.
type Transaction struct {
	ID          string
	ProjectID   string
	Kind        TxKind
	Amount      int64 // whole pesos, non-negative
	Description string
	Date        time.Time
}

// CompletedProject is an archived engagement shown in the history view.
type CompletedProject struct {
	ID            string
	Name          string
	Client        string
	CompletedAt   time.Time
	TotalBudget   int64
	TotalExpenses int64
	Profit        int64
	Profitability float64
}
