package ledger

import (
	"time"

	"github.com/theirongolddev/archifinance/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SampleSnapshot is the demo portfolio: three active projects with their
// transactions plus the archive of completed work.
func SampleSnapshot() Snapshot {
	return Snapshot{
		Projects: []model.Project{
			{ID: "1", Name: "Casa Moderna Laureles", Client: "María González", Budget: 50_000_000, CreatedAt: day(2024, time.January, 15)},
			{ID: "2", Name: "Remodelación Oficina", Client: "Empresas SAS", Budget: 30_000_000, CreatedAt: day(2024, time.February, 1)},
			{ID: "3", Name: "Coastal Villa Renovation", Client: "Roberto Silva", Budget: 60_000_000, CreatedAt: day(2024, time.January, 20)},
		},
		Transactions: []model.Transaction{
			{ID: "1", ProjectID: "1", Kind: model.Income, Amount: 35_000_000, Description: "Client Payment", Date: day(2024, time.January, 20)},
			{ID: "2", ProjectID: "1", Kind: model.Expense, Amount: 18_500_000, Description: "Material Purchase", Date: day(2024, time.January, 25)},
			{ID: "3", ProjectID: "1", Kind: model.Expense, Amount: 5_000_000, Description: "Contractor Fee", Date: day(2024, time.February, 1)},
			{ID: "4", ProjectID: "2", Kind: model.Income, Amount: 15_000_000, Description: "Initial Payment", Date: day(2024, time.February, 5)},
			{ID: "5", ProjectID: "2", Kind: model.Expense, Amount: 22_000_000, Description: "Material Purchase", Date: day(2024, time.February, 10)},
			{ID: "6", ProjectID: "2", Kind: model.Expense, Amount: 3_500_000, Description: "Permit Fees", Date: day(2024, time.February, 15)},
			{ID: "7", ProjectID: "3", Kind: model.Income, Amount: 40_000_000, Description: "Client Payment", Date: day(2024, time.January, 25)},
			{ID: "8", ProjectID: "3", Kind: model.Expense, Amount: 25_000_000, Description: "Material Purchase", Date: day(2024, time.February, 1)},
			{ID: "9", ProjectID: "3", Kind: model.Expense, Amount: 7_000_000, Description: "Labor Costs", Date: day(2024, time.February, 10)},
		},
		History: []model.CompletedProject{
			{ID: "2023-001", Name: "The Modernist Residence", Client: "María González", CompletedAt: day(2024, time.January, 15),
				TotalBudget: 500_000_000, TotalExpenses: 450_000_000, Profit: 50_000_000, Profitability: 10},
			{ID: "2023-002", Name: "Urban Loft Conversion", Client: "Carlos Mendoza", CompletedAt: day(2023, time.December, 20),
				TotalBudget: 200_000_000, TotalExpenses: 180_000_000, Profit: 20_000_000, Profitability: 10},
			{ID: "2023-003", Name: "Sustainable Office Building", Client: "EcoTech Solutions", CompletedAt: day(2023, time.November, 5),
				TotalBudget: 1_000_000_000, TotalExpenses: 950_000_000, Profit: 50_000_000, Profitability: 5},
			{ID: "2024-004", Name: "Coastal Villa Renovation", Client: "Ana Rodríguez", CompletedAt: day(2024, time.February, 28),
				TotalBudget: 350_000_000, TotalExpenses: 320_000_000, Profit: 30_000_000, Profitability: 8.6},
		},
	}
}

// NewSample returns a ledger seeded with SampleSnapshot.
func NewSample(opts ...Option) *Ledger {
	return FromSnapshot(SampleSnapshot(), opts...)
}
