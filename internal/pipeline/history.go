package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/archifinance/internal/model"
)

// HistoryFilter selects which completed projects the history view shows.
type HistoryFilter string

const (
	HistoryAll        HistoryFilter = "all"
	HistoryProfitable HistoryFilter = "profitable"
	HistoryRecent     HistoryFilter = "recent"
)

// HistoryFilters lists the filters in cycling order.
var HistoryFilters = []HistoryFilter{HistoryAll, HistoryProfitable, HistoryRecent}

// RecentCutoff is the date after which a completion counts as recent.
var RecentCutoff = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseHistoryFilter accepts all, profitable or recent. Empty means all.
func ParseHistoryFilter(s string) (HistoryFilter, error) {
	switch HistoryFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", HistoryAll:
		return HistoryAll, nil
	case HistoryProfitable:
		return HistoryProfitable, nil
	case HistoryRecent:
		return HistoryRecent, nil
	}
	return HistoryAll, fmt.Errorf("unknown history filter %q (want all, profitable or recent)", s)
}

// Next returns the filter after f, wrapping around.
func (f HistoryFilter) Next() HistoryFilter {
	for i, g := range HistoryFilters {
		if g == f {
			return HistoryFilters[(i+1)%len(HistoryFilters)]
		}
	}
	return HistoryAll
}

// FilterHistory applies f, preserving order.
func FilterHistory(hist []model.CompletedProject, f HistoryFilter) []model.CompletedProject {
	if f == HistoryAll || f == "" {
		return hist
	}
	var out []model.CompletedProject
	for _, c := range hist {
		switch f {
		case HistoryProfitable:
			if c.Profit > 0 {
				out = append(out, c)
			}
		case HistoryRecent:
			if c.CompletedAt.After(RecentCutoff) {
				out = append(out, c)
			}
		}
	}
	return out
}

// HistoryTotals sums the archive. Revenue is the sum of budgets.
func HistoryTotals(hist []model.CompletedProject) model.HistoryStats {
	stats := model.HistoryStats{Projects: len(hist)}
	var profSum float64
	for _, c := range hist {
		stats.TotalProfit += c.Profit
		stats.TotalRevenue += c.TotalBudget
		profSum += c.Profitability
	}
	if len(hist) > 0 {
		stats.AvgProfitability = profSum / float64(len(hist))
	}
	return stats
}
