package server

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/archifinance/internal/model"
)

func alertSet(alerts []model.Alert) map[string]model.Alert {
	set := make(map[string]model.Alert, len(alerts))
	for _, a := range alerts {
		set[a.ID] = a
	}
	return set
}

// diffAlerts returns the alerts present only in curr (raised) and only in
// prev (cleared), each sorted by ID.
func diffAlerts(prev, curr map[string]model.Alert) (raised, cleared []model.Alert) {
	for id, a := range curr {
		if _, ok := prev[id]; !ok {
			raised = append(raised, a)
		}
	}
	for id, a := range prev {
		if _, ok := curr[id]; !ok {
			cleared = append(cleared, a)
		}
	}
	byID := func(as []model.Alert) {
		sort.Slice(as, func(i, j int) bool { return as[i].ID < as[j].ID })
	}
	byID(raised)
	byID(cleared)
	return raised, cleared
}

func humanizeAge(t time.Time) string {
	return humanize.Time(t)
}
