package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/tui/components"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

type alertsState struct {
	cursor int
	// undo holds alert ids dismissed in this session, most recent last.
	undo []string
}

func (a App) updateAlertsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		return a.moveCursor(1), nil
	case "k", "up":
		return a.moveCursor(-1), nil
	case "d":
		if len(a.alerts) == 0 || a.busy {
			return a, nil
		}
		id := a.alerts[a.alertSt.cursor].ID
		a.alertSt.undo = append(a.alertSt.undo, id)
		l := a.ledger
		return a.run("dismissed "+id, func(ctx context.Context) error {
			return l.Dismiss(ctx, id)
		})
	case "u":
		if a.busy {
			return a, nil
		}
		id := a.lastDismissed()
		if id == "" {
			return a.fail(errors.New("nothing to restore")), nil
		}
		if n := len(a.alertSt.undo); n > 0 {
			a.alertSt.undo = a.alertSt.undo[:n-1]
		}
		l := a.ledger
		return a.run("restored "+id, func(ctx context.Context) error {
			return l.Restore(ctx, id)
		})
	}
	return a, nil
}

// lastDismissed is the most recent dismissal of this session, falling back
// to the last persisted one.
func (a App) lastDismissed() string {
	if n := len(a.alertSt.undo); n > 0 {
		return a.alertSt.undo[n-1]
	}
	if d := a.ledger.Dismissed(); len(d) > 0 {
		return d[len(d)-1]
	}
	return ""
}

func (a App) renderAlertsTab(cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selected := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	inner := components.CardInnerWidth(cw)

	var b strings.Builder
	if len(a.alerts) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).
			Render("All projects are on track. No active alerts."))
		b.WriteString("\n")
	}
	for i, al := range a.alerts {
		name := al.ProjectID
		if p, err := a.ledger.Project(al.ProjectID); err == nil {
			name = p.Name
		}
		style := value
		if i == a.alertSt.cursor {
			style = selected
		}
		head := fmt.Sprintf("%-24s %-18s %s", truncStr(name, 24), al.Kind, cli.FormatAge(al.CreatedAt))
		b.WriteString(severityDot(al.Severity) + " " + style.Render(head) + "\n")
		b.WriteString("  " + label.Render(truncStr(al.Message, inner-2)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("[d] dismiss  [u] restore last"))

	warnings, dangers := severityCounts(a.alerts)
	title := fmt.Sprintf("%s · %d warning, %d danger", finance.AssistantName, warnings, dangers)
	out := components.FocusedCard(title, b.String(), cw)

	if dismissed := a.ledger.Dismissed(); len(dismissed) > 0 {
		out += "\n" + components.ContentCard("Dismissed", label.Render(strings.Join(dismissed, "  ")), cw)
	}
	return out
}

// severityCounts tallies alerts by severity for the overview line.
func severityCounts(alerts []model.Alert) (warnings, dangers int) {
	for _, al := range alerts {
		if al.Severity == model.SeverityDanger {
			dangers++
		} else {
			warnings++
		}
	}
	return warnings, dangers
}
