package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	names := []string{"Projects", "Alerts", "Reports", "History", "Settings"}
	for active := range names {
		a := App{activeTab: active}
		pos := 0
		for i, name := range names {
			w := len(name) + 2 // horizontal padding
			if i != active {
				w += 3 // "[n]" key hint
			}
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab %d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d x past the last tab -> %d, want -1", active, got)
		}
	}
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := newTestApp(t)
	x := len("Projects") + 2 + 1 + 2 // inside "Alerts"
	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabAlerts {
		t.Fatalf("activeTab = %d, want %d", got, tabAlerts)
	}
}

func TestMouseWheelMovesProjectCursor(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.(App).projState.cursor; got != 2 {
		t.Fatalf("cursor = %d, want 2 (clamped to the last project)", got)
	}
}
