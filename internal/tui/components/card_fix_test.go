package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowPadsShorterCards(t *testing.T) {
	theme.SetActive("archi-blue")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(short, "\n"))
	tallLines := len(strings.Split(tall, "\n"))
	if shortLines >= tallLines {
		t.Fatalf("short card has %d lines, tall card %d", shortLines, tallLines)
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined lines = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Fatalf("padding line %d has no styling: %q", i, lines[i])
		}
	}
}

func TestCardRowWidthIsConsistent(t *testing.T) {
	theme.SetActive("archi-blue")

	joined := CardRow([]string{
		ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20),
		ContentCard("Short", "A", 30),
	})
	lines := strings.Split(joined, "\n")
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Fatalf("line %d width = %d, want %d", i, w, want)
		}
	}
	if want != 50 {
		t.Fatalf("row width = %d, want 50", want)
	}
}

func TestLayoutRow(t *testing.T) {
	got := LayoutRow(10, 3)
	if len(got) != 3 || got[0] != 4 || got[1] != 3 || got[2] != 3 {
		t.Fatalf("LayoutRow(10, 3) = %v, want [4 3 3]", got)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey("3"); got != 2 {
		t.Fatalf("TabIdxByKey(3) = %d, want 2", got)
	}
	if got := TabIdxByKey("x"); got != -1 {
		t.Fatalf("TabIdxByKey(x) = %d, want -1", got)
	}
}

func TestColorForUsage(t *testing.T) {
	th := theme.Active
	cases := []struct {
		pct  float64
		want lipgloss.Color
	}{
		{46, th.Green},
		{75, th.Yellow},
		{90, th.Orange},
		{120, th.Red},
	}
	for _, c := range cases {
		if got := ColorForUsage(c.pct); got != c.want {
			t.Fatalf("ColorForUsage(%v) = %v, want %v", c.pct, got, c.want)
		}
	}
}
