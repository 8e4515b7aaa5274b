package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/tui"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := openAppWith(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	theme.SetActive(a.cfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes;
	// lipgloss may otherwise fall back to the Ascii profile.
	lipgloss.SetColorProfile(termenv.TrueColor)

	a.log.WithComponent(logging.ComponentTUI).Info("dashboard started", "projects", len(a.ledger().Projects()))

	app := tui.NewApp(tui.Options{
		Ledger:  a.ledger(),
		Config:  a.cfg,
		Logger:  a.log,
		Project: flagProject,
		Reload:  a.data.Reload,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
