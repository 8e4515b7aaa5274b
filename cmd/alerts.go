package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

var flagShowDismissed bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Active alerts across projects",
	RunE:  runAlerts,
}

var alertsDismissCmd = &cobra.Command{
	Use:   "dismiss <alert-id>",
	Short: "Hide an alert until its condition clears and returns",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsDismiss,
}

var alertsRestoreCmd = &cobra.Command{
	Use:   "restore <alert-id>",
	Short: "Show a dismissed alert again",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsRestore,
}

func init() {
	alertsCmd.Flags().BoolVar(&flagShowDismissed, "dismissed", false, "Also list dismissed alert ids")
	alertsCmd.AddCommand(alertsDismissCmd, alertsRestoreCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()

	sums := pipeline.FilterByProject(l.Summaries(), flagProject)
	alerts := alertsFor(l.ActiveAlerts(), sums)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ALERTS  %d active", len(alerts))))
	fmt.Println()
	fmt.Println("  " + cli.Muted(finance.AssistantName))

	if len(alerts) == 0 {
		fmt.Println("  All projects are on track.")
	} else {
		names := make(map[string]string, len(sums))
		for _, s := range sums {
			names[s.Project.ID] = s.Project.Name
		}
		rows := make([][]string, 0, len(alerts))
		for _, al := range alerts {
			rows = append(rows, []string{
				al.ID,
				truncate(names[al.ProjectID], 24),
				cli.SeverityLabel(al.Severity),
				al.Message,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers:  []string{"ID", "Project", "Severity", "Message"},
			Rows:     rows,
			TextCols: 4,
		}))
	}

	if flagShowDismissed {
		fmt.Println()
		dismissed := l.Dismissed()
		if len(dismissed) == 0 {
			fmt.Println("  " + cli.Muted("No dismissed alerts."))
		}
		for _, id := range dismissed {
			fmt.Println("  " + cli.Muted("dismissed  "+id))
		}
	}
	return nil
}

func runAlertsDismiss(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ledger().Dismiss(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("  Dismissed %s\n", args[0])
	return nil
}

func runAlertsRestore(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ledger().Restore(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("  Restored %s\n", args[0])
	return nil
}
