package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/source"
)

func runTxImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	l := a.ledger()
	lg := a.log.WithComponent(logging.ComponentImport)

	files, err := source.ScanPath(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("\n  No .jsonl files found.")
		return nil
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Parsing %d files (%d projects)...\n", len(files), source.CountProjects(files))
	}

	results, err := source.ParseAll(cmd.Context(), files, flagImportWorkers)
	if err != nil {
		return err
	}

	var imported, skipped, dups, failed int
	var income, expenses int64
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  %s: %v\n", res.File.Path, res.Err)
			continue
		}
		skipped += res.Skipped
		dups += res.Duplicates
		failed += res.ParseErrors
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}

		for _, e := range res.Entries {
			p, err := l.FindProject(e.Project)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "  %s:%d: %v\n", res.File.Path, e.Line, err)
				continue
			}
			if flagImportDryRun {
				imported++
				continue
			}
			tx, err := l.AddTransaction(cmd.Context(), ledger.NewTransaction{
				ProjectID:   p.ID,
				Kind:        e.Kind,
				Amount:      e.Amount,
				Description: e.Description,
				Date:        e.Date,
			})
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "  %s:%d: %v\n", res.File.Path, e.Line, err)
				continue
			}
			imported++
			if tx.Kind == model.Income {
				income += tx.Amount
			} else {
				expenses += tx.Amount
			}
		}
	}
	lg.Info("import finished", logging.FieldOperation, logging.OpImport, "files", len(files), "imported", imported, "failed", failed, "dry_run", flagImportDryRun)

	verb := "Imported"
	if flagImportDryRun {
		verb = "Would import"
	}
	fmt.Printf("\n  %s %d transactions (income %s, expenses %s)\n", verb, imported, cli.FormatCOP(income), cli.FormatCOP(expenses))
	fmt.Printf("  Skipped %d lines, replaced %d duplicates\n", skipped, dups)
	if failed > 0 {
		return fmt.Errorf("%d lines failed to import", failed)
	}
	return nil
}
