// Package cmd implements the archifinance CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/config"
	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

var (
	flagDB       string
	flagNoStore  bool
	flagProject  string
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:          "archifinance",
	Short:        "Project finance tracker for architecture studios",
	Long:         "Track budgets, income and expenses across architecture projects and get alerted when one goes off track.",
	SilenceUsage: true,
	RunE:         runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default: data dir/archifinance.db)")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Use the in-memory sample portfolio instead of the database")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Filter to project (name or client substring)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// app bundles what a command needs: config, logger and the loaded ledger.
type app struct {
	cfg     config.Config
	log     *logging.Logger
	data    *pipeline.LoadResult
	logFile io.Closer
}

// openApp loads config, builds the logger and loads the ledger.
// The caller must Close the result.
func openApp(ctx context.Context) (*app, error) {
	return openAppWith(ctx, false)
}

// openAppWith is openApp for full-screen commands: with fullscreen set, logs
// go only to the configured log file, never to stderr.
func openAppWith(ctx context.Context, fullscreen bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}
	if fullscreen && cfg.Log.File == "" {
		a.log = logging.Discard()
	} else if err := a.initLogger(); err != nil {
		return nil, err
	}

	data, err := pipeline.Load(ctx, pipeline.LoadOptions{
		DBPath:   dbPath(cfg),
		InMemory: flagNoStore || !cfg.General.UseStore,
		Logger:   a.log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.data = data
	if data.Seeded && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Created %s with the sample portfolio\n", data.Store.Path())
	}
	return a, nil
}

func (a *app) initLogger() error {
	lvlName := a.cfg.Log.Level
	if flagLogLevel != "" {
		lvlName = flagLogLevel
	}
	level, err := logging.ParseLevel(lvlName)
	if err != nil {
		return err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	if flagQuiet && flagLogLevel == "" {
		lc.Level = slog.LevelError
	}
	if a.cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.Log.File), 0o750); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
		f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // user-provided log path
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		lc.Output = f
		a.logFile = f
	}
	a.log = logging.New(lc)
	return nil
}

// Close releases the store and the log file.
func (a *app) Close() {
	if a == nil {
		return
	}
	if err := a.data.Close(); err != nil {
		a.log.Warn("closing store", logging.FieldError, err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) ledger() *ledger.Ledger {
	return a.data.Ledger
}

// dbPath resolves --db, then the configured data dir. Empty means the
// default location.
func dbPath(cfg config.Config) string {
	if flagDB != "" {
		return flagDB
	}
	return cfg.DBPath()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// interactive reports whether stdin is a terminal, so forms can be shown.
func interactive() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
