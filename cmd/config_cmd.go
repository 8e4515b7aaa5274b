package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/config"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Version: %s\n", config.Version)
	fmt.Println()

	db := dbPath(cfg)
	if db == "" {
		db = pipeline.DBPath()
	}
	fmt.Println("  [General]")
	fmt.Printf("    Database:       %s\n", db)
	fmt.Printf("    Use database:   %v\n", cfg.General.UseStore)
	fmt.Printf("    Default period: %s\n", cfg.General.DefaultPeriod)
	fmt.Println()

	fmt.Println("  [Profile]")
	fmt.Printf("    Name:    %s\n", cfg.Profile.Name)
	fmt.Printf("    Role:    %s\n", cfg.Profile.Role)
	fmt.Printf("    Email:   %s\n", cfg.Profile.Email)
	fmt.Printf("    Phone:   %s\n", cfg.Profile.Phone)
	fmt.Printf("    Company: %s\n", cfg.Profile.Company)
	fmt.Println()

	fmt.Println("  [Notifications]")
	fmt.Printf("    Email alerts:       %v\n", cfg.Notifications.EmailAlerts)
	fmt.Printf("    Push notifications: %v\n", cfg.Notifications.PushNotifications)
	fmt.Printf("    Weekly reports:     %v\n", cfg.Notifications.WeeklyReports)
	fmt.Printf("    Project updates:    %v\n", cfg.Notifications.ProjectUpdates)
	fmt.Println()

	fmt.Println("  [Auth]")
	if cfg.Auth.Configured() {
		fmt.Printf("    Account:      %s\n", cfg.Auth.Email)
	} else {
		fmt.Println("    Account:      not configured (demo login)")
	}
	if cfg.Auth.TokenSecret != "" {
		fmt.Printf("    Token secret: %s\n", maskSecret(cfg.Auth.TokenSecret))
	} else {
		fmt.Println("    Token secret: not set")
	}
	fmt.Printf("    Token TTL:    %dh\n", cfg.Auth.TokenTTLHours)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Poll interval: %ds\n", cfg.Server.PollIntervalSec)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	for _, o := range cfg.Server.AllowedOrigins {
		fmt.Printf("    Origin:        %s\n", o)
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Printf("    File:  %s\n", cfg.Log.File)
	}
	fmt.Println()

	fmt.Println("  Run `archifinance setup` to reconfigure.")
	return nil
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
