package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/auth"
	"github.com/theirongolddev/archifinance/internal/config"
	"github.com/theirongolddev/archifinance/internal/pipeline"
	"github.com/theirongolddev/archifinance/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set up the login account, profile and preferences",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupValues struct {
	name     string
	company  string
	email    string
	password string
	confirm  string
	theme    string
	period   string
}

func runSetup(_ *cobra.Command, _ []string) error {
	if !interactive() {
		return errors.New("setup needs an interactive terminal")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	v := setupValues{
		name:    cfg.Profile.Name,
		company: cfg.Profile.Company,
		email:   cfg.Auth.Email,
		theme:   cfg.Appearance.Theme,
		period:  cfg.General.DefaultPeriod,
	}
	if v.email == "" {
		v.email = cfg.Profile.Email
	}

	periods := make([]huh.Option[string], 0, len(pipeline.Periods))
	for _, p := range pipeline.Periods {
		periods = append(periods, huh.NewOption(string(p), string(p)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Your name").Value(&v.name),
			huh.NewInput().Title("Studio").Value(&v.company),
		).Title("Welcome to archifinance"),
		huh.NewGroup(
			huh.NewInput().Title("Login email").Value(&v.email).Validate(func(s string) error {
				if s == "" {
					return errors.New("email is required")
				}
				return nil
			}),
			huh.NewInput().Title("Password").
				Description("Leave blank to keep the current one").
				EchoMode(huh.EchoModePassword).Value(&v.password),
			huh.NewInput().Title("Confirm password").
				EchoMode(huh.EchoModePassword).Value(&v.confirm).
				Validate(func(s string) error {
					if s != v.password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		).Title("Account"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").Options(huh.NewOptions(theme.Names()...)...).Value(&v.theme),
			huh.NewSelect[string]().Title("Default report period").Options(periods...).Value(&v.period),
		).Title("Preferences"),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Profile.Name = v.name
	cfg.Profile.Company = v.company
	cfg.Auth.Email = v.email
	if v.password != "" {
		hash, err := auth.HashPassword(v.password)
		if err != nil {
			return err
		}
		cfg.Auth.PasswordHash = hash
	}
	if cfg.Auth.PasswordHash == "" {
		return errors.New("a password is required for a new account")
	}
	if cfg.Auth.TokenSecret == "" {
		secret, err := auth.NewSecret()
		if err != nil {
			return err
		}
		cfg.Auth.TokenSecret = secret
	}
	cfg.Appearance.Theme = v.theme
	cfg.General.DefaultPeriod = v.period

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `archifinance setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
