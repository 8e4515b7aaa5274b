package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/archifinance/internal/auth"
	"github.com/theirongolddev/archifinance/internal/config"
	"github.com/theirongolddev/archifinance/internal/tui"
)

var (
	flagLoginEmail    string
	flagLoginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials and print an API token",
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&flagLoginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&flagLoginPassword, "password", "", "Account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	in := tui.LoginInput{Email: flagLoginEmail, Password: flagLoginPassword}
	if in.Email == "" || in.Password == "" {
		if !interactive() {
			return auth.ErrMissingCredentials
		}
		if err := tui.NewLoginForm(&in).Run(); err != nil {
			return err
		}
	}

	acct := accountFrom(cfg)
	email, err := acct.Check(in.Email, in.Password)
	if err != nil {
		return err
	}
	if cfg.Auth.TokenSecret == "" {
		return errors.New("no token secret configured; run `archifinance setup` or set ARCHIFINANCE_TOKEN_SECRET")
	}
	issuer, err := issuerFrom(cfg)
	if err != nil {
		return err
	}
	token, exp, err := issuer.Issue(email)
	if err != nil {
		return err
	}

	if acct.Demo() && !flagQuiet {
		fmt.Println("  Demo login: no account is configured.")
	}
	if !flagQuiet {
		fmt.Printf("  Token for %s, valid until %s\n", email, exp.Local().Format(time.RFC1123))
	}
	fmt.Println(token)
	return nil
}

func accountFrom(cfg config.Config) auth.Account {
	return auth.Account{Email: cfg.Auth.Email, PasswordHash: cfg.Auth.PasswordHash}
}

func issuerFrom(cfg config.Config) (*auth.Issuer, error) {
	return auth.NewIssuer(cfg.Auth.TokenSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
}
