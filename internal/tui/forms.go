package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/model"
)

const dateLayout = "2006-01-02"

// ProjectInput holds the raw answers of the new-project form.
type ProjectInput struct {
	Name           string
	Client         string
	Budget         string
	InitialPayment string
}

// Parse converts the answers into a ledger request. An empty initial
// payment means none.
func (in ProjectInput) Parse() (ledger.NewProject, error) {
	out := ledger.NewProject{
		Name:   strings.TrimSpace(in.Name),
		Client: strings.TrimSpace(in.Client),
	}
	budget, err := cli.ParseAmount(in.Budget)
	if err != nil {
		return out, fmt.Errorf("budget: %w", ledger.ErrInvalidBudget)
	}
	out.Budget = budget
	if strings.TrimSpace(in.InitialPayment) != "" {
		initial, err := cli.ParseAmount(in.InitialPayment)
		if err != nil {
			return out, fmt.Errorf("initial payment: %w", ledger.ErrInvalidAmount)
		}
		out.InitialPayment = initial
	}
	return out, nil
}

// TxInput holds the raw answers of the new-transaction form.
type TxInput struct {
	ProjectID   string
	Kind        string
	Amount      string
	Description string
	Date        string // YYYY-MM-DD, empty for today
}

// Parse converts the answers into a ledger request.
func (in TxInput) Parse() (ledger.NewTransaction, error) {
	out := ledger.NewTransaction{
		ProjectID:   in.ProjectID,
		Kind:        model.TxKind(strings.ToLower(strings.TrimSpace(in.Kind))),
		Description: strings.TrimSpace(in.Description),
	}
	amount, err := cli.ParseAmount(in.Amount)
	if err != nil {
		return out, fmt.Errorf("amount: %w", ledger.ErrInvalidAmount)
	}
	out.Amount = amount
	if d := strings.TrimSpace(in.Date); d != "" {
		date, err := time.ParseInLocation(dateLayout, d, time.Local)
		if err != nil {
			return out, fmt.Errorf("date %q: want YYYY-MM-DD", d)
		}
		out.Date = date
	}
	return out, nil
}

// LoginInput holds the login form answers.
type LoginInput struct {
	Email    string
	Password string
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validAmount(s string) error {
	if _, err := cli.ParseAmount(s); err != nil {
		return errors.New("enter an amount, e.g. 35.000.000 or 35M")
	}
	return nil
}

func optionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validAmount(s)
}

func validDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

// NewLoginForm builds the login gate.
func NewLoginForm(in *LoginInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@studio.com").
				Value(&in.Email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&in.Password).
				Validate(required("password")),
		).Title("ArchiFinance").Description("Sign in to continue"),
	)
}

// NewProjectForm builds the new-project form.
func NewProjectForm(in *ProjectInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project name").Value(&in.Name).Validate(required("name")),
			huh.NewInput().Title("Client").Value(&in.Client).Validate(required("client")),
			huh.NewInput().Title("Budget").Placeholder("50.000.000").Value(&in.Budget).Validate(validAmount),
			huh.NewInput().Title("Initial payment").Description("Optional").Value(&in.InitialPayment).Validate(optionalAmount),
		).Title("New project"),
	)
}

// NewTransactionForm builds the new-transaction form. When in.ProjectID is
// empty a project picker is shown first.
func NewTransactionForm(in *TxInput, projects []model.Project) *huh.Form {
	if in.Kind == "" {
		in.Kind = string(model.Expense)
	}
	var fields []huh.Field
	if in.ProjectID == "" {
		opts := make([]huh.Option[string], 0, len(projects))
		for _, p := range projects {
			opts = append(opts, huh.NewOption(p.Name, p.ID))
		}
		fields = append(fields, huh.NewSelect[string]().Title("Project").Options(opts...).Value(&in.ProjectID))
	}
	fields = append(fields,
		huh.NewSelect[string]().
			Title("Type").
			Options(
				huh.NewOption("Income", string(model.Income)),
				huh.NewOption("Expense", string(model.Expense)),
			).
			Value(&in.Kind),
		huh.NewInput().Title("Amount").Value(&in.Amount).Validate(validAmount),
		huh.NewInput().Title("Description").Placeholder("Material Purchase").Value(&in.Description).Validate(required("description")),
		huh.NewInput().Title("Date").Placeholder(time.Now().Format(dateLayout)).Value(&in.Date).Validate(validDate),
	)
	return huh.NewForm(huh.NewGroup(fields...).Title("New transaction"))
}

// NewConfirmForm asks a yes/no question.
func NewConfirmForm(title, description string, ok *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(ok),
		),
	)
}
