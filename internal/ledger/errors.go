package ledger

import "errors"

// Validation and lookup errors. Callers match them with errors.Is.
var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidBudget    = errors.New("budget must be greater than zero")
	ErrEmptyName        = errors.New("project name is required")
	ErrEmptyClient      = errors.New("client is required")
	ErrEmptyDescription = errors.New("description is required")
	ErrUnknownProject   = errors.New("project not found")
	ErrInvalidKind      = errors.New("transaction kind must be income or expense")
	ErrProjectCompleted = errors.New("project is already completed")
	ErrAlertNotFound    = errors.New("alert not found")
)
