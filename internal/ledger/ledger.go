// Package ledger owns the mutable state of archifinance: projects, their
// transactions, the completed-project archive and the set of dismissed
// alerts. Everything derived (financials, status, alerts) is recomputed
// from that state on every read.
package ledger

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/model"
)

// InitialPaymentDescription labels the income entry created with a project.
const InitialPaymentDescription = "Initial Payment"

// Sink persists ledger mutations. Each call happens under the ledger's write
// lock and before the in-memory state changes, so a failed write leaves the
// ledger untouched. Every call is all or nothing: an implementation must not
// keep part of a mutation when it returns an error.
//
// cleared lists dismissed alert ids whose condition no longer holds once the
// mutation lands; they are deleted together with it.
type Sink interface {
	// CreateProject stores p and, when non-nil, its initial payment.
	CreateProject(ctx context.Context, p model.Project, initial *model.Transaction) error
	SaveTransaction(ctx context.Context, tx model.Transaction, cleared []string) error
	// CompleteProject stores the completed project and its archive record.
	CompleteProject(ctx context.Context, p model.Project, c model.CompletedProject, cleared []string) error
	SaveDismissal(ctx context.Context, alertID string, at time.Time) error
	DeleteDismissal(ctx context.Context, alertID string) error
}

// Snapshot is a detached copy of the ledger state.
type Snapshot struct {
	Projects     []model.Project
	Transactions []model.Transaction
	History      []model.CompletedProject
	Dismissed    []string
}

// Empty reports whether the snapshot holds no projects and no history.
func (s Snapshot) Empty() bool {
	return len(s.Projects) == 0 && len(s.History) == 0
}

// NewProject is the input for AddProject.
type NewProject struct {
	Name           string
	Client         string
	Budget         int64
	InitialPayment int64
}

// NewTransaction is the input for AddTransaction. A zero Date means now.
type NewTransaction struct {
	ProjectID   string
	Kind        model.TxKind
	Amount      int64
	Description string
	Date        time.Time
}

// Ledger is the single state controller. It is safe for concurrent use.
type Ledger struct {
	mu        sync.RWMutex
	projects  []model.Project
	txs       map[string][]model.Transaction
	history   []model.CompletedProject
	dismissed map[string]struct{}

	sink  Sink
	log   *logging.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSink persists every mutation through s.
func WithSink(s Sink) Option {
	return func(l *Ledger) { l.sink = s }
}

// WithLogger sets the logger used for mutation events.
func WithLogger(lg *logging.Logger) Option {
	return func(l *Ledger) { l.log = lg.WithComponent(logging.ComponentLedger) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs overrides the uuid generator.
func WithIDs(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		txs:       make(map[string][]model.Transaction),
		dismissed: make(map[string]struct{}),
		log:       logging.Discard(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromSnapshot returns a ledger loaded with s.
func FromSnapshot(s Snapshot, opts ...Option) *Ledger {
	l := New(opts...)
	l.load(s)
	return l
}

// Reset replaces the whole state with s without touching the sink.
func (l *Ledger) Reset(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.load(s)
}

func (l *Ledger) load(s Snapshot) {
	l.projects = slices.Clone(s.Projects)
	l.txs = make(map[string][]model.Transaction, len(s.Projects))
	for _, tx := range s.Transactions {
		l.txs[tx.ProjectID] = append(l.txs[tx.ProjectID], tx)
	}
	l.history = slices.Clone(s.History)
	l.dismissed = make(map[string]struct{}, len(s.Dismissed))
	for _, id := range s.Dismissed {
		l.dismissed[id] = struct{}{}
	}
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		Projects:  slices.Clone(l.projects),
		History:   slices.Clone(l.history),
		Dismissed: l.dismissedIDs(),
	}
	for _, p := range l.projects {
		s.Transactions = append(s.Transactions, l.txs[p.ID]...)
	}
	return s
}

// AddProject validates and records a new project. A positive initial payment
// is recorded as an income transaction dated at creation.
func (l *Ledger) AddProject(ctx context.Context, in NewProject) (model.Project, error) {
	name := strings.TrimSpace(in.Name)
	client := strings.TrimSpace(in.Client)
	switch {
	case name == "":
		return model.Project{}, fmt.Errorf("adding project: %w", ErrEmptyName)
	case client == "":
		return model.Project{}, fmt.Errorf("adding project %q: %w", name, ErrEmptyClient)
	case in.Budget <= 0:
		return model.Project{}, fmt.Errorf("adding project %q: %w", name, ErrInvalidBudget)
	case in.InitialPayment < 0:
		return model.Project{}, fmt.Errorf("adding project %q: initial payment: %w", name, ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	p := model.Project{
		ID:        l.newID(),
		Name:      name,
		Client:    client,
		Budget:    in.Budget,
		CreatedAt: now,
	}

	var initial *model.Transaction
	if in.InitialPayment > 0 {
		initial = &model.Transaction{
			ID:          l.newID(),
			ProjectID:   p.ID,
			Kind:        model.Income,
			Amount:      in.InitialPayment,
			Description: InitialPaymentDescription,
			Date:        now,
		}
	}

	if l.sink != nil {
		if err := l.sink.CreateProject(ctx, p, initial); err != nil {
			return model.Project{}, fmt.Errorf("saving project: %w", err)
		}
	}

	l.projects = append(l.projects, p)
	if initial != nil {
		l.txs[p.ID] = append(l.txs[p.ID], *initial)
	}
	l.log.Info("project added",
		logging.FieldOperation, logging.OpCreate,
		logging.FieldProject, p.ID,
		logging.FieldAmount, p.Budget)
	return p, nil
}

// AddTransaction validates and appends a transaction to an active project.
func (l *Ledger) AddTransaction(ctx context.Context, in NewTransaction) (model.Transaction, error) {
	desc := strings.TrimSpace(in.Description)
	switch {
	case !in.Kind.Valid():
		return model.Transaction{}, fmt.Errorf("adding transaction: %q: %w", in.Kind, ErrInvalidKind)
	case in.Amount <= 0:
		return model.Transaction{}, fmt.Errorf("adding transaction: %w", ErrInvalidAmount)
	case desc == "":
		return model.Transaction{}, fmt.Errorf("adding transaction: %w", ErrEmptyDescription)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(in.ProjectID)
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("adding transaction to %q: %w", in.ProjectID, ErrUnknownProject)
	}
	if !l.projects[i].Active() {
		return model.Transaction{}, fmt.Errorf("adding transaction to %q: %w", l.projects[i].Name, ErrProjectCompleted)
	}

	date := in.Date
	if date.IsZero() {
		date = l.now()
	}
	tx := model.Transaction{
		ID:          l.newID(),
		ProjectID:   in.ProjectID,
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: desc,
		Date:        date,
	}

	next := append(slices.Clone(l.txs[tx.ProjectID]), tx)
	cleared := l.staleDismissals(l.projects[i], next)

	if l.sink != nil {
		if err := l.sink.SaveTransaction(ctx, tx, cleared); err != nil {
			return model.Transaction{}, fmt.Errorf("saving transaction: %w", err)
		}
	}

	l.txs[tx.ProjectID] = next
	l.forget(cleared)
	l.log.Info("transaction added",
		logging.FieldOperation, logging.OpAppend,
		logging.FieldProject, tx.ProjectID,
		logging.FieldKind, string(tx.Kind),
		logging.FieldAmount, tx.Amount)
	return tx, nil
}

// CompleteProject archives an active project using its current financials.
// Profitability in the archive is profit over budget, matching the seeded
// history records.
func (l *Ledger) CompleteProject(ctx context.Context, id string) (model.CompletedProject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return model.CompletedProject{}, fmt.Errorf("completing %q: %w", id, ErrUnknownProject)
	}
	p := l.projects[i]
	if !p.Active() {
		return model.CompletedProject{}, fmt.Errorf("completing %q: %w", p.Name, ErrProjectCompleted)
	}

	f := finance.ComputeFinancials(l.txs[p.ID], p.Budget)
	p.CompletedAt = l.now()
	c := model.CompletedProject{
		ID:            p.ID,
		Name:          p.Name,
		Client:        p.Client,
		CompletedAt:   p.CompletedAt,
		TotalBudget:   p.Budget,
		TotalExpenses: f.TotalExpenses,
		Profit:        f.NetProfit,
		Profitability: finance.ROI(f.NetProfit, p.Budget),
	}

	cleared := l.staleDismissals(p, l.txs[p.ID])

	if l.sink != nil {
		if err := l.sink.CompleteProject(ctx, p, c, cleared); err != nil {
			return model.CompletedProject{}, fmt.Errorf("saving completion: %w", err)
		}
	}

	l.projects[i] = p
	l.history = append(l.history, c)
	l.forget(cleared)
	l.log.Info("project completed",
		logging.FieldOperation, logging.OpComplete,
		logging.FieldProject, p.ID,
		logging.FieldAmount, c.Profit)
	return c, nil
}

// Projects returns the active projects in creation order.
func (l *Ledger) Projects() []model.Project {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Project, 0, len(l.projects))
	for _, p := range l.projects {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// Project returns the project with the given id, active or not.
func (l *Ledger) Project(id string) (model.Project, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("project %q: %w", id, ErrUnknownProject)
	}
	return l.projects[i], nil
}

// FindProject resolves an id or a case-insensitive project name.
func (l *Ledger) FindProject(query string) (model.Project, error) {
	q := strings.TrimSpace(query)
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(q); i >= 0 {
		return l.projects[i], nil
	}
	for _, p := range l.projects {
		if strings.EqualFold(p.Name, q) {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project %q: %w", q, ErrUnknownProject)
}

// Transactions returns a copy of one project's transactions in entry order.
func (l *Ledger) Transactions(projectID string) []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.txs[projectID])
}

// AllTransactions returns every transaction of the active projects.
func (l *Ledger) AllTransactions() []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Transaction
	for _, p := range l.projects {
		if p.Active() {
			out = append(out, l.txs[p.ID]...)
		}
	}
	return out
}

// Financials derives a project's financials from its transactions.
func (l *Ledger) Financials(projectID string) (model.Financials, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(projectID)
	if i < 0 {
		return model.Financials{}, fmt.Errorf("project %q: %w", projectID, ErrUnknownProject)
	}
	return finance.ComputeFinancials(l.txs[projectID], l.projects[i].Budget), nil
}

// Summaries derives financials, status and health for every active project.
func (l *Ledger) Summaries() []model.ProjectSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.ProjectSummary, 0, len(l.projects))
	for _, p := range l.projects {
		if p.Active() {
			out = append(out, finance.Summarize(p, l.txs[p.ID]))
		}
	}
	return out
}

// ActiveAlerts evaluates the alert rules for every active project and drops
// dismissed ids.
func (l *Ledger) ActiveAlerts() []model.Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return finance.FilterDismissed(l.allAlerts(), l.dismissed)
}

// ProjectAlerts is ActiveAlerts limited to one project.
func (l *Ledger) ProjectAlerts(projectID string) []model.Alert {
	var out []model.Alert
	for _, a := range l.ActiveAlerts() {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out
}

func (l *Ledger) allAlerts() []model.Alert {
	now := l.now()
	var alerts []model.Alert
	for _, p := range l.projects {
		if !p.Active() {
			continue
		}
		f := finance.ComputeFinancials(l.txs[p.ID], p.Budget)
		alerts = append(alerts, finance.GenerateAlertsAt(p, f, now)...)
	}
	return alerts
}

// Dismiss suppresses a currently generated alert. Dismissing an alert that
// is already dismissed is a no-op.
func (l *Ledger) Dismiss(ctx context.Context, alertID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.dismissed[alertID]; ok {
		return nil
	}
	found := slices.ContainsFunc(l.allAlerts(), func(a model.Alert) bool { return a.ID == alertID })
	if !found {
		return fmt.Errorf("dismissing %q: %w", alertID, ErrAlertNotFound)
	}

	if l.sink != nil {
		if err := l.sink.SaveDismissal(ctx, alertID, l.now()); err != nil {
			return fmt.Errorf("saving dismissal: %w", err)
		}
	}
	l.dismissed[alertID] = struct{}{}
	l.log.Info("alert dismissed", logging.FieldOperation, logging.OpDismiss, logging.FieldAlert, alertID)
	return nil
}

// Restore removes an id from the dismissed set.
func (l *Ledger) Restore(ctx context.Context, alertID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.dismissed[alertID]; !ok {
		return fmt.Errorf("restoring %q: %w", alertID, ErrAlertNotFound)
	}
	if l.sink != nil {
		if err := l.sink.DeleteDismissal(ctx, alertID); err != nil {
			return fmt.Errorf("deleting dismissal: %w", err)
		}
	}
	delete(l.dismissed, alertID)
	l.log.Info("alert restored", logging.FieldOperation, logging.OpRestore, logging.FieldAlert, alertID)
	return nil
}

// staleDismissals returns the dismissed ids of p that txs no longer raise.
// A completed project raises nothing.
func (l *Ledger) staleDismissals(p model.Project, txs []model.Transaction) []string {
	live := make(map[string]struct{})
	if p.Active() {
		for _, a := range finance.GenerateAlertsAt(p, finance.ComputeFinancials(txs, p.Budget), l.now()) {
			live[a.ID] = struct{}{}
		}
	}
	var stale []string
	for _, kind := range model.AlertKinds {
		id := finance.AlertID(p.ID, kind)
		if _, ok := l.dismissed[id]; !ok {
			continue
		}
		if _, ok := live[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

func (l *Ledger) forget(ids []string) {
	for _, id := range ids {
		delete(l.dismissed, id)
		l.log.Debug("dismissal cleared", logging.FieldOperation, logging.OpRestore, logging.FieldAlert, id)
	}
}

// PruneDismissals drops dismissed ids that no current alert carries, so a
// condition that cleared and later returns raises its alert again. It
// returns the ids it removed.
func (l *Ledger) PruneDismissals(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := make(map[string]struct{})
	for _, a := range l.allAlerts() {
		live[a.ID] = struct{}{}
	}
	var pruned []string
	for _, id := range l.dismissedIDs() {
		if _, ok := live[id]; ok {
			continue
		}
		if l.sink != nil {
			if err := l.sink.DeleteDismissal(ctx, id); err != nil {
				return pruned, fmt.Errorf("pruning dismissal %q: %w", id, err)
			}
		}
		l.forget([]string{id})
		pruned = append(pruned, id)
	}
	return pruned, nil
}

// Dismissed returns the dismissed alert ids, sorted.
func (l *Ledger) Dismissed() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dismissedIDs()
}

func (l *Ledger) dismissedIDs() []string {
	ids := make([]string, 0, len(l.dismissed))
	for id := range l.dismissed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// History returns the completed-project archive, most recently completed
// first.
func (l *Ledger) History() []model.CompletedProject {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := slices.Clone(l.history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out
}

func (l *Ledger) indexOf(id string) int {
	for i, p := range l.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
