// Package store persists the ledger in an embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const timeLayout = time.RFC3339Nano

// DB is a SQLite-backed ledger.Sink.
type DB struct {
	db   *sql.DB
	path string
	log  *logging.Logger
}

var _ ledger.Sink = (*DB)(nil)

// Open migrates and opens the database at dbPath, creating its directory.
func Open(ctx context.Context, dbPath string, lg *logging.Logger) (*DB, error) {
	if lg == nil {
		lg = logging.Discard()
	}
	lg = lg.WithComponent(logging.ComponentStore)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if err := Migrate(dbPath); err != nil {
		return nil, err
	}
	lg.Debug("schema up to date", logging.FieldOperation, logging.OpMigrate, logging.FieldPath, dbPath)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to db: %w", err)
	}
	return &DB{db: db, path: dbPath, log: lg}, nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *DB) Path() string {
	return s.path
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertProject = `INSERT INTO projects (id, name, client, budget, created_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		client = excluded.client,
		budget = excluded.budget,
		completed_at = excluded.completed_at`

func saveProject(ctx context.Context, e execer, p model.Project) error {
	_, err := e.ExecContext(ctx, upsertProject,
		p.ID, p.Name, p.Client, p.Budget, formatTime(p.CreatedAt), formatTime(p.CompletedAt))
	return err
}

func saveTransaction(ctx context.Context, e execer, tx model.Transaction) error {
	_, err := e.ExecContext(ctx, `INSERT INTO transactions
		(id, project_id, kind, amount, description, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.ProjectID, string(tx.Kind), tx.Amount, tx.Description, formatTime(tx.Date))
	return err
}

func saveCompleted(ctx context.Context, e execer, c model.CompletedProject) error {
	_, err := e.ExecContext(ctx, `INSERT OR REPLACE INTO completed_projects
		(id, name, client, completed_at, total_budget, total_expenses, profit, profitability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Client, formatTime(c.CompletedAt),
		c.TotalBudget, c.TotalExpenses, c.Profit, c.Profitability)
	return err
}

func saveDismissal(ctx context.Context, e execer, alertID string, at time.Time) error {
	_, err := e.ExecContext(ctx, `INSERT OR REPLACE INTO dismissed_alerts (alert_id, dismissed_at) VALUES (?, ?)`,
		alertID, formatTime(at))
	return err
}

func deleteDismissals(ctx context.Context, e execer, ids []string) error {
	for _, id := range ids {
		if _, err := e.ExecContext(ctx, `DELETE FROM dismissed_alerts WHERE alert_id = ?`, id); err != nil {
			return fmt.Errorf("deleting dismissal %s: %w", id, err)
		}
	}
	return nil
}

// inTx runs fn inside one database transaction and commits only if fn
// succeeds.
func (s *DB) inTx(ctx context.Context, fn func(e execer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateProject inserts a project together with its initial payment.
func (s *DB) CreateProject(ctx context.Context, p model.Project, initial *model.Transaction) error {
	return s.inTx(ctx, func(e execer) error {
		if err := saveProject(ctx, e, p); err != nil {
			return fmt.Errorf("saving project %s: %w", p.ID, err)
		}
		if initial == nil {
			return nil
		}
		if err := saveTransaction(ctx, e, *initial); err != nil {
			return fmt.Errorf("saving initial payment %s: %w", initial.ID, err)
		}
		return nil
	})
}

// SaveTransaction appends a transaction and drops the cleared dismissals.
func (s *DB) SaveTransaction(ctx context.Context, tx model.Transaction, cleared []string) error {
	return s.inTx(ctx, func(e execer) error {
		if err := saveTransaction(ctx, e, tx); err != nil {
			return fmt.Errorf("saving transaction %s: %w", tx.ID, err)
		}
		return deleteDismissals(ctx, e, cleared)
	})
}

// CompleteProject marks p completed and archives c.
func (s *DB) CompleteProject(ctx context.Context, p model.Project, c model.CompletedProject, cleared []string) error {
	return s.inTx(ctx, func(e execer) error {
		if err := saveProject(ctx, e, p); err != nil {
			return fmt.Errorf("saving project %s: %w", p.ID, err)
		}
		if err := saveCompleted(ctx, e, c); err != nil {
			return fmt.Errorf("saving history %s: %w", c.ID, err)
		}
		return deleteDismissals(ctx, e, cleared)
	})
}

// SaveDismissal records a dismissed alert id.
func (s *DB) SaveDismissal(ctx context.Context, alertID string, at time.Time) error {
	if err := saveDismissal(ctx, s.db, alertID, at); err != nil {
		return fmt.Errorf("saving dismissal %s: %w", alertID, err)
	}
	return nil
}

// DeleteDismissal forgets a dismissed alert id.
func (s *DB) DeleteDismissal(ctx context.Context, alertID string) error {
	return deleteDismissals(ctx, s.db, []string{alertID})
}

// Seed writes a whole snapshot in one transaction.
func (s *DB) Seed(ctx context.Context, snap ledger.Snapshot) error {
	err := s.inTx(ctx, func(e execer) error {
		for _, p := range snap.Projects {
			if err := saveProject(ctx, e, p); err != nil {
				return fmt.Errorf("seeding project %s: %w", p.ID, err)
			}
		}
		for _, t := range snap.Transactions {
			if err := saveTransaction(ctx, e, t); err != nil {
				return fmt.Errorf("seeding transaction %s: %w", t.ID, err)
			}
		}
		for _, c := range snap.History {
			if err := saveCompleted(ctx, e, c); err != nil {
				return fmt.Errorf("seeding history %s: %w", c.ID, err)
			}
		}
		now := time.Now()
		for _, id := range snap.Dismissed {
			if err := saveDismissal(ctx, e, id, now); err != nil {
				return fmt.Errorf("seeding dismissal %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("seeded database",
		logging.FieldOperation, logging.OpSeed,
		logging.FieldCount, len(snap.Projects))
	return nil
}

// IsEmpty reports whether the database holds no projects and no history.
func (s *DB) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM projects) + (SELECT COUNT(*) FROM completed_projects)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("counting rows: %w", err)
	}
	return n == 0, nil
}

// Project loads one project by id.
func (s *DB) Project(ctx context.Context, id string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, client, budget, created_at, completed_at FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (model.Project, error) {
	var (
		p                  model.Project
		created, completed string
		err                error
	)
	if err = sc.Scan(&p.ID, &p.Name, &p.Client, &p.Budget, &created, &completed); err != nil {
		return p, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return p, fmt.Errorf("project %s created_at: %w", p.ID, err)
	}
	if p.CompletedAt, err = parseTime(completed); err != nil {
		return p, fmt.Errorf("project %s completed_at: %w", p.ID, err)
	}
	return p, nil
}

// LoadSnapshot reads the full ledger state in insertion order.
func (s *DB) LoadSnapshot(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, client, budget, created_at, completed_at FROM projects ORDER BY seq`)
	if err != nil {
		return snap, fmt.Errorf("querying projects: %w", err)
	}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			_ = rows.Close()
			return snap, err
		}
		snap.Projects = append(snap.Projects, p)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("reading projects: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, project_id, kind, amount, description, date FROM transactions ORDER BY seq`)
	if err != nil {
		return snap, fmt.Errorf("querying transactions: %w", err)
	}
	for rows.Next() {
		var (
			tx   model.Transaction
			kind string
			date string
		)
		if err := rows.Scan(&tx.ID, &tx.ProjectID, &kind, &tx.Amount, &tx.Description, &date); err != nil {
			_ = rows.Close()
			return snap, err
		}
		tx.Kind = model.TxKind(kind)
		if tx.Date, err = parseTime(date); err != nil {
			_ = rows.Close()
			return snap, fmt.Errorf("transaction %s date: %w", tx.ID, err)
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("reading transactions: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, name, client, completed_at, total_budget, total_expenses, profit, profitability
		 FROM completed_projects ORDER BY seq`)
	if err != nil {
		return snap, fmt.Errorf("querying history: %w", err)
	}
	for rows.Next() {
		var (
			c         model.CompletedProject
			completed string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Client, &completed,
			&c.TotalBudget, &c.TotalExpenses, &c.Profit, &c.Profitability); err != nil {
			_ = rows.Close()
			return snap, err
		}
		if c.CompletedAt, err = parseTime(completed); err != nil {
			_ = rows.Close()
			return snap, fmt.Errorf("history %s completed_at: %w", c.ID, err)
		}
		snap.History = append(snap.History, c)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("reading history: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT alert_id FROM dismissed_alerts ORDER BY alert_id`)
	if err != nil {
		return snap, fmt.Errorf("querying dismissals: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return snap, err
		}
		snap.Dismissed = append(snap.Dismissed, id)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("reading dismissals: %w", err)
	}

	s.log.Debug("loaded snapshot",
		logging.FieldOperation, logging.OpLoad,
		logging.FieldCount, len(snap.Projects))
	return snap, nil
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}
