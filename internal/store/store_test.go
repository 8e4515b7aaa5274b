package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/model"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "archifinance.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_FreshDatabaseIsEmpty(t *testing.T) {
	db := openTemp(t)
	empty, err := db.IsEmpty(context.Background())
	if err != nil {
		t.Fatalf("IsEmpty: %v", err)
	}
	if !empty {
		t.Fatal("fresh database should be empty")
	}
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		db, err := Open(ctx, path, nil)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = db.Close()
	}
}

func TestSeedAndLoadSnapshot(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	want := ledger.SampleSnapshot()
	if err := db.Seed(ctx, want); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	got, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if len(got.Projects) != 3 || len(got.Transactions) != 9 || len(got.History) != 4 {
		t.Fatalf("loaded %d projects, %d txs, %d history", len(got.Projects), len(got.Transactions), len(got.History))
	}
	for i, p := range got.Projects {
		if p.ID != want.Projects[i].ID {
			t.Fatalf("project %d = %s, want %s", i, p.ID, want.Projects[i].ID)
		}
		if !p.CreatedAt.Equal(want.Projects[i].CreatedAt) {
			t.Fatalf("project %s CreatedAt = %v, want %v", p.ID, p.CreatedAt, want.Projects[i].CreatedAt)
		}
		if !p.Active() {
			t.Fatalf("project %s loaded as completed", p.ID)
		}
	}
	if got.Transactions[1].Kind != model.Expense || got.Transactions[1].Amount != 18_500_000 {
		t.Fatalf("transaction 2 = %+v", got.Transactions[1])
	}
	if got.History[3].Profitability != 8.6 {
		t.Fatalf("history profitability = %v, want 8.6", got.History[3].Profitability)
	}

	empty, err := db.IsEmpty(ctx)
	if err != nil || empty {
		t.Fatalf("IsEmpty after seed = %v, %v", empty, err)
	}
}

func TestLedgerWritesThrough(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	if err := db.Seed(ctx, ledger.SampleSnapshot()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	clock := time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC)
	l := ledger.FromSnapshot(snap, ledger.WithSink(db), ledger.WithClock(func() time.Time { return clock }))

	p, err := l.AddProject(ctx, ledger.NewProject{Name: "Casa Campestre", Client: "Luis Pérez", Budget: 80_000_000, InitialPayment: 10_000_000})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if _, err := l.AddTransaction(ctx, ledger.NewTransaction{ProjectID: p.ID, Kind: model.Expense, Amount: 4_000_000, Description: "Labor"}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if err := l.Dismiss(ctx, "loss-alert-2"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if _, err := l.CompleteProject(ctx, "1"); err != nil {
		t.Fatalf("CompleteProject: %v", err)
	}

	reloaded, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(reloaded.Projects) != 4 {
		t.Fatalf("projects = %d, want 4", len(reloaded.Projects))
	}
	if reloaded.Projects[0].ID != "1" || reloaded.Projects[0].Active() {
		t.Fatalf("project 1 = %+v, want first and completed", reloaded.Projects[0])
	}
	if len(reloaded.Transactions) != 11 {
		t.Fatalf("transactions = %d, want 11", len(reloaded.Transactions))
	}
	if len(reloaded.History) != 5 {
		t.Fatalf("history = %d, want 5", len(reloaded.History))
	}
	if len(reloaded.Dismissed) != 1 || reloaded.Dismissed[0] != "loss-alert-2" {
		t.Fatalf("dismissed = %v", reloaded.Dismissed)
	}

	again := ledger.FromSnapshot(reloaded)
	if got := len(again.Projects()); got != 3 {
		t.Fatalf("active projects after reload = %d, want 3", got)
	}
	if got := len(again.ActiveAlerts()); got != 1 {
		t.Fatalf("active alerts after reload = %d, want 1", got)
	}

	if err := l.Restore(ctx, "loss-alert-2"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	reloaded, err = db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(reloaded.Dismissed) != 0 {
		t.Fatalf("dismissed after restore = %v", reloaded.Dismissed)
	}
}

func TestProject_NotFound(t *testing.T) {
	db := openTemp(t)
	if _, err := db.Project(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Project error = %v, want ErrNotFound", err)
	}
}

func TestSaveTransaction_UnknownProjectFails(t *testing.T) {
	db := openTemp(t)
	err := db.SaveTransaction(context.Background(), model.Transaction{
		ID: "t1", ProjectID: "ghost", Kind: model.Income, Amount: 1, Description: "x", Date: time.Now(),
	}, nil)
	if err == nil {
		t.Fatal("SaveTransaction for unknown project should fail the foreign key")
	}
}

func seededLedger(t *testing.T, db *DB) *ledger.Ledger {
	t.Helper()
	ctx := context.Background()
	if err := db.Seed(ctx, ledger.SampleSnapshot()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	clock := time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC)
	return ledger.FromSnapshot(snap, ledger.WithSink(db), ledger.WithClock(func() time.Time { return clock }))
}

// failInserts makes every insert into table abort.
func failInserts(t *testing.T, db *DB, table string) {
	t.Helper()
	stmt := "CREATE TRIGGER fail_" + table + " BEFORE INSERT ON " + table +
		" BEGIN SELECT RAISE(ABORT, 'disk full'); END"
	if _, err := db.db.ExecContext(context.Background(), stmt); err != nil {
		t.Fatalf("creating trigger: %v", err)
	}
}

func TestCompleteProject_HistoryFailureKeepsProjectActive(t *testing.T) {
	db := openTemp(t)
	l := seededLedger(t, db)
	ctx := context.Background()
	failInserts(t, db, "completed_projects")

	if _, err := l.CompleteProject(ctx, "1"); err == nil {
		t.Fatal("CompleteProject should fail when the archive insert fails")
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	for _, p := range snap.Projects {
		if p.ID == "1" && !p.Active() {
			t.Fatalf("project 1 stored as completed after a failed archive: %+v", p)
		}
	}
	if len(snap.History) != 4 {
		t.Fatalf("history = %d, want 4", len(snap.History))
	}
	if got := len(l.Projects()); got != 3 {
		t.Fatalf("active projects in memory = %d, want 3", got)
	}
}

func TestAddProject_InitialPaymentFailureStoresNothing(t *testing.T) {
	db := openTemp(t)
	l := seededLedger(t, db)
	ctx := context.Background()
	failInserts(t, db, "transactions")

	_, err := l.AddProject(ctx, ledger.NewProject{Name: "Casa Campestre", Client: "Luis Pérez", Budget: 80_000_000, InitialPayment: 10_000_000})
	if err == nil {
		t.Fatal("AddProject should fail when the initial payment insert fails")
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Projects) != 3 || len(snap.Transactions) != 9 {
		t.Fatalf("stored %d projects, %d txs, want 3 and 9", len(snap.Projects), len(snap.Transactions))
	}
	if got := len(l.Projects()); got != 3 {
		t.Fatalf("active projects in memory = %d, want 3", got)
	}
}

func TestDismissal_ClearedConditionIsDeleted(t *testing.T) {
	db := openTemp(t)
	l := seededLedger(t, db)
	ctx := context.Background()

	if err := l.Dismiss(ctx, "loss-alert-2"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if _, err := l.AddTransaction(ctx, ledger.NewTransaction{ProjectID: "2", Kind: model.Income, Amount: 20_000_000, Description: "Second payment"}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Dismissed) != 0 {
		t.Fatalf("dismissed after the loss cleared = %v, want none", snap.Dismissed)
	}
}

func TestTransactionFailureKeepsDismissal(t *testing.T) {
	db := openTemp(t)
	l := seededLedger(t, db)
	ctx := context.Background()

	if err := l.Dismiss(ctx, "loss-alert-2"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	failInserts(t, db, "transactions")
	if _, err := l.AddTransaction(ctx, ledger.NewTransaction{ProjectID: "2", Kind: model.Income, Amount: 20_000_000, Description: "Second payment"}); err == nil {
		t.Fatal("AddTransaction should fail")
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Dismissed) != 1 || snap.Dismissed[0] != "loss-alert-2" {
		t.Fatalf("dismissed = %v, want [loss-alert-2]", snap.Dismissed)
	}
	if got := l.Dismissed(); len(got) != 1 {
		t.Fatalf("dismissed in memory = %v, want [loss-alert-2]", got)
	}
}
