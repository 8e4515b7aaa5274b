package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/store"
)

// LoadOptions controls where the ledger state comes from.
type LoadOptions struct {
	// DBPath overrides the default database location.
	DBPath string
	// InMemory skips the database and starts from the sample portfolio.
	InMemory bool
	Logger   *logging.Logger
}

// LoadResult holds a ready ledger and, when persistent, its store.
type LoadResult struct {
	Ledger *ledger.Ledger
	Store  *store.DB // nil when in memory
	Seeded bool      // the database was empty and got the sample portfolio

	reloadMu sync.Mutex
	log      *logging.Logger
}

// Close releases the store, if any.
func (r *LoadResult) Close() error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

// Load opens the store, seeds it with the sample portfolio on first run and
// returns a ledger that writes through to it.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	lg := opts.Logger
	if lg == nil {
		lg = logging.Discard()
	}

	if opts.InMemory {
		return &LoadResult{Ledger: ledger.NewSample(ledger.WithLogger(lg))}, nil
	}

	path := opts.DBPath
	if path == "" {
		path = DBPath()
	}
	db, err := store.Open(ctx, path, lg)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	result := &LoadResult{Store: db, log: lg}
	empty, err := db.IsEmpty(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if empty {
		if err := db.Seed(ctx, ledger.SampleSnapshot()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seeding sample portfolio: %w", err)
		}
		result.Seeded = true
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	result.Ledger = ledger.FromSnapshot(snap, ledger.WithSink(db), ledger.WithLogger(lg))
	result.prune(ctx)
	return result, nil
}

// prune drops stored dismissals whose alert no longer fires. A failure only
// leaves the stale ids in place.
func (r *LoadResult) prune(ctx context.Context) {
	pruned, err := r.Ledger.PruneDismissals(ctx)
	if err != nil {
		r.log.Warn("pruning dismissals", logging.FieldError, err)
	}
	if len(pruned) > 0 {
		r.log.Debug("pruned dismissals", logging.FieldCount, len(pruned))
	}
}

// Reload replaces the ledger state with what is currently in the store.
// Concurrent reloads run one at a time so an older snapshot never replaces
// a newer one. It is a no-op for in-memory results.
func (r *LoadResult) Reload(ctx context.Context) error {
	if r.Store == nil {
		return nil
	}
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	snap, err := r.Store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("reloading: %w", err)
	}
	r.Ledger.Reset(snap)
	r.prune(ctx)
	return nil
}

// DataDir returns the XDG data directory for archifinance.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "archifinance")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "archifinance")
}

// DBPath returns the default database path.
func DBPath() string {
	return filepath.Join(DataDir(), "archifinance.db")
}
