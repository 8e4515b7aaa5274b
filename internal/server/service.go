// Package server provides the long-running local API: a JSON and live-event
// view of the ledger, polled for changes written by other processes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/olahol/melody"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/archifinance/internal/auth"
	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/model"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventAlertRaised  = "alert_raised"
	EventAlertCleared = "alert_cleared"
)

// Reloader refreshes the ledger from its backing store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Config controls the server runtime behavior.
type Config struct {
	Addr           string
	Interval       time.Duration
	EventsBuffer   int
	AllowedOrigins []string
	DBPath         string

	Ledger  *ledger.Ledger
	Source  Reloader // nil when the ledger is in memory
	Account auth.Account
	Issuer  *auth.Issuer
	Logger  *logging.Logger
	Version string
}

// Event is emitted when the portfolio or its alerts change.
type Event struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Snapshot  Snapshot   `json:"snapshot"`
	Alert     *AlertJSON `json:"alert,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	Version         string    `json:"version"`
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	LastPollAgo     string    `json:"last_poll_ago,omitempty"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	SocketCount     int       `json:"socket_count"`
}

// Service provides the server runtime and HTTP API.
type Service struct {
	cfg    Config
	log    *logging.Logger
	hub    *melody.Melody
	router http.Handler

	closing   chan struct{}
	closeOnce sync.Once

	// refreshMu orders refreshes so each diff starts from the state the
	// previous one stored.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	alertIDs    map[string]model.Alert
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service with defaults applied to cfg. cfg.Ledger is
// required.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logging.Discard()
	}

	s := &Service{
		cfg:       cfg,
		log:       lg.WithComponent(logging.ComponentHTTP),
		hub:       newHub(),
		closing:   make(chan struct{}),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.wireHub()
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Run serves the API and polls the ledger until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", logging.FieldPath, s.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		poller := s.log.WithComponent(logging.ComponentPoller)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				poller.Debug("poller stopped")
				return nil
			case <-ticker.C:
				s.pollOnce(gctx)
			}
		}
	})
	return g.Wait()
}

// shutdown ends live streams so the HTTP server can drain.
func (s *Service) shutdown() {
	s.closeOnce.Do(func() {
		close(s.closing)
		_ = s.hub.Close()
	})
}

func (s *Service) pollOnce(ctx context.Context) {
	if s.cfg.Source != nil {
		if err := s.cfg.Source.Reload(ctx); err != nil {
			s.mu.Lock()
			s.lastError = err.Error()
			s.lastPollAt = time.Now()
			s.pollCount++
			s.mu.Unlock()
			s.log.Error("poll failed", logging.FieldError, err)
			return
		}
	}
	s.refresh(time.Now())
}

// refresh recomputes the snapshot and alert set and publishes what changed.
func (s *Service) refresh(now time.Time) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	l := s.cfg.Ledger
	alerts := l.ActiveAlerts()
	stats := pipeline.AggregatePortfolio(l.Summaries(), len(alerts))
	snap := snapshotFromStats(stats, now)
	curr := alertSet(alerts)

	var pending []Event

	s.mu.Lock()
	prev := s.snapshot
	prevAlerts := s.alertIDs
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.alertIDs = curr
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists || !sameFigures(prev, snap) {
		s.nextEventID++
		pending = append(pending, Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap})
	}
	if prevExists {
		raised, cleared := diffAlerts(prevAlerts, curr)
		for _, a := range raised {
			s.nextEventID++
			aj := alertJSON(a)
			pending = append(pending, Event{ID: s.nextEventID, Type: EventAlertRaised, Timestamp: now, Snapshot: snap, Alert: &aj})
		}
		for _, a := range cleared {
			s.nextEventID++
			aj := alertJSON(a)
			pending = append(pending, Event{ID: s.nextEventID, Type: EventAlertCleared, Timestamp: now, Snapshot: snap, Alert: &aj})
		}
	}
	s.mu.Unlock()

	for _, ev := range pending {
		s.publishEvent(ev)
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()

	s.broadcast(ev)
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Version:         s.cfg.Version,
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		SocketCount:     s.hub.Len(),
	}
	if !s.lastPollAt.IsZero() {
		st.LastPollAgo = humanizeAge(s.lastPollAt)
	}
	return st
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
