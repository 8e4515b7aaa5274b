package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/archifinance/internal/auth"
	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	clock := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	if cfg.Ledger == nil {
		cfg.Ledger = ledger.NewSample(ledger.WithClock(func() time.Time { return clock }))
	}
	if cfg.Issuer == nil {
		iss, err := auth.NewIssuer("test-secret", time.Hour)
		if err != nil {
			t.Fatalf("NewIssuer: %v", err)
		}
		cfg.Issuer = iss
	}
	return New(cfg)
}

func do(t *testing.T, s *Service, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Service) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/v1/login", "", loginRequest{Email: "ethan@example.com", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login: %v", err)
	}
	if resp.Token == "" || !resp.Demo {
		t.Fatalf("login response = %+v, want a demo token", resp)
	}
	return resp.Token
}

func TestDiffAlerts(t *testing.T) {
	prev := alertSet([]model.Alert{
		{ID: "budget-warning-2", ProjectID: "2", Kind: model.AlertBudgetWarning},
		{ID: "loss-alert-2", ProjectID: "2", Kind: model.AlertLoss},
	})
	curr := alertSet([]model.Alert{
		{ID: "loss-alert-2", ProjectID: "2", Kind: model.AlertLoss},
		{ID: "low-profitability-4", ProjectID: "4", Kind: model.AlertLowProfitability},
		{ID: "budget-warning-4", ProjectID: "4", Kind: model.AlertBudgetWarning},
	})

	raised, cleared := diffAlerts(prev, curr)
	if len(raised) != 2 || raised[0].ID != "budget-warning-4" || raised[1].ID != "low-profitability-4" {
		t.Fatalf("raised = %+v, want budget-warning-4 and low-profitability-4", raised)
	}
	if len(cleared) != 1 || cleared[0].ID != "budget-warning-2" {
		t.Fatalf("cleared = %+v, want budget-warning-2", cleared)
	}

	raised, cleared = diffAlerts(curr, curr)
	if len(raised) != 0 || len(cleared) != 0 {
		t.Fatalf("diff of identical sets = %d raised, %d cleared", len(raised), len(cleared))
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestService(t, Config{EventsBuffer: 2})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestRefresh_EmitsSnapshotThenAlertChanges(t *testing.T) {
	s := newTestService(t, Config{})
	ch := make(chan Event, 8)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	s.refresh(now)
	first := <-ch
	if first.Type != EventSnapshot || first.Snapshot.ActiveAlerts != 2 || first.Snapshot.AtRisk != 1 {
		t.Fatalf("first event = %+v, want snapshot with 2 alerts and 1 at-risk", first)
	}

	// Nothing changed.
	s.refresh(now.Add(time.Minute))
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	if err := s.cfg.Ledger.Dismiss(context.Background(), "loss-alert-2"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	s.refresh(now.Add(2 * time.Minute))

	snap := <-ch
	if snap.Type != EventSnapshot || snap.Snapshot.ActiveAlerts != 1 {
		t.Fatalf("snapshot event = %+v, want 1 active alert", snap)
	}
	cleared := <-ch
	if cleared.Type != EventAlertCleared || cleared.Alert == nil || cleared.Alert.ID != "loss-alert-2" {
		t.Fatalf("cleared event = %+v, want loss-alert-2", cleared)
	}
	if cleared.ID <= snap.ID {
		t.Fatalf("event IDs not increasing: %d then %d", snap.ID, cleared.ID)
	}

	st := s.snapshotStatus()
	if st.PollCount != 3 || st.EventCount != 3 {
		t.Fatalf("status poll=%d events=%d, want 3 and 3", st.PollCount, st.EventCount)
	}
}

func TestRefresh_ConcurrentChangesEndConsistent(t *testing.T) {
	s := newTestService(t, Config{EventsBuffer: 1024})
	ctx := context.Background()
	l := s.cfg.Ledger
	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	s.refresh(now)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = l.Dismiss(ctx, "loss-alert-2")
			s.refresh(now)
			_ = l.Restore(ctx, "loss-alert-2")
			s.refresh(now)
		}()
		go func() {
			defer wg.Done()
			s.refresh(now)
		}()
	}
	wg.Wait()

	want := alertSet(l.ActiveAlerts())
	s.mu.RLock()
	got := s.alertIDs
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()
	if len(got) != len(want) {
		t.Fatalf("stored alerts = %d, ledger has %d", len(got), len(want))
	}
	for id := range want {
		if _, ok := got[id]; !ok {
			t.Fatalf("stored alerts miss %s", id)
		}
	}

	// Raised and cleared events for one alert must alternate.
	lastType := EventAlertRaised
	for _, ev := range events {
		if ev.Alert == nil || ev.Alert.ID != "loss-alert-2" {
			continue
		}
		if ev.Type == lastType {
			t.Fatalf("event %d repeats %s for loss-alert-2", ev.ID, ev.Type)
		}
		lastType = ev.Type
	}
}

func TestHealthz(t *testing.T) {
	s := newTestService(t, Config{})
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAPI_RequiresToken(t *testing.T) {
	s := newTestService(t, Config{})
	for _, path := range []string{"/v1/status", "/v1/projects", "/v1/alerts", "/v1/events"} {
		if rec := do(t, s, http.MethodGet, path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token = %d, want 401", path, rec.Code)
		}
	}
	if rec := do(t, s, http.MethodGet, "/v1/projects", "not-a-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /v1/projects with bad token = %d, want 401", rec.Code)
	}
}

func TestLogin_Errors(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	s := newTestService(t, Config{Account: auth.Account{Email: "ethan@example.com", PasswordHash: hash}})

	if rec := do(t, s, http.MethodPost, "/v1/login", "", loginRequest{Email: "ethan@example.com"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("login without password = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/v1/login", "", loginRequest{Email: "ethan@example.com", Password: "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("login with wrong password = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/v1/login", "", loginRequest{Email: "ETHAN@example.com", Password: "correct horse"}); rec.Code != http.StatusOK {
		t.Fatalf("login with right password = %d, want 200", rec.Code)
	}
}

func TestProjectsEndpoint(t *testing.T) {
	s := newTestService(t, Config{})
	token := login(t, s)

	rec := do(t, s, http.MethodGet, "/v1/projects", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("projects = %d: %s", rec.Code, rec.Body.String())
	}
	var projects []ProjectJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
		t.Fatalf("decoding projects: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("projects = %d, want 3", len(projects))
	}
	if projects[1].ID != "2" || projects[1].Status != "at-risk" || projects[1].NetProfit != -10_500_000 {
		t.Fatalf("project 2 = %+v", projects[1])
	}

	rec = do(t, s, http.MethodGet, "/v1/projects?q=silva", token, nil)
	projects = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
		t.Fatalf("decoding filtered projects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "3" {
		t.Fatalf("filtered projects = %+v, want project 3", projects)
	}
}

func TestProjectDetailEndpoint(t *testing.T) {
	s := newTestService(t, Config{})
	token := login(t, s)

	rec := do(t, s, http.MethodGet, "/v1/projects/1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail = %d: %s", rec.Code, rec.Body.String())
	}
	var d ProjectDetailJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decoding detail: %v", err)
	}
	if math.Abs(d.ROI-23) > 1e-9 || d.RemainingBudget != 26_500_000 || !d.Active {
		t.Fatalf("detail = ROI %v remaining %d active %v", d.ROI, d.RemainingBudget, d.Active)
	}
	if len(d.Monthly) != 2 || d.Monthly[0].Label != "Ene 24" {
		t.Fatalf("monthly = %+v, want Ene 24 and Feb 24", d.Monthly)
	}
	if len(d.Expenses) != 2 || d.Expenses[0].Category != "Materials" {
		t.Fatalf("expense breakdown = %+v", d.Expenses)
	}
	if len(d.Recent) != 3 || d.Recent[0].ID != "3" {
		t.Fatalf("recent = %+v, want newest first", d.Recent)
	}

	if rec := do(t, s, http.MethodGet, "/v1/projects/missing", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown project = %d, want 404", rec.Code)
	}
}

func TestDismissEndpoint(t *testing.T) {
	s := newTestService(t, Config{})
	token := login(t, s)

	if rec := do(t, s, http.MethodPost, "/v1/alerts/no-such-alert/dismiss", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("dismiss unknown = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/v1/alerts/budget-warning-2/dismiss", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss = %d, want 204", rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/v1/alerts", token, nil)
	var alerts []AlertJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decoding alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != "loss-alert-2" {
		t.Fatalf("alerts after dismiss = %+v, want only loss-alert-2", alerts)
	}

	if rec := do(t, s, http.MethodPost, "/v1/alerts/budget-warning-2/restore", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("restore = %d, want 204", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/v1/alerts/budget-warning-2/restore", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second restore = %d, want 404", rec.Code)
	}
}

func TestStatus_AcceptsQueryToken(t *testing.T) {
	s := newTestService(t, Config{Version: "test"})
	token := login(t, s)
	s.refresh(time.Now())

	rec := do(t, s, http.MethodGet, "/v1/status?token="+token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var st Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if st.Version != "test" || st.Summary.Projects != 3 || st.PollCount != 1 {
		t.Fatalf("status = %+v", st)
	}
	if !strings.Contains(st.LastPollAgo, "now") && !strings.Contains(st.LastPollAgo, "ago") {
		t.Fatalf("LastPollAgo = %q", st.LastPollAgo)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := newTestService(t, Config{Interval: time.Second})
	if s.cfg.Interval != 15*time.Second {
		t.Fatalf("Interval = %v, want 15s", s.cfg.Interval)
	}
	if s.cfg.EventsBuffer != 200 || s.cfg.Addr != "127.0.0.1:8788" {
		t.Fatalf("defaults = buffer %d addr %q", s.cfg.EventsBuffer, s.cfg.Addr)
	}
}
