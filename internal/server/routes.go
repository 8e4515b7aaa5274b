package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/archifinance/internal/auth"
	"github.com/theirongolddev/archifinance/internal/finance"
	"github.com/theirongolddev/archifinance/internal/ledger"
	"github.com/theirongolddev/archifinance/internal/logging"
	"github.com/theirongolddev/archifinance/internal/pipeline"
)

func (s *Service) routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", s.handleHealth)
	r.POST("/v1/login", s.handleLogin)

	api := r.Group("/v1")
	api.Use(requireToken(s.cfg.Issuer, s.log.WithComponent(logging.ComponentAuth)))
	{
		api.GET("/status", s.handleStatus)
		api.GET("/projects", s.handleProjects)
		api.GET("/projects/:id", s.handleProject)
		api.GET("/alerts", s.handleAlerts)
		api.POST("/alerts/:id/dismiss", s.handleDismiss)
		api.POST("/alerts/:id/restore", s.handleRestore)
		api.GET("/events", s.handleEvents)
		api.GET("/stream", s.handleStream)
		api.GET("/ws", s.handleSocket)
	}
	return r
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
	Demo      bool      `json:"demo"`
}

func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	email, err := s.cfg.Account.Check(req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.log.Warn("login failed", logging.FieldClientIP, c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	token, exp, err := s.cfg.Issuer.Issue(email)
	if err != nil {
		s.log.Error("issuing token", logging.FieldError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, Email: email, Demo: s.cfg.Account.Demo()})
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleProjects(c *gin.Context) {
	sums := pipeline.FilterByProject(s.cfg.Ledger.Summaries(), c.Query("q"))
	out := make([]ProjectJSON, 0, len(sums))
	for _, sum := range sums {
		out = append(out, projectJSON(sum))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Service) handleProject(c *gin.Context) {
	l := s.cfg.Ledger
	p, err := l.Project(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	txs := l.Transactions(p.ID)
	sum := finance.Summarize(p, txs)
	detail := finance.ComputeDetail(sum.Financials, p.Budget)
	c.JSON(http.StatusOK, detailJSON(sum, detail, l.ProjectAlerts(p.ID), txs))
}

func (s *Service) handleAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, alertsJSON(s.cfg.Ledger.ActiveAlerts()))
}

func (s *Service) handleDismiss(c *gin.Context) {
	s.changeAlert(c, s.cfg.Ledger.Dismiss)
}

func (s *Service) handleRestore(c *gin.Context) {
	s.changeAlert(c, s.cfg.Ledger.Restore)
}

// changeAlert applies a dismissal change and publishes the resulting alert
// events without waiting for the next poll.
func (s *Service) changeAlert(c *gin.Context, apply func(context.Context, string) error) {
	err := apply(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, ledger.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.log.Error("alert change failed", logging.FieldAlert, c.Param("id"), logging.FieldError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.refresh(time.Now())
	c.Status(http.StatusNoContent)
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

func (s *Service) handleStream(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	w.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-s.closing:
			return
		case ev := <-ch:
			writeSSE(w, ev)
			w.Flush()
		}
	}
}

func (s *Service) handleSocket(c *gin.Context) {
	if err := s.hub.HandleRequest(c.Writer, c.Request); err != nil {
		s.log.Warn("websocket upgrade failed", logging.FieldClientIP, c.ClientIP(), logging.FieldError, err)
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
