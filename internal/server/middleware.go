package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/archifinance/internal/auth"
	"github.com/theirongolddev/archifinance/internal/logging"
)

const ctxEmail = "email"

// requestLogger logs one line per request, at a level chosen by status.
func requestLogger(lg *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			logging.FieldMethod, c.Request.Method,
			logging.FieldPath, c.Request.URL.Path,
			logging.FieldStatusCode, status,
			logging.FieldDuration, time.Since(start).Milliseconds(),
			logging.FieldClientIP, c.ClientIP(),
		}
		switch {
		case status >= 500:
			lg.Error("request", args...)
		case status >= 400:
			lg.Warn("request", args...)
		default:
			lg.Debug("request", args...)
		}
	}
}

// requireToken accepts a bearer token from the Authorization header or,
// for browser event streams that cannot set headers, the token query
// parameter.
func requireToken(issuer *auth.Issuer, lg *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			lg.Debug("rejected token", logging.FieldClientIP, c.ClientIP(), logging.FieldError, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}
